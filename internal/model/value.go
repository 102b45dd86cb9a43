package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// ValueKind tags the shape held by a Value
type ValueKind uint8

const (
	KindNone   ValueKind = iota
	KindText             // text, date, single option id
	KindNumber           // rating, nps, smile scale
	KindSet              // multiple option ids
	KindRecord           // contact fields, matrix row -> column
)

// Value is either a stored answer or a condition operand.
// The zero Value means "absent".
type Value struct {
	kind   ValueKind
	text   string
	num    float64
	set    []string
	record map[string]string
}

// Text returns a text value
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Set returns a set of ids, keeping the given order
func Set(ids ...string) Value {
	set := make([]string, len(ids))
	copy(set, ids)
	return Value{kind: KindSet, set: set}
}

// Record returns a field id -> string value
func Record(fields map[string]string) Value {
	record := make(map[string]string, len(fields))
	for k, v := range fields {
		record[k] = v
	}
	return Value{kind: KindRecord, record: record}
}

func (v Value) Kind() ValueKind { return v.kind }

// IsZero reports whether the value is absent
func (v Value) IsZero() bool { return v.kind == KindNone }

// IsEmpty reports whether the value counts as "no answer".
// Numbers are never empty: 0 is a valid NPS score.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindText:
		return v.text == ""
	case KindNumber:
		return false
	case KindSet:
		return len(v.set) == 0
	case KindRecord:
		for _, s := range v.record {
			if s != "" {
				return false
			}
		}
		return true
	}
	return true
}

// AsText returns the value as a string. Numbers are formatted.
func (v Value) AsText() (string, bool) {
	switch v.kind {
	case KindText:
		return v.text, true
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	}
	return "", false
}

// AsNumber returns the value as a float. Numeric text is parsed.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// AsSet returns the value as a list of ids. A non-empty text is a
// single-element set.
func (v Value) AsSet() ([]string, bool) {
	switch v.kind {
	case KindSet:
		return v.set, true
	case KindText:
		if v.text == "" {
			return nil, false
		}
		return []string{v.text}, true
	}
	return nil, false
}

func (v Value) AsRecord() (map[string]string, bool) {
	if v.kind != KindRecord {
		return nil, false
	}
	return v.record, true
}

// Equal reports whether two values hold the same answer. Sets compare
// without regard to order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindSet:
		if len(v.set) != len(o.set) {
			return false
		}
		return subsetOf(v.set, o.set) && subsetOf(o.set, v.set)
	case KindRecord:
		if len(v.record) != len(o.record) {
			return false
		}
		for k, s := range v.record {
			if t, ok := o.record[k]; !ok || s != t {
				return false
			}
		}
	}
	return true
}

func subsetOf(a, b []string) bool {
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			return false
		}
	}
	return true
}

// String renders the value for labels and logs
func (v Value) String() string {
	switch v.kind {
	case KindText, KindNumber:
		s, _ := v.AsText()
		return s
	case KindSet:
		return "[" + strings.Join(v.set, ", ") + "]"
	case KindRecord:
		keys := make([]string, 0, len(v.record))
		for k := range v.record {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.record[k]
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

func (v Value) raw() interface{} {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num
	case KindSet:
		return v.set
	case KindRecord:
		return v.record
	}
	return nil
}

// valueOf normalizes whatever a JSON, YAML or BSON decoder produced
func valueOf(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return Text(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return Value{}, err
		}
		return Number(n), nil
	case []string:
		return Set(x...), nil
	case []interface{}:
		ids := make([]string, 0, len(x))
		for _, item := range x {
			s, err := scalarString(item)
			if err != nil {
				return Value{}, fmt.Errorf("set element: %w", err)
			}
			ids = append(ids, s)
		}
		return Set(ids...), nil
	case map[string]string:
		return Record(x), nil
	case map[string]interface{}:
		fields := make(map[string]string, len(x))
		for k, item := range x {
			s, err := scalarString(item)
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = s
		}
		return Record(fields), nil
	}
	return Value{}, fmt.Errorf("unsupported value of type %T", raw)
}

func scalarString(raw interface{}) (string, error) {
	v, err := valueOf(raw)
	if err != nil {
		return "", err
	}
	s, ok := v.AsText()
	if !ok {
		return "", fmt.Errorf("expected a string or number, got %T", raw)
	}
	return s, nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.raw(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if v.kind == KindNone {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(v.raw())
}

func (v *Value) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*v = Value{}
	case bsontype.String:
		*v = Text(rv.StringValue())
	case bsontype.Double:
		*v = Number(rv.Double())
	case bsontype.Int32:
		*v = Number(float64(rv.Int32()))
	case bsontype.Int64:
		*v = Number(float64(rv.Int64()))
	case bsontype.Array:
		values, err := rv.Array().Values()
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(values))
		for _, item := range values {
			s, ok := item.StringValueOK()
			if !ok {
				return fmt.Errorf("set element of bson type %s", item.Type)
			}
			ids = append(ids, s)
		}
		*v = Set(ids...)
	case bsontype.EmbeddedDocument:
		elems, err := rv.Document().Elements()
		if err != nil {
			return err
		}
		fields := make(map[string]string, len(elems))
		for _, e := range elems {
			s, ok := e.Value().StringValueOK()
			if !ok {
				return fmt.Errorf("field %q of bson type %s", e.Key(), e.Value().Type)
			}
			fields[e.Key()] = s
		}
		*v = Record(fields)
	default:
		return fmt.Errorf("unsupported bson type %s", t)
	}
	return nil
}
