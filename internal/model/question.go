package model

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

// QuestionType defines the type of question
type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeSingleChoice   QuestionType = "single_answer_choice"
	TypeMultipleChoice QuestionType = "multiple_answer_choice"
	TypeDropdown       QuestionType = "dropdown_list"
	TypeRating         QuestionType = "rating"
	TypeNPS            QuestionType = "nps"
	TypeMatrix         QuestionType = "matrix"
	TypeContact        QuestionType = "contact"
	TypeDate           QuestionType = "date"
	TypeDisplayInfo    QuestionType = "display_info" // Informational, never answered
	TypeSmileScale     QuestionType = "smile_scale"
)

// DefaultScale is used by rating and nps questions without an explicit scale
const DefaultScale = 5

// SmileScalePoints is the fixed number of faces on a smile scale
const SmileScalePoints = 5

// QuestionTypes lists every question type in a stable order
var QuestionTypes = []QuestionType{
	TypeText, TypeSingleChoice, TypeMultipleChoice, TypeDropdown, TypeRating,
	TypeNPS, TypeMatrix, TypeContact, TypeDate, TypeDisplayInfo, TypeSmileScale,
}

func (t QuestionType) Valid() bool {
	_, err := emptyBody(t)
	return err == nil
}

// Option is one selectable answer of a choice question
type Option struct {
	ID    string `json:"id" bson:"id" yaml:"id"`
	Label string `json:"label" bson:"label" yaml:"label"`
}

// ContactField is one input of a contact question
type ContactField struct {
	ID    string `json:"id" bson:"id" yaml:"id"`
	Label string `json:"label" bson:"label" yaml:"label"`
	Type  string `json:"type" bson:"type" yaml:"type"` // e.g. "email", "phone", "text"
}

// Body carries the type-specific part of a question
type Body interface {
	isBody()
}

type TextBody struct{}

// ChoiceBody backs single_answer_choice, multiple_answer_choice and dropdown_list
type ChoiceBody struct {
	Options []Option
	Shuffle bool
}

// ScaleBody backs rating and nps
type ScaleBody struct {
	Scale int
}

type MatrixBody struct {
	Rows    []string
	Columns []string
}

type ContactBody struct {
	Fields []ContactField
}

type DateBody struct{}

type InfoBody struct{}

type SmileBody struct{}

func (TextBody) isBody()    {}
func (ChoiceBody) isBody()  {}
func (ScaleBody) isBody()   {}
func (MatrixBody) isBody()  {}
func (ContactBody) isBody() {}
func (DateBody) isBody()    {}
func (InfoBody) isBody()    {}
func (SmileBody) isBody()   {}

// Question is one typed unit of a survey with its branching rules
type Question struct {
	ID       string
	Type     QuestionType
	Label    string
	Required bool
	Body     Body
	Logic    []LogicRule
}

// IsRequired reports whether an answer is mandatory. display_info never is.
func (q Question) IsRequired() bool {
	return q.Required && q.Type != TypeDisplayInfo
}

// Options returns the options of a choice question
func (q Question) Options() []Option {
	if b, ok := q.Body.(ChoiceBody); ok {
		return b.Options
	}
	return nil
}

// HasOption reports whether id is one of the question's option ids
func (q Question) HasOption(id string) bool {
	for _, o := range q.Options() {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Scale returns the scale of a rating or nps question, 0 otherwise
func (q Question) Scale() int {
	if b, ok := q.Body.(ScaleBody); ok {
		return b.Scale
	}
	return 0
}

// WithRequired returns a copy marked as required
func (q Question) WithRequired() Question {
	q.Required = true
	return q
}

// WithLogic returns a copy with the given rules appended
func (q Question) WithLogic(rules ...LogicRule) Question {
	logic := make([]LogicRule, 0, len(q.Logic)+len(rules))
	logic = append(logic, q.Logic...)
	q.Logic = append(logic, rules...)
	return q
}

// NewQuestion returns a question of the given type with an empty body
func NewQuestion(id string, t QuestionType, label string) Question {
	body, _ := emptyBody(t) // nil for unknown types, reported by lint
	return Question{ID: id, Type: t, Label: label, Body: body}
}

// NewChoice returns a choice question; t must be one of the choice types
func NewChoice(id string, t QuestionType, label string, options ...Option) Question {
	q := NewQuestion(id, t, label)
	q.Body = ChoiceBody{Options: options}
	return q
}

// NewScale returns a rating or nps question
func NewScale(id string, t QuestionType, label string, scale int) Question {
	q := NewQuestion(id, t, label)
	q.Body = ScaleBody{Scale: scale}
	return q
}

// Opts builds options whose id and label are the same string
func Opts(ids ...string) []Option {
	out := make([]Option, len(ids))
	for i, id := range ids {
		out[i] = Option{ID: id, Label: id}
	}
	return out
}

func emptyBody(t QuestionType) (Body, error) {
	switch t {
	case TypeText:
		return TextBody{}, nil
	case TypeSingleChoice, TypeMultipleChoice, TypeDropdown:
		return ChoiceBody{}, nil
	case TypeRating, TypeNPS:
		return ScaleBody{Scale: DefaultScale}, nil
	case TypeMatrix:
		return MatrixBody{}, nil
	case TypeContact:
		return ContactBody{}, nil
	case TypeDate:
		return DateBody{}, nil
	case TypeDisplayInfo:
		return InfoBody{}, nil
	case TypeSmileScale:
		return SmileBody{}, nil
	}
	return nil, fmt.Errorf("unknown question type %q", t)
}

// questionDoc is the flat wire form shared by JSON, BSON and YAML
type questionDoc struct {
	ID            string         `json:"id" bson:"id" yaml:"id"`
	Type          QuestionType   `json:"type" bson:"type" yaml:"type"`
	Label         string         `json:"label" bson:"label" yaml:"label"`
	Required      bool           `json:"required,omitempty" bson:"required,omitempty" yaml:"required,omitempty"`
	Options       []Option       `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"`
	Shuffle       bool           `json:"shuffle,omitempty" bson:"shuffle,omitempty" yaml:"shuffle,omitempty"`
	Scale         int            `json:"scale,omitempty" bson:"scale,omitempty" yaml:"scale,omitempty"`
	Rows          []string       `json:"rows,omitempty" bson:"rows,omitempty" yaml:"rows,omitempty"`
	Columns       []string       `json:"columns,omitempty" bson:"columns,omitempty" yaml:"columns,omitempty"`
	ContactFields []ContactField `json:"contactFields,omitempty" bson:"contactFields,omitempty" yaml:"contactFields,omitempty"`
	Logic         []LogicRule    `json:"logic,omitempty" bson:"logic,omitempty" yaml:"logic,omitempty"`
}

func (q Question) doc() questionDoc {
	d := questionDoc{
		ID:       q.ID,
		Type:     q.Type,
		Label:    q.Label,
		Required: q.Required,
		Logic:    q.Logic,
	}
	switch b := q.Body.(type) {
	case ChoiceBody:
		d.Options = b.Options
		d.Shuffle = b.Shuffle
	case ScaleBody:
		d.Scale = b.Scale
	case MatrixBody:
		d.Rows = b.Rows
		d.Columns = b.Columns
	case ContactBody:
		d.ContactFields = b.Fields
	}
	return d
}

func (d questionDoc) question() (Question, error) {
	q := Question{
		ID:       d.ID,
		Type:     d.Type,
		Label:    d.Label,
		Required: d.Required,
		Logic:    d.Logic,
	}
	switch d.Type {
	case TypeText:
		q.Body = TextBody{}
	case TypeSingleChoice, TypeMultipleChoice, TypeDropdown:
		q.Body = ChoiceBody{Options: d.Options, Shuffle: d.Shuffle}
	case TypeRating, TypeNPS:
		scale := d.Scale
		if scale == 0 {
			scale = DefaultScale
		}
		q.Body = ScaleBody{Scale: scale}
	case TypeMatrix:
		q.Body = MatrixBody{Rows: d.Rows, Columns: d.Columns}
	case TypeContact:
		q.Body = ContactBody{Fields: d.ContactFields}
	case TypeDate:
		q.Body = DateBody{}
	case TypeDisplayInfo:
		q.Body = InfoBody{}
	case TypeSmileScale:
		q.Body = SmileBody{}
	default:
		return Question{}, fmt.Errorf("question %q: unknown question type %q", d.ID, d.Type)
	}
	return q, nil
}

func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.doc())
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var d questionDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := d.question()
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func (q Question) MarshalBSON() ([]byte, error) {
	return bson.Marshal(q.doc())
}

func (q *Question) UnmarshalBSON(data []byte) error {
	var d questionDoc
	if err := bson.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := d.question()
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func (q Question) MarshalYAML() (interface{}, error) {
	return q.doc(), nil
}

func (q *Question) UnmarshalYAML(node *yaml.Node) error {
	var d questionDoc
	if err := node.Decode(&d); err != nil {
		return err
	}
	parsed, err := d.question()
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
