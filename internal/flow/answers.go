package flow

import (
	"fmt"
	"math"
	"time"

	"surveyflow/internal/model"
)

// DateLayout is the accepted format of date answers
const DateLayout = "2006-01-02"

// CheckAnswer verifies that v has the shape q expects before it is stored.
// The zero Value always passes: it clears the answer.
func CheckAnswer(q model.Question, v model.Value) error {
	if v.IsZero() {
		return nil
	}
	invalid := func(format string, args ...interface{}) error {
		return &FieldError{QuestionID: q.ID, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidAnswer}
	}

	switch q.Type {
	case model.TypeText:
		if v.Kind() != model.KindText {
			return invalid("expected text")
		}

	case model.TypeDate:
		s, ok := v.AsText()
		if !ok || v.Kind() != model.KindText {
			return invalid("expected a date")
		}
		if s != "" {
			if _, err := time.Parse(DateLayout, s); err != nil {
				return invalid("expected a date formatted as YYYY-MM-DD")
			}
		}

	case model.TypeSingleChoice, model.TypeDropdown:
		if v.Kind() != model.KindText {
			return invalid("expected one option id")
		}
		if s, _ := v.AsText(); s != "" && !q.HasOption(s) {
			return invalid("unknown option %q", s)
		}

	case model.TypeMultipleChoice:
		ids, ok := v.AsSet()
		if !ok && !v.IsEmpty() {
			return invalid("expected a list of option ids")
		}
		for _, id := range ids {
			if !q.HasOption(id) {
				return invalid("unknown option %q", id)
			}
		}

	case model.TypeRating:
		return checkScale(v, 1, q.Scale(), invalid)

	case model.TypeNPS:
		return checkScale(v, 0, q.Scale(), invalid)

	case model.TypeSmileScale:
		return checkScale(v, 1, model.SmileScalePoints, invalid)

	case model.TypeMatrix:
		cells, ok := v.AsRecord()
		if !ok {
			return invalid("expected a row to column mapping")
		}
		body, _ := q.Body.(model.MatrixBody)
		for row, col := range cells {
			if !contains(body.Rows, row) {
				return invalid("unknown row %q", row)
			}
			if col != "" && !contains(body.Columns, col) {
				return invalid("unknown column %q", col)
			}
		}

	case model.TypeContact:
		fields, ok := v.AsRecord()
		if !ok {
			return invalid("expected contact fields")
		}
		body, _ := q.Body.(model.ContactBody)
		for id := range fields {
			if !hasField(body.Fields, id) {
				return invalid("unknown contact field %q", id)
			}
		}

	case model.TypeDisplayInfo:
		return invalid("informational questions take no answer")

	default:
		return invalid("unknown question type %q", q.Type)
	}
	return nil
}

func checkScale(v model.Value, min, max int, invalid func(string, ...interface{}) error) error {
	n, ok := v.AsNumber()
	if !ok {
		return invalid("expected a number")
	}
	if n != math.Trunc(n) || n < float64(min) || n > float64(max) {
		return invalid("expected a whole number between %d and %d", min, max)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func hasField(fields []model.ContactField, id string) bool {
	for _, f := range fields {
		if f.ID == id {
			return true
		}
	}
	return false
}
