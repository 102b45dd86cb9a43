package flow

import "surveyflow/internal/model"

// Supports reports whether op may be used in a condition whose source
// question has type t
func Supports(t model.QuestionType, op model.Operator) bool {
	switch op {
	case model.OpHasAnyValue:
		return t.Valid() && t != model.TypeDisplayInfo
	case model.OpIs, model.OpIsNot:
		switch t {
		case model.TypeText, model.TypeSingleChoice, model.TypeDropdown, model.TypeDate:
			return true
		}
	case model.OpIncludes:
		return t == model.TypeMultipleChoice
	case model.OpGreaterThan, model.OpLowerThan:
		return t == model.TypeRating || t == model.TypeNPS
	}
	return false
}

// OperatorsFor lists the operators an authoring UI may offer for t
func OperatorsFor(t model.QuestionType) []model.Operator {
	var ops []model.Operator
	for _, op := range model.Operators {
		if Supports(t, op) {
			ops = append(ops, op)
		}
	}
	return ops
}
