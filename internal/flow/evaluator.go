package flow

import "surveyflow/internal/model"

// index maps question id to its position. The first occurrence of a
// duplicated id wins.
type index map[string]int

func newIndex(questions []model.Question) index {
	idx := make(index, len(questions))
	for i, q := range questions {
		if _, seen := idx[q.ID]; !seen {
			idx[q.ID] = i
		}
	}
	return idx
}

// Evaluate reports whether cond holds for the given answers. ownerID is the
// question the condition's rule belongs to. Conditions over unknown
// questions, or with an operator the source type does not support, are false.
func Evaluate(cond model.Condition, ownerID string, questions []model.Question, answers model.AnswerStore) bool {
	return evaluate(cond, ownerID, questions, newIndex(questions), answers)
}

func evaluate(cond model.Condition, ownerID string, questions []model.Question, idx index, answers model.AnswerStore) bool {
	pos, ok := idx[cond.Source(ownerID)]
	if !ok {
		return false
	}
	src := questions[pos]
	if !Supports(src.Type, cond.Operator) {
		return false
	}

	if cond.Operator == model.OpHasAnyValue {
		return answers.HasValue(src.ID)
	}
	if !answers.HasValue(src.ID) {
		return false
	}
	answer, _ := answers.Get(src.ID)

	switch cond.Operator {
	case model.OpIs, model.OpIsNot:
		got, ok := answer.AsText()
		if !ok {
			return false
		}
		want, ok := cond.Value.AsText()
		if !ok {
			return false
		}
		if cond.Operator == model.OpIs {
			return got == want
		}
		return got != want

	case model.OpIncludes:
		got, ok := answer.AsSet()
		if !ok {
			return false
		}
		want, ok := cond.Value.AsSet()
		if !ok || len(want) == 0 {
			return false
		}
		return subset(want, got)

	case model.OpGreaterThan, model.OpLowerThan:
		got, ok := answer.AsNumber()
		if !ok {
			return false
		}
		threshold, ok := cond.Value.AsNumber()
		if !ok {
			return false
		}
		if cond.Operator == model.OpGreaterThan {
			return got > threshold
		}
		return got < threshold
	}
	return false
}

// matches applies AND semantics over a rule's conditions. An empty "if"
// list always matches.
func matches(rule model.LogicRule, ownerID string, questions []model.Question, idx index, answers model.AnswerStore) bool {
	for _, cond := range rule.If {
		if !evaluate(cond, ownerID, questions, idx, answers) {
			return false
		}
	}
	return true
}

func subset(want, got []string) bool {
	have := make(map[string]struct{}, len(got))
	for _, id := range got {
		have[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}
