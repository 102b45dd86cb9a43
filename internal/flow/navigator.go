package flow

import (
	"fmt"

	"surveyflow/internal/model"
)

// Step is the outcome of resolving the next question
type Step struct {
	QuestionID string `json:"questionId,omitempty"`
	Complete   bool   `json:"complete"`
}

// Complete is the terminal step
var Complete = Step{Complete: true}

// Next returns a step to the given question
func Next(questionID string) Step {
	return Step{QuestionID: questionID}
}

func (s Step) String() string {
	if s.Complete {
		return "complete"
	}
	return s.QuestionID
}

// ResolveNext returns the question that follows currentID.
//
// The current question's rules are tried in order and the first one whose
// conditions all hold wins. Rules pointing at a missing question or back at
// the current one are ignored. Without a matching rule the next question in
// order follows, or Complete after the last one.
func ResolveNext(currentID string, questions []model.Question, answers model.AnswerStore) (Step, error) {
	idx := newIndex(questions)
	pos, ok := idx[currentID]
	if !ok {
		return Step{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, currentID)
	}
	current := questions[pos]

	if r := firedRule(current, questions, idx, answers); r >= 0 {
		return Next(current.Logic[r].Then.GoToQuestionID), nil
	}

	if pos+1 < len(questions) {
		return Next(questions[pos+1].ID), nil
	}
	return Complete, nil
}

// FiredRule returns the index of the rule of q that ResolveNext would
// follow, or -1 when q falls through to the next question in order.
func FiredRule(q model.Question, questions []model.Question, answers model.AnswerStore) int {
	return firedRule(q, questions, newIndex(questions), answers)
}

func firedRule(current model.Question, questions []model.Question, idx index, answers model.AnswerStore) int {
	for r, rule := range current.Logic {
		target := rule.Then.GoToQuestionID
		if _, ok := idx[target]; !ok || target == current.ID {
			continue
		}
		if matches(rule, current.ID, questions, idx, answers) {
			return r
		}
	}
	return -1
}
