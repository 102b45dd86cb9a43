package flow

import (
	"fmt"

	"surveyflow/internal/model"
)

// Reorder moves the question at from to position to and returns a new list
func Reorder(questions []model.Question, from, to int) ([]model.Question, error) {
	n := len(questions)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: move %d to %d in %d questions", ErrIndexOutOfRange, from, to, n)
	}
	out := make([]model.Question, 0, n)
	moved := questions[from]
	for i, q := range questions {
		if i == from {
			continue
		}
		if len(out) == to {
			out = append(out, moved)
		}
		out = append(out, q)
	}
	if len(out) < n {
		out = append(out, moved)
	}
	return out, nil
}

// InsertAfter returns a new list with q placed after afterID. An empty
// afterID inserts at the front.
func InsertAfter(questions []model.Question, afterID string, q model.Question) ([]model.Question, error) {
	idx := newIndex(questions)
	if _, exists := idx[q.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
	}
	at := 0
	if afterID != "" {
		pos, ok := idx[afterID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, afterID)
		}
		at = pos + 1
	}
	out := make([]model.Question, 0, len(questions)+1)
	out = append(out, questions[:at]...)
	out = append(out, q)
	out = append(out, questions[at:]...)
	return out, nil
}

// Remove returns a new list without the question. Rules elsewhere that still
// point at it are left for Lint to report.
func Remove(questions []model.Question, id string) ([]model.Question, error) {
	pos, ok := newIndex(questions)[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	out := make([]model.Question, 0, len(questions)-1)
	out = append(out, questions[:pos]...)
	out = append(out, questions[pos+1:]...)
	return out, nil
}
