package flow

import (
	"fmt"

	"surveyflow/internal/model"
)

// Start returns the initial cursor, positioned on the first question
func Start(questions []model.Question) (model.Cursor, error) {
	if len(questions) == 0 {
		return model.Cursor{}, ErrEmptySurvey
	}
	return model.Cursor{Current: questions[0].ID}, nil
}

// Advance moves the cursor forward using ResolveNext. Callers are expected
// to run ValidateTransition first; with strict set, Advance runs it itself
// and refuses to leave an unanswered required question.
func Advance(c model.Cursor, questions []model.Question, answers model.AnswerStore, strict bool) (model.Cursor, error) {
	if c.Complete {
		return c, ErrSurveyComplete
	}
	if strict {
		q, ok := find(questions, c.Current)
		if !ok {
			return c, fmt.Errorf("%w: %s", ErrUnknownQuestion, c.Current)
		}
		if err := ValidateTransition(q, answers); err != nil {
			return c, err
		}
	}
	step, err := ResolveNext(c.Current, questions, answers)
	if err != nil {
		return c, err
	}
	return moveTo(c, step), nil
}

// Back pops the history stack. Rules only describe forward jumps, so the
// previous question is whatever was visited last.
func Back(c model.Cursor, settings model.SurveySettings) (model.Cursor, error) {
	if c.Complete {
		return c, ErrSurveyComplete
	}
	if !settings.AllowBack {
		return c, ErrBackNotAllowed
	}
	n := len(c.History)
	if n == 0 {
		return c, ErrNoHistory
	}
	history := make([]string, n-1)
	copy(history, c.History[:n-1])
	return model.Cursor{Current: c.History[n-1], History: history}, nil
}

// Skip leaves the current question unanswered and moves forward without
// validation. The returned store no longer holds an answer for it.
func Skip(c model.Cursor, questions []model.Question, answers model.AnswerStore, settings model.SurveySettings) (model.Cursor, model.AnswerStore, error) {
	if c.Complete {
		return c, answers, ErrSurveyComplete
	}
	if !settings.AllowSkip {
		return c, answers, ErrSkipNotAllowed
	}
	next := answers.Clone()
	next.Delete(c.Current)
	step, err := ResolveNext(c.Current, questions, next)
	if err != nil {
		return c, answers, err
	}
	return moveTo(c, step), next, nil
}

// Progress returns how far into the ordered list the cursor is, in [0, 1]
func Progress(questions []model.Question, c model.Cursor) float64 {
	if c.Complete {
		return 1
	}
	pos, ok := newIndex(questions)[c.Current]
	if !ok || len(questions) == 0 {
		return 0
	}
	return float64(pos) / float64(len(questions))
}

func moveTo(c model.Cursor, step Step) model.Cursor {
	history := make([]string, 0, len(c.History)+1)
	history = append(history, c.History...)
	history = append(history, c.Current)
	if step.Complete {
		return model.Cursor{History: history, Complete: true}
	}
	return model.Cursor{Current: step.QuestionID, History: history}
}

func find(questions []model.Question, id string) (model.Question, bool) {
	pos, ok := newIndex(questions)[id]
	if !ok {
		return model.Question{}, false
	}
	return questions[pos], true
}
