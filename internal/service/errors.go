package service

import (
	"errors"
	"fmt"

	"surveyflow/internal/flow"
)

var (
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrForbidden          = errors.New("forbidden")
	ErrNotPublished       = errors.New("survey has no published version")
	ErrPublishBlocked     = errors.New("survey has issues and cannot be published")
	ErrNotCurrentQuestion = errors.New("question is not the current question")
	ErrEditNotAllowed     = errors.New("editing a previous answer is not allowed")
	ErrInvalidInput       = errors.New("invalid input")
)

// PublishError carries the lint issues that blocked a publish
type PublishError struct {
	Issues flow.Issues
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%v: %d issue(s)", ErrPublishBlocked, len(e.Issues))
}

func (e *PublishError) Unwrap() error {
	return ErrPublishBlocked
}
