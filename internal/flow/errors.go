package flow

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownQuestion      = errors.New("unknown question")
	ErrDuplicateQuestion    = errors.New("duplicate question id")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrEmptySurvey          = errors.New("survey has no questions")
	ErrRequiredFieldMissing = errors.New("required field missing")
	ErrInvalidAnswer        = errors.New("invalid answer")
	ErrSurveyComplete       = errors.New("survey already complete")
	ErrBackNotAllowed       = errors.New("going back is not allowed")
	ErrNoHistory            = errors.New("no previous question")
	ErrSkipNotAllowed       = errors.New("skipping is not allowed")

	// Authoring-time issue classes, see Issue
	ErrLogic        = errors.New("logic error")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrSchema       = errors.New("invalid survey schema")
)

// FieldError is a recoverable, respondent-facing error keyed by question id
type FieldError struct {
	QuestionID string `json:"questionId"`
	Reason     string `json:"reason"`
	Err        error  `json:"-"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
