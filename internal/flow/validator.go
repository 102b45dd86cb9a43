package flow

import "surveyflow/internal/model"

// ValidateTransition reports whether the respondent may leave q. A required
// question needs a non-empty answer, using the same emptiness rule as the
// has_any_value operator.
func ValidateTransition(q model.Question, answers model.AnswerStore) error {
	if !q.IsRequired() || answers.HasValue(q.ID) {
		return nil
	}
	return &FieldError{
		QuestionID: q.ID,
		Reason:     "an answer is required",
		Err:        ErrRequiredFieldMissing,
	}
}
