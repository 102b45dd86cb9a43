package model

import "time"

// AnswerStore maps question id to the respondent's answer.
// One store belongs to one respondent session.
type AnswerStore map[string]Value

// Get returns the answer for a question, if any
func (s AnswerStore) Get(questionID string) (Value, bool) {
	v, ok := s[questionID]
	if !ok || v.IsZero() {
		return Value{}, false
	}
	return v, true
}

// HasValue reports whether a non-empty answer is stored
func (s AnswerStore) HasValue(questionID string) bool {
	v, ok := s.Get(questionID)
	return ok && !v.IsEmpty()
}

// Set stores an answer. Storing the zero Value removes it.
func (s AnswerStore) Set(questionID string, v Value) {
	if v.IsZero() {
		delete(s, questionID)
		return
	}
	s[questionID] = v
}

func (s AnswerStore) Delete(questionID string) {
	delete(s, questionID)
}

// Clone returns an independent copy
func (s AnswerStore) Clone() AnswerStore {
	out := make(AnswerStore, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Retain returns a copy holding only the given question ids
func (s AnswerStore) Retain(questionIDs []string) AnswerStore {
	out := make(AnswerStore, len(questionIDs))
	for _, id := range questionIDs {
		if v, ok := s[id]; ok {
			out[id] = v
		}
	}
	return out
}

// Response is a completed respondent session
type Response struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	SurveyID    string      `json:"surveyId" bson:"surveyId"`
	Version     int         `json:"version" bson:"version"`
	SessionID   string      `json:"sessionId" bson:"sessionId"`
	Answers     AnswerStore `json:"answers" bson:"answers"`
	Path        []string    `json:"path" bson:"path"` // Visited question ids in order
	StartedAt   time.Time   `json:"startedAt" bson:"startedAt"`
	CompletedAt time.Time   `json:"completedAt" bson:"completedAt"`
}
