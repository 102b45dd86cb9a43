package model

import "time"

// Cursor is the traversal state of one respondent
type Cursor struct {
	Current  string   `json:"current,omitempty"` // Empty once complete
	History  []string `json:"history,omitempty"` // Previously visited question ids, last on top
	Complete bool     `json:"complete"`
}

// Path returns the visited question ids including the current one
func (c Cursor) Path() []string {
	path := make([]string, 0, len(c.History)+1)
	path = append(path, c.History...)
	if c.Current != "" {
		path = append(path, c.Current)
	}
	return path
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Session is a respondent's in-progress run over a published survey
type Session struct {
	ID        string        `json:"id"`
	SurveyID  string        `json:"surveyId"`
	Version   int           `json:"version"`
	Status    SessionStatus `json:"status"`
	Cursor    Cursor        `json:"cursor"`
	Answers   AnswerStore   `json:"answers"`
	StartedAt time.Time     `json:"startedAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	EndedAt   *time.Time    `json:"endedAt,omitempty"`
}
