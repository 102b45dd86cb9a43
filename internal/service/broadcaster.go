package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToAuthors(surveyID string, msgType string, payload interface{})
}

// Live event types sent to authors watching a survey
const (
	EventSessionStarted   = "session_started"
	EventSessionProgress  = "session_progress"
	EventSessionCompleted = "session_completed"
	EventSurveyPublished  = "survey_published"
)
