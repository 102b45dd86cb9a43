package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

// SessionHandler handles respondent endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// AnswerRequest is the request body for answering the current question.
// A missing value acknowledges the question without answering it.
type AnswerRequest struct {
	QuestionID string      `json:"questionId"`
	Value      model.Value `json:"value"`
}

// Start handles POST /v1/surveys/{surveyId}/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sessionSvc.Start(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Current handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}
	view, err := h.sessionSvc.Current(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Answer handles POST /v1/sessions/{sessionId}/answers
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	view, err := h.sessionSvc.SubmitAnswer(r.Context(), sessionID, req.QuestionID, req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Back handles POST /v1/sessions/{sessionId}/back
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}
	view, err := h.sessionSvc.Back(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Skip handles POST /v1/sessions/{sessionId}/skip
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}
	view, err := h.sessionSvc.Skip(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ownSession checks the path session against the token's session
func (h *SessionHandler) ownSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := mux.Vars(r)["sessionId"]
	if sessionID != middleware.GetSessionID(r.Context()) {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return "", false
	}
	return sessionID, true
}
