package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"surveyflow/internal/flow"
	"surveyflow/internal/model"
	"surveyflow/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service and engine errors to HTTP responses
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErr *flow.FieldError
	if errors.As(err, &fieldErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      err.Error(),
			"questionId": fieldErr.QuestionID,
			"reason":     fieldErr.Reason,
		})
		return
	}

	var pubErr *service.PublishError
	if errors.As(err, &pubErr) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":  err.Error(),
			"issues": pubErr.Issues,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrSurveyNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrNotPublished),
		errors.Is(err, flow.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, flow.ErrDuplicateQuestion),
		errors.Is(err, flow.ErrIndexOutOfRange),
		errors.Is(err, flow.ErrEmptySurvey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotCurrentQuestion),
		errors.Is(err, service.ErrEditNotAllowed),
		errors.Is(err, flow.ErrSurveyComplete),
		errors.Is(err, flow.ErrBackNotAllowed),
		errors.Is(err, flow.ErrSkipNotAllowed),
		errors.Is(err, flow.ErrNoHistory):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
