package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"surveyflow/internal/flow"
	"surveyflow/internal/model"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

// SurveyHandler handles authoring endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// InsertQuestionRequest is the request body for adding a question
type InsertQuestionRequest struct {
	AfterID  string         `json:"afterId"` // Empty inserts at the front
	Question model.Question `json:"question"`
}

// ReorderRequest is the request body for moving a question
type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// OperatorInfo lists the operators a question type supports
type OperatorInfo struct {
	Type      model.QuestionType `json:"type"`
	Operators []model.Operator   `json:"operators"`
}

// Create handles POST /v1/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.SurveyInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.surveySvc.Create(r.Context(), middleware.GetAuthorID(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveySvc.List(r.Context(), middleware.GetAuthorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"surveys": surveys})
}

// Get handles GET /v1/surveys/{surveyId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.Get(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Update handles PUT /v1/surveys/{surveyId}
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.SurveyInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.surveySvc.Update(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Delete handles DELETE /v1/surveys/{surveyId}
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.surveySvc.Delete(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Graph handles GET /v1/surveys/{surveyId}/graph
func (h *SurveyHandler) Graph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.surveySvc.Graph(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

// Lint handles GET /v1/surveys/{surveyId}/lint
func (h *SurveyHandler) Lint(w http.ResponseWriter, r *http.Request) {
	issues, err := h.surveySvc.Lint(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"issues": issues})
}

// Publish handles POST /v1/surveys/{surveyId}/publish
func (h *SurveyHandler) Publish(w http.ResponseWriter, r *http.Request) {
	published, err := h.surveySvc.Publish(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, published)
}

// InsertQuestion handles POST /v1/surveys/{surveyId}/questions
func (h *SurveyHandler) InsertQuestion(w http.ResponseWriter, r *http.Request) {
	var req InsertQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.surveySvc.InsertQuestion(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"], req.AfterID, req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Reorder handles POST /v1/surveys/{surveyId}/questions/reorder
func (h *SurveyHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.surveySvc.ReorderQuestions(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"], req.From, req.To)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RemoveQuestion handles DELETE /v1/surveys/{surveyId}/questions/{questionId}
func (h *SurveyHandler) RemoveQuestion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := h.surveySvc.RemoveQuestion(r.Context(), middleware.GetAuthorID(r.Context()), vars["surveyId"], vars["questionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Responses handles GET /v1/surveys/{surveyId}/responses?limit=
func (h *SurveyHandler) Responses(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	responses, err := h.surveySvc.Responses(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"], limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": responses})
}

// Stats handles GET /v1/surveys/{surveyId}/stats?version=
func (h *SurveyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	version, _ := strconv.Atoi(r.URL.Query().Get("version"))
	stats, err := h.surveySvc.Stats(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"], version)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Live handles GET /v1/surveys/{surveyId}/live
func (h *SurveyHandler) Live(w http.ResponseWriter, r *http.Request) {
	entries, err := h.surveySvc.Live(r.Context(), middleware.GetAuthorID(r.Context()), mux.Vars(r)["surveyId"], 100)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": entries})
}

// Operators handles GET /v1/meta/operators
func (h *SurveyHandler) Operators(w http.ResponseWriter, r *http.Request) {
	out := make([]OperatorInfo, 0, len(model.QuestionTypes))
	for _, t := range model.QuestionTypes {
		ops := flow.OperatorsFor(t)
		if ops == nil {
			ops = []model.Operator{}
		}
		out = append(out, OperatorInfo{Type: t, Operators: ops})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"types": out})
}
