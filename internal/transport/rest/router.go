package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/handler"
	"surveyflow/internal/transport/rest/middleware"
	"surveyflow/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	SurveyService  *service.SurveyService
	SessionService *service.SessionService
	WSHub          *ws.Hub
	AllowedOrigins []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SurveyService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(middleware.CORS(c.AllowedOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/surveys/{surveyId}", wsHandler.SurveyWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Author routes (require author auth)
	authorRoutes := v1.NewRoute().Subrouter()
	authorRoutes.Use(authMW.RequireAuthor)

	authorRoutes.HandleFunc("/meta/operators", surveyHandler.Operators).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	authorRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/graph", surveyHandler.Graph).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/lint", surveyHandler.Lint).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/publish", surveyHandler.Publish).Methods("POST", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/questions", surveyHandler.InsertQuestion).Methods("POST", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/questions/reorder", surveyHandler.Reorder).Methods("POST", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/questions/{questionId}", surveyHandler.RemoveQuestion).Methods("DELETE", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/responses", surveyHandler.Responses).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/stats", surveyHandler.Stats).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/surveys/{surveyId}/live", surveyHandler.Live).Methods("GET", "OPTIONS")

	// Respondent routes (require session token)
	respondentRoutes := v1.NewRoute().Subrouter()
	respondentRoutes.Use(authMW.RequireRespondent)

	respondentRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Current).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/answers", sessionHandler.Answer).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/back", sessionHandler.Back).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/skip", sessionHandler.Skip).Methods("POST", "OPTIONS")

	return r
}
