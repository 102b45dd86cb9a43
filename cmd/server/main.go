package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"surveyflow/internal/app"
	"surveyflow/internal/config"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()
	log.Printf("Config: storage=%s db=%s redis=%s sessionTtl=%s strict=%t",
		cfg.Storage, cfg.MongoDB, cfg.RedisAddr(), cfg.SessionTTL, cfg.StrictNavigation)

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to start: ", err)
	}
	defer a.Close(context.Background())
	log.Println("WebSocket hub started")

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: a.Router(),
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Printf("Author auth: username=%s", cfg.AuthorUsername)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/surveys")
		log.Println("  POST /v1/surveys/{surveyId}/publish")
		log.Println("  POST /v1/surveys/{surveyId}/sessions")
		log.Println("  POST /v1/sessions/{sessionId}/answers")
		log.Println("  GET  /v1/surveys/{surveyId}/responses")
		log.Println("  WS   /v1/ws/surveys/{surveyId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
