// Package app wires storage, caches, services and transport into one
// container shared by the server and the command line tools.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/cache"
	"surveyflow/internal/config"
	"surveyflow/internal/repository"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest"
	"surveyflow/internal/transport/ws"
)

type App struct {
	Config *config.Config

	SurveyRepo   repository.SurveyRepo
	ResponseRepo repository.ResponseRepo

	SessionCache cache.SessionCache
	SurveyCache  cache.SurveyCache
	Progress     cache.ProgressBoard
	Stats        cache.StatsCache

	AuthService    *service.AuthService
	SurveyService  *service.SurveyService
	SessionService *service.SessionService
	WSHub          *ws.Hub

	closers []func(context.Context) error
}

// New connects the configured storage and builds every service. The
// caller owns the result and must Close it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var rdb *redis.Client
	switch cfg.Storage {
	case config.StorageMemory:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start in-process redis: %w", err)
		}
		a.onClose(func(context.Context) error { mr.Close(); return nil })
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		a.SurveyRepo = repository.NewMemorySurveyRepo()
		a.ResponseRepo = repository.NewMemoryResponseRepo()
		log.Println("Using in-memory storage")

	case config.StorageMongo, "":
		db, err := a.connectMongo(ctx, cfg)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.SurveyRepo = repository.NewSurveyRepo(db)
		a.ResponseRepo = repository.NewResponseRepo(db)
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})

	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
	a.onClose(func(context.Context) error { return rdb.Close() })

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Println("Connected to Redis")

	if err := a.SurveyRepo.EnsureIndexes(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to ensure survey indexes: %w", err)
	}
	if err := a.ResponseRepo.EnsureIndexes(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to ensure response indexes: %w", err)
	}

	a.SessionCache = cache.NewSessionCache(rdb, cfg.SessionTTL)
	a.SurveyCache = cache.NewSurveyCache(rdb)
	a.Progress = cache.NewProgressBoard(rdb, cfg.SessionTTL)
	a.Stats = cache.NewStatsCache(rdb)

	a.WSHub = ws.NewHub()
	a.onClose(func(context.Context) error { a.WSHub.Stop(); return nil })

	a.AuthService = service.NewAuthService(cfg.JWTSecret, cfg.AuthorUsername, cfg.AuthorPassword)
	a.SurveyService = service.NewSurveyService(a.SurveyRepo, a.ResponseRepo, a.SurveyCache, a.Stats, a.Progress)
	a.SessionService = service.NewSessionService(
		a.SurveyService, a.SessionCache, a.ResponseRepo, a.Progress, a.Stats,
		a.AuthService, cfg.SessionTTL, cfg.StrictNavigation,
	)

	// Inject broadcaster (the hub implements service.Broadcaster)
	a.SurveyService.SetBroadcaster(a.WSHub)
	a.SessionService.SetBroadcaster(a.WSHub)

	return a, nil
}

func (a *App) connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.onClose(client.Disconnect)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")
	return client.Database(cfg.MongoDB), nil
}

// Router returns the HTTP handler for the REST and WebSocket API
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService:    a.AuthService,
		SurveyService:  a.SurveyService,
		SessionService: a.SessionService,
		WSHub:          a.WSHub,
		AllowedOrigins: a.Config.AllowedOrigins,
	})
}

// Close releases connections in reverse order of acquisition
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}
