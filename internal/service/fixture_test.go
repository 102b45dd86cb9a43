package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"surveyflow/internal/cache"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

type event struct {
	SurveyID string
	Type     string
	Payload  interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) BroadcastToAuthors(surveyID string, msgType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{SurveyID: surveyID, Type: msgType, Payload: payload})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	surveys   *SurveyService
	sessions  *SessionService
	auth      *AuthService
	responses repository.ResponseRepo
	stats     cache.StatsCache
	events    *recorder
	mr        *miniredis.Miniredis
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := &fixture{
		auth:      NewAuthService("test-secret", "admin", "pw"),
		responses: repository.NewMemoryResponseRepo(),
		stats:     cache.NewStatsCache(client),
		events:    &recorder{},
		mr:        mr,
	}
	progress := cache.NewProgressBoard(client, time.Hour)
	f.surveys = NewSurveyService(repository.NewMemorySurveyRepo(), f.responses, cache.NewSurveyCache(client), f.stats, progress)
	f.sessions = NewSessionService(f.surveys, cache.NewSessionCache(client, time.Hour), f.responses, progress, f.stats, f.auth, time.Hour, strict)
	f.surveys.SetBroadcaster(f.events)
	f.sessions.SetBroadcaster(f.events)
	return f
}

const author = "author_1"

func is(value string) model.Condition {
	return model.Condition{Operator: model.OpIs, Value: model.Text(value)}
}

// branching is Q1 (choice A/B) -> Q2 (text) -> Q3 (required rating),
// with "Q1 is B" jumping straight to Q3.
func branching(settings model.SurveySettings) SurveyInput {
	return SurveyInput{
		Name:     "Branching",
		Settings: settings,
		Questions: []model.Question{
			model.NewChoice("Q1", model.TypeSingleChoice, "Plan?", model.Opts("A", "B")...).
				WithLogic(model.When("Q3", is("B"))),
			model.NewQuestion("Q2", model.TypeText, "Why free?"),
			model.NewScale("Q3", model.TypeRating, "Rate us", 5).WithRequired(),
		},
	}
}

// published creates and publishes a survey, returning its id
func (f *fixture) published(t *testing.T, in SurveyInput) string {
	t.Helper()
	res, err := f.surveys.Create(context.Background(), author, in)
	require.NoError(t, err)
	_, err = f.surveys.Publish(context.Background(), author, res.Survey.ID)
	require.NoError(t, err)
	return res.Survey.ID
}

// completed lists the stored responses of a survey, newest first
func (f *fixture) completed(t *testing.T, surveyID string) []*model.Response {
	t.Helper()
	list, err := f.responses.ListBySurvey(context.Background(), surveyID, 0)
	require.NoError(t, err)
	return list
}
