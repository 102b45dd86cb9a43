package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"surveyflow/internal/model"
)

// Memory repositories back local runs without MongoDB and the service tests.
// Values are stored by copy so callers cannot mutate stored state.

type memorySurveyRepo struct {
	mu       sync.RWMutex
	surveys  map[string]model.Survey
	versions map[string]model.PublishedSurvey
}

// NewMemorySurveyRepo creates an in-process survey repository
func NewMemorySurveyRepo() SurveyRepo {
	return &memorySurveyRepo{
		surveys:  make(map[string]model.Survey),
		versions: make(map[string]model.PublishedSurvey),
	}
}

func (r *memorySurveyRepo) Create(_ context.Context, survey *model.Survey) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if survey.ID == "" {
		survey.ID = primitive.NewObjectID().Hex()
	}
	if _, ok := r.surveys[survey.ID]; ok {
		return "", fmt.Errorf("survey %s already exists", survey.ID)
	}
	now := time.Now()
	survey.CreatedAt = now
	survey.UpdatedAt = now
	if survey.Status == "" {
		survey.Status = model.SurveyDraft
	}
	r.surveys[survey.ID] = copySurvey(*survey)
	return survey.ID, nil
}

func (r *memorySurveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	s = copySurvey(s)
	return &s, nil
}

func (r *memorySurveyRepo) GetByAuthorID(_ context.Context, authorID string) ([]*model.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	surveys := []*model.Survey{}
	for _, s := range r.surveys {
		if s.AuthorID == authorID {
			s = copySurvey(s)
			surveys = append(surveys, &s)
		}
	}
	sort.Slice(surveys, func(i, j int) bool {
		return surveys[i].UpdatedAt.After(surveys[j].UpdatedAt)
	})
	return surveys, nil
}

func (r *memorySurveyRepo) Update(_ context.Context, survey *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[survey.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	survey.UpdatedAt = time.Now()
	r.surveys[survey.ID] = copySurvey(*survey)
	return nil
}

func (r *memorySurveyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surveys, id)
	return nil
}

func (r *memorySurveyRepo) PublishVersion(_ context.Context, published *model.PublishedSurvey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	published.ID = fmt.Sprintf("%s:v%d", published.SurveyID, published.Version)
	if _, ok := r.versions[published.ID]; ok {
		return ErrVersionExists
	}
	if published.PublishedAt.IsZero() {
		published.PublishedAt = time.Now()
	}
	p := *published
	p.Survey = copySurvey(p.Survey)
	r.versions[p.ID] = p
	return nil
}

func (r *memorySurveyRepo) GetPublished(_ context.Context, surveyID string, version int) (*model.PublishedSurvey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.versions[fmt.Sprintf("%s:v%d", surveyID, version)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memorySurveyRepo) GetLatestPublished(_ context.Context, surveyID string) (*model.PublishedSurvey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *model.PublishedSurvey
	for _, p := range r.versions {
		if p.SurveyID == surveyID && (latest == nil || p.Version > latest.Version) {
			p := p
			latest = &p
		}
	}
	return latest, nil
}

func (r *memorySurveyRepo) EnsureIndexes(context.Context) error { return nil }

// copySurvey detaches the question list; questions themselves are values
func copySurvey(s model.Survey) model.Survey {
	s.Questions = append([]model.Question(nil), s.Questions...)
	return s
}

type memoryResponseRepo struct {
	mu        sync.RWMutex
	responses []model.Response
}

// NewMemoryResponseRepo creates an in-process response repository
func NewMemoryResponseRepo() ResponseRepo {
	return &memoryResponseRepo{}
}

func (r *memoryResponseRepo) Create(_ context.Context, response *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.responses {
		if existing.SessionID == response.SessionID {
			return fmt.Errorf("response for session %s already exists", response.SessionID)
		}
	}
	if response.ID == "" {
		response.ID = primitive.NewObjectID().Hex()
	}
	if response.CompletedAt.IsZero() {
		response.CompletedAt = time.Now()
	}
	r.responses = append(r.responses, *response)
	return nil
}

func (r *memoryResponseRepo) GetBySessionID(_ context.Context, sessionID string) (*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, resp := range r.responses {
		if resp.SessionID == sessionID {
			return &resp, nil
		}
	}
	return nil, nil
}

func (r *memoryResponseRepo) ListBySurvey(_ context.Context, surveyID string, limit int64) ([]*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	responses := []*model.Response{}
	for i := len(r.responses) - 1; i >= 0; i-- {
		if r.responses[i].SurveyID != surveyID {
			continue
		}
		resp := r.responses[i]
		responses = append(responses, &resp)
		if limit > 0 && int64(len(responses)) == limit {
			break
		}
	}
	return responses, nil
}

func (r *memoryResponseRepo) CountBySurvey(_ context.Context, surveyID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

func (r *memoryResponseRepo) EnsureIndexes(context.Context) error { return nil }
