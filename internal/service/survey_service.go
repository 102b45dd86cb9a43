package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"surveyflow/internal/cache"
	"surveyflow/internal/flow"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

// SurveyInput is the editable part of a survey
type SurveyInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Settings    model.SurveySettings `json:"settings"`
	Questions   []model.Question     `json:"questions"`
}

// SurveyResult is returned by every edit. Saving never blocks on issues.
type SurveyResult struct {
	Survey *model.Survey `json:"survey"`
	Issues flow.Issues   `json:"issues"`
}

// SurveyService handles authoring: CRUD, lint, graph and publishing
type SurveyService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	surveyCache  cache.SurveyCache
	stats        cache.StatsCache
	progress     cache.ProgressBoard
	broadcaster  Broadcaster
}

// NewSurveyService creates a new survey service
func NewSurveyService(
	surveyRepo repository.SurveyRepo,
	responseRepo repository.ResponseRepo,
	surveyCache cache.SurveyCache,
	stats cache.StatsCache,
	progress cache.ProgressBoard,
) *SurveyService {
	return &SurveyService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		surveyCache:  surveyCache,
		stats:        stats,
		progress:     progress,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SurveyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create stores a new draft for the author
func (s *SurveyService) Create(ctx context.Context, authorID string, in SurveyInput) (*SurveyResult, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	survey := &model.Survey{
		AuthorID:    authorID,
		Name:        in.Name,
		Description: in.Description,
		Settings:    in.Settings,
		Questions:   nonNil(in.Questions),
		Status:      model.SurveyDraft,
	}
	if _, err := s.surveyRepo.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}
	return result(survey), nil
}

// Get returns a survey owned by the author
func (s *SurveyService) Get(ctx context.Context, authorID, id string) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	if survey.AuthorID != authorID {
		return nil, ErrForbidden
	}
	return survey, nil
}

// List returns the author's surveys, most recently edited first
func (s *SurveyService) List(ctx context.Context, authorID string) ([]*model.Survey, error) {
	return s.surveyRepo.GetByAuthorID(ctx, authorID)
}

// Update replaces the editable fields of a draft
func (s *SurveyService) Update(ctx context.Context, authorID, id string, in SurveyInput) (*SurveyResult, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.edit(ctx, authorID, id, func(survey *model.Survey) error {
		survey.Name = in.Name
		survey.Description = in.Description
		survey.Settings = in.Settings
		survey.Questions = nonNil(in.Questions)
		return nil
	})
}

// Delete removes the draft. Published versions stay available to
// sessions already running on them.
func (s *SurveyService) Delete(ctx context.Context, authorID, id string) error {
	if _, err := s.Get(ctx, authorID, id); err != nil {
		return err
	}
	if err := s.surveyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	if err := s.surveyCache.Invalidate(ctx, id); err != nil {
		log.Printf("survey %s: cache invalidate failed: %v", id, err)
	}
	return nil
}

// Lint returns the authoring issues of the current draft
func (s *SurveyService) Lint(ctx context.Context, authorID, id string) (flow.Issues, error) {
	survey, err := s.Get(ctx, authorID, id)
	if err != nil {
		return nil, err
	}
	return nonNilIssues(flow.Lint(survey.Questions)), nil
}

// Graph builds the flow graph of the current draft
func (s *SurveyService) Graph(ctx context.Context, authorID, id string) (*flow.Graph, error) {
	survey, err := s.Get(ctx, authorID, id)
	if err != nil {
		return nil, err
	}
	graph := flow.BuildGraph(survey.Questions)
	return &graph, nil
}

// InsertQuestion adds q after afterID, or first when afterID is empty
func (s *SurveyService) InsertQuestion(ctx context.Context, authorID, id, afterID string, q model.Question) (*SurveyResult, error) {
	return s.edit(ctx, authorID, id, func(survey *model.Survey) error {
		questions, err := flow.InsertAfter(survey.Questions, afterID, q)
		if err != nil {
			return err
		}
		survey.Questions = questions
		return nil
	})
}

// ReorderQuestions moves the question at from to position to
func (s *SurveyService) ReorderQuestions(ctx context.Context, authorID, id string, from, to int) (*SurveyResult, error) {
	return s.edit(ctx, authorID, id, func(survey *model.Survey) error {
		questions, err := flow.Reorder(survey.Questions, from, to)
		if err != nil {
			return err
		}
		survey.Questions = questions
		return nil
	})
}

// RemoveQuestion deletes a question. Rules pointing at it are left for
// lint to report.
func (s *SurveyService) RemoveQuestion(ctx context.Context, authorID, id, questionID string) (*SurveyResult, error) {
	return s.edit(ctx, authorID, id, func(survey *model.Survey) error {
		questions, err := flow.Remove(survey.Questions, questionID)
		if err != nil {
			return err
		}
		survey.Questions = questions
		return nil
	})
}

func (s *SurveyService) edit(ctx context.Context, authorID, id string, apply func(*model.Survey) error) (*SurveyResult, error) {
	survey, err := s.Get(ctx, authorID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(survey); err != nil {
		return nil, err
	}
	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}
	return result(survey), nil
}

// Publish freezes the draft into the next version. Running sessions keep
// the version they started on.
func (s *SurveyService) Publish(ctx context.Context, authorID, id string) (*model.PublishedSurvey, error) {
	survey, err := s.Get(ctx, authorID, id)
	if err != nil {
		return nil, err
	}
	if issues := flow.Lint(survey.Questions); len(issues) > 0 {
		return nil, &PublishError{Issues: issues}
	}

	version := survey.Version + 1
	snapshot := *survey
	snapshot.Version = version
	snapshot.Status = model.SurveyPublished
	snapshot.Questions = append([]model.Question(nil), survey.Questions...)

	published := &model.PublishedSurvey{
		SurveyID:    id,
		Version:     version,
		Survey:      snapshot,
		PublishedAt: time.Now(),
	}
	if err := s.surveyRepo.PublishVersion(ctx, published); err != nil {
		return nil, fmt.Errorf("failed to publish survey: %w", err)
	}

	survey.Version = version
	survey.Status = model.SurveyPublished
	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}

	if err := s.surveyCache.SetPublished(ctx, published); err != nil {
		log.Printf("survey %s: cache snapshot v%d failed: %v", id, version, err)
	}
	if err := s.surveyCache.SetLatest(ctx, id, version); err != nil {
		log.Printf("survey %s: cache latest v%d failed: %v", id, version, err)
	}
	log.Printf("Survey %s published as v%d", id, version)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAuthors(id, EventSurveyPublished, map[string]interface{}{
			"surveyId": id,
			"version":  version,
		})
	}
	return published, nil
}

// Published returns a published snapshot. version 0 means the latest one.
// Redis is consulted first; misses and cache errors fall through to MongoDB.
func (s *SurveyService) Published(ctx context.Context, surveyID string, version int) (*model.PublishedSurvey, error) {
	if version == 0 {
		latest, err := s.latestVersion(ctx, surveyID)
		if err != nil {
			return nil, err
		}
		version = latest
	}

	published, err := s.surveyCache.GetPublished(ctx, surveyID, version)
	if err != nil {
		log.Printf("survey %s: cache read v%d failed: %v", surveyID, version, err)
	}
	if published != nil {
		return published, nil
	}

	published, err = s.surveyRepo.GetPublished(ctx, surveyID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get published survey: %w", err)
	}
	if published == nil {
		return nil, ErrNotPublished
	}
	if err := s.surveyCache.SetPublished(ctx, published); err != nil {
		log.Printf("survey %s: cache snapshot v%d failed: %v", surveyID, version, err)
	}
	return published, nil
}

func (s *SurveyService) latestVersion(ctx context.Context, surveyID string) (int, error) {
	version, err := s.surveyCache.GetLatest(ctx, surveyID)
	if err != nil {
		log.Printf("survey %s: cache latest read failed: %v", surveyID, err)
	}
	if version > 0 {
		return version, nil
	}

	published, err := s.surveyRepo.GetLatestPublished(ctx, surveyID)
	if err != nil {
		return 0, fmt.Errorf("failed to get published survey: %w", err)
	}
	if published == nil {
		return 0, ErrNotPublished
	}
	if err := s.surveyCache.SetPublished(ctx, published); err != nil {
		log.Printf("survey %s: cache snapshot v%d failed: %v", surveyID, published.Version, err)
	}
	if err := s.surveyCache.SetLatest(ctx, surveyID, published.Version); err != nil {
		log.Printf("survey %s: cache latest failed: %v", surveyID, err)
	}
	return published.Version, nil
}

// Responses lists completed responses of the author's survey
func (s *SurveyService) Responses(ctx context.Context, authorID, id string, limit int64) ([]*model.Response, error) {
	if _, err := s.Get(ctx, authorID, id); err != nil {
		return nil, err
	}
	return s.responseRepo.ListBySurvey(ctx, id, limit)
}

// Stats returns the funnel counters of a published version, 0 for the latest
func (s *SurveyService) Stats(ctx context.Context, authorID, id string, version int) (*cache.FlowStats, error) {
	survey, err := s.Get(ctx, authorID, id)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		version = survey.Version
	}
	if version == 0 {
		return nil, ErrNotPublished
	}
	return s.stats.Get(ctx, id, version)
}

// Live lists sessions currently running on the survey
func (s *SurveyService) Live(ctx context.Context, authorID, id string, limit int) ([]cache.ProgressEntry, error) {
	if _, err := s.Get(ctx, authorID, id); err != nil {
		return nil, err
	}
	return s.progress.Active(ctx, id, limit)
}

func result(survey *model.Survey) *SurveyResult {
	return &SurveyResult{
		Survey: survey,
		Issues: nonNilIssues(flow.Lint(survey.Questions)),
	}
}

func nonNil(questions []model.Question) []model.Question {
	if questions == nil {
		return []model.Question{}
	}
	return questions
}

func nonNilIssues(issues flow.Issues) flow.Issues {
	if issues == nil {
		return flow.Issues{}
	}
	return issues
}
