package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"surveyflow/internal/cache"
	"surveyflow/internal/flow"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

// SessionView is what a respondent sees after every action
type SessionView struct {
	SessionID string              `json:"sessionId"`
	SurveyID  string              `json:"surveyId"`
	Version   int                 `json:"version"`
	Status    model.SessionStatus `json:"status"`
	Complete  bool                `json:"complete"`
	Question  *model.Question     `json:"question,omitempty"` // nil once complete
	Answer    model.Value         `json:"answer,omitzero"`    // stored answer for the current question
	Progress  *float64            `json:"progress,omitempty"` // only when the survey shows progress
	CanGoBack bool                `json:"canGoBack"`
	CanSkip   bool                `json:"canSkip"`
}

// StartResponse is returned when a respondent opens a survey
type StartResponse struct {
	Token   string       `json:"token"`
	Session *SessionView `json:"session"`
}

// SessionService runs respondent sessions over published snapshots
type SessionService struct {
	surveys      *SurveyService
	sessionCache cache.SessionCache
	responseRepo repository.ResponseRepo
	progress     cache.ProgressBoard
	stats        cache.StatsCache
	authSvc      *AuthService
	broadcaster  Broadcaster
	ttl          time.Duration
	strict       bool
}

// NewSessionService creates a new session service. With strict set, the
// engine refuses to leave an unanswered required question.
func NewSessionService(
	surveys *SurveyService,
	sessionCache cache.SessionCache,
	responseRepo repository.ResponseRepo,
	progress cache.ProgressBoard,
	stats cache.StatsCache,
	authSvc *AuthService,
	ttl time.Duration,
	strict bool,
) *SessionService {
	return &SessionService{
		surveys:      surveys,
		sessionCache: sessionCache,
		responseRepo: responseRepo,
		progress:     progress,
		stats:        stats,
		authSvc:      authSvc,
		ttl:          ttl,
		strict:       strict,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start opens a session on the latest published version of a survey
func (s *SessionService) Start(ctx context.Context, surveyID string) (*StartResponse, error) {
	published, err := s.surveys.Published(ctx, surveyID, 0)
	if err != nil {
		return nil, err
	}
	cursor, err := flow.Start(published.Survey.Questions)
	if err != nil {
		return nil, err
	}

	sessionID := "s_" + uuid.New().String()
	token, err := s.authSvc.GenerateRespondentToken(surveyID, sessionID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		SurveyID:  surveyID,
		Version:   published.Version,
		Status:    model.SessionActive,
		Cursor:    cursor,
		Answers:   model.AnswerStore{},
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.count(s.stats.IncrStarted(ctx, surveyID, published.Version))
	s.count(s.stats.IncrReached(ctx, surveyID, published.Version, cursor.Current))
	s.track(ctx, session, &published.Survey)
	s.broadcast(EventSessionStarted, session, &published.Survey)

	return &StartResponse{
		Token:   token,
		Session: s.view(session, &published.Survey),
	}, nil
}

// Current returns the session's current question
func (s *SessionService) Current(ctx context.Context, sessionID string) (*SessionView, error) {
	session, survey, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(session, survey), nil
}

// SubmitAnswer stores an answer for the current question and moves
// forward. A zero value advances without changing the stored answer,
// which is how display_info questions are acknowledged.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, questionID string, value model.Value) (*SessionView, error) {
	session, survey, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Cursor.Complete {
		return nil, flow.ErrSurveyComplete
	}
	if questionID != session.Cursor.Current {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrNotCurrentQuestion, session.Cursor.Current, questionID)
	}
	q, ok := survey.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", flow.ErrUnknownQuestion, questionID)
	}

	answers := session.Answers.Clone()
	if !value.IsZero() {
		if err := flow.CheckAnswer(q, value); err != nil {
			return nil, err
		}
		if prev, ok := answers.Get(q.ID); ok && !survey.Settings.AllowEditAnswers && !prev.Equal(value) {
			return nil, ErrEditNotAllowed
		}
		answers.Set(q.ID, value)
	}

	cursor, err := flow.Advance(session.Cursor, survey.Questions, answers, s.strict)
	if err != nil {
		return nil, err
	}
	session.Answers = answers
	return s.moved(ctx, session, survey, cursor)
}

// Back returns to the previously visited question
func (s *SessionService) Back(ctx context.Context, sessionID string) (*SessionView, error) {
	session, survey, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cursor, err := flow.Back(session.Cursor, survey.Settings)
	if err != nil {
		return nil, err
	}
	return s.moved(ctx, session, survey, cursor)
}

// Skip leaves the current question unanswered and moves forward
func (s *SessionService) Skip(ctx context.Context, sessionID string) (*SessionView, error) {
	session, survey, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	skipped := session.Cursor.Current
	cursor, answers, err := flow.Skip(session.Cursor, survey.Questions, session.Answers, survey.Settings)
	if err != nil {
		return nil, err
	}
	s.count(s.stats.IncrSkipped(ctx, session.SurveyID, session.Version, skipped))
	session.Answers = answers
	return s.moved(ctx, session, survey, cursor)
}

func (s *SessionService) moved(ctx context.Context, session *model.Session, survey *model.Survey, cursor model.Cursor) (*SessionView, error) {
	forward := len(cursor.History) > len(session.Cursor.History)
	session.Cursor = cursor
	session.UpdatedAt = time.Now()

	if cursor.Complete {
		if err := s.complete(ctx, session); err != nil {
			return nil, err
		}
		return s.view(session, survey), nil
	}

	if err := s.sessionCache.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	if forward {
		s.count(s.stats.IncrReached(ctx, session.SurveyID, session.Version, cursor.Current))
	}
	s.track(ctx, session, survey)
	s.broadcast(EventSessionProgress, session, survey)
	return s.view(session, survey), nil
}

// complete persists the response. Answers on branches the respondent
// backed out of are dropped.
func (s *SessionService) complete(ctx context.Context, session *model.Session) error {
	path := session.Cursor.Path()
	now := time.Now()
	session.Status = model.SessionCompleted
	session.EndedAt = &now
	session.Answers = session.Answers.Retain(path)

	response := &model.Response{
		SurveyID:    session.SurveyID,
		Version:     session.Version,
		SessionID:   session.ID,
		Answers:     session.Answers,
		Path:        path,
		StartedAt:   session.StartedAt,
		CompletedAt: now,
	}
	if err := s.responseRepo.Create(ctx, response); err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}

	// Kept until the ttl so the respondent can still load the final state
	if err := s.sessionCache.Set(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.count(s.stats.IncrCompleted(ctx, session.SurveyID, session.Version))
	if err := s.progress.Remove(ctx, session.SurveyID, session.ID); err != nil {
		log.Printf("session %s: progress remove failed: %v", session.ID, err)
	}
	log.Printf("Session %s completed survey %s v%d (%d answers)", session.ID, session.SurveyID, session.Version, len(session.Answers))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAuthors(session.SurveyID, EventSessionCompleted, map[string]interface{}{
			"sessionId":  session.ID,
			"version":    session.Version,
			"responseId": response.ID,
			"path":       path,
		})
	}
	return nil
}

func (s *SessionService) load(ctx context.Context, sessionID string) (*model.Session, *model.Survey, error) {
	session, err := s.sessionCache.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	if session.Answers == nil {
		session.Answers = model.AnswerStore{}
	}
	published, err := s.surveys.Published(ctx, session.SurveyID, session.Version)
	if err != nil {
		if errors.Is(err, ErrNotPublished) {
			return nil, nil, fmt.Errorf("%w: version %d of survey %s is gone", ErrSessionNotFound, session.Version, session.SurveyID)
		}
		return nil, nil, err
	}
	return session, &published.Survey, nil
}

func (s *SessionService) view(session *model.Session, survey *model.Survey) *SessionView {
	v := &SessionView{
		SessionID: session.ID,
		SurveyID:  session.SurveyID,
		Version:   session.Version,
		Status:    session.Status,
		Complete:  session.Cursor.Complete,
	}
	if survey.Settings.ShowProgress {
		p := flow.Progress(survey.Questions, session.Cursor)
		v.Progress = &p
	}
	if session.Cursor.Complete {
		return v
	}
	if q, ok := survey.Question(session.Cursor.Current); ok {
		presented := shuffled(q, session.ID)
		v.Question = &presented
		v.Answer, _ = session.Answers.Get(q.ID)
	}
	v.CanGoBack = survey.Settings.AllowBack && len(session.Cursor.History) > 0
	v.CanSkip = survey.Settings.AllowSkip
	return v
}

// shuffled returns q with its options permuted when the question asks for
// it. The order is stable per session so reloads do not reshuffle.
func shuffled(q model.Question, sessionID string) model.Question {
	body, ok := q.Body.(model.ChoiceBody)
	if !ok || !body.Shuffle || len(body.Options) < 2 {
		return q
	}
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	h.Write([]byte(q.ID))
	rng := rand.New(rand.NewPCG(h.Sum64(), 0))

	options := append([]model.Option(nil), body.Options...)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	body.Options = options
	q.Body = body
	return q
}

func (s *SessionService) track(ctx context.Context, session *model.Session, survey *model.Survey) {
	p := flow.Progress(survey.Questions, session.Cursor)
	if err := s.progress.Update(ctx, session.SurveyID, session.ID, p); err != nil {
		log.Printf("session %s: progress update failed: %v", session.ID, err)
	}
}

func (s *SessionService) broadcast(msgType string, session *model.Session, survey *model.Survey) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToAuthors(session.SurveyID, msgType, map[string]interface{}{
		"sessionId":  session.ID,
		"version":    session.Version,
		"questionId": session.Cursor.Current,
		"progress":   flow.Progress(survey.Questions, session.Cursor),
	})
}

func (s *SessionService) count(err error) {
	if err != nil {
		log.Printf("stats update failed: %v", err)
	}
}
