package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyflow/internal/flow"
	"surveyflow/internal/model"
)

func TestSessionService_BranchingToCompletion(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	surveyID := f.published(t, branching(model.SurveySettings{ShowProgress: true}))

	start, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	require.NotNil(t, start.Session.Question)
	assert.Equal(t, "Q1", start.Session.Question.ID)
	assert.Equal(t, 1, start.Session.Version)
	require.NotNil(t, start.Session.Progress)
	assert.Zero(t, *start.Session.Progress)

	claims, err := f.auth.ValidateRespondentToken(start.Token)
	require.NoError(t, err)
	assert.Equal(t, start.Session.SessionID, claims.SessionID)
	assert.Equal(t, surveyID, claims.SurveyID)

	sid := start.Session.SessionID
	view, err := f.sessions.SubmitAnswer(ctx, sid, "Q1", model.Text("B"))
	require.NoError(t, err)
	assert.Equal(t, "Q3", view.Question.ID, "Q1 is B jumps over Q2")

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q3", model.Value{})
	require.ErrorIs(t, err, flow.ErrRequiredFieldMissing)
	var fieldErr *flow.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "Q3", fieldErr.QuestionID)

	view, err = f.sessions.SubmitAnswer(ctx, sid, "Q3", model.Number(4))
	require.NoError(t, err)
	assert.True(t, view.Complete)
	assert.Nil(t, view.Question)
	assert.Equal(t, model.SessionCompleted, view.Status)
	assert.Equal(t, 1.0, *view.Progress)

	responses := f.completed(t, surveyID)
	require.Len(t, responses, 1)
	resp := responses[0]
	assert.Equal(t, []string{"Q1", "Q3"}, resp.Path)
	assert.Equal(t, model.AnswerStore{"Q1": model.Text("B"), "Q3": model.Number(4)}, resp.Answers)
	assert.Equal(t, 1, resp.Version)

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q3", model.Number(5))
	assert.ErrorIs(t, err, flow.ErrSurveyComplete)

	final, err := f.sessions.Current(ctx, sid)
	require.NoError(t, err)
	assert.True(t, final.Complete)

	stats, err := f.stats.Get(ctx, surveyID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Started)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, map[string]int64{"Q1": 1, "Q3": 1}, stats.Reached)

	assert.Equal(t, []string{
		EventSurveyPublished,
		EventSessionStarted,
		EventSessionProgress,
		EventSessionCompleted,
	}, f.events.types())

	live, err := f.surveys.Live(ctx, author, surveyID, 10)
	require.NoError(t, err)
	assert.Empty(t, live, "completed sessions leave the progress board")
}

func TestSessionService_LenientNavigation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	surveyID := f.published(t, branching(model.SurveySettings{}))

	start, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	sid := start.Session.SessionID

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q1", model.Text("B"))
	require.NoError(t, err)
	view, err := f.sessions.SubmitAnswer(ctx, sid, "Q3", model.Value{})
	require.NoError(t, err)
	assert.True(t, view.Complete)
}

func TestSessionService_RejectsBadSubmissions(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	surveyID := f.published(t, branching(model.SurveySettings{}))

	start, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	sid := start.Session.SessionID

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q2", model.Text("hi"))
	assert.ErrorIs(t, err, ErrNotCurrentQuestion)

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q1", model.Text("C"))
	assert.ErrorIs(t, err, flow.ErrInvalidAnswer)

	_, err = f.sessions.Back(ctx, sid)
	assert.ErrorIs(t, err, flow.ErrBackNotAllowed)

	_, err = f.sessions.Skip(ctx, sid)
	assert.ErrorIs(t, err, flow.ErrSkipNotAllowed)

	_, err = f.sessions.Current(ctx, "s_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_BackAndEditPrunesAbandonedBranch(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	surveyID := f.published(t, branching(model.SurveySettings{AllowBack: true, AllowEditAnswers: true}))

	start, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	sid := start.Session.SessionID
	assert.False(t, start.Session.CanGoBack)

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q1", model.Text("A"))
	require.NoError(t, err)
	view, err := f.sessions.SubmitAnswer(ctx, sid, "Q2", model.Text("too pricey"))
	require.NoError(t, err)
	assert.Equal(t, "Q3", view.Question.ID)
	assert.True(t, view.CanGoBack)

	view, err = f.sessions.Back(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "Q2", view.Question.ID)
	assert.Equal(t, model.Text("too pricey"), view.Answer)

	view, err = f.sessions.Back(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "Q1", view.Question.ID)

	_, err = f.sessions.Back(ctx, sid)
	assert.ErrorIs(t, err, flow.ErrNoHistory)

	view, err = f.sessions.SubmitAnswer(ctx, sid, "Q1", model.Text("B"))
	require.NoError(t, err)
	assert.Equal(t, "Q3", view.Question.ID)

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q3", model.Number(2))
	require.NoError(t, err)

	responses := f.completed(t, surveyID)
	require.Len(t, responses, 1)
	resp := responses[0]
	assert.Equal(t, []string{"Q1", "Q3"}, resp.Path)
	assert.NotContains(t, resp.Answers, "Q2")
}

func TestSessionService_EditNotAllowed(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	surveyID := f.published(t, branching(model.SurveySettings{AllowBack: true}))

	start, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	sid := start.Session.SessionID

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q1", model.Text("A"))
	require.NoError(t, err)
	_, err = f.sessions.Back(ctx, sid)
	require.NoError(t, err)

	_, err = f.sessions.SubmitAnswer(ctx, sid, "Q1", model.Text("B"))
	assert.ErrorIs(t, err, ErrEditNotAllowed)

	view, err := f.sessions.SubmitAnswer(ctx, sid, "Q1", model.Text("A"))
	require.NoError(t, err, "resubmitting the same answer moves on")
	assert.Equal(t, "Q2", view.Question.ID)
}

func TestSessionService_Skip(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	surveyID := f.published(t, branching(model.SurveySettings{AllowSkip: true}))

	start, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	assert.True(t, start.Session.CanSkip)

	view, err := f.sessions.Skip(ctx, start.Session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Q2", view.Question.ID, "no answer means no rule matches")

	stats, err := f.stats.Get(ctx, surveyID, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Q1": 1}, stats.Skipped)
	assert.Equal(t, map[string]int64{"Q1": 1, "Q2": 1}, stats.Reached)
}

func TestSessionService_SessionsPinTheirVersion(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	surveyID := f.published(t, branching(model.SurveySettings{}))

	old, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)

	_, err = f.surveys.RemoveQuestion(ctx, author, surveyID, "Q2")
	require.NoError(t, err)
	_, err = f.surveys.Publish(ctx, author, surveyID)
	require.NoError(t, err)

	view, err := f.sessions.SubmitAnswer(ctx, old.Session.SessionID, "Q1", model.Text("A"))
	require.NoError(t, err)
	assert.Equal(t, "Q2", view.Question.ID, "v1 still has Q2")
	assert.Equal(t, 1, view.Version)

	fresh, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Session.Version)
	view, err = f.sessions.SubmitAnswer(ctx, fresh.Session.SessionID, "Q1", model.Text("A"))
	require.NoError(t, err)
	assert.Equal(t, "Q3", view.Question.ID)
}

func TestSessionService_DisplayInfoIsAcknowledged(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	surveyID := f.published(t, SurveyInput{
		Name: "Intro",
		Questions: []model.Question{
			model.NewQuestion("intro", model.TypeDisplayInfo, "Welcome").WithRequired(),
			model.NewQuestion("name", model.TypeText, "Name?"),
		},
	})

	start, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	sid := start.Session.SessionID

	_, err = f.sessions.SubmitAnswer(ctx, sid, "intro", model.Text("x"))
	assert.ErrorIs(t, err, flow.ErrInvalidAnswer)

	view, err := f.sessions.SubmitAnswer(ctx, sid, "intro", model.Value{})
	require.NoError(t, err)
	assert.Equal(t, "name", view.Question.ID)
}

func TestSessionService_ShuffleIsStablePerSession(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	choice := model.NewChoice("pick", model.TypeMultipleChoice, "Pick", model.Opts("a", "b", "c", "d", "e", "f")...)
	body := choice.Body.(model.ChoiceBody)
	body.Shuffle = true
	choice.Body = body
	surveyID := f.published(t, SurveyInput{Name: "Shuffle", Questions: []model.Question{choice}})

	start, err := f.sessions.Start(ctx, surveyID)
	require.NoError(t, err)
	first := start.Session.Question.Options()
	assert.ElementsMatch(t, model.Opts("a", "b", "c", "d", "e", "f"), first)

	again, err := f.sessions.Current(ctx, start.Session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first, again.Question.Options())
}

func TestSessionService_StartRequiresPublishedVersion(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	res, err := f.surveys.Create(ctx, author, branching(model.SurveySettings{}))
	require.NoError(t, err)

	_, err = f.sessions.Start(ctx, res.Survey.ID)
	assert.ErrorIs(t, err, ErrNotPublished)
}
