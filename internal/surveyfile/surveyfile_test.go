package surveyfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyflow/internal/model"
)

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatOf("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatOf("a/b.yml"))
	assert.Equal(t, FormatYAML, FormatOf("a/b"))
}

func TestLoad_YAML(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "plans.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Plan feedback", s.Name)
	assert.True(t, s.Settings.AllowBack)
	require.Len(t, s.Questions, 5)

	q1 := s.Questions[0]
	assert.True(t, q1.Required)
	assert.Equal(t, []model.Option{{ID: "free", Label: "Free"}, {ID: "pro", Label: "Pro"}}, q1.Options())
	require.Len(t, q1.Logic, 1)
	assert.Equal(t, model.Text("pro"), q1.Logic[0].If[0].Value)
	assert.Equal(t, "Q3", q1.Logic[0].Then.GoToQuestionID)

	q3 := s.Questions[2]
	assert.Equal(t, 10, q3.Scale())
	assert.Equal(t, model.Number(7), q3.Logic[0].If[0].Value)
	assert.True(t, q3.Logic[1].If[0].Value.IsZero())
}

func TestLoad_JSON(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "plans.json"))
	require.NoError(t, err)
	require.Len(t, s.Questions, 3)
	assert.Equal(t, model.DefaultScale, s.Questions[2].Scale())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read survey file")

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: x\nquestions:\n  - {id: Q1, type: slider, label: x}\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, `unknown question type "slider"`)

	typo := filepath.Join(dir, "typo.json")
	require.NoError(t, os.WriteFile(typo, []byte(`{"name": "x", "qeustions": []}`), 0o644))
	_, err = Load(typo)
	assert.ErrorContains(t, err, "qeustions")
}

func TestParse_EmptyQuestions(t *testing.T) {
	s, err := Parse([]byte("name: empty\n"), FormatYAML)
	require.NoError(t, err)
	assert.NotNil(t, s.Questions)
	assert.Empty(t, s.Questions)
}
