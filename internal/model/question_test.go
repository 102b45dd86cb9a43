package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

const surveyJSON = `{
	"id": "s1",
	"name": "Onboarding",
	"settings": {"allowBack": true},
	"questions": [
		{"id": "Q1", "type": "single_answer_choice", "label": "Plan?", "required": true,
		 "options": [{"id": "A", "label": "Free"}, {"id": "B", "label": "Pro"}], "shuffle": true,
		 "logic": [{"if": [{"operator": "is", "value": "B"}], "then": {"goToQuestionId": "Q3"}}]},
		{"id": "Q2", "type": "rating", "label": "Rate us"},
		{"id": "Q3", "type": "matrix", "label": "Grid", "rows": ["r1"], "columns": ["c1", "c2"]},
		{"id": "Q4", "type": "contact", "label": "Reach you",
		 "contactFields": [{"id": "email", "label": "Email", "type": "email"}]},
		{"id": "Q5", "type": "display_info", "label": "Thanks"}
	]
}`

func TestQuestion_UnmarshalJSONVariants(t *testing.T) {
	var s Survey
	require.NoError(t, json.Unmarshal([]byte(surveyJSON), &s))
	require.Len(t, s.Questions, 5)
	assert.True(t, s.Settings.AllowBack)

	q1 := s.Questions[0]
	assert.Equal(t, TypeSingleChoice, q1.Type)
	assert.True(t, q1.IsRequired())
	assert.Equal(t, ChoiceBody{Options: []Option{{ID: "A", Label: "Free"}, {ID: "B", Label: "Pro"}}, Shuffle: true}, q1.Body)
	require.Len(t, q1.Logic, 1)
	assert.Equal(t, "Q3", q1.Logic[0].Then.GoToQuestionID)
	assert.Equal(t, Text("B"), q1.Logic[0].If[0].Value)
	assert.Equal(t, "Q1", q1.Logic[0].If[0].Source("Q1"))

	assert.Equal(t, ScaleBody{Scale: DefaultScale}, s.Questions[1].Body)
	assert.Equal(t, MatrixBody{Rows: []string{"r1"}, Columns: []string{"c1", "c2"}}, s.Questions[2].Body)
	assert.Equal(t, ContactBody{Fields: []ContactField{{ID: "email", Label: "Email", Type: "email"}}}, s.Questions[3].Body)
	assert.Equal(t, InfoBody{}, s.Questions[4].Body)
}

func TestQuestion_UnknownType(t *testing.T) {
	var q Question
	err := json.Unmarshal([]byte(`{"id": "x", "type": "slider", "label": "?"}`), &q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slider")
}

func TestQuestion_MarshalJSONFlattensBody(t *testing.T) {
	q := NewScale("nps", TypeNPS, "Recommend?", 10).WithRequired()
	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"nps","type":"nps","label":"Recommend?","required":true,"scale":10}`, string(data))
}

func TestQuestion_BSON(t *testing.T) {
	var s Survey
	require.NoError(t, json.Unmarshal([]byte(surveyJSON), &s))

	data, err := bson.Marshal(s)
	require.NoError(t, err)
	var decoded Survey
	require.NoError(t, bson.Unmarshal(data, &decoded))
	assert.Equal(t, s.Questions, decoded.Questions)
}

func TestQuestion_YAML(t *testing.T) {
	src := `
name: Feedback
questions:
  - id: score
    type: nps
    label: How likely are you to recommend us?
    scale: 10
    logic:
      - if:
          - operator: lower_than
            value: 7
        then:
          goToQuestionId: why
  - id: why
    type: text
    label: What went wrong?
`
	var s Survey
	require.NoError(t, yaml.Unmarshal([]byte(src), &s))
	require.Len(t, s.Questions, 2)
	assert.Equal(t, 10, s.Questions[0].Scale())
	assert.Equal(t, Number(7), s.Questions[0].Logic[0].If[0].Value)
	assert.Equal(t, TextBody{}, s.Questions[1].Body)
}

func TestQuestion_WithLogicDoesNotAlias(t *testing.T) {
	base := NewQuestion("a", TypeText, "A").WithLogic(When("b"))
	x := base.WithLogic(When("c"))
	y := base.WithLogic(When("d"))
	assert.Equal(t, "c", x.Logic[1].Then.GoToQuestionID)
	assert.Equal(t, "d", y.Logic[1].Then.GoToQuestionID)
	assert.Len(t, base.Logic, 1)
}

func TestAnswerStore(t *testing.T) {
	s := AnswerStore{}
	s.Set("a", Text("x"))
	s.Set("b", Number(1))
	s.Set("a", Value{})
	assert.False(t, s.HasValue("a"))
	assert.True(t, s.HasValue("b"))

	clone := s.Clone()
	clone.Delete("b")
	assert.True(t, s.HasValue("b"))

	s.Set("c", Set("z"))
	assert.Equal(t, AnswerStore{"c": Set("z")}, s.Retain([]string{"c", "missing"}))
}
