package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyflow/internal/model"
)

func TestBuildGraph_NoRules(t *testing.T) {
	questions := []model.Question{textQ("a"), ratingQ("b", 5), textQ("c"), textQ("d")}

	g := BuildGraph(questions)
	require.Len(t, g.Nodes, 4)
	require.Len(t, g.Edges, 3)
	assert.Empty(t, g.Excluded)

	for i, n := range g.Nodes {
		assert.Equal(t, questions[i].ID, n.ID)
		assert.Equal(t, i, n.Position)
	}
	for _, e := range g.Edges {
		assert.Equal(t, EdgeDefault, e.Kind)
		assert.Equal(t, -1, e.Rule)
	}
	assert.Equal(t, "b", g.Edges[0].Target)
	assert.Equal(t, "a->b", g.Edges[0].ID)
}

func TestBuildGraph_SingleQuestion(t *testing.T) {
	g := BuildGraph([]model.Question{textQ("only")})
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
}

func TestBuildGraph_LogicEdges(t *testing.T) {
	q1 := choiceQ("Q1", model.TypeSingleChoice, "A", "B").WithLogic(
		model.When("Q3", cond(model.OpIs, model.Text("B"))),
		model.When("Q3",
			cond(model.OpHasAnyValue, model.Value{}),
			condOn("Q0", model.OpGreaterThan, model.Number(3)),
		),
		model.When("Q9", cond(model.OpIs, model.Text("A"))),
		model.When("Q1"),
	)
	questions := []model.Question{ratingQ("Q0", 5), q1, textQ("Q2"), textQ("Q3")}

	g := BuildGraph(questions)
	var logic []Edge
	for _, e := range g.Edges {
		if e.Kind == EdgeLogic {
			logic = append(logic, e)
		}
	}
	require.Len(t, logic, 2)
	assert.Equal(t, "is B", logic[0].Label)
	assert.Equal(t, "Q1#0->Q3", logic[0].ID)
	assert.Equal(t, "has_any_value AND Q0 greater_than 3", logic[1].Label)
	assert.Equal(t, 1, logic[1].Rule)

	require.Len(t, g.Excluded, 2)
	assert.Equal(t, 2, g.Excluded[0].Rule)
	assert.Equal(t, 3, g.Excluded[1].Rule)
	assert.ErrorIs(t, g.Excluded.Err(), ErrLogic)

	assert.Len(t, g.Edges, 3+2)
}

func TestBuildGraph_IsStable(t *testing.T) {
	questions := []model.Question{
		textQ("a").WithLogic(model.When("c"), model.When("b", cond(model.OpHasAnyValue, model.Value{}))),
		textQ("b"),
		textQ("c"),
	}
	assert.Equal(t, BuildGraph(questions), BuildGraph(questions))
}

func TestRuleLabel(t *testing.T) {
	assert.Equal(t, "always", RuleLabel(model.When("x"), "a"))
	assert.Equal(t, "includes [x, y]", RuleLabel(model.When("x", cond(model.OpIncludes, model.Set("x", "y"))), "a"))
}
