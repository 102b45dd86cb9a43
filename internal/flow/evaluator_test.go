package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"surveyflow/internal/model"
)

func TestEvaluate(t *testing.T) {
	questions := []model.Question{
		textQ("name"),
		choiceQ("plan", model.TypeSingleChoice, "free", "pro"),
		choiceQ("features", model.TypeMultipleChoice, "api", "sso", "audit"),
		ratingQ("score", 5),
		model.NewScale("nps", model.TypeNPS, "Recommend?", 10),
		model.NewQuestion("intro", model.TypeDisplayInfo, "Welcome"),
		model.NewQuestion("when", model.TypeDate, "When?"),
		textQ("comment"),
	}
	answers := model.AnswerStore{
		"name":     model.Text("Ada"),
		"plan":     model.Text("pro"),
		"features": model.Set("api", "sso"),
		"score":    model.Number(3),
		"nps":      model.Number(0),
		"when":     model.Text("2024-05-01"),
	}

	tests := []struct {
		name  string
		owner string
		cond  model.Condition
		want  bool
	}{
		{"has_any_value on text", "name", cond(model.OpHasAnyValue, model.Value{}), true},
		{"has_any_value on zero nps", "nps", cond(model.OpHasAnyValue, model.Value{}), true},
		{"has_any_value unanswered", "comment", cond(model.OpHasAnyValue, model.Value{}), false},
		{"is exact match", "plan", cond(model.OpIs, model.Text("pro")), true},
		{"is is case sensitive", "name", cond(model.OpIs, model.Text("ada")), false},
		{"is does not trim", "name", cond(model.OpIs, model.Text("Ada ")), false},
		{"is_not differs", "plan", cond(model.OpIsNot, model.Text("free")), true},
		{"is_not same", "plan", cond(model.OpIsNot, model.Text("pro")), false},
		{"is on date", "when", cond(model.OpIs, model.Text("2024-05-01")), true},
		{"includes single id", "features", cond(model.OpIncludes, model.Text("sso")), true},
		{"includes subset", "features", cond(model.OpIncludes, model.Set("api", "sso")), true},
		{"includes not subset", "features", cond(model.OpIncludes, model.Set("api", "audit")), false},
		{"includes empty operand", "features", cond(model.OpIncludes, model.Set()), false},
		{"greater_than below", "score", cond(model.OpGreaterThan, model.Number(2)), true},
		{"greater_than equal", "score", cond(model.OpGreaterThan, model.Number(3)), false},
		{"lower_than equal", "score", cond(model.OpLowerThan, model.Number(3)), false},
		{"lower_than above", "score", cond(model.OpLowerThan, model.Number(4)), true},
		{"numeric text threshold", "score", cond(model.OpGreaterThan, model.Text("2")), true},
		{"source overrides owner", "name", condOn("score", model.OpLowerThan, model.Number(5)), true},
		{"unknown source", "name", condOn("ghost", model.OpIs, model.Text("x")), false},
		{"type mismatch greater_than on text", "name", cond(model.OpGreaterThan, model.Number(1)), false},
		{"type mismatch includes on single choice", "plan", cond(model.OpIncludes, model.Text("pro")), false},
		{"display_info never has a value", "intro", cond(model.OpHasAnyValue, model.Value{}), false},
		{"unknown operator", "name", cond("contains", model.Text("A")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.cond, tt.owner, questions, answers))
		})
	}
}

func TestEvaluate_EmptyAnswers(t *testing.T) {
	questions := []model.Question{
		textQ("q1"),
		choiceQ("q2", model.TypeMultipleChoice, "a"),
		model.NewQuestion("q3", model.TypeContact, "Contact"),
	}
	answers := model.AnswerStore{
		"q1": model.Text(""),
		"q2": model.Set(),
		"q3": model.Record(map[string]string{"email": ""}),
	}
	for _, id := range []string{"q1", "q2", "q3"} {
		assert.False(t, Evaluate(cond(model.OpHasAnyValue, model.Value{}), id, questions, answers), id)
	}
	assert.False(t, Evaluate(cond(model.OpIsNot, model.Text("x")), "q1", questions, answers),
		"is_not needs an answer to compare against")
}

func TestSupports(t *testing.T) {
	assert.ElementsMatch(t,
		[]model.Operator{model.OpHasAnyValue, model.OpGreaterThan, model.OpLowerThan},
		OperatorsFor(model.TypeRating))
	assert.ElementsMatch(t,
		[]model.Operator{model.OpHasAnyValue, model.OpIncludes},
		OperatorsFor(model.TypeMultipleChoice))
	assert.Empty(t, OperatorsFor(model.TypeDisplayInfo))
	assert.Empty(t, OperatorsFor("slider"))
	assert.True(t, Supports(model.TypeDropdown, model.OpIs))
	assert.False(t, Supports(model.TypeMatrix, model.OpIs))
}
