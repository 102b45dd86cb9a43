package flow

import (
	"fmt"
	"strings"

	"surveyflow/internal/model"
)

// EdgeKind tells the drawing layer how to render an edge
type EdgeKind string

const (
	EdgeDefault EdgeKind = "default" // Fallback path to the next question
	EdgeLogic   EdgeKind = "logic"   // Conditional jump
)

type Node struct {
	ID       string             `json:"id"`
	Type     model.QuestionType `json:"type"`
	Label    string             `json:"label"`
	Position int                `json:"position"`
}

type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Label  string   `json:"label,omitempty"`
	Rule   int      `json:"rule"` // -1 for default edges
}

// Graph is the flow of a survey as seen by the authoring UI
type Graph struct {
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Excluded Issues `json:"excluded,omitempty"` // Rules left out of Edges
}

// BuildGraph returns one node per question, a default edge between each
// consecutive pair and one logic edge per rule with a valid target. Rules
// with a missing or self-referential target are reported in Excluded.
func BuildGraph(questions []model.Question) Graph {
	idx := newIndex(questions)
	g := Graph{
		Nodes: make([]Node, 0, len(questions)),
		Edges: make([]Edge, 0, len(questions)),
	}

	for i, q := range questions {
		g.Nodes = append(g.Nodes, Node{ID: q.ID, Type: q.Type, Label: q.Label, Position: i})
		if i+1 < len(questions) {
			next := questions[i+1].ID
			g.Edges = append(g.Edges, Edge{
				ID:     fmt.Sprintf("%s->%s", q.ID, next),
				Source: q.ID,
				Target: next,
				Kind:   EdgeDefault,
				Rule:   -1,
			})
		}
	}

	for _, q := range questions {
		for r, rule := range q.Logic {
			target := rule.Then.GoToQuestionID
			if _, ok := idx[target]; !ok {
				g.Excluded = append(g.Excluded, Issue{
					Kind: IssueLogic, QuestionID: q.ID, Rule: r, Condition: -1,
					Message: fmt.Sprintf("target %q does not exist", target),
				})
				continue
			}
			if target == q.ID {
				g.Excluded = append(g.Excluded, Issue{
					Kind: IssueLogic, QuestionID: q.ID, Rule: r, Condition: -1,
					Message: "rule jumps to its own question",
				})
				continue
			}
			g.Edges = append(g.Edges, Edge{
				ID:     fmt.Sprintf("%s#%d->%s", q.ID, r, target),
				Source: q.ID,
				Target: target,
				Kind:   EdgeLogic,
				Label:  RuleLabel(rule, q.ID),
				Rule:   r,
			})
		}
	}
	return g
}

// RuleLabel summarizes a rule's conditions, e.g. "is B AND greater_than 3"
func RuleLabel(rule model.LogicRule, ownerID string) string {
	if len(rule.If) == 0 {
		return "always"
	}
	parts := make([]string, len(rule.If))
	for i, cond := range rule.If {
		parts[i] = conditionLabel(cond, ownerID)
	}
	return strings.Join(parts, " AND ")
}

func conditionLabel(cond model.Condition, ownerID string) string {
	var b strings.Builder
	if src := cond.Source(ownerID); src != ownerID {
		b.WriteString(src)
		b.WriteByte(' ')
	}
	b.WriteString(string(cond.Operator))
	if !cond.Value.IsZero() {
		b.WriteByte(' ')
		b.WriteString(cond.Value.String())
	}
	return b.String()
}
