package flow

import (
	"fmt"
	"strings"

	"surveyflow/internal/model"
)

// IssueKind classifies an authoring-time problem
type IssueKind string

const (
	IssueLogic        IssueKind = "logic_error"   // Dangling or backward target, unknown source, unknown option
	IssueTypeMismatch IssueKind = "type_mismatch" // Operator or operand incompatible with the source type
	IssueSchema       IssueKind = "schema_error"  // Structural problem with the question list
)

// Issue is one problem found by Lint. Rule and Condition are -1 when the
// issue is not about a rule or a condition.
type Issue struct {
	Kind       IssueKind `json:"kind"`
	QuestionID string    `json:"questionId,omitempty"`
	Rule       int       `json:"rule"`
	Condition  int       `json:"condition"`
	Message    string    `json:"message"`
}

func (i Issue) Error() string {
	var b strings.Builder
	b.WriteString(string(i.Kind))
	if i.QuestionID != "" {
		fmt.Fprintf(&b, ": question %s", i.QuestionID)
	}
	if i.Rule >= 0 {
		fmt.Fprintf(&b, " rule %d", i.Rule)
	}
	if i.Condition >= 0 {
		fmt.Fprintf(&b, " condition %d", i.Condition)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	return b.String()
}

func (i Issue) Unwrap() error {
	switch i.Kind {
	case IssueLogic:
		return ErrLogic
	case IssueTypeMismatch:
		return ErrTypeMismatch
	}
	return ErrSchema
}

// Issues is the result of a lint pass. A non-empty Issues is an error.
type Issues []Issue

func (is Issues) Error() string {
	msgs := make([]string, len(is))
	for i, issue := range is {
		msgs[i] = issue.Error()
	}
	return strings.Join(msgs, "; ")
}

func (is Issues) Unwrap() []error {
	errs := make([]error, len(is))
	for i, issue := range is {
		errs[i] = issue
	}
	return errs
}

// Err returns nil when there are no issues
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	return is
}

// Lint checks a question list and its rule graph. A survey with issues must
// not be published.
func Lint(questions []model.Question) Issues {
	l := &linter{questions: questions, idx: newIndex(questions)}
	if len(questions) == 0 {
		l.add(IssueSchema, "", -1, -1, "survey has no questions")
		return l.issues
	}

	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			l.add(IssueSchema, "", -1, -1, "question %q has no id", q.Label)
			continue
		}
		if seen[q.ID] {
			l.add(IssueSchema, q.ID, -1, -1, "duplicate question id")
			continue
		}
		seen[q.ID] = true
		l.question(q)
	}
	return l.issues
}

type linter struct {
	questions []model.Question
	idx       index
	issues    Issues
}

func (l *linter) add(kind IssueKind, questionID string, rule, cond int, format string, args ...interface{}) {
	l.issues = append(l.issues, Issue{
		Kind:       kind,
		QuestionID: questionID,
		Rule:       rule,
		Condition:  cond,
		Message:    fmt.Sprintf(format, args...),
	})
}

func (l *linter) question(q model.Question) {
	if !q.Type.Valid() {
		l.add(IssueSchema, q.ID, -1, -1, "unknown question type %q", q.Type)
		return
	}
	l.body(q)
	for r, rule := range q.Logic {
		l.rule(q, r, rule)
	}
}

func (l *linter) body(q model.Question) {
	switch b := q.Body.(type) {
	case model.ChoiceBody:
		if !isChoice(q.Type) {
			break
		}
		if len(b.Options) == 0 {
			l.add(IssueSchema, q.ID, -1, -1, "%s question has no options", q.Type)
		}
		ids := make(map[string]bool, len(b.Options))
		for _, o := range b.Options {
			if o.ID == "" {
				l.add(IssueSchema, q.ID, -1, -1, "option %q has no id", o.Label)
			} else if ids[o.ID] {
				l.add(IssueSchema, q.ID, -1, -1, "duplicate option id %q", o.ID)
			}
			ids[o.ID] = true
		}
		return
	case model.ScaleBody:
		if q.Type != model.TypeRating && q.Type != model.TypeNPS {
			break
		}
		if b.Scale < 2 {
			l.add(IssueSchema, q.ID, -1, -1, "scale must be at least 2, got %d", b.Scale)
		}
		return
	case model.MatrixBody:
		if q.Type != model.TypeMatrix {
			break
		}
		if len(b.Rows) == 0 || len(b.Columns) == 0 {
			l.add(IssueSchema, q.ID, -1, -1, "matrix question needs rows and columns")
		}
		return
	case model.ContactBody:
		if q.Type != model.TypeContact {
			break
		}
		if len(b.Fields) == 0 {
			l.add(IssueSchema, q.ID, -1, -1, "contact question has no fields")
		}
		return
	case model.TextBody:
		if q.Type == model.TypeText {
			return
		}
	case model.DateBody:
		if q.Type == model.TypeDate {
			return
		}
	case model.InfoBody:
		if q.Type == model.TypeDisplayInfo {
			return
		}
	case model.SmileBody:
		if q.Type == model.TypeSmileScale {
			return
		}
	}
	l.add(IssueSchema, q.ID, -1, -1, "body %T does not match type %s", q.Body, q.Type)
}

func (l *linter) rule(q model.Question, r int, rule model.LogicRule) {
	target := rule.Then.GoToQuestionID
	pos, ok := l.idx[target]
	switch {
	case target == "":
		l.add(IssueLogic, q.ID, r, -1, "rule has no target")
	case !ok:
		l.add(IssueLogic, q.ID, r, -1, "target %q does not exist", target)
	case target == q.ID:
		l.add(IssueLogic, q.ID, r, -1, "rule jumps to its own question")
	case pos < l.idx[q.ID]:
		l.add(IssueLogic, q.ID, r, -1, "rule jumps backward to %q", target)
	}

	for c, cond := range rule.If {
		l.condition(q, r, c, cond)
	}
}

func (l *linter) condition(q model.Question, r, c int, cond model.Condition) {
	if !cond.Operator.Valid() {
		l.add(IssueTypeMismatch, q.ID, r, c, "unknown operator %q", cond.Operator)
		return
	}
	srcID := cond.Source(q.ID)
	pos, ok := l.idx[srcID]
	if !ok {
		l.add(IssueLogic, q.ID, r, c, "source question %q does not exist", srcID)
		return
	}
	src := l.questions[pos]
	if !Supports(src.Type, cond.Operator) {
		l.add(IssueTypeMismatch, q.ID, r, c, "operator %s cannot be used on %s question %q", cond.Operator, src.Type, src.ID)
		return
	}

	switch cond.Operator {
	case model.OpIs, model.OpIsNot:
		s, ok := cond.Value.AsText()
		if !ok {
			l.add(IssueTypeMismatch, q.ID, r, c, "operator %s needs a text value", cond.Operator)
			return
		}
		if isChoice(src.Type) && !src.HasOption(s) {
			l.add(IssueLogic, q.ID, r, c, "option %q does not exist in %q", s, src.ID)
		}
	case model.OpIncludes:
		ids, ok := cond.Value.AsSet()
		if !ok || len(ids) == 0 {
			l.add(IssueTypeMismatch, q.ID, r, c, "operator includes needs one or more option ids")
			return
		}
		for _, id := range ids {
			if !src.HasOption(id) {
				l.add(IssueLogic, q.ID, r, c, "option %q does not exist in %q", id, src.ID)
			}
		}
	case model.OpGreaterThan, model.OpLowerThan:
		if _, ok := cond.Value.AsNumber(); !ok {
			l.add(IssueTypeMismatch, q.ID, r, c, "operator %s needs a numeric value", cond.Operator)
		}
	}
}

func isChoice(t model.QuestionType) bool {
	return t == model.TypeSingleChoice || t == model.TypeMultipleChoice || t == model.TypeDropdown
}
