package model

// Operator compares a stored answer with a condition value
type Operator string

const (
	OpHasAnyValue Operator = "has_any_value"
	OpIncludes    Operator = "includes"
	OpIs          Operator = "is"
	OpIsNot       Operator = "is_not"
	OpGreaterThan Operator = "greater_than"
	OpLowerThan   Operator = "lower_than"
)

// Operators lists every operator in a stable order
var Operators = []Operator{OpHasAnyValue, OpIncludes, OpIs, OpIsNot, OpGreaterThan, OpLowerThan}

func (o Operator) Valid() bool {
	switch o {
	case OpHasAnyValue, OpIncludes, OpIs, OpIsNot, OpGreaterThan, OpLowerThan:
		return true
	}
	return false
}

// Condition is one comparison inside a rule's "if" list
type Condition struct {
	SourceQuestionID string   `json:"sourceQuestionId,omitempty" bson:"sourceQuestionId,omitempty" yaml:"sourceQuestionId,omitempty"`
	Operator         Operator `json:"operator" bson:"operator" yaml:"operator"`
	Value            Value    `json:"value,omitzero" bson:"value,omitempty" yaml:"value,omitempty"`
}

// Source returns the question the condition reads, defaulting to the
// question that owns the rule
func (c Condition) Source(ownerID string) string {
	if c.SourceQuestionID != "" {
		return c.SourceQuestionID
	}
	return ownerID
}

// Jump is the target of a rule
type Jump struct {
	GoToQuestionID string `json:"goToQuestionId" bson:"goToQuestionId" yaml:"goToQuestionId"`
}

// LogicRule jumps to Then when every condition in If holds
type LogicRule struct {
	If   []Condition `json:"if" bson:"if" yaml:"if"`
	Then Jump        `json:"then" bson:"then" yaml:"then"`
}

// When is a shorthand for building rules in code
func When(target string, conds ...Condition) LogicRule {
	return LogicRule{If: conds, Then: Jump{GoToQuestionID: target}}
}
