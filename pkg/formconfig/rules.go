package formconfig

import "strings"

// SourceType tells the evaluator where a condition reads its current value.
type SourceType string

const (
	SourceSelf          SourceType = "self"
	SourceFormAttribute SourceType = "form-attribute"
	SourceUserAttribute SourceType = "user-attribute"
)

// Operator is a condition comparison.
type Operator string

const (
	OpEqual              Operator = "equal"
	OpNotEqual           Operator = "not_equal"
	OpRegex              Operator = "regex"
	OpContains           Operator = "contains"
	OpStartsWith         Operator = "starts_with"
	OpGreaterThan        Operator = "greater_than"
	OpLessThan           Operator = "less_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
)

var operatorAliases = map[string]Operator{
	"equal":                 OpEqual,
	"equals":                OpEqual,
	"eq":                    OpEqual,
	"==":                    OpEqual,
	"not_equal":             OpNotEqual,
	"notequal":              OpNotEqual,
	"not-equal":             OpNotEqual,
	"neq":                   OpNotEqual,
	"!=":                    OpNotEqual,
	"regex":                 OpRegex,
	"matches":               OpRegex,
	"contains":              OpContains,
	"starts_with":           OpStartsWith,
	"startswith":            OpStartsWith,
	"starts-with":           OpStartsWith,
	"greater_than":          OpGreaterThan,
	"gt":                    OpGreaterThan,
	">":                     OpGreaterThan,
	"less_than":             OpLessThan,
	"lt":                    OpLessThan,
	"<":                     OpLessThan,
	"greater_than_or_equal": OpGreaterThanOrEqual,
	"gte":                   OpGreaterThanOrEqual,
	">=":                    OpGreaterThanOrEqual,
	"less_than_or_equal":    OpLessThanOrEqual,
	"lte":                   OpLessThanOrEqual,
	"<=":                    OpLessThanOrEqual,
}

// Canonical resolves aliases ("==", "gte", "startsWith") to the canonical
// operator. Unknown operators are returned unchanged.
func (o Operator) Canonical() Operator {
	key := strings.ToLower(strings.TrimSpace(string(o)))
	if canonical, ok := operatorAliases[key]; ok {
		return canonical
	}
	return o
}

// Known reports whether the operator resolves to a supported comparison.
func (o Operator) Known() bool {
	_, ok := operatorAliases[strings.ToLower(strings.TrimSpace(string(o)))]
	return ok
}

// Condition is one atomic comparison inside an AccessRule. Value holds a
// literal; ValueSource names an attribute whose current value is compared
// instead.
type Condition struct {
	SourceType  SourceType `json:"sourceType" yaml:"sourceType"`
	Source      string     `json:"source,omitempty" yaml:"source,omitempty"`
	Operator    Operator   `json:"operator" yaml:"operator"`
	Value       any        `json:"value,omitempty" yaml:"value,omitempty"`
	ValueSource string     `json:"valueSource,omitempty" yaml:"valueSource,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// AccessRule controls one channel (visibility or editability) of an
// attribute. ConditionGroups is an outer list of inner lists: the outer list
// is combined with every/some per MatchAllGroup and each inner list with
// every/some per MatchConditionsGroup.
type AccessRule struct {
	ConditionGroups      [][]Condition `json:"conditionGroups,omitempty" yaml:"conditionGroups,omitempty"`
	MatchAllGroup        bool          `json:"matchAllGroup,omitempty" yaml:"matchAllGroup,omitempty"`
	MatchConditionsGroup bool          `json:"matchConditionsGroup,omitempty" yaml:"matchConditionsGroup,omitempty"`
	Statuses             []string      `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Permissions          []string      `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Roles                []string      `json:"roles,omitempty" yaml:"roles,omitempty"`
	AllWaysEditable      bool          `json:"allWaysEditable,omitempty" yaml:"allWaysEditable,omitempty"`
	Readonly             bool          `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Description          string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// Empty reports whether the rule declares no gates, flags or conditions.
func (r *AccessRule) Empty() bool {
	if r == nil {
		return true
	}
	return len(r.ConditionGroups) == 0 && len(r.Statuses) == 0 &&
		len(r.Permissions) == 0 && len(r.Roles) == 0 &&
		!r.AllWaysEditable && !r.Readonly
}
