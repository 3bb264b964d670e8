package access

import (
	"io"
	"log/slog"
	"slices"

	"github.com/goliatone/go-formtree/pkg/control"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// Channel selects the access dimension being evaluated.
type Channel string

const (
	ChannelVisibility Channel = "visibility"
	ChannelEditable   Channel = "editable"
)

// Channels lists every channel in evaluation order.
var Channels = []Channel{ChannelVisibility, ChannelEditable}

// Fixed messages returned by the evaluator.
const (
	MessageReadonly    = "This field is read-only"
	MessageNotEditable = "This field is not editable"
)

// Result is the outcome of one evaluation.
type Result struct {
	Blocked bool   `json:"blocked"`
	Message string `json:"message,omitempty"`
}

// User describes the acting user. Attributes back user-attribute conditions,
// which are accepted but never block.
type User struct {
	ID          string         `json:"id,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	Roles       []string       `json:"roles,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// hasAny reports whether the user holds at least one of want. An empty want
// is always satisfied.
func hasAny(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, candidate := range want {
		if slices.Contains(have, candidate) {
			return true
		}
	}
	return false
}

// Context carries the inputs an evaluation reads. Tree is the session root;
// Scope, when set, is searched first so conditions inside array rows resolve
// siblings of the same row. Self pins the control that self conditions and
// readonly rules act on.
type Context struct {
	Tree       control.Node
	Scope      control.Node
	Self       control.Node
	References *formconfig.References
	Status     string
	User       User
	Logger     *slog.Logger
}

func (c Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discard
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// lookup resolves the current value of attribute id, preferring the scope.
func (c Context) lookup(id string) (control.Node, bool) {
	if c.Self != nil {
		if attr := c.Self.Attribute(); attr != nil && attr.ID == id {
			return c.Self, true
		}
	}
	if c.Scope != nil {
		if node, ok := control.Find(c.Scope, id); ok {
			return node, true
		}
	}
	if c.Tree != nil {
		return control.Find(c.Tree, id)
	}
	return nil, false
}

// Evaluator computes access results. RuleEvaluator is the standard
// implementation; callers may decorate it.
type Evaluator interface {
	Evaluate(channel Channel, attributeID string, ctx Context) Result
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(channel Channel, attributeID string, ctx Context) Result

// Evaluate delegates to the underlying function.
func (fn EvaluatorFunc) Evaluate(channel Channel, attributeID string, ctx Context) Result {
	return fn(channel, attributeID, ctx)
}

// RuleEvaluator evaluates the rules declared on attributes.
type RuleEvaluator struct{}

// Evaluate implements Evaluator.
func (RuleEvaluator) Evaluate(channel Channel, attributeID string, ctx Context) Result {
	return Evaluate(channel, attributeID, ctx)
}
