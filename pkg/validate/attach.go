package validate

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/goliatone/go-formtree/pkg/access"
	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/control"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// Validator key channels.
const (
	ChannelPattern  = "pattern"
	ChannelEditable = string(access.ChannelEditable)
)

// Key returns the stable validator key for rule index i of an attribute.
func Key(attributeID, channel string, i int) string {
	return attributeID + "/" + channel + "/" + strconv.Itoa(i)
}

// Option configures Attach.
type Option func(*attacher)

// WithUser sets the user comparative rules are evaluated for.
func WithUser(user access.User) Option {
	return func(a *attacher) {
		a.user = user
	}
}

// WithTree sets the root used to resolve form-attribute conditions when
// attaching to a subtree. Defaults to the node passed to Attach.
func WithTree(root control.Node) Option {
	return func(a *attacher) {
		a.tree = root
	}
}

// WithLogger sets the logger used for attachment diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *attacher) {
		if logger != nil {
			a.logger = logger
		}
	}
}

type attacher struct {
	refs   *formconfig.References
	status string
	user   access.User
	tree   control.Node
	logger *slog.Logger
}

// Attach walks node and registers one validator per declared rule reference.
// A reference to an unknown shared rule or an invalid pattern is a
// ConfigError.
func Attach(node control.Node, refs *formconfig.References, status string, options ...Option) error {
	if node == nil {
		return nil
	}
	a := &attacher{
		refs:   refs,
		status: status,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	if a.tree == nil {
		a.tree = node
	}
	return a.walk(node, nil)
}

func (a *attacher) walk(node control.Node, scope control.Node) error {
	if err := a.attach(node, scope); err != nil {
		return err
	}
	switch typed := node.(type) {
	case *control.Group:
		for _, child := range typed.Children() {
			if err := a.walk(child, scope); err != nil {
				return err
			}
		}
	case *control.Array:
		for _, row := range typed.Rows() {
			if err := a.walk(row, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *attacher) attach(node control.Node, scope control.Node) error {
	attr := node.Attribute()
	if attr == nil {
		return nil
	}
	for i, ref := range attr.Validations {
		rule, err := a.resolve(attr.ID, ref)
		if err != nil {
			return err
		}
		switch rule.Kind() {
		case formconfig.ValidationRegex:
			pattern, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return formconfig.NewConfigError(attr.ID, "invalid pattern %q: %v", rule.Pattern, err)
			}
			node.SetValidator(Key(attr.ID, ChannelPattern, i), patternValidator(pattern, rule.Message))
		case formconfig.ValidationComparative:
			if rule.Rule == nil {
				return formconfig.NewConfigError(attr.ID, "comparative validation %d has no rule", i)
			}
			ctx := access.Context{
				Tree:       a.tree,
				Scope:      scope,
				References: a.refs,
				Status:     a.status,
				User:       a.user,
				Logger:     a.logger,
			}
			node.SetValidator(Key(attr.ID, ChannelEditable, i), comparativeValidator(attr.ID, rule, ctx))
		default:
			return formconfig.NewConfigError(attr.ID, "unknown validation type %q", rule.Type)
		}
	}
	return nil
}

func (a *attacher) resolve(attributeID string, ref formconfig.ValidationRef) (formconfig.ValidationRule, error) {
	if ref.Rule != nil {
		return *ref.Rule, nil
	}
	rule, ok := a.refs.Validation(ref.Ref)
	if !ok {
		return formconfig.ValidationRule{}, formconfig.NewConfigError(attributeID, "unknown validation rule %q", ref.Ref)
	}
	return rule, nil
}

// Empty values are left to the caller's required checks.
func patternValidator(pattern *regexp.Regexp, message string) control.Validator {
	if message == "" {
		message = fmt.Sprintf("Value must match %s", pattern.String())
	}
	return func(node control.Node) (string, bool) {
		value := node.Value()
		if coerce.IsEmpty(value) {
			return "", false
		}
		if items, ok := coerce.AsSlice(value); ok {
			for _, item := range items {
				if !pattern.MatchString(coerce.Stringify(item)) {
					return message, true
				}
			}
			return "", false
		}
		if !pattern.MatchString(coerce.Stringify(value)) {
			return message, true
		}
		return "", false
	}
}

func comparativeValidator(attributeID string, rule formconfig.ValidationRule, ctx access.Context) control.Validator {
	return func(node control.Node) (string, bool) {
		if coerce.IsEmpty(node.Value()) {
			return "", false
		}
		ctx.Self = node
		result := access.EvaluateRule(access.ChannelEditable, attributeID, rule.Rule, ctx)
		if !result.Blocked {
			return "", false
		}
		if rule.Message != "" {
			return rule.Message, true
		}
		return result.Message, true
	}
}
