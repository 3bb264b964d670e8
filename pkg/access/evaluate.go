package access

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// Evaluate computes the access result of attributeID on channel using the
// rule the attribute declares for that channel.
//
// An attribute without a rule is visible but not editable. Unknown attributes
// are treated the same way.
func Evaluate(channel Channel, attributeID string, ctx Context) Result {
	var rule *formconfig.AccessRule
	if attr, ok := ctx.References.Attribute(attributeID); ok {
		rule = attr.Rule(string(channel))
	}
	return EvaluateRule(channel, attributeID, rule, ctx)
}

// EvaluateRule evaluates rule for attributeID. Steps run in order and the
// first terminal step wins: missing rule, readonly, always editable, status
// gate, permission and role gates, condition groups.
func EvaluateRule(channel Channel, attributeID string, rule *formconfig.AccessRule, ctx Context) Result {
	if rule == nil {
		return channelDefault(channel)
	}

	if rule.Readonly {
		if node, ok := ctx.lookup(attributeID); ok {
			node.Disable()
		}
		return Result{Blocked: true, Message: MessageReadonly}
	}

	if rule.AllWaysEditable {
		return Result{}
	}

	if len(rule.Statuses) > 0 && !hasAny([]string{ctx.Status}, rule.Statuses) {
		return Result{
			Blocked: true,
			Message: fmt.Sprintf("Not available in status %q (allowed: %s)", ctx.Status, strings.Join(rule.Statuses, ", ")),
		}
	}

	if !hasAny(ctx.User.Permissions, rule.Permissions) {
		return Result{
			Blocked: true,
			Message: fmt.Sprintf("Requires one of the permissions: %s", strings.Join(rule.Permissions, ", ")),
		}
	}
	if !hasAny(ctx.User.Roles, rule.Roles) {
		return Result{
			Blocked: true,
			Message: fmt.Sprintf("Requires one of the roles: %s", strings.Join(rule.Roles, ", ")),
		}
	}

	if len(rule.ConditionGroups) == 0 {
		return Result{}
	}

	eval := groupEvaluation{ctx: ctx, attributeID: attributeID}
	satisfied := eval.groups(rule)
	if satisfied {
		return Result{}
	}

	message := eval.lastDescription
	if message == "" {
		message = rule.Description
	}
	if message == "" && channel == ChannelEditable {
		message = MessageNotEditable
	}
	ctx.logger().Debug("access blocked",
		"attribute", attributeID,
		"channel", string(channel),
		"message", message,
	)
	return Result{Blocked: true, Message: message}
}

func channelDefault(channel Channel) Result {
	if channel == ChannelEditable {
		return Result{Blocked: true, Message: MessageNotEditable}
	}
	return Result{}
}

// groupEvaluation walks the two-level condition grouping. The outer list is
// combined with every/some per MatchAllGroup and each inner list per
// MatchConditionsGroup; both short-circuit so lastDescription names the
// condition that decided the outcome.
type groupEvaluation struct {
	ctx             Context
	attributeID     string
	lastDescription string
}

func (g *groupEvaluation) groups(rule *formconfig.AccessRule) bool {
	if rule.MatchAllGroup {
		for _, group := range rule.ConditionGroups {
			if !g.conditions(group, rule.MatchConditionsGroup) {
				return false
			}
		}
		return true
	}
	for _, group := range rule.ConditionGroups {
		if g.conditions(group, rule.MatchConditionsGroup) {
			return true
		}
	}
	return false
}

func (g *groupEvaluation) conditions(group []formconfig.Condition, all bool) bool {
	if all {
		for _, cond := range group {
			if !g.condition(cond) {
				return false
			}
		}
		return true
	}
	for _, cond := range group {
		if g.condition(cond) {
			return true
		}
	}
	return false
}

func (g *groupEvaluation) condition(cond formconfig.Condition) bool {
	if cond.Description != "" {
		g.lastDescription = cond.Description
	}

	source := cond.Source
	switch cond.SourceType {
	case formconfig.SourceSelf:
		source = g.attributeID
	case formconfig.SourceFormAttribute:
	default:
		// user-attribute and unknown sources never restrict.
		g.ctx.logger().Debug("condition source not evaluated",
			"attribute", g.attributeID,
			"sourceType", string(cond.SourceType),
			"source", cond.Source,
		)
		return true
	}

	current := g.value(source)
	expected := cond.Value
	expectedSource := source
	if cond.ValueSource != "" {
		expected = g.value(cond.ValueSource)
		expectedSource = cond.ValueSource
	}

	ok, err := compare(cond.Operator.Canonical(), operand{raw: current, source: source}, operand{raw: expected, source: expectedSource}, g.ctx.References)
	if err != nil {
		g.ctx.logger().Warn("condition comparison failed",
			"attribute", g.attributeID,
			"source", source,
			"operator", string(cond.Operator),
			"error", err,
		)
		return false
	}
	return ok
}

func (g *groupEvaluation) value(id string) any {
	if node, ok := g.ctx.lookup(id); ok {
		return node.Value()
	}
	return nil
}
