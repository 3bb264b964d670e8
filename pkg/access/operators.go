package access

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

type operand struct {
	raw    any
	source string
}

// compare applies op to the current and expected operands. Equality and the
// orderings use the classifier's normalized form, where dates are epoch
// milliseconds. The text operators match against the stringified values as
// entered.
func compare(op formconfig.Operator, current, expected operand, refs *formconfig.References) (bool, error) {
	var resolver coerce.ValueKeyResolver
	if refs != nil {
		resolver = refs
	}
	left := coerce.NormalizeForComparison(current.raw, resolver, current.source)
	right := coerce.NormalizeForComparison(expected.raw, resolver, expected.source)

	switch op {
	case formconfig.OpEqual:
		return looseEqual(left, right), nil
	case formconfig.OpNotEqual:
		return !looseEqual(left, right), nil
	case formconfig.OpRegex:
		pattern, err := compilePattern(coerce.Stringify(expected.raw))
		if err != nil {
			return false, err
		}
		return pattern.MatchString(text(current.raw, left)), nil
	case formconfig.OpContains:
		if items, ok := coerce.AsSlice(current.raw); ok {
			for _, item := range items {
				if looseEqual(coerce.NormalizeForComparison(item, resolver, current.source), right) {
					return true, nil
				}
			}
			return false, nil
		}
		return strings.Contains(text(current.raw, left), text(expected.raw, right)), nil
	case formconfig.OpStartsWith:
		return strings.HasPrefix(text(current.raw, left), text(expected.raw, right)), nil
	case formconfig.OpGreaterThan:
		return ordered(left, right, func(a, b float64) bool { return a > b }), nil
	case formconfig.OpLessThan:
		return ordered(left, right, func(a, b float64) bool { return a < b }), nil
	case formconfig.OpGreaterThanOrEqual:
		return ordered(left, right, func(a, b float64) bool { return a >= b }), nil
	case formconfig.OpLessThanOrEqual:
		return ordered(left, right, func(a, b float64) bool { return a <= b }), nil
	default:
		return false, fmt.Errorf("access: unsupported operator %q", op)
	}
}

// text is the string a text operator sees. Strings are used as entered;
// other values, such as option records, use their normalized form.
func text(raw, normalized any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return coerce.Stringify(normalized)
}

// looseEqual compares numerically when both sides are numbers, as booleans
// when both are booleans, and as text otherwise.
func looseEqual(a, b any) bool {
	if af, ok := coerce.ToFloat(a); ok {
		if bf, ok := coerce.ToFloat(b); ok {
			return af == bf
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ab == bb
		}
	}
	return coerce.Stringify(a) == coerce.Stringify(b)
}

// ordered is false whenever either side is not numeric.
func ordered(a, b any, cmp func(float64, float64) bool) bool {
	af, ok := coerce.ToFloat(a)
	if !ok {
		return false
	}
	bf, ok := coerce.ToFloat(b)
	if !ok {
		return false
	}
	return cmp(af, bf)
}

var patterns sync.Map

func compilePattern(raw string) (*regexp.Regexp, error) {
	if cached, ok := patterns.Load(raw); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("access: compile pattern %q: %w", raw, err)
	}
	patterns.Store(raw, re)
	return re, nil
}
