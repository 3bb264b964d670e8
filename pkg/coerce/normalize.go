package coerce

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ValueKeyResolver exposes the value-mapping key configured for an attribute's
// option source, e.g. "value" for records shaped {value, label}.
type ValueKeyResolver interface {
	ValueKey(attributeID string) (string, bool)
}

// NormalizeForComparison converts value into the canonical form used by
// condition operators:
//
//   - nil, Undefined and blank text become ""
//   - boolean-like values become bool
//   - numeric-like values are returned unchanged
//   - date-like values become epoch milliseconds (int64)
//   - option records are unwrapped through the source attribute's value key,
//     once
//   - everything else is stringified and unquoted
func NormalizeForComparison(value any, refs ValueKeyResolver, sourceID string) any {
	return normalize(value, refs, sourceID, true)
}

func normalize(value any, refs ValueKeyResolver, sourceID string, unwrap bool) any {
	if IsEmpty(value) {
		return ""
	}
	if b, ok := ToBool(value); ok {
		return b
	}
	if IsNumericLike(value) {
		return value
	}
	if IsDateLike(value) {
		if t, ok := ParseDate(value, ""); ok {
			return t.UnixMilli()
		}
	}
	if unwrap && refs != nil {
		if key, ok := refs.ValueKey(sourceID); ok && key != "" {
			if record, ok := AsRecord(value); ok {
				if inner, ok := record[key]; ok {
					return normalize(inner, refs, sourceID, false)
				}
			}
		}
	}
	return Stringify(value)
}

// IsEmpty reports nil, Undefined and blank text.
func IsEmpty(value any) bool {
	if value == nil || IsUndefined(value) {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Stringify renders value as text. Strings pass through; other values are
// JSON encoded with any surrounding quotes removed.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		if !IsObject(value) {
			return v.String()
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return strings.TrimSuffix(strings.TrimPrefix(string(raw), `"`), `"`)
}

// AsRecord returns value as a string-keyed map when it is one.
func AsRecord(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = item
		}
		return out, true
	}
	rv := indirect(reflect.ValueOf(value))
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// AsSlice returns value as []any when it is a sequence.
func AsSlice(value any) ([]any, bool) {
	if v, ok := value.([]any); ok {
		return v, true
	}
	if !IsArray(value) {
		return nil, false
	}
	rv := indirect(reflect.ValueOf(value))
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
