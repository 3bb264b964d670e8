package patch

import (
	"sort"

	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// rehydrate maps stored primitives back to the static option records they
// were projected from. Values without a matching option pass through.
func rehydrate(attr *formconfig.AttributeSpec, value any) any {
	if attr.Options == nil || attr.Options.Type != formconfig.OptionsStatic || len(attr.Options.Items) == 0 {
		return value
	}
	valueKey, _ := attr.Options.Keys()
	if items, ok := coerce.AsSlice(value); ok {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = matchOption(attr.Options.Items, valueKey, item)
		}
		return out
	}
	return matchOption(attr.Options.Items, valueKey, value)
}

func matchOption(options []formconfig.Option, valueKey string, value any) any {
	if coerce.IsObject(value) {
		return value
	}
	want := coerce.Stringify(value)
	for _, option := range options {
		if coerce.Stringify(option[valueKey]) == want {
			out := make(formconfig.Option, len(option))
			for key, item := range option {
				out[key] = item
			}
			return out
		}
	}
	return value
}

func sortedKeys(record map[string]any) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
