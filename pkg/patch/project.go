package patch

import (
	"time"

	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/control"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

const dateTimeFormat = "YYYY-MM-DDTHH:mm:ssZ"

// Project converts node into storable data, the inverse of Patch: groups
// become maps, arrays become slices, selected option records collapse to
// their mapped value and dates are formatted with the attribute's format.
func Project(node control.Node) any {
	switch typed := node.(type) {
	case *control.Group:
		out := make(map[string]any, typed.Len())
		for _, key := range typed.Keys() {
			child, _ := typed.Child(key)
			out[key] = Project(child)
		}
		return out
	case *control.Array:
		rows := typed.Rows()
		out := make([]any, len(rows))
		for i, row := range rows {
			out[i] = Project(row)
		}
		return out
	case *control.Leaf:
		return ProjectValue(typed.Attribute(), typed.Value())
	default:
		return nil
	}
}

// ProjectValue converts one leaf value into its storable form.
func ProjectValue(attr *formconfig.AttributeSpec, value any) any {
	if value == nil || coerce.IsUndefined(value) {
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		return formatDate(attr, v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return formatDate(attr, *v)
	}

	if attr != nil && attr.Options != nil {
		valueKey, _ := attr.Options.Keys()
		if record, ok := coerce.AsRecord(value); ok {
			if inner, ok := record[valueKey]; ok {
				return inner
			}
			return record
		}
	}
	if coerce.IsArray(value) {
		items, _ := coerce.AsSlice(value)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = ProjectValue(attr, item)
		}
		return out
	}
	return value
}

func formatDate(attr *formconfig.AttributeSpec, t time.Time) string {
	format := coerce.DefaultDateFormat
	if attr != nil {
		switch {
		case attr.DateFormat != "":
			format = attr.DateFormat
		case attr.Kind == formconfig.KindDateTime:
			format = dateTimeFormat
		}
	}
	return coerce.FormatDate(t, format)
}
