package formconfig

import (
	"sort"
	"strings"
)

// FieldKind enumerates the widget kinds an attribute can declare.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindTextarea    FieldKind = "textarea"
	KindRichText    FieldKind = "rich_text"
	KindEmail       FieldKind = "email"
	KindNumber      FieldKind = "number"
	KindCheckbox    FieldKind = "checkbox"
	KindToggle      FieldKind = "toggle"
	KindDate        FieldKind = "date"
	KindDateTime    FieldKind = "datetime"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
	KindRadio       FieldKind = "radio"
	KindHidden      FieldKind = "hidden"
	KindGroup       FieldKind = "group"
	KindArray       FieldKind = "array"
)

// Shape is the structural discriminator of an attribute: every FieldKind maps
// to exactly one shape, and builders/patchers switch on the shape.
type Shape int

const (
	ShapeLeaf Shape = iota
	ShapeGroup
	ShapeArray
)

// Shape returns the structural shape of the kind. Unknown kinds are leaves.
func (k FieldKind) Shape() Shape {
	switch k {
	case KindGroup:
		return ShapeGroup
	case KindArray:
		return ShapeArray
	default:
		return ShapeLeaf
	}
}

// Valid reports whether k is a known kind.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindTextarea, KindRichText, KindEmail, KindNumber,
		KindCheckbox, KindToggle, KindDate, KindDateTime, KindSelect,
		KindMultiSelect, KindRadio, KindHidden, KindGroup, KindArray:
		return true
	}
	return false
}

// IsDate reports whether values of this kind are parsed as dates.
func (k FieldKind) IsDate() bool {
	return k == KindDate || k == KindDateTime
}

// FormConfig pairs a disclosure identity with one attribute-spec tree.
type FormConfig struct {
	ID          string     `json:"id" yaml:"id"`
	Disclosure  Disclosure `json:"disclosure" yaml:"disclosure"`
	Spec        `yaml:",inline"`
	Validations map[string]ValidationRule `json:"validations,omitempty" yaml:"validations,omitempty"`
	Actions     []Action                  `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Disclosure identifies the definition a FormConfig was published as.
type Disclosure struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Action is a declared form action (submit, approve, ...). Statuses restricts
// the workflow statuses in which the action is offered.
type Action struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty"`
	Kind     string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Statuses []string `json:"statuses,omitempty" yaml:"statuses,omitempty"`
}

// AvailableIn reports whether the action is offered for status.
func (a Action) AvailableIn(status string) bool {
	if len(a.Statuses) == 0 {
		return true
	}
	for _, candidate := range a.Statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// Spec is a reference set of attributes plus the layout that orders them. The
// root document and every group/array attribute carry one.
type Spec struct {
	Attributes map[string]*AttributeSpec `json:"attributes" yaml:"attributes"`
	Layout     []string                  `json:"elementsLayout,omitempty" yaml:"elementsLayout,omitempty"`
}

// Keys returns the layout when declared, otherwise every attribute id in
// lexical order.
func (s *Spec) Keys() []string {
	if s == nil {
		return nil
	}
	if len(s.Layout) > 0 {
		return append([]string(nil), s.Layout...)
	}
	keys := make([]string, 0, len(s.Attributes))
	for id := range s.Attributes {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

// Single returns the only attribute of an array spec.
func (s *Spec) Single() (*AttributeSpec, bool) {
	if s == nil || len(s.Attributes) != 1 {
		return nil, false
	}
	for _, attr := range s.Attributes {
		return attr, attr != nil
	}
	return nil, false
}

// AttributeSpec declares one field or nested group/array.
type AttributeSpec struct {
	ID            string          `json:"id" yaml:"id"`
	Kind          FieldKind       `json:"kind" yaml:"kind"`
	Label         string          `json:"label,omitempty" yaml:"label,omitempty"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	InitialValue  any             `json:"initialValue,omitempty" yaml:"initialValue,omitempty"`
	Spec          *Spec           `json:"spec,omitempty" yaml:"spec,omitempty"`
	Validations   []ValidationRef `json:"validations,omitempty" yaml:"validations,omitempty"`
	Visibility    *AccessRule     `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	EditableLogic *AccessRule     `json:"editableLogic,omitempty" yaml:"editableLogic,omitempty"`
	Options       *OptionSource   `json:"options,omitempty" yaml:"options,omitempty"`
	Multiple      bool            `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	DateFormat    string          `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty"`
}

// Shape is shorthand for a.Kind.Shape().
func (a *AttributeSpec) Shape() Shape {
	return a.Kind.Shape()
}

// MultiValued reports whether the attribute stores a sequence.
func (a *AttributeSpec) MultiValued() bool {
	return a.Multiple || a.Kind == KindMultiSelect
}

// Rule returns the access rule for a channel name ("visibility" or
// "editable").
func (a *AttributeSpec) Rule(channel string) *AccessRule {
	switch strings.ToLower(channel) {
	case "visibility":
		return a.Visibility
	case "editable":
		return a.EditableLogic
	default:
		return nil
	}
}

// OptionSourceType distinguishes inline option lists from fetched ones.
type OptionSourceType string

const (
	OptionsStatic  OptionSourceType = "static"
	OptionsDynamic OptionSourceType = "dynamic"
)

// Default option record keys.
const (
	DefaultValueKey = "value"
	DefaultLabelKey = "label"
)

// OptionSource declares where an attribute's options come from and how option
// records map to stored values.
type OptionSource struct {
	Type        OptionSourceType `json:"type" yaml:"type"`
	Items       []Option         `json:"items,omitempty" yaml:"items,omitempty"`
	URL         string           `json:"url,omitempty" yaml:"url,omitempty"`
	ResultsPath string           `json:"resultsPath,omitempty" yaml:"resultsPath,omitempty"`
	ValueKey    string           `json:"valueKey,omitempty" yaml:"valueKey,omitempty"`
	LabelKey    string           `json:"labelKey,omitempty" yaml:"labelKey,omitempty"`
}

// Keys returns the value and label keys with defaults applied.
func (o *OptionSource) Keys() (valueKey, labelKey string) {
	valueKey, labelKey = DefaultValueKey, DefaultLabelKey
	if o == nil {
		return valueKey, labelKey
	}
	if strings.TrimSpace(o.ValueKey) != "" {
		valueKey = o.ValueKey
	}
	if strings.TrimSpace(o.LabelKey) != "" {
		labelKey = o.LabelKey
	}
	return valueKey, labelKey
}

// Option is one option record, typically {value, label, ...}.
type Option map[string]any
