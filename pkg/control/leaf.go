package control

import (
	"reflect"

	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// Leaf holds a single value.
type Leaf struct {
	nodeState
	value     any
	options   []formconfig.Option
	listeners []func(*Leaf)
}

// NewLeaf creates a leaf seeded with a copy of initial.
func NewLeaf(attr *formconfig.AttributeSpec, initial any) *Leaf {
	leaf := &Leaf{nodeState: nodeState{attr: attr}}
	leaf.value = cloneValue(initial)
	if attr != nil && attr.Options != nil && attr.Options.Type == formconfig.OptionsStatic {
		leaf.options = attr.Options.Items
	}
	return leaf
}

// Value returns the current value.
func (l *Leaf) Value() any { return l.value }

// Kind classifies the current value.
func (l *Leaf) Kind() coerce.Kind { return coerce.Classify(l.value) }

// SetValue stores user input: the leaf becomes dirty and touched, change
// listeners fire and validators re-run.
func (l *Leaf) SetValue(value any) error {
	if err := l.Assign(value); err != nil {
		return err
	}
	l.dirty = true
	l.touched = true
	for _, fn := range l.listeners {
		fn(l)
	}
	l.Validate()
	return nil
}

// Assign stores value without touching dirty state or notifying listeners.
// Values that cannot be represented as one of the classified kinds (funcs,
// channels, complex numbers) are rejected with an *AssignmentError.
func (l *Leaf) Assign(value any) error {
	if reason, ok := assignable(reflect.ValueOf(value), 0); !ok {
		id := ""
		if l.attr != nil {
			id = l.attr.ID
		}
		return &AssignmentError{Attribute: id, Value: value, Reason: reason}
	}
	l.value = value
	return nil
}

// Clear drops the value and any errors.
func (l *Leaf) Clear() {
	l.value = nil
	l.errors = nil
}

// Options returns the option records available to the leaf: static items
// from the attribute spec or the last set of fetched options.
func (l *Leaf) Options() []formconfig.Option { return l.options }

// SetOptions replaces the available options, typically with a completed
// dynamic fetch.
func (l *Leaf) SetOptions(options []formconfig.Option) { l.options = options }

// OnChange registers a listener fired by SetValue.
func (l *Leaf) OnChange(fn func(*Leaf)) {
	if fn != nil {
		l.listeners = append(l.listeners, fn)
	}
}

// Validate runs the attached validators.
func (l *Leaf) Validate() map[string]string { return runValidators(l) }

const maxValueDepth = 64

func assignable(rv reflect.Value, depth int) (string, bool) {
	if depth > maxValueDepth {
		return "value nested too deeply", false
	}
	if !rv.IsValid() {
		return "", true
	}
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return "unsupported value type " + rv.Type().String(), false
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", true
		}
		return assignable(rv.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if reason, ok := assignable(rv.Index(i), depth+1); !ok {
				return reason, false
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if reason, ok := assignable(iter.Value(), depth+1); !ok {
				return reason, false
			}
		}
	}
	return "", true
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case formconfig.Option:
		out := make(formconfig.Option, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}
