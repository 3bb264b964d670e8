package control

import (
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// Validator checks a node and returns a message with failed=true when the
// node is invalid.
type Validator func(node Node) (message string, failed bool)

// Node is one control in the tree. The interface is sealed; the concrete
// variants are *Leaf, *Group and *Array.
type Node interface {
	// Attribute returns the attribute spec the node was built from. The root group has
	// none.
	Attribute() *formconfig.AttributeSpec
	// Value returns the raw value: the leaf value, a map of child values for
	// groups, or a slice of row values for arrays.
	Value() any

	Dirty() bool
	Touched() bool
	MarkTouched()
	Disabled() bool
	Disable()
	Enable()

	// SetValidator registers fn under key, replacing any validator with the
	// same key.
	SetValidator(key string, fn Validator)
	RemoveValidator(key string)
	ValidatorKeys() []string
	// Validate runs every validator and stores the failures as the node's
	// error map, which it also returns.
	Validate() map[string]string
	Errors() map[string]string
	SetError(key, message string)
	ClearErrors()
	Valid() bool

	state() *nodeState
}

type nodeState struct {
	attr     *formconfig.AttributeSpec
	dirty    bool
	touched  bool
	disabled bool

	validators map[string]Validator
	order      []string
	errors     map[string]string
}

func (s *nodeState) state() *nodeState { return s }

func (s *nodeState) Attribute() *formconfig.AttributeSpec { return s.attr }

func (s *nodeState) Dirty() bool    { return s.dirty }
func (s *nodeState) Touched() bool  { return s.touched }
func (s *nodeState) MarkTouched()   { s.touched = true }
func (s *nodeState) Disabled() bool { return s.disabled }
func (s *nodeState) Disable()       { s.disabled = true }
func (s *nodeState) Enable()        { s.disabled = false }

func (s *nodeState) SetValidator(key string, fn Validator) {
	if fn == nil {
		s.RemoveValidator(key)
		return
	}
	if s.validators == nil {
		s.validators = make(map[string]Validator)
	}
	if _, exists := s.validators[key]; !exists {
		s.order = append(s.order, key)
	}
	s.validators[key] = fn
}

func (s *nodeState) RemoveValidator(key string) {
	if _, exists := s.validators[key]; !exists {
		return
	}
	delete(s.validators, key)
	for i, candidate := range s.order {
		if candidate == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.errors, key)
}

func (s *nodeState) ValidatorKeys() []string {
	return append([]string(nil), s.order...)
}

func (s *nodeState) Errors() map[string]string {
	if len(s.errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.errors))
	for key, msg := range s.errors {
		out[key] = msg
	}
	return out
}

func (s *nodeState) SetError(key, message string) {
	if s.errors == nil {
		s.errors = make(map[string]string)
	}
	s.errors[key] = message
}

func (s *nodeState) ClearErrors() {
	s.errors = nil
}

func (s *nodeState) Valid() bool {
	return len(s.errors) == 0
}

func runValidators(node Node) map[string]string {
	st := node.state()
	st.errors = nil
	for _, key := range st.order {
		fn := st.validators[key]
		if msg, failed := fn(node); failed {
			st.SetError(key, msg)
		}
	}
	return st.Errors()
}
