package formconfig

// References is the flattened reference set of a FormConfig: every attribute
// reachable from the root spec keyed by id, plus the shared validation rules.
// When two nested attributes share an id the first one in layout order wins.
type References struct {
	attributes  map[string]*AttributeSpec
	order       []string
	validations map[string]ValidationRule
}

// NewReferences indexes spec and validations.
func NewReferences(spec *Spec, validations map[string]ValidationRule) *References {
	refs := &References{
		attributes:  make(map[string]*AttributeSpec),
		validations: validations,
	}
	refs.index(spec, 0)
	return refs
}

// References indexes the config. The result is not cached; sessions hold on
// to it.
func (c *FormConfig) References() *References {
	if c == nil {
		return NewReferences(nil, nil)
	}
	return NewReferences(&c.Spec, c.Validations)
}

const maxIndexDepth = 32

func (r *References) index(spec *Spec, depth int) {
	if spec == nil || depth > maxIndexDepth {
		return
	}
	for _, id := range spec.Keys() {
		attr := spec.Attributes[id]
		if attr == nil {
			continue
		}
		if _, exists := r.attributes[id]; !exists {
			r.attributes[id] = attr
			r.order = append(r.order, id)
		}
		r.index(attr.Spec, depth+1)
	}
}

// Attribute returns the attribute spec for id.
func (r *References) Attribute(id string) (*AttributeSpec, bool) {
	if r == nil {
		return nil, false
	}
	attr, ok := r.attributes[id]
	return attr, ok
}

// IDs returns every indexed attribute id in discovery order.
func (r *References) IDs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Validation returns a shared validation rule.
func (r *References) Validation(id string) (ValidationRule, bool) {
	if r == nil {
		return ValidationRule{}, false
	}
	rule, ok := r.validations[id]
	return rule, ok
}

// ValueKey returns the option value-mapping key of an attribute that declares
// an option source.
func (r *References) ValueKey(id string) (string, bool) {
	attr, ok := r.Attribute(id)
	if !ok || attr.Options == nil {
		return "", false
	}
	key, _ := attr.Options.Keys()
	return key, true
}
