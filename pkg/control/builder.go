package control

import (
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

const maxBuildDepth = 32

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithKeyCache shares a key cache with the builder.
func WithKeyCache(cache *KeyCache) BuilderOption {
	return func(b *Builder) {
		b.cache = cache
	}
}

// Builder instantiates control trees from specs. It has no side effects
// beyond populating its key cache.
type Builder struct {
	cache *KeyCache
}

// NewBuilder constructs a Builder. Without WithKeyCache it owns a private
// cache.
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.cache == nil {
		b.cache = NewKeyCache()
	}
	return b
}

// Cache returns the builder's key cache.
func (b *Builder) Cache() *KeyCache { return b.cache }

// Build creates the root group for a spec.
func (b *Builder) Build(spec *formconfig.Spec) (*Group, error) {
	if spec == nil {
		return nil, &formconfig.ConfigError{Reason: "spec is nil"}
	}
	return b.group(nil, spec, "", 0)
}

// BuildAttribute creates the control for one attribute: a Group or Array for
// container kinds, otherwise a Leaf seeded with the initial value.
func (b *Builder) BuildAttribute(attr *formconfig.AttributeSpec) (Node, error) {
	if attr == nil {
		return nil, &formconfig.ConfigError{Reason: "attribute is nil"}
	}
	return b.attribute(attr, attr.ID, 0)
}

// Row builds one array row from the array's item attribute: a Group over its
// nested spec when it has one, otherwise a Leaf.
func (b *Builder) Row(item *formconfig.AttributeSpec) (Node, error) {
	return b.row(item, "", 0)
}

func (b *Builder) row(item *formconfig.AttributeSpec, path string, depth int) (Node, error) {
	if item == nil {
		return nil, formconfig.NewConfigError(path, "array item is nil")
	}
	if item.Spec != nil {
		return b.group(item, item.Spec, joinPath(path, item.ID), depth+1)
	}
	return NewLeaf(item, item.InitialValue), nil
}

func (b *Builder) group(attr *formconfig.AttributeSpec, spec *formconfig.Spec, path string, depth int) (*Group, error) {
	if depth > maxBuildDepth {
		return nil, formconfig.NewConfigError(path, "nesting deeper than %d levels", maxBuildDepth)
	}
	group := newGroup(attr, spec)
	for _, id := range b.cache.Keys(spec) {
		child, ok := spec.Attributes[id]
		if !ok || child == nil {
			return nil, formconfig.NewConfigError(joinPath(path, id), "layout references unknown attribute")
		}
		node, err := b.attribute(child, joinPath(path, id), depth)
		if err != nil {
			return nil, err
		}
		group.add(id, node)
	}
	return group, nil
}

func (b *Builder) attribute(attr *formconfig.AttributeSpec, path string, depth int) (Node, error) {
	switch attr.Shape() {
	case formconfig.ShapeGroup:
		if attr.Spec == nil {
			return nil, formconfig.NewConfigError(path, "group attribute requires a nested spec")
		}
		return b.group(attr, attr.Spec, path, depth+1)
	case formconfig.ShapeArray:
		item, ok := attr.Spec.Single()
		if !ok {
			count := 0
			if attr.Spec != nil {
				count = len(attr.Spec.Attributes)
			}
			return nil, formconfig.NewConfigError(path, "array spec must declare exactly one attribute, found %d", count)
		}
		// Build and discard one row so malformed item specs fail here rather
		// than on the first patch.
		if _, err := b.row(item, path, depth+1); err != nil {
			return nil, err
		}
		return &Array{
			nodeState: nodeState{attr: attr},
			item:      item,
			builder:   b,
		}, nil
	case formconfig.ShapeLeaf:
		return NewLeaf(attr, attr.InitialValue), nil
	default:
		return nil, formconfig.NewConfigError(path, "unsupported shape for kind %q", attr.Kind)
	}
}

func joinPath(prefix, id string) string {
	if prefix == "" {
		return id
	}
	if id == "" {
		return prefix
	}
	return prefix + "." + id
}
