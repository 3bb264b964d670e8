package control

import (
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// Group holds one child per layout-referenced attribute of a nested spec.
type Group struct {
	nodeState
	spec     *formconfig.Spec
	children map[string]Node
	order    []string
}

func newGroup(attr *formconfig.AttributeSpec, spec *formconfig.Spec) *Group {
	return &Group{
		nodeState: nodeState{attr: attr},
		spec:      spec,
		children:  make(map[string]Node),
	}
}

// Spec returns the nested spec the group mirrors.
func (g *Group) Spec() *formconfig.Spec { return g.spec }

// Child returns the child control for an attribute id.
func (g *Group) Child(id string) (Node, bool) {
	node, ok := g.children[id]
	return node, ok
}

// Keys returns child ids in layout order.
func (g *Group) Keys() []string { return append([]string(nil), g.order...) }

// Children returns the child controls in layout order.
func (g *Group) Children() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.children[id])
	}
	return out
}

// Len returns the number of children.
func (g *Group) Len() int { return len(g.order) }

// Value returns a map of child values keyed by attribute id.
func (g *Group) Value() any {
	out := make(map[string]any, len(g.order))
	for _, id := range g.order {
		out[id] = g.children[id].Value()
	}
	return out
}

// Dirty reports whether the group or any descendant is dirty.
func (g *Group) Dirty() bool {
	if g.dirty {
		return true
	}
	for _, child := range g.children {
		if child.Dirty() {
			return true
		}
	}
	return false
}

// Valid reports whether the group and every descendant are valid.
func (g *Group) Valid() bool {
	if len(g.errors) > 0 {
		return false
	}
	for _, child := range g.children {
		if !child.Valid() {
			return false
		}
	}
	return true
}

// Validate runs the group's own validators and then every descendant's.
// The returned map holds the group's own failures.
func (g *Group) Validate() map[string]string {
	for _, id := range g.order {
		g.children[id].Validate()
	}
	return runValidators(g)
}

func (g *Group) add(id string, child Node) {
	if _, exists := g.children[id]; !exists {
		g.order = append(g.order, id)
	}
	g.children[id] = child
}
