package patch

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/control"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// MaxDepth is the deepest group or array level a patch descends into.
const MaxDepth = 10

// Warning describes a branch the patcher skipped or degraded.
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Reason
	}
	return w.Path + ": " + w.Reason
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger warnings are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Patcher applies record data to control trees. Array growth uses the
// builder that created each array.
type Patcher struct {
	logger *slog.Logger
}

// New constructs a Patcher.
func New(options ...Option) *Patcher {
	p := &Patcher{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Patch reconciles data into node and returns the warnings raised on the way.
func (p *Patcher) Patch(node control.Node, data any) []Warning {
	r := &run{patcher: p}
	if leaf, ok := node.(*control.Leaf); ok {
		r.leaf(leaf, data, attributePath(leaf))
		return r.warnings
	}
	r.node(node, data, "", 0)
	return r.warnings
}

// PatchJSON decodes raw and patches the result into node.
func (p *Patcher) PatchJSON(node control.Node, raw []byte) ([]Warning, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("patch: decode record: %w", err)
	}
	return p.Patch(node, data), nil
}

type run struct {
	patcher  *Patcher
	warnings []Warning
}

func (r *run) warn(path, format string, args ...any) {
	w := Warning{Path: path, Reason: fmt.Sprintf(format, args...)}
	r.warnings = append(r.warnings, w)
	r.patcher.logger.Warn("patch skipped", "path", path, "reason", w.Reason)
}

func (r *run) node(node control.Node, data any, path string, depth int) {
	if depth >= MaxDepth {
		r.warn(path, "depth limit %d reached", MaxDepth)
		return
	}
	if node == nil || coerce.IsEmpty(data) {
		return
	}

	switch typed := node.(type) {
	case *control.Group:
		r.group(typed, data, path, depth)
	case *control.Array:
		r.array(typed, data, path, depth)
	case *control.Leaf:
		r.leaf(typed, data, path)
	}
}

func (r *run) group(group *control.Group, data any, path string, depth int) {
	if coerce.IsArray(data) {
		r.warn(path, "expected an object, got a sequence")
		return
	}
	record, ok := coerce.AsRecord(data)
	if !ok {
		r.warn(path, "expected an object, got %T", data)
		return
	}

	for _, key := range sortedKeys(record) {
		if _, known := group.Child(key); !known {
			r.patcher.logger.Debug("patch ignored unknown key", "path", path, "key", key)
			r.warnings = append(r.warnings, Warning{Path: joinPath(path, key), Reason: "unknown key"})
		}
	}

	for _, key := range group.Keys() {
		value, present := record[key]
		if !present {
			continue
		}
		child, _ := group.Child(key)
		childPath := joinPath(path, key)
		if leaf, ok := child.(*control.Leaf); ok {
			r.leaf(leaf, value, childPath)
			continue
		}
		r.node(child, value, childPath, depth+1)
	}
}

func (r *run) array(array *control.Array, data any, path string, depth int) {
	items, ok := coerce.AsSlice(data)
	if !ok {
		r.warn(path, "expected a sequence, got %T", data)
		return
	}
	items = wrapScalars(array.Item(), items)

	if err := array.Resize(len(items)); err != nil {
		r.warn(path, "resize to %d rows: %v", len(items), err)
		return
	}
	for i, row := range array.Rows() {
		rowPath := joinPath(path, fmt.Sprint(i))
		if leaf, ok := row.(*control.Leaf); ok {
			r.leaf(leaf, items[i], rowPath)
			continue
		}
		r.node(row, items[i], rowPath, depth+1)
	}
}

// wrapScalars turns bare scalars into single-key records when the array's
// item nests a spec with exactly one scalar attribute.
func wrapScalars(item *formconfig.AttributeSpec, items []any) []any {
	if item == nil || len(items) == 0 || coerce.IsObject(items[0]) {
		return items
	}
	inner, ok := item.Spec.Single()
	if !ok || inner.Shape() != formconfig.ShapeLeaf {
		return items
	}
	out := make([]any, len(items))
	for i, v := range items {
		if coerce.IsObject(v) {
			out[i] = v
			continue
		}
		out[i] = map[string]any{inner.ID: v}
	}
	return out
}

func (r *run) leaf(leaf *control.Leaf, value any, path string) {
	attr := leaf.Attribute()
	if value == nil || coerce.IsUndefined(value) {
		leaf.Clear()
		return
	}

	if attr != nil {
		if !attr.MultiValued() && coerce.IsArray(value) {
			items, _ := coerce.AsSlice(value)
			if len(items) == 0 {
				leaf.Clear()
				return
			}
			value = items[0]
		}
		if attr.Kind.IsDate() {
			if parsed, ok := coerce.ParseDate(value, attr.DateFormat); ok {
				value = parsed
			} else {
				r.patcher.logger.Debug("patch kept unparsed date", "path", path, "value", value)
			}
		}
		value = rehydrate(attr, value)
	}

	if err := leaf.Assign(value); err != nil {
		r.warn(path, "assign: %v", err)
		leaf.Clear()
		return
	}
	leaf.ClearErrors()
}

func attributePath(node control.Node) string {
	if attr := node.Attribute(); attr != nil {
		return attr.ID
	}
	return ""
}

func joinPath(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "." + id
}
