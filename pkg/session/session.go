package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goliatone/go-formtree/pkg/access"
	"github.com/goliatone/go-formtree/pkg/control"
	"github.com/goliatone/go-formtree/pkg/formconfig"
	"github.com/goliatone/go-formtree/pkg/options"
	"github.com/goliatone/go-formtree/pkg/patch"
	"github.com/goliatone/go-formtree/pkg/validate"
)

var (
	// ErrNilConfig is returned by New without a config.
	ErrNilConfig = errors.New("session: config is nil")
	// ErrNotLeaf is returned by SetValue for group and array paths.
	ErrNotLeaf = errors.New("session: path does not address a leaf")
)

// BlockedError is returned by SetValue when the editable channel blocks the
// attribute.
type BlockedError struct {
	Attribute string
	Message   string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("session: %s is not editable: %s", e.Attribute, e.Message)
}

// Access holds both channel results of one attribute.
type Access struct {
	Visibility access.Result `json:"visibility"`
	Editable   access.Result `json:"editable"`
}

// Session is one live form.
type Session struct {
	id        string
	cfg       *formconfig.FormConfig
	refs      *formconfig.References
	cache     *control.KeyCache
	builder   *control.Builder
	tree      *control.Group
	patcher   *patch.Patcher
	resolver  *options.Resolver
	provider  options.Provider
	evaluator access.Evaluator
	logger    *slog.Logger
	status    string
	user      access.User
}

// New builds the control tree for cfg and attaches its validators.
func New(cfg *formconfig.FormConfig, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	s := &Session{
		cfg:       cfg,
		refs:      cfg.References(),
		evaluator: access.RuleEvaluator{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.cache == nil {
		s.cache = control.NewKeyCache()
	}
	s.logger = s.logger.With("session", s.id, "form", cfg.ID)
	s.builder = control.NewBuilder(control.WithKeyCache(s.cache))
	s.patcher = patch.New(patch.WithLogger(s.logger))
	s.resolver = options.NewResolver(s.provider, options.WithLogger(s.logger))

	tree, err := s.builder.Build(&cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("session: build %s: %w", cfg.ID, err)
	}
	s.tree = tree
	if err := s.attach(); err != nil {
		return nil, err
	}
	s.logger.Debug("session started", "attributes", len(s.refs.IDs()), "status", s.status)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Config returns the form config.
func (s *Session) Config() *formconfig.FormConfig { return s.cfg }

// References returns the flattened reference set.
func (s *Session) References() *formconfig.References { return s.refs }

// Tree returns the root control.
func (s *Session) Tree() *control.Group { return s.tree }

// KeyCache returns the session's attribute-key cache.
func (s *Session) KeyCache() *control.KeyCache { return s.cache }

// Status returns the workflow status.
func (s *Session) Status() string { return s.status }

// User returns the acting user.
func (s *Session) User() access.User { return s.user }

// SetStatus changes the workflow status and re-attaches validators so
// comparative rules see it.
func (s *Session) SetStatus(status string) error {
	s.status = status
	return s.attach()
}

// SetUser changes the acting user and re-attaches validators.
func (s *Session) SetUser(user access.User) error {
	s.user = user
	return s.attach()
}

func (s *Session) attach() error {
	err := validate.Attach(s.tree, s.refs, s.status,
		validate.WithUser(s.user),
		validate.WithLogger(s.logger),
	)
	if err != nil {
		return fmt.Errorf("session: attach validators: %w", err)
	}
	return nil
}

func (s *Session) context() access.Context {
	return access.Context{
		Tree:       s.tree,
		References: s.refs,
		Status:     s.status,
		User:       s.user,
		Logger:     s.logger,
	}
}

// Evaluate computes one channel of one attribute. When the attribute has
// controls in the tree the first one is evaluated in its row.
func (s *Session) Evaluate(channel access.Channel, attributeID string) access.Result {
	if node, ok := control.Find(s.tree, attributeID); ok {
		return s.EvaluateNode(channel, node, control.ScopeOf(s.tree, node))
	}
	return s.evaluator.Evaluate(channel, attributeID, s.context())
}

// EvaluateNode computes one channel for a single control. scope is the array
// row enclosing node, or nil; sibling conditions resolve inside it first.
func (s *Session) EvaluateNode(channel access.Channel, node control.Node, scope control.Node) access.Result {
	attr := node.Attribute()
	if attr == nil {
		return access.Result{}
	}
	ctx := s.context()
	ctx.Self = node
	ctx.Scope = scope
	return s.evaluator.Evaluate(channel, attr.ID, ctx)
}

func (s *Session) nodeAccess(node, scope control.Node) Access {
	return Access{
		Visibility: s.EvaluateNode(access.ChannelVisibility, node, scope),
		Editable:   s.EvaluateNode(access.ChannelEditable, node, scope),
	}
}

// Access evaluates both channels of attributeID.
func (s *Session) Access(attributeID string) Access {
	return Access{
		Visibility: s.Evaluate(access.ChannelVisibility, attributeID),
		Editable:   s.Evaluate(access.ChannelEditable, attributeID),
	}
}

// AccessMap evaluates every attribute in the reference set. Every control is
// evaluated in its own row; the map keeps the first control of each id.
// Attributes without a control, such as items of empty arrays, are evaluated
// by id.
func (s *Session) AccessMap() map[string]Access {
	out := make(map[string]Access)
	_ = control.WalkScoped(s.tree, func(_ string, node, scope control.Node) error {
		attr := node.Attribute()
		if attr == nil {
			return nil
		}
		result := s.nodeAccess(node, scope)
		if _, seen := out[attr.ID]; !seen {
			out[attr.ID] = result
		}
		return nil
	})
	for _, id := range s.refs.IDs() {
		if _, seen := out[id]; !seen {
			out[id] = Access{
				Visibility: s.evaluator.Evaluate(access.ChannelVisibility, id, s.context()),
				Editable:   s.evaluator.Evaluate(access.ChannelEditable, id, s.context()),
			}
		}
	}
	return out
}

// ControlAccess evaluates both channels of every control, keyed by control
// path.
func (s *Session) ControlAccess() map[string]Access {
	out := make(map[string]Access)
	_ = control.WalkScoped(s.tree, func(path string, node, scope control.Node) error {
		if node.Attribute() == nil {
			return nil
		}
		out[path] = s.nodeAccess(node, scope)
		return nil
	})
	return out
}

// SetValue stores user input at a dotted path. Editable-blocked attributes
// are rejected with a *BlockedError.
func (s *Session) SetValue(path string, value any) error {
	node, err := control.Lookup(s.tree, path)
	if err != nil {
		return err
	}
	leaf, ok := node.(*control.Leaf)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotLeaf, path)
	}
	attr := leaf.Attribute()
	if result := s.EvaluateNode(access.ChannelEditable, leaf, control.ScopeOf(s.tree, leaf)); result.Blocked {
		return &BlockedError{Attribute: attr.ID, Message: result.Message}
	}
	return leaf.SetValue(value)
}

// Patch reconciles a saved record into the tree, attaches validators to rows
// the patch created and revalidates.
func (s *Session) Patch(data any) ([]patch.Warning, error) {
	warnings := s.patcher.Patch(s.tree, data)
	if err := s.attach(); err != nil {
		return warnings, err
	}
	s.tree.Validate()
	return warnings, nil
}

// PatchJSON decodes raw and patches it.
func (s *Session) PatchJSON(raw []byte) ([]patch.Warning, error) {
	warnings, err := s.patcher.PatchJSON(s.tree, raw)
	if err != nil {
		return nil, err
	}
	if err := s.attach(); err != nil {
		return warnings, err
	}
	s.tree.Validate()
	return warnings, nil
}

// AppendRow adds a row to the array at path and attaches its validators.
func (s *Session) AppendRow(path string) (control.Node, error) {
	node, err := control.Lookup(s.tree, path)
	if err != nil {
		return nil, err
	}
	array, ok := node.(*control.Array)
	if !ok {
		return nil, fmt.Errorf("session: %q is not an array", path)
	}
	row, err := array.AppendRow()
	if err != nil {
		return nil, err
	}
	return row, s.attach()
}

// Value projects the tree into storable data.
func (s *Session) Value() map[string]any {
	out, _ := patch.Project(s.tree).(map[string]any)
	return out
}

// Validate runs every validator and returns the failures keyed by control
// path.
func (s *Session) Validate() map[string]map[string]string {
	s.tree.Validate()
	return s.Errors()
}

// Errors returns the current failures keyed by control path without
// re-running validators.
func (s *Session) Errors() map[string]map[string]string {
	out := make(map[string]map[string]string)
	_ = control.Walk(s.tree, func(path string, node control.Node) error {
		if errs := node.Errors(); len(errs) > 0 {
			out[path] = errs
		}
		return nil
	})
	return out
}

// Valid reports whether every control is valid.
func (s *Session) Valid() bool { return s.tree.Valid() }

// PruneHidden clears the value and errors of every control whose visibility
// is blocked and returns their paths.
func (s *Session) PruneHidden() []string {
	var pruned []string
	_ = control.WalkScoped(s.tree, func(path string, node, scope control.Node) error {
		if node.Attribute() == nil {
			return nil
		}
		if !s.EvaluateNode(access.ChannelVisibility, node, scope).Blocked {
			return nil
		}
		clearNode(node)
		pruned = append(pruned, path)
		return nil
	})
	if len(pruned) > 0 {
		s.logger.Debug("pruned hidden controls", "paths", pruned)
	}
	return pruned
}

func clearNode(node control.Node) {
	node.ClearErrors()
	switch typed := node.(type) {
	case *control.Leaf:
		typed.Clear()
	case *control.Group:
		for _, child := range typed.Children() {
			clearNode(child)
		}
	case *control.Array:
		_ = typed.Resize(0)
	}
}

// ResolveOptions fetches the options of every dynamic source and stores them
// on the owning leaves. Failures are collected; the remaining sources are
// still resolved.
func (s *Session) ResolveOptions(ctx context.Context) error {
	values := s.flatValues()
	var errs []error
	_ = control.Walk(s.tree, func(path string, node control.Node) error {
		leaf, ok := node.(*control.Leaf)
		if !ok {
			return nil
		}
		attr := leaf.Attribute()
		if attr == nil || attr.Options == nil || attr.Options.Type != formconfig.OptionsDynamic {
			return nil
		}
		items, err := s.resolver.Resolve(ctx, attr.Options, values)
		if err != nil {
			s.logger.Warn("options not resolved", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("session: options for %s: %w", path, err))
			return nil
		}
		leaf.SetOptions(items)
		return nil
	})
	return errors.Join(errs...)
}

// flatValues maps attribute ids to projected values; the first control with
// a given id wins.
func (s *Session) flatValues() map[string]any {
	out := make(map[string]any)
	_ = control.Walk(s.tree, func(path string, node control.Node) error {
		leaf, ok := node.(*control.Leaf)
		if !ok || leaf.Attribute() == nil {
			return nil
		}
		id := leaf.Attribute().ID
		if _, exists := out[id]; !exists {
			out[id] = patch.ProjectValue(leaf.Attribute(), leaf.Value())
		}
		return nil
	})
	return out
}

// Actions returns the declared actions offered in the current status.
func (s *Session) Actions() []formconfig.Action {
	var out []formconfig.Action
	for _, action := range s.cfg.Actions {
		if action.AvailableIn(s.status) {
			out = append(out, action)
		}
	}
	return out
}
