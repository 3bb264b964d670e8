package options

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// ErrNoProvider is returned when a dynamic source is resolved without a
// provider.
var ErrNoProvider = errors.New("options: no provider configured")

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver turns option sources into option records. A Resolver belongs to
// one session and is not safe for concurrent use.
type Resolver struct {
	provider  Provider
	logger    *slog.Logger
	templates map[string]*pongo2.Template
	cache     map[string][]formconfig.Option
	fetches   int
}

// NewResolver constructs a Resolver. provider may be nil when every source is
// static.
func NewResolver(provider Provider, options ...Option) *Resolver {
	r := &Resolver{
		provider:  provider,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		templates: make(map[string]*pongo2.Template),
		cache:     make(map[string][]formconfig.Option),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Templated reports whether url carries template markers and must be
// rendered and refetched on every resolve.
func Templated(url string) bool {
	return strings.Contains(url, "{{") || strings.Contains(url, "{%")
}

// Fetches returns how many provider calls the resolver made.
func (r *Resolver) Fetches() int { return r.fetches }

// Resolve returns the option records of src. values holds the current form
// values by attribute id and feeds templated URLs; text values are query
// escaped before they are substituted.
func (r *Resolver) Resolve(ctx context.Context, src *formconfig.OptionSource, values map[string]any) ([]formconfig.Option, error) {
	if src == nil {
		return nil, nil
	}
	if src.Type != formconfig.OptionsDynamic {
		return src.Items, nil
	}
	if r.provider == nil {
		return nil, ErrNoProvider
	}

	url := src.URL
	templated := Templated(url)
	if templated {
		rendered, err := r.render(url, values)
		if err != nil {
			return nil, err
		}
		url = rendered
	} else if cached, ok := r.cache[url]; ok {
		return cached, nil
	}

	r.fetches++
	payload, err := r.provider.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	items, err := Extract(payload, src)
	if err != nil {
		return nil, fmt.Errorf("options: %s: %w", url, err)
	}
	r.logger.Debug("options fetched", "url", url, "count", len(items), "templated", templated)

	if !templated {
		r.cache[url] = items
	}
	return items, nil
}

// Invalidate drops every cached fetch.
func (r *Resolver) Invalidate() {
	r.cache = make(map[string][]formconfig.Option)
}

// Compile parses a templated URL without rendering it. Plain URLs always
// compile.
func (r *Resolver) Compile(raw string) error {
	if !Templated(raw) {
		return nil
	}
	_, err := r.compile(raw)
	return err
}

func (r *Resolver) compile(raw string) (*pongo2.Template, error) {
	if tpl, ok := r.templates[raw]; ok {
		return tpl, nil
	}
	tpl, err := pongo2.FromString("{% autoescape off %}" + raw + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("options: compile url template %q: %w", raw, err)
	}
	r.templates[raw] = tpl
	return tpl, nil
}

func (r *Resolver) render(raw string, values map[string]any) (string, error) {
	tpl, err := r.compile(raw)
	if err != nil {
		return "", err
	}
	out, err := tpl.Execute(escapeValues(values))
	if err != nil {
		return "", fmt.Errorf("options: render url template %q: %w", raw, err)
	}
	return strings.TrimSpace(out), nil
}

// escapeValues query-escapes text values and the text items of sequences.
func escapeValues(values map[string]any) pongo2.Context {
	out := make(pongo2.Context, len(values))
	for key, value := range values {
		out[key] = escapeValue(value)
	}
	return out
}

func escapeValue(value any) any {
	switch v := value.(type) {
	case string:
		return url.QueryEscape(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = escapeValue(item)
		}
		return items
	}
	return value
}

// Extract converts a fetched payload into option records, following the
// source's dotted results path. Scalar items become records whose value and
// label are the scalar itself.
func Extract(payload any, src *formconfig.OptionSource) ([]formconfig.Option, error) {
	current := payload
	if src != nil && strings.TrimSpace(src.ResultsPath) != "" {
		for _, segment := range strings.Split(src.ResultsPath, ".") {
			record, ok := coerce.AsRecord(current)
			if !ok {
				return nil, fmt.Errorf("results path %q: %q is not an object", src.ResultsPath, segment)
			}
			current, ok = record[segment]
			if !ok {
				return nil, fmt.Errorf("results path %q: missing %q", src.ResultsPath, segment)
			}
		}
	}

	items, ok := coerce.AsSlice(current)
	if !ok {
		return nil, fmt.Errorf("expected a sequence of options, got %T", current)
	}
	valueKey, labelKey := src.Keys()
	out := make([]formconfig.Option, 0, len(items))
	for _, item := range items {
		if record, ok := coerce.AsRecord(item); ok {
			out = append(out, formconfig.Option(record))
			continue
		}
		out = append(out, formconfig.Option{valueKey: item, labelKey: coerce.Stringify(item)})
	}
	return out, nil
}
