package control

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/formconfig"
)

func linesSpec() *formconfig.Spec {
	return &formconfig.Spec{
		Layout: []string{"NAME", "ADDRESS", "LINES"},
		Attributes: map[string]*formconfig.AttributeSpec{
			"NAME": {ID: "NAME", Kind: formconfig.KindText, InitialValue: "Acme"},
			"ADDRESS": {
				ID:   "ADDRESS",
				Kind: formconfig.KindGroup,
				Spec: &formconfig.Spec{
					Layout: []string{"STREET", "CITY"},
					Attributes: map[string]*formconfig.AttributeSpec{
						"STREET": {ID: "STREET", Kind: formconfig.KindText},
						"CITY":   {ID: "CITY", Kind: formconfig.KindText, InitialValue: "Zurich"},
					},
				},
			},
			"LINES": {
				ID:   "LINES",
				Kind: formconfig.KindArray,
				Spec: &formconfig.Spec{
					Attributes: map[string]*formconfig.AttributeSpec{
						"LINE": {
							ID:   "LINE",
							Kind: formconfig.KindGroup,
							Spec: &formconfig.Spec{
								Attributes: map[string]*formconfig.AttributeSpec{
									"qty": {ID: "qty", Kind: formconfig.KindNumber},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestBuildMirrorsSpec(t *testing.T) {
	t.Parallel()

	root, err := NewBuilder().Build(linesSpec())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"NAME", "ADDRESS", "LINES"}, root.Keys()); diff != "" {
		t.Fatalf("root keys mismatch (-want +got):\n%s", diff)
	}

	address, ok := root.Child("ADDRESS")
	if !ok {
		t.Fatalf("expected ADDRESS child")
	}
	if _, ok := address.(*Group); !ok {
		t.Fatalf("expected ADDRESS to be a group, got %T", address)
	}
	lines, ok := root.Child("LINES")
	if !ok {
		t.Fatalf("expected LINES child")
	}
	array, ok := lines.(*Array)
	if !ok {
		t.Fatalf("expected LINES to be an array, got %T", lines)
	}
	if array.Len() != 0 {
		t.Fatalf("expected arrays to start empty, got %d rows", array.Len())
	}

	want := map[string]any{
		"NAME":    "Acme",
		"ADDRESS": map[string]any{"STREET": nil, "CITY": "Zurich"},
		"LINES":   []any{},
	}
	if diff := cmp.Diff(want, root.Value()); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildArrayRequiresSingleAttribute(t *testing.T) {
	t.Parallel()

	cases := map[string]*formconfig.Spec{
		"none": {Attributes: map[string]*formconfig.AttributeSpec{}},
		"two": {Attributes: map[string]*formconfig.AttributeSpec{
			"a": {ID: "a", Kind: formconfig.KindText},
			"b": {ID: "b", Kind: formconfig.KindText},
		}},
	}
	for name, nested := range cases {
		name, nested := name, nested
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			spec := &formconfig.Spec{Attributes: map[string]*formconfig.AttributeSpec{
				"LIST": {ID: "LIST", Kind: formconfig.KindArray, Spec: nested},
			}}
			_, err := NewBuilder().Build(spec)
			var cfgErr *formconfig.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Path != "LIST" {
				t.Fatalf("expected error path LIST, got %q", cfgErr.Path)
			}
		})
	}
}

func TestBuildRejectsUnknownLayoutEntry(t *testing.T) {
	t.Parallel()

	spec := &formconfig.Spec{
		Layout:     []string{"MISSING"},
		Attributes: map[string]*formconfig.AttributeSpec{},
	}
	if _, err := NewBuilder().Build(spec); !formconfig.IsConfigError(err) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestArrayRowsAndResize(t *testing.T) {
	t.Parallel()

	root, err := NewBuilder().Build(linesSpec())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	lines, _ := root.Child("LINES")
	array := lines.(*Array)

	if err := array.Resize(3); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if array.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", array.Len())
	}
	row, _ := array.Row(0)
	if _, ok := row.(*Group); !ok {
		t.Fatalf("expected group rows, got %T", row)
	}

	if err := array.Resize(1); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if array.Len() != 1 {
		t.Fatalf("expected 1 row after shrink, got %d", array.Len())
	}

	if _, err := array.AppendRow(); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !array.Dirty() {
		t.Fatalf("expected append to mark the array dirty")
	}
	if err := array.RemoveRow(5); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}
	if err := array.RemoveRow(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if array.Len() != 1 {
		t.Fatalf("expected 1 row after remove, got %d", array.Len())
	}
}

func TestKeyCacheReusesKeys(t *testing.T) {
	t.Parallel()

	cache := NewKeyCache()
	builder := NewBuilder(WithKeyCache(cache))
	spec := linesSpec()

	root, err := builder.Build(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	lines, _ := root.Child("LINES")
	if err := lines.(*Array).Resize(2); err != nil {
		t.Fatalf("resize: %v", err)
	}

	hits, misses := cache.Stats()
	if misses != cache.Len() {
		t.Fatalf("expected one miss per spec, got %d misses for %d specs", misses, cache.Len())
	}
	if hits == 0 {
		t.Fatalf("expected row builds to hit the cache")
	}

	cache.Reset()
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after reset")
	}
}

func TestLeafAssignRejectsUnsupportedValues(t *testing.T) {
	t.Parallel()

	leaf := NewLeaf(&formconfig.AttributeSpec{ID: "NAME"}, "before")
	err := leaf.Assign(func() {})
	var assignErr *AssignmentError
	if !errors.As(err, &assignErr) {
		t.Fatalf("expected AssignmentError, got %v", err)
	}
	if assignErr.Attribute != "NAME" {
		t.Fatalf("expected attribute NAME, got %q", assignErr.Attribute)
	}
	if leaf.Value() != "before" {
		t.Fatalf("expected value to be untouched, got %v", leaf.Value())
	}
	if err := leaf.Assign([]any{"ok", map[string]any{"bad": make(chan int)}}); err == nil {
		t.Fatalf("expected nested channel to be rejected")
	}
}

func TestLeafSetValueNotifiesAndValidates(t *testing.T) {
	t.Parallel()

	leaf := NewLeaf(&formconfig.AttributeSpec{ID: "NAME"}, nil)
	var seen []any
	leaf.OnChange(func(l *Leaf) { seen = append(seen, l.Value()) })
	leaf.SetValidator("NAME/required", func(node Node) (string, bool) {
		return "required", node.Value() == ""
	})

	if err := leaf.SetValue(""); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if leaf.Valid() {
		t.Fatalf("expected blank value to fail validation")
	}
	if err := leaf.SetValue("Acme"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if !leaf.Valid() || !leaf.Dirty() || !leaf.Touched() {
		t.Fatalf("expected valid dirty touched leaf, got valid=%v dirty=%v touched=%v",
			leaf.Valid(), leaf.Dirty(), leaf.Touched())
	}
	if diff := cmp.Diff([]any{"", "Acme"}, seen); diff != "" {
		t.Fatalf("listener calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSetValidatorReplacesByKey(t *testing.T) {
	t.Parallel()

	leaf := NewLeaf(&formconfig.AttributeSpec{ID: "NAME"}, "x")
	leaf.SetValidator("NAME/pattern/0", func(Node) (string, bool) { return "first", true })
	leaf.SetValidator("NAME/pattern/0", func(Node) (string, bool) { return "second", true })

	if got := len(leaf.ValidatorKeys()); got != 1 {
		t.Fatalf("expected 1 validator, got %d", got)
	}
	errs := leaf.Validate()
	if errs["NAME/pattern/0"] != "second" {
		t.Fatalf("expected replaced validator to run, got %v", errs)
	}

	leaf.RemoveValidator("NAME/pattern/0")
	if len(leaf.ValidatorKeys()) != 0 || !leaf.Valid() {
		t.Fatalf("expected validator and its error removed")
	}
}
