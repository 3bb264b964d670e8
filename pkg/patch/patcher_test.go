package patch

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/control"
	"github.com/goliatone/go-formtree/pkg/formconfig"
	"github.com/goliatone/go-formtree/pkg/testsupport"
)

func buildFixture(t *testing.T) *control.Group {
	t.Helper()
	cfg := testsupport.MustFixture(t, testsupport.VendorDisclosure)
	root, err := control.NewBuilder().Build(&cfg.Spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return root
}

func lookup(t *testing.T, root control.Node, path string) control.Node {
	t.Helper()
	node, err := control.Lookup(root, path)
	if err != nil {
		t.Fatalf("lookup %s: %v", path, err)
	}
	return node
}

func TestPatchWrapsScalarRows(t *testing.T) {
	t.Parallel()

	root := buildFixture(t)
	warnings := New().Patch(root, map[string]any{"LINES": []any{1, 2, 3}})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	lines := lookup(t, root, "LINES").(*control.Array)
	if lines.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", lines.Len())
	}
	want := []any{
		map[string]any{"qty": 1},
		map[string]any{"qty": 2},
		map[string]any{"qty": 3},
	}
	if diff := cmp.Diff(want, Project(lines)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	New().Patch(root, map[string]any{"LINES": []any{map[string]any{"qty": 9}}})
	if lines.Len() != 1 {
		t.Fatalf("expected shrink to 1 row, got %d", lines.Len())
	}
	if got := lookup(t, root, "LINES.0.qty").Value(); got != 9 {
		t.Fatalf("expected first row patched positionally, got %v", got)
	}
}

func TestPatchParsesFallbackDateFormats(t *testing.T) {
	t.Parallel()

	cfg := testsupport.MustParse(t, `{"attributes": {"SIGNED_ON": {"kind": "date"}}}`)
	root, err := control.NewBuilder().Build(&cfg.Spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	New().Patch(root, map[string]any{"SIGNED_ON": "20/08/2025"})

	got, ok := lookup(t, root, "SIGNED_ON").Value().(time.Time)
	if !ok {
		t.Fatalf("expected a parsed time, got %T", lookup(t, root, "SIGNED_ON").Value())
	}
	if want := time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if diff := cmp.Diff(map[string]any{"SIGNED_ON": "2025-08-20"}, Project(root)); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}

	New().Patch(root, map[string]any{"SIGNED_ON": "sometime soon"})
	if got := lookup(t, root, "SIGNED_ON").Value(); got != "sometime soon" {
		t.Fatalf("expected unparsable text kept as is, got %v", got)
	}
}

func TestPatchStopsAtDepthLimit(t *testing.T) {
	t.Parallel()

	// Twelve nested groups, each holding a leaf "v" and the next group "g".
	const levels = 12
	var spec *formconfig.Spec
	for i := levels - 1; i >= 0; i-- {
		attrs := map[string]*formconfig.AttributeSpec{
			"v": {ID: "v", Kind: formconfig.KindText},
		}
		if spec != nil {
			attrs["g"] = &formconfig.AttributeSpec{ID: "g", Kind: formconfig.KindGroup, Spec: spec}
		}
		spec = &formconfig.Spec{Layout: layoutOf(attrs), Attributes: attrs}
	}
	root, err := control.NewBuilder().Build(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var data map[string]any
	for i := levels - 1; i >= 0; i-- {
		level := map[string]any{"v": fmt.Sprintf("level-%d", i)}
		if data != nil {
			level["g"] = data
		}
		data = level
	}

	warnings := New().Patch(root, data)

	path := ""
	for i := 0; i < levels; i++ {
		leafPath := strings.TrimPrefix(path+".v", ".")
		got := lookup(t, root, leafPath).Value()
		if i < MaxDepth {
			if got != fmt.Sprintf("level-%d", i) {
				t.Fatalf("level %d: expected patched value, got %v", i, got)
			}
		} else if got != nil {
			t.Fatalf("level %d: expected depth guard to skip, got %v", i, got)
		}
		path = strings.TrimPrefix(path+".g", ".")
	}

	if len(warnings) != 1 || !strings.Contains(warnings[0].Reason, "depth limit") {
		t.Fatalf("expected a single depth warning, got %v", warnings)
	}
}

func layoutOf(attrs map[string]*formconfig.AttributeSpec) []string {
	if _, ok := attrs["g"]; ok {
		return []string{"v", "g"}
	}
	return []string{"v"}
}

func TestPatchOptionRoundTrip(t *testing.T) {
	t.Parallel()

	root := buildFixture(t)
	country := lookup(t, root, "COUNTRY").(*control.Leaf)
	if err := country.SetValue(formconfig.Option{"value": "x", "label": "X"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	stored := Project(country)
	if stored != "x" {
		t.Fatalf("expected projection to the mapped value, got %v", stored)
	}

	New().Patch(country, stored)
	if got := Project(country); got != "x" {
		t.Fatalf("expected round trip to yield x, got %v", got)
	}

	New().Patch(country, "DE")
	want := formconfig.Option{"value": "DE", "label": "Germany"}
	if diff := cmp.Diff(want, country.Value()); diff != "" {
		t.Fatalf("expected static option rehydrated (-want +got):\n%s", diff)
	}
}

func TestPatchShapeMismatchKeepsValues(t *testing.T) {
	t.Parallel()

	root := buildFixture(t)
	New().Patch(root, map[string]any{"ADDRESS": map[string]any{"STREET": "Main 1"}})

	warnings := New().Patch(root, map[string]any{
		"ADDRESS": []any{"not", "an", "object"},
		"LINES":   map[string]any{"qty": 1},
		"NAME":    "Acme",
		"EXTRA":   true,
	})

	if got := lookup(t, root, "ADDRESS.STREET").Value(); got != "Main 1" {
		t.Fatalf("expected ADDRESS untouched, got %v", got)
	}
	if got := lookup(t, root, "NAME").Value(); got != "Acme" {
		t.Fatalf("expected sibling NAME patched, got %v", got)
	}

	paths := make([]string, 0, len(warnings))
	for _, w := range warnings {
		paths = append(paths, w.Path)
	}
	if diff := cmp.Diff([]string{"EXTRA", "ADDRESS", "LINES"}, paths); diff != "" {
		t.Fatalf("warning paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchLeafSemantics(t *testing.T) {
	t.Parallel()

	cfg := testsupport.MustParse(t, `{
  "elementsLayout": ["TITLE", "TAGS", "NOTE", "BROKEN"],
  "attributes": {
    "TITLE": {"kind": "text"},
    "TAGS": {"kind": "multiselect"},
    "NOTE": {"kind": "text", "initialValue": "draft"},
    "BROKEN": {"kind": "text"}
  }
}`)
	root, err := control.NewBuilder().Build(&cfg.Spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	broken := lookup(t, root, "BROKEN")
	broken.SetError("stale", "old error")

	warnings := New().Patch(root, map[string]any{
		"TITLE":  []any{"first", "second"},
		"TAGS":   []any{"a", "b"},
		"NOTE":   nil,
		"BROKEN": map[string]any{"callback": func() {}},
	})

	want := map[string]any{
		"TITLE":  "first",
		"TAGS":   []any{"a", "b"},
		"NOTE":   nil,
		"BROKEN": nil,
	}
	if diff := cmp.Diff(want, root.Value()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || warnings[0].Path != "BROKEN" {
		t.Fatalf("expected one assignment warning for BROKEN, got %v", warnings)
	}
	if !broken.Valid() {
		t.Fatalf("expected degraded leaf to drop stale errors")
	}
	if root.Dirty() {
		t.Fatalf("expected patch not to mark controls dirty")
	}
}

func TestPatchIgnoresEmptyInput(t *testing.T) {
	t.Parallel()

	root := buildFixture(t)
	New().Patch(root, map[string]any{"NAME": "Acme"})

	for _, data := range []any{nil, ""} {
		if warnings := New().Patch(root, data); len(warnings) != 0 {
			t.Fatalf("expected no warnings for %#v, got %v", data, warnings)
		}
	}
	if got := lookup(t, root, "NAME").Value(); got != "Acme" {
		t.Fatalf("expected values kept, got %v", got)
	}
}

func TestPatchJSON(t *testing.T) {
	t.Parallel()

	root := buildFixture(t)
	warnings, err := New().PatchJSON(root, []byte(`{"NAME":"Acme","ADDRESS":{"CITY":"Bern"},"LINES":[{"qty":2}]}`))
	if err != nil {
		t.Fatalf("patch json: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	testsupport.AssertJSON(t, `{
  "NAME": "Acme",
  "EMAIL": null,
  "USE_RICH_TEXT": false,
  "ATTRIBUTE_LABEL": null,
  "ATTRIBUTE_LABEL_RTE": null,
  "START_DATE": null,
  "COUNTRY": null,
  "CATEGORY": null,
  "AMOUNT": null,
  "APPROVER_NOTE": null,
  "ADDRESS": {"STREET": null, "CITY": "Bern"},
  "LINES": [{"qty": 2}]
}`, Project(root))

	if _, err := New().PatchJSON(root, []byte(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
