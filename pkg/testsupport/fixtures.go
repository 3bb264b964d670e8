package testsupport

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/formconfig"
)

//go:embed testdata/*.yaml
var fixtures embed.FS

// VendorDisclosure is the name of the shared fixture config exercised by the
// evaluator, patcher and session tests.
const VendorDisclosure = "testdata/vendor_disclosure.yaml"

// MustFixture parses one of the embedded fixture configs. Each call returns a
// fresh copy so tests may mutate it.
func MustFixture(t *testing.T, name string) *formconfig.FormConfig {
	t.Helper()

	data, err := fixtures.ReadFile(name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	cfg, err := formconfig.Parse(data, name)
	if err != nil {
		t.Fatalf("parse fixture %s: %v", name, err)
	}
	return cfg
}

// FixtureBytes returns the raw bytes of an embedded fixture.
func FixtureBytes(name string) ([]byte, error) {
	return fixtures.ReadFile(name)
}

// MustParse parses an inline JSON or YAML document.
func MustParse(t *testing.T, doc string) *formconfig.FormConfig {
	t.Helper()

	cfg, err := formconfig.Parse([]byte(doc), t.Name())
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

// LoadConfig reads a config from disk without requiring testing.T, so setup
// helpers can share it.
func LoadConfig(path string) (*formconfig.FormConfig, error) {
	if path == "" {
		return nil, errors.New("testsupport: config path is required")
	}
	cfg, err := formconfig.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load config: %w", err)
	}
	return cfg, nil
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
// Returns true when the golden was written and the caller should stop.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertJSON compares got with the JSON document want after round-tripping got
// through encoding/json, so typed values compare against plain literals.
func AssertJSON(t *testing.T, want string, got any) {
	t.Helper()

	var expected any
	if err := json.Unmarshal([]byte(want), &expected); err != nil {
		t.Fatalf("decode expected: %v", err)
	}
	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal actual: %v", err)
	}
	var actual any
	if err := json.Unmarshal(payload, &actual); err != nil {
		t.Fatalf("decode actual: %v", err)
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
