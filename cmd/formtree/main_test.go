package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunBundledWithRecord(t *testing.T) {
	record := writeFile(t, "record.json", `{"LEGAL_NAME":"Acme AG","HAS_VAT":false,"VAT_NUMBER":"CHE123","EXTRA":1}`)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-bundled", "supplier-onboarding",
		"-record", record,
		"-status", "draft",
		"-prune",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}

	var got report
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout.String())
	}
	if got.Form != "supplier-onboarding" || got.Status != "draft" || got.Session == "" {
		t.Fatalf("unexpected header: %+v", got)
	}
	if diff := cmp.Diff([]string{"VAT_NUMBER"}, got.Pruned); diff != "" {
		t.Fatalf("pruned mismatch (-want +got):\n%s", diff)
	}
	if got.Value["VAT_NUMBER"] != nil || got.Value["LEGAL_NAME"] != "Acme AG" {
		t.Fatalf("unexpected value: %v", got.Value)
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "EXTRA") {
		t.Fatalf("expected EXTRA warning, got %v", got.Warnings)
	}
	if diff := cmp.Diff([]string{"submit"}, got.Actions); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
	if !got.Access["REVIEW_COMMENT"].Editable.Blocked {
		t.Fatalf("expected review comment locked in draft")
	}
	if !got.Controls["VAT_NUMBER"].Visibility.Blocked || got.Controls["LEGAL_NAME"].Visibility.Blocked {
		t.Fatalf("unexpected control access: %+v", got.Controls)
	}
}

func TestRunListOperations(t *testing.T) {
	doc := writeFile(t, "api.yaml", `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /items:
    post:
      operationId: createItem
      requestBody:
        content:
          application/json:
            schema: {type: object, properties: {name: {type: string}}}
      responses:
        "201": {description: created}
`)
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-openapi", doc, "-list-operations"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "createItem" {
		t.Fatalf("unexpected operations %q", got)
	}

	stdout.Reset()
	out := filepath.Join(t.TempDir(), "report.json")
	if err := run(context.Background(), []string{"-openapi", doc, "-operation", "createItem", "-output", out}, &stdout, &stderr); err != nil {
		t.Fatalf("run import: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(data, []byte(`"form": "createItem"`)) {
		t.Fatalf("expected imported form in report, got %s", data)
	}
}

func TestRunRequiresSource(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), nil, &stdout, &stderr); err == nil {
		t.Fatalf("expected error without a form source")
	}
	if err := run(context.Background(), []string{"-openapi", "x.yaml"}, &stdout, &stderr); err == nil {
		t.Fatalf("expected error without -operation")
	}
}

func TestSplitList(t *testing.T) {
	if diff := cmp.Diff([]string{"a", "b"}, splitList(" a, ,b ")); diff != "" {
		t.Fatalf("split mismatch (-want +got):\n%s", diff)
	}
}
