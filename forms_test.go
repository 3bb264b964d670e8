package formtree

import (
	"context"
	"io/fs"
	"testing"
)

func TestFormsFSContainsSupplierOnboarding(t *testing.T) {
	if _, err := fs.ReadFile(FormsFS(), "supplier_onboarding.yaml"); err != nil {
		t.Fatalf("expected bundled form to be readable: %v", err)
	}
}

func TestBundledFormSession(t *testing.T) {
	cfg, err := BundledForm("supplier-onboarding")
	if err != nil {
		t.Fatalf("bundled form: %v", err)
	}

	s, err := NewSession(cfg, WithStatus("draft"))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if !s.Evaluate(Visibility, "VAT_NUMBER").Blocked {
		t.Fatalf("expected VAT number hidden until HAS_VAT is set")
	}
	if err := s.SetValue("HAS_VAT", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.Evaluate(Visibility, "VAT_NUMBER").Blocked {
		t.Fatalf("expected VAT number visible")
	}
	if !s.Evaluate(Editable, "REVIEW_COMMENT").Blocked {
		t.Fatalf("expected review comment locked in draft")
	}

	if _, err := s.Patch(map[string]any{"REGISTERED_ON": "03.02.2021", "CONTACTS": []any{map[string]any{"name": "Ana", "email": "nope"}}}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got := s.Value()["REGISTERED_ON"]; got != "03.02.2021" {
		t.Fatalf("expected date stored in its declared format, got %v", got)
	}
	if _, ok := s.Errors()["CONTACTS.0.email"]; !ok {
		t.Fatalf("expected contact email failure, got %v", s.Errors())
	}
}

func TestBundledFormUnknown(t *testing.T) {
	if _, err := BundledForm("missing"); err == nil {
		t.Fatalf("expected error for unknown form")
	}
}

func TestImportOpenAPI(t *testing.T) {
	doc := []byte(`{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{"/x":{"post":{"operationId":"createX","requestBody":{"content":{"application/json":{"schema":{"type":"object","properties":{"name":{"type":"string"}}}}}},"responses":{"200":{"description":"ok"}}}}}}`)
	cfg, err := ImportOpenAPI(context.Background(), doc, "createX")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, ok := cfg.Attributes["name"]; !ok {
		t.Fatalf("expected name attribute, got %v", cfg.Attributes)
	}
}
