package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/access"
	"github.com/goliatone/go-formtree/pkg/session"
	"github.com/goliatone/go-formtree/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

const fillConfig = `{
  "elementsLayout": ["NAME", "ACTIVE", "COLOR", "QTY", "HIDDEN_NOTE", "LOCKED", "ROWS"],
  "attributes": {
    "NAME": {"kind": "text", "editableLogic": {"allWaysEditable": true},
      "validations": [{"type": "regex", "pattern": "^[A-Z]", "message": "Upper"}]},
    "ACTIVE": {"kind": "checkbox", "editableLogic": {"allWaysEditable": true}},
    "COLOR": {"kind": "select", "editableLogic": {"allWaysEditable": true},
      "options": {"type": "static", "items": [{"value": "red", "label": "Red"}, {"value": "blue", "label": "<b>Blue</b>"}]}},
    "QTY": {"kind": "number", "editableLogic": {"allWaysEditable": true}},
    "HIDDEN_NOTE": {"kind": "text", "editableLogic": {"allWaysEditable": true},
      "visibility": {"matchAllGroup": true, "matchConditionsGroup": true,
        "conditionGroups": [[{"source": "ACTIVE", "operator": "equal", "value": false}]]}},
    "LOCKED": {"kind": "text"},
    "ROWS": {"kind": "array", "spec": {"attributes": {"ROW": {"kind": "group", "spec": {
      "attributes": {"code": {"kind": "text", "editableLogic": {"allWaysEditable": true}}}
    }}}}}
  }
}`

func TestFill(t *testing.T) {
	t.Parallel()

	s, err := session.New(testsupport.MustParse(t, fillConfig))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	driver := &stubDriver{
		inputs:    []string{"acme", "Acme", "3", "r1"},
		confirm:   []bool{true, true, false},
		selectIdx: []int{1},
	}

	if err := Fill(context.Background(), s, driver); err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := map[string]any{
		"NAME":        "Acme",
		"ACTIVE":      true,
		"COLOR":       "blue",
		"QTY":         3.0,
		"HIDDEN_NOTE": nil,
		"LOCKED":      nil,
		"ROWS":        []any{map[string]any{"code": "r1"}},
	}
	if diff := cmp.Diff(want, s.Value()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	wantInfo := []string{"NAME: Upper", "LOCKED: " + access.MessageNotEditable}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if driver.inputPos != 4 || driver.confirmPos != 3 || driver.selectPos != 1 {
		t.Fatalf("prompts not consumed as expected")
	}
}

func TestFillStopsOnDriverError(t *testing.T) {
	t.Parallel()

	s, err := session.New(testsupport.MustParse(t, fillConfig))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := Fill(context.Background(), s, &stubDriver{}); err == nil {
		t.Fatalf("expected error when the driver runs out of answers")
	}
	if err := Fill(context.Background(), nil, &stubDriver{}); err == nil {
		t.Fatalf("expected error without a session")
	}
}

func TestIndexHelpers(t *testing.T) {
	t.Parallel()

	options := []string{"a", "b", "c"}
	if got := indexOf(options, "c"); got != 2 {
		t.Fatalf("indexOf = %d", got)
	}
	if diff := cmp.Diff([]int{0, 2}, indicesOf(options, []string{"c", "a"})); diff != "" {
		t.Fatalf("indicesOf mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, defaultsFromIndices(options, []int{1, 7})); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

const rowsFillConfig = `{
  "attributes": {
    "ROWS": {"kind": "array", "spec": {"attributes": {"ROW": {"kind": "group", "spec": {
      "elementsLayout": ["qty", "note"],
      "attributes": {
        "qty": {"kind": "number", "editableLogic": {"allWaysEditable": true}},
        "note": {"kind": "text", "editableLogic": {"allWaysEditable": true},
          "visibility": {"matchAllGroup": true, "matchConditionsGroup": true,
            "conditionGroups": [[{"source": "qty", "operator": "greater_than", "value": 0}]]}}
      }
    }}}}}
  }
}`

func TestFillJudgesRowsBySiblings(t *testing.T) {
	t.Parallel()

	s, err := session.New(testsupport.MustParse(t, rowsFillConfig))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := s.PatchJSON([]byte(`{"ROWS": [{"qty": 0}, {"qty": 5}]}`)); err != nil {
		t.Fatalf("patch: %v", err)
	}
	driver := &stubDriver{
		inputs:  []string{"0", "5", "second"},
		confirm: []bool{false},
	}

	if err := Fill(context.Background(), s, driver); err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := map[string]any{
		"ROWS": []any{
			map[string]any{"qty": 0.0, "note": nil},
			map[string]any{"qty": 5.0, "note": "second"},
		},
	}
	if diff := cmp.Diff(want, s.Value()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if driver.inputPos != 3 {
		t.Fatalf("expected the second row note to be asked, consumed %d inputs", driver.inputPos)
	}
}
