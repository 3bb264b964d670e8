package coerce

import (
	"testing"
	"time"
)

type staticKeys map[string]string

func (s staticKeys) ValueKey(id string) (string, bool) {
	key, ok := s[id]
	return key, ok
}

func TestNormalizeForComparison(t *testing.T) {
	t.Parallel()

	refs := staticKeys{"country": "value"}
	dateMillis := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC).UnixMilli()

	cases := []struct {
		name   string
		value  any
		source string
		want   any
	}{
		{name: "nil", value: nil, want: ""},
		{name: "undefined", value: Undefined, want: ""},
		{name: "blank", value: "   ", want: ""},
		{name: "bool text", value: "true", want: true},
		{name: "bool", value: false, want: false},
		{name: "number unchanged", value: 3, want: 3},
		{name: "numeric text unchanged", value: "3", want: "3"},
		{name: "date text", value: "2025-08-20", want: dateMillis},
		{name: "date text day first", value: "20/08/2025", want: dateMillis},
		{name: "option unwrapped", value: map[string]any{"value": "se", "label": "Sweden"}, source: "country", want: "se"},
		{name: "option unwrapped to bool", value: map[string]any{"value": "true"}, source: "country", want: true},
		{name: "record without mapping", value: map[string]any{"value": "se"}, source: "other", want: `{"value":"se"}`},
		{name: "quoted text", value: "plain", want: "plain"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeForComparison(tc.value, refs, tc.source)
			if got != tc.want {
				t.Fatalf("NormalizeForComparison(%#v) = %#v, want %#v", tc.value, got, tc.want)
			}
		})
	}
}

func TestNormalizeUnwrapsOnce(t *testing.T) {
	t.Parallel()

	refs := staticKeys{"nested": "value"}
	value := map[string]any{"value": map[string]any{"value": "inner"}}

	got := NormalizeForComparison(value, refs, "nested")
	if got != `{"value":"inner"}` {
		t.Fatalf("expected single unwrap, got %#v", got)
	}
}

func TestAsSlice(t *testing.T) {
	t.Parallel()

	got, ok := AsSlice([]int{1, 2, 3})
	if !ok || len(got) != 3 || got[2] != 3 {
		t.Fatalf("unexpected slice conversion: %#v (%v)", got, ok)
	}
	if _, ok := AsSlice("abc"); ok {
		t.Fatalf("expected text to be rejected")
	}
}
