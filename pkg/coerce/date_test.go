package coerce

import (
	"testing"
	"time"
)

func TestParseDateFallbackFormats(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	inputs := []string{
		"2025-08-20",
		"20/08/2025",
		"20-08-2025",
		"20.08.2025",
		"2025/08/20",
		"August 20th, 2025",
		"Aug 20, 2025",
		"20th August 2025",
		"20 Aug 2025",
		"Wednesday, August 20th 2025",
	}

	for _, input := range inputs {
		got, ok := ParseDate(input, "")
		if !ok {
			t.Fatalf("ParseDate(%q) failed", input)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestParseDateExplicitFormatWins(t *testing.T) {
	t.Parallel()

	got, ok := ParseDate("08/09/2025", "MM/DD/YYYY")
	if !ok {
		t.Fatalf("expected explicit format to parse")
	}
	if got.Month() != time.August || got.Day() != 9 {
		t.Fatalf("expected August 9, got %s", got)
	}

	got, ok = ParseDate("08/09/2025", "")
	if !ok || got.Month() != time.September || got.Day() != 8 {
		t.Fatalf("expected day-first fallback, got %s (%v)", got, ok)
	}
}

func TestParseDateRejectsOutOfRangeYears(t *testing.T) {
	t.Parallel()

	if _, ok := ParseDate("1850-01-01", ""); ok {
		t.Fatalf("expected 1850 to be rejected")
	}
	if _, ok := ParseDate(time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), ""); ok {
		t.Fatalf("expected 2200 to be rejected")
	}
}

func TestParseDateTimestamps(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	got, ok := ParseDate(want.Unix(), "")
	if !ok || !got.Equal(want) {
		t.Fatalf("seconds timestamp: got %s (%v)", got, ok)
	}
	got, ok = ParseDate(float64(want.UnixMilli()), "")
	if !ok || !got.Equal(want) {
		t.Fatalf("milliseconds timestamp: got %s (%v)", got, ok)
	}
}

func TestParseDateTextRecord(t *testing.T) {
	t.Parallel()

	got, ok := ParseDate(map[string]any{"text": "2025-08-20"}, "")
	if !ok || got.Day() != 20 {
		t.Fatalf("expected record text to parse, got %s (%v)", got, ok)
	}
	if _, ok := ParseDate(map[string]any{"label": "2025-08-20"}, ""); ok {
		t.Fatalf("expected record without text to fail")
	}
}

type textRecord map[string]any

func TestParseDateNamedRecordTypes(t *testing.T) {
	t.Parallel()

	record := textRecord{"text": "20/08/2025", "value": "x"}
	got, ok := ParseDate(record, "")
	if !ok || got.Month() != time.August || got.Day() != 20 {
		t.Fatalf("expected named record text to parse, got %s (%v)", got, ok)
	}
	if !IsDateLike(record) {
		t.Fatalf("expected named record to be date-like")
	}
	if IsDateLike(map[string]string{"text": "soon"}) {
		t.Fatalf("expected non-date text to be rejected")
	}
	if !IsDateLike(map[string]string{"text": "2025-08-20"}) {
		t.Fatalf("expected string map with date text to be date-like")
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, input := range []any{"", "not a date", nil, true} {
		if _, ok := ParseDate(input, ""); ok {
			t.Fatalf("expected %#v to fail", input)
		}
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"":              "2025-08-01",
		"DD/MM/YYYY":    "01/08/2025",
		"MMMM Do, YYYY": "August 1st, 2025",
		"[Day] D":       "Day 1",
	}
	for format, want := range cases {
		if got := FormatDate(day, format); got != want {
			t.Fatalf("FormatDate(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestLayout(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"DD/MM/YYYY":               "02/01/2006",
		"MMMM Do, YYYY":            "January 2, 2006",
		"YYYY-MM-DDTHH:mm:ss.SSSZ": "2006-01-02T15:04:05.000Z07:00",
	}
	for format, want := range cases {
		if got := Layout(format); got != want {
			t.Fatalf("Layout(%q) = %q, want %q", format, got, want)
		}
	}
}
