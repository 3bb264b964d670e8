package coerce

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	minYear = 1900
	maxYear = 2100

	// Numeric timestamps below this magnitude are seconds, otherwise
	// milliseconds.
	secondsThreshold = 1e11
)

// DefaultDateFormat is the storage format used when an attribute declares none.
const DefaultDateFormat = "YYYY-MM-DD"

// knownFormats are tried in order after an explicit attribute format. Day-first
// layouts precede month-first ones.
var knownFormats = []string{
	"YYYY-MM-DDTHH:mm:ss.SSSZ",
	"YYYY-MM-DDTHH:mm:ssZ",
	"YYYY-MM-DDTHH:mm:ss",
	"YYYY-MM-DD HH:mm:ss",
	"YYYY-MM-DD",
	"YYYY/MM/DD",
	"DD/MM/YYYY",
	"DD/MM/YYYY HH:mm",
	"DD-MM-YYYY",
	"DD.MM.YYYY",
	"MM/DD/YYYY",
	"MMMM Do, YYYY",
	"MMM D, YYYY",
	"Do MMMM YYYY",
	"D MMM YYYY",
	"dddd, MMMM Do YYYY",
}

var (
	knownLayouts = func() []string {
		out := make([]string, len(knownFormats))
		for i, format := range knownFormats {
			out[i] = Layout(format)
		}
		return out
	}()

	ordinalSuffix = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)
)

// ParseDate converts value into a time. It accepts times, records carrying a
// date-like "text" field, numeric timestamps (seconds or milliseconds) and
// text. Text is tried against format (moment-style tokens) when given, then
// the known formats, then one lenient parse. Years outside [1900, 2100] are
// rejected.
func ParseDate(value any, format string) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return checkYear(v)
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return checkYear(*v)
	case string:
		if t, ok := parseStrict(v, format); ok {
			return t, true
		}
		return parseLenient(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromTimestamp(f)
	}
	if f, ok := numberValue(value); ok {
		return fromTimestamp(f)
	}
	if record, ok := AsRecord(value); ok {
		if text, ok := record["text"].(string); ok {
			return ParseDate(text, format)
		}
	}
	return time.Time{}, false
}

// FormatDate renders t using a moment-style format. An empty format uses
// DefaultDateFormat.
func FormatDate(t time.Time, format string) string {
	if strings.TrimSpace(format) == "" {
		format = DefaultDateFormat
	}
	out := t.Format(layout(format, true))
	if strings.Contains(out, ordinalMarker) {
		out = strings.ReplaceAll(out, ordinalMarker, ordinal(t.Day()))
	}
	return out
}

func parseStrict(raw, format string) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}
	text = ordinalSuffix.ReplaceAllString(text, "$1")

	if strings.TrimSpace(format) != "" {
		if t, err := time.ParseInLocation(Layout(format), text, time.UTC); err == nil {
			if t, ok := checkYear(t); ok {
				return t, true
			}
		}
	}
	for _, candidate := range knownLayouts {
		t, err := time.ParseInLocation(candidate, text, time.UTC)
		if err != nil {
			continue
		}
		if t, ok := checkYear(t); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLenient(raw string) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return checkYear(t)
}

func fromTimestamp(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	var t time.Time
	if math.Abs(f) < secondsThreshold {
		sec, frac := math.Modf(f)
		t = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	} else {
		t = time.UnixMilli(int64(f)).UTC()
	}
	return checkYear(t)
}

func checkYear(t time.Time) (time.Time, bool) {
	if y := t.Year(); y < minYear || y > maxYear {
		return time.Time{}, false
	}
	return t, true
}

func ordinal(day int) string {
	suffix := "th"
	switch day % 100 {
	case 11, 12, 13:
	default:
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(day) + suffix
}
