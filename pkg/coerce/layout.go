package coerce

import "strings"

// ordinalMarker stands in for an ordinal day ("1st") while formatting; Go
// layouts have no ordinal directive.
const ordinalMarker = "\x00"

// formatTokens maps moment-style tokens to Go layout elements. Longer tokens
// come first so "MMMM" wins over "MM".
var formatTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"DD", "02"},
	{"Do", "2"},
	{"D", "2"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSS", "000"},
	{"A", "PM"},
	{"a", "pm"},
	{"ZZ", "-0700"},
	{"Z", "Z07:00"},
}

// Layout converts a moment-style date format (e.g. "DD/MM/YYYY",
// "MMMM Do, YYYY") into a Go time layout. Text inside square brackets is kept
// literally.
func Layout(format string) string {
	return layout(format, false)
}

func layout(format string, formatting bool) string {
	var b strings.Builder
	b.Grow(len(format) + 8)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i:], ']')
			if end > 0 {
				b.WriteString(format[i+1 : i+end])
				i += end + 1
				continue
			}
		}

		matched := false
		for _, tok := range formatTokens {
			if !strings.HasPrefix(format[i:], tok.token) {
				continue
			}
			if tok.token == "SSS" && b.Len() > 0 && !strings.HasSuffix(b.String(), ".") {
				b.WriteByte('.')
			}
			if tok.token == "Do" && formatting {
				b.WriteString(ordinalMarker)
			} else {
				b.WriteString(tok.layout)
			}
			i += len(tok.token)
			matched = true
			break
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
