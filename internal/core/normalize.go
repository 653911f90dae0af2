package core

import "strings"

// NotAvailable is written for blank cells and for fields with no source column.
const NotAvailable = "N/A"

// Normalize canonicalizes a raw cell value for output.
//
// Blank cells and any spelling of "n/a" become "N/A", other strings are
// upper-cased, and typed values (numbers, dates, booleans) pass through.
func Normalize(v Value) Value {
	switch v.Kind {
	case KindEmpty:
		return String(NotAvailable)
	case KindString:
		if strings.ToLower(strings.TrimSpace(v.Text)) == "n/a" {
			return String(NotAvailable)
		}
		return String(strings.ToUpper(v.Text))
	default:
		return v
	}
}

// FirstLine returns the first line of s, trimmed. Cells listing several tags
// on separate lines are reduced to the first tag.
func FirstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// normalizeLabel produces the lookup key for a header label.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
