package core

import "strings"

// DefaultHeaderScanRows is how many leading rows are searched for the header.
const DefaultHeaderScanRows = 10

// HeaderLocator finds the header row of a sheet by keyword matching.
type HeaderLocator struct {
	MaxRows  int      // Rows scanned from the top; DefaultHeaderScanRows if zero
	Keywords []string // Lower-case substrings that identify a header cell
}

// Locate returns the 1-based header row. When detection fails and fallback is
// positive, fallback is returned as-is with usedFallback set.
func (l HeaderLocator) Locate(rows [][]Value, fallback int) (row int, usedFallback bool, err error) {
	maxRows := l.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultHeaderScanRows
	}

	row, err = LocateHeader(rows, maxRows, l.Keywords)
	if err == nil {
		return row, false, nil
	}
	if fallback > 0 {
		return fallback, true, nil
	}
	return 0, false, err
}

// LocateHeader scans rows 1..maxRows and returns the first row in which any
// cell, lower-cased, contains any keyword. Rows beyond the end of the sheet
// are treated as blank.
func LocateHeader(rows [][]Value, maxRows int, keywords []string) (int, error) {
	limit := maxRows
	if len(rows) < limit {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		if rowHasKeyword(rows[i], keywords) {
			return i + 1, nil
		}
	}
	return 0, &HeaderNotFoundError{ScannedRows: maxRows}
}

func rowHasKeyword(row []Value, keywords []string) bool {
	for _, cell := range row {
		if cell.IsEmpty() {
			continue
		}
		text := strings.ToLower(cell.Text)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}
