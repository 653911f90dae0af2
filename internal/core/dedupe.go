package core

// Step is the verdict on one data row below the header.
type Step struct {
	Row        int     // 1-based sheet row
	Cells      []Value // Raw cells; nil when the row was skipped
	Identifier Value
	Skip       SkipReason
}

// Accepted reports whether the row should produce a form.
func (s Step) Accepted() bool {
	return s.Skip == SkipNone
}

// RowIterator walks the data rows below a header row and accepts exactly one
// row per distinct identifier, in document order.
//
// Rows are rejected when the key cell is blank, when the identifier cell is
// blank (a continuation of the previous entity), or when the identifier was
// already accepted. The seen set belongs to the iterator, so a new iterator
// starts a new run. It is not safe for concurrent use.
type RowIterator struct {
	rows      [][]Value
	next      int // 0-based index into rows
	keyColumn int
	idColumn  int
	seen      map[Value]struct{}
}

// NewRowIterator creates an iterator over rows strictly below headerRow
// (1-based). keyColumn and idColumn are 0-based.
func NewRowIterator(rows [][]Value, headerRow, keyColumn, idColumn int) *RowIterator {
	start := headerRow
	if start < 0 {
		start = 0
	}
	return &RowIterator{
		rows:      rows,
		next:      start,
		keyColumn: keyColumn,
		idColumn:  idColumn,
		seen:      make(map[Value]struct{}),
	}
}

// Remaining returns how many rows have not been visited yet.
func (it *RowIterator) Remaining() int {
	if it.next >= len(it.rows) {
		return 0
	}
	return len(it.rows) - it.next
}

// Next returns the verdict for the next row. It returns false after the last
// row of the sheet.
func (it *RowIterator) Next() (Step, bool) {
	if it.next >= len(it.rows) {
		return Step{}, false
	}

	row := it.rows[it.next]
	it.next++
	step := Step{Row: it.next}

	if cellAt(row, it.keyColumn).IsEmpty() {
		step.Skip = SkipMissingKey
		return step, true
	}

	id := cellAt(row, it.idColumn)
	step.Identifier = id
	if id.IsFalsy() {
		step.Skip = SkipBlankIdentifier
		return step, true
	}

	if _, dup := it.seen[id]; dup {
		step.Skip = SkipDuplicate
		return step, true
	}

	it.seen[id] = struct{}{}
	step.Cells = row
	return step, true
}

// Accepted drains the iterator and returns the accepted rows only.
func (it *RowIterator) Accepted() []Step {
	var out []Step
	for {
		step, ok := it.Next()
		if !ok {
			return out
		}
		if step.Accepted() {
			out = append(out, step)
		}
	}
}
