package core

import "fmt"

// FormNamePrefix is prepended to the sequence number of generated sheets.
const FormNamePrefix = "RV"

// FormName returns the sheet name for the n-th generated form (1-based).
func FormName(n int) string {
	return fmt.Sprintf("%s%02d", FormNamePrefix, n)
}

// Entry is one value destined for a fixed cell of the output sheet.
type Entry struct {
	Cell  string
	Value Value
}

// OutputRecord is the projected content of one form.
type OutputRecord struct {
	FormName string
	Entries  []Entry
}

// Project reads a data row through the mapping and produces the values for
// the variant's fixed cells.
//
// The key field keeps only the first line of a multi-line cell. Fields with no
// source column produce "N/A". Constant slots are appended last.
func Project(row []Value, mapping FieldMapping, def TemplateDefinition) OutputRecord {
	rec := OutputRecord{
		Entries: make([]Entry, 0, len(def.Fields)+len(def.Constants)),
	}

	for i, spec := range def.Fields {
		col := mapping.At(i)
		if !col.Valid {
			rec.Entries = append(rec.Entries, Entry{Cell: spec.Cell, Value: String(NotAvailable)})
			continue
		}

		raw := cellAt(row, col.Index)
		if spec.Field == def.KeyField && raw.IsString() {
			raw = String(FirstLine(raw.Text))
		}
		rec.Entries = append(rec.Entries, Entry{Cell: spec.Cell, Value: Normalize(raw)})
	}

	for _, c := range def.Constants {
		rec.Entries = append(rec.Entries, Entry{Cell: c.Cell, Value: String(c.Value)})
	}

	return rec
}
