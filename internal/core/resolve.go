package core

// resolve.go maps semantic fields to source columns.
//
// Resolution is first-match-wins: for each field, variants are tried in their
// declared order and the header labels are scanned left to right; the first
// label containing the variant (case-insensitive) decides the column. There
// is no scoring or longest-match preference, so variant order matters.

import "strings"

// HeaderIndex maps normalized header labels to column positions.
// Keys keep the order in which they first appeared in the header row; a
// label repeated later in the row keeps its position but takes the later column.
type HeaderIndex struct {
	keys []string
	cols map[string]int
}

// MakeHeaderIndex builds a HeaderIndex from a header row.
// Blank labels are skipped.
func MakeHeaderIndex(header []Value) HeaderIndex {
	idx := HeaderIndex{cols: make(map[string]int, len(header))}
	for i, h := range header {
		if h.IsFalsy() {
			continue
		}
		key := normalizeLabel(h.Text)
		if key == "" {
			continue
		}
		if _, seen := idx.cols[key]; !seen {
			idx.keys = append(idx.keys, key)
		}
		idx.cols[key] = i
	}
	return idx
}

// Lookup returns the column of an exact normalized label.
func (h HeaderIndex) Lookup(label string) (int, bool) {
	col, ok := h.cols[normalizeLabel(label)]
	return col, ok
}

// Labels returns the normalized labels in first-appearance order.
func (h HeaderIndex) Labels() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// match returns the first label containing variant as a substring.
func (h HeaderIndex) match(variant string) (string, int, bool) {
	v := strings.ToLower(variant)
	for _, key := range h.keys {
		if strings.Contains(key, v) {
			return key, h.cols[key], true
		}
	}
	return "", 0, false
}

// Column is an optional column position.
type Column struct {
	Index int
	Valid bool // False when the field has no source column
}

// FieldMapping holds one optional column per declared field of a template
// variant, positionally aligned with TemplateDefinition.Fields. It is built
// once per run and never modified.
type FieldMapping struct {
	fields  []SemanticField
	columns []Column
	labels  []string
}

// Len returns the number of declared fields.
func (m FieldMapping) Len() int {
	return len(m.columns)
}

// At returns the column of the i-th declared field.
func (m FieldMapping) At(i int) Column {
	if i < 0 || i >= len(m.columns) {
		return Column{}
	}
	return m.columns[i]
}

// Lookup returns the column of a field by name.
func (m FieldMapping) Lookup(f SemanticField) Column {
	for i, name := range m.fields {
		if name == f {
			return m.columns[i]
		}
	}
	return Column{}
}

// Summary describes the mapping for logs and results.
func (m FieldMapping) Summary() []ResolvedField {
	out := make([]ResolvedField, len(m.fields))
	for i, f := range m.fields {
		rf := ResolvedField{Field: f, Column: -1}
		if m.columns[i].Valid {
			rf.Column = m.columns[i].Index
			rf.Label = m.labels[i]
		}
		out[i] = rf
	}
	return out
}

// Resolve maps every field of def to a column of the header row.
//
// Optional fields without a matching label resolve to an invalid Column and
// are reported as warnings. A required field without a match fails the whole
// resolution with *RequiredFieldMissingError.
func Resolve(header []Value, def TemplateDefinition) (FieldMapping, []Warning, error) {
	idx := MakeHeaderIndex(header)
	return resolveIndex(idx, def)
}

func resolveIndex(idx HeaderIndex, def TemplateDefinition) (FieldMapping, []Warning, error) {
	m := FieldMapping{
		fields:  make([]SemanticField, len(def.Fields)),
		columns: make([]Column, len(def.Fields)),
		labels:  make([]string, len(def.Fields)),
	}
	var warnings []Warning

	for i, spec := range def.Fields {
		m.fields[i] = spec.Field

		found := false
		for _, variant := range spec.Variants {
			if label, col, ok := idx.match(variant); ok {
				m.columns[i] = Column{Index: col, Valid: true}
				m.labels[i] = label
				found = true
				break
			}
		}
		if found {
			continue
		}

		if spec.Required || spec.Field == def.KeyField {
			return FieldMapping{}, warnings, &RequiredFieldMissingError{
				Field: spec.Field,
				Tried: append([]string(nil), spec.Variants...),
			}
		}
		warnings = append(warnings, Warning{
			Field: spec.Field,
			Tried: append([]string(nil), spec.Variants...),
		})
	}

	return m, warnings, nil
}

// ResolveIdentifier returns the entity-number column: the first of labels
// present verbatim (after normalization) in the header. When none is present
// the first column is used.
func ResolveIdentifier(header []Value, labels []string) (col int, label string, found bool) {
	idx := MakeHeaderIndex(header)
	for _, l := range labels {
		if c, ok := idx.Lookup(l); ok {
			return c, normalizeLabel(l), true
		}
	}
	return 0, "", false
}
