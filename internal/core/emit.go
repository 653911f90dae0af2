package core

import "fmt"

// RecordEmitter writes one form per accepted row by cloning the template.
type RecordEmitter struct {
	Layout StaticLayout
	Style  CellStyle
}

// NewRecordEmitter returns an emitter using the shared metadata layout and a
// centered, wrapped style at the given font size.
func NewRecordEmitter(fontSize float64) *RecordEmitter {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &RecordEmitter{
		Layout: DefaultStaticLayout,
		Style: CellStyle{
			FontSize:   fontSize,
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	}
}

// Emit clones template into a sheet named rec.FormName and fills it.
// If any write fails the new sheet is removed again, leaving the document as
// it was before the call.
func (e *RecordEmitter) Emit(doc Document, template string, rec OutputRecord, static StaticFields) (err error) {
	if rec.FormName == "" {
		return fmt.Errorf("record has no form name")
	}

	if err := doc.CloneSheet(template, rec.FormName); err != nil {
		return fmt.Errorf("clone template: %w", err)
	}
	defer func() {
		if err != nil {
			if delErr := doc.DeleteSheet(rec.FormName); delErr != nil {
				err = fmt.Errorf("%w (cleanup: %v)", err, delErr)
			}
		}
	}()

	entries := e.staticEntries(static, rec.FormName)
	entries = append(entries, rec.Entries...)

	cells := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := doc.SetCell(rec.FormName, entry.Cell, entry.Value); err != nil {
			return fmt.Errorf("write %s: %w", entry.Cell, err)
		}
		cells = append(cells, entry.Cell)
	}

	if err := doc.StyleCells(rec.FormName, cells, e.Style); err != nil {
		return fmt.Errorf("style cells: %w", err)
	}
	return nil
}

func (e *RecordEmitter) staticEntries(static StaticFields, formName string) []Entry {
	return []Entry{
		{Cell: e.Layout.Project, Value: String(static.Project)},
		{Cell: e.Layout.Client, Value: String(static.Client)},
		{Cell: e.Layout.Reference, Value: String(static.Reference)},
		{Cell: e.Layout.Revision, Value: String(static.Revision)},
		{Cell: e.Layout.Date, Value: String(static.Date)},
		{Cell: e.Layout.FormName, Value: String(formName)},
	}
}
