package core

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// ----------------------------------------------------------------------------
// In-memory Document
// ----------------------------------------------------------------------------

type fakeSheet struct {
	rows   [][]Value
	cells  map[string]Value
	styled map[string]CellStyle
	hidden bool
}

// fakeDoc is an in-memory Document. Sheet order is kept in names.
type fakeDoc struct {
	names  []string
	sheets map[string]*fakeSheet

	// failSet, when set, is consulted before every SetCell.
	failSet  func(sheet, cell string) error
	failHide error
	failRows error
	hides    int
	written  int
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{sheets: make(map[string]*fakeSheet)}
}

func (d *fakeDoc) addSheet(name string, rows [][]Value) *fakeDoc {
	d.names = append(d.names, name)
	d.sheets[name] = &fakeSheet{
		rows:   rows,
		cells:  make(map[string]Value),
		styled: make(map[string]CellStyle),
	}
	return d
}

func (d *fakeDoc) SheetNames() []string {
	return append([]string(nil), d.names...)
}

func (d *fakeDoc) Rows(sheet string) ([][]Value, error) {
	if d.failRows != nil {
		return nil, d.failRows
	}
	s, ok := d.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q does not exist", sheet)
	}
	return s.rows, nil
}

func (d *fakeDoc) CloneSheet(source, target string) error {
	src, ok := d.sheets[source]
	if !ok {
		return fmt.Errorf("sheet %q does not exist", source)
	}
	if _, exists := d.sheets[target]; exists {
		return fmt.Errorf("sheet %q already exists", target)
	}
	clone := &fakeSheet{
		cells:  make(map[string]Value, len(src.cells)),
		styled: make(map[string]CellStyle),
	}
	for k, v := range src.cells {
		clone.cells[k] = v
	}
	d.names = append(d.names, target)
	d.sheets[target] = clone
	return nil
}

func (d *fakeDoc) DeleteSheet(sheet string) error {
	if _, ok := d.sheets[sheet]; !ok {
		return fmt.Errorf("sheet %q does not exist", sheet)
	}
	delete(d.sheets, sheet)
	for i, n := range d.names {
		if n == sheet {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
	return nil
}

func (d *fakeDoc) SetCell(sheet, cell string, v Value) error {
	if d.failSet != nil {
		if err := d.failSet(sheet, cell); err != nil {
			return err
		}
	}
	s, ok := d.sheets[sheet]
	if !ok {
		return fmt.Errorf("sheet %q does not exist", sheet)
	}
	s.cells[cell] = v
	return nil
}

func (d *fakeDoc) StyleCells(sheet string, cells []string, style CellStyle) error {
	s, ok := d.sheets[sheet]
	if !ok {
		return fmt.Errorf("sheet %q does not exist", sheet)
	}
	for _, c := range cells {
		s.styled[c] = style
	}
	return nil
}

func (d *fakeDoc) HideSheet(sheet string) error {
	if d.failHide != nil {
		return d.failHide
	}
	s, ok := d.sheets[sheet]
	if !ok {
		return fmt.Errorf("sheet %q does not exist", sheet)
	}
	d.hides++
	s.hidden = true
	return nil
}

func (d *fakeDoc) Write(w io.Writer) error {
	d.written++
	names := d.SheetNames()
	sort.Strings(names)
	_, err := io.WriteString(w, strings.Join(names, ","))
	return err
}

func (d *fakeDoc) cell(sheet, cell string) Value {
	s, ok := d.sheets[sheet]
	if !ok {
		return Empty
	}
	return s.cells[cell]
}

func (d *fakeDoc) has(sheet string) bool {
	_, ok := d.sheets[sheet]
	return ok
}

var _ Document = (*fakeDoc)(nil)

// ----------------------------------------------------------------------------
// Fixtures
// ----------------------------------------------------------------------------

// testDefinition is a small instrument-like layout.
func testDefinition() TemplateDefinition {
	return TemplateDefinition{
		Info: TemplateInfo{
			Variant:    VariantInstrument,
			Label:      "Instrument",
			SheetMatch: "RV Instrument",
		},
		KeyField: "tag",
		Fields: []FieldSpec{
			{Field: "tag", Variants: []string{"tag", "tag no"}, Required: true, Cell: "A11"},
			{Field: "manufacturer", Variants: []string{"manufacturer", "make"}, Cell: "C11"},
			{Field: "model", Variants: []string{"model"}, Cell: "E11"},
			{Field: "unit", Variants: []string{"unit", "units"}, Cell: "H14"},
		},
		Constants:        []ConstantSlot{{Cell: "I14", Value: NotAvailable}},
		IdentifierLabels: []string{"no.", "no", "item no.", "item no", "instrument no."},
		Keywords:         []string{"tag", "manufacturer", "model", "instrument"},
	}
}

func testRegistry() *Registry {
	return MustRegistry(testDefinition())
}

func testOptions() Options {
	return Options{
		Variant:   VariantInstrument,
		Project:   "Plant 7",
		Client:    "Acme",
		Reference: "DOC-001",
		Revision:  "A",
		FileName:  "schedule.xlsx",
	}
}

func strs(values ...string) []Value {
	row := make([]Value, len(values))
	for i, v := range values {
		if v == "" {
			row[i] = Empty
			continue
		}
		row[i] = String(v)
	}
	return row
}

// scheduleRows is a data sheet with title rows above a header at row 3.
//
//	row 3: No. | Tag | Manufacturer | Model
//	row 4: 1   | TT-100 | Rosemount | 3144P
//	row 5: "" | TT-100b | (continuation row, blank identifier)
//	row 6: 1   | TT-100c | (duplicate of row 4)
//	row 7: 2   | PT-200 | emerson | n/a
func scheduleRows() [][]Value {
	return [][]Value{
		strs("Project schedule"),
		strs(),
		strs("No.", "Tag", "Manufacturer", "Model"),
		{Number("1"), String("TT-100"), String("Rosemount"), String("3144P")},
		{Empty, String("TT-100b"), String("Rosemount"), String("3144P")},
		{Number("1"), String("TT-100c"), String("Yokogawa"), String("EJA")},
		{Number("2"), String("PT-200"), String("emerson"), String("n/a")},
	}
}

func scheduleDoc() *fakeDoc {
	return newFakeDoc().
		addSheet("Schedule", scheduleRows()).
		addSheet("RV Instrument Template", nil)
}
