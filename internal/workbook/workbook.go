// Package workbook adapts excelize spreadsheets to the core.Document interface.
package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/rvforms/internal/core"
	"github.com/xuri/excelize/v2"
)

// Workbook is an open spreadsheet. It is not safe for concurrent use.
type Workbook struct {
	f *excelize.File

	// styles caches derived style IDs by base style ID and requested style.
	styles map[styleKey]int

	dateStyles map[int]bool

	copySheet func(from, to int) error
}

type styleKey struct {
	base  int
	style core.CellStyle
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return wrap(f), nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return wrap(f), nil
}

// OpenDocument is a core.OpenFunc backed by OpenReader.
func OpenDocument(r io.Reader) (core.Document, error) {
	return OpenReader(r)
}

// New wraps an existing excelize file.
func New(f *excelize.File) *Workbook {
	return wrap(f)
}

func wrap(f *excelize.File) *Workbook {
	return &Workbook{
		f:          f,
		styles:     make(map[styleKey]int),
		dateStyles: make(map[int]bool),
		copySheet:  f.CopySheet,
	}
}

// File exposes the underlying excelize file.
func (w *Workbook) File() *excelize.File {
	return w.f
}

// Close releases temporary files held by excelize.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Rows returns every row of sheet. Text is the stored cell value, not the
// formatted display text, so numbers keep their full precision. Numbers shown
// through a date format are returned as KindDate carrying the date serial.
func (w *Workbook) Rows(sheet string) ([][]core.Value, error) {
	raw, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", sheet, err)
	}

	rows := make([][]core.Value, len(raw))
	for r, cells := range raw {
		row := make([]core.Value, len(cells))
		for c, text := range cells {
			if text == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := w.f.GetCellType(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("cell type of %s!%s: %w", sheet, name, err)
			}
			var date bool
			if typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber {
				if date, err = w.dateFormatted(sheet, name); err != nil {
					return nil, err
				}
			}
			row[c] = classify(typ, text, date)
		}
		rows[r] = row
	}
	return rows, nil
}

// classify turns an excelize cell type and stored value into a core.Value.
// date reports whether the cell's number format renders a date or time.
func classify(typ excelize.CellType, text string, date bool) core.Value {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return core.String(text)
	case excelize.CellTypeBool:
		return core.Value{Kind: core.KindBool, Text: boolText(text)}
	case excelize.CellTypeDate:
		return core.Value{Kind: core.KindDate, Text: text}
	}

	// Numbers usually carry no explicit type.
	if text == "" {
		return core.Empty
	}
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return core.String(text)
	}
	if date {
		return core.Value{Kind: core.KindDate, Text: text}
	}
	return core.Number(text)
}

func boolText(s string) string {
	switch strings.ToUpper(s) {
	case "1", "TRUE":
		return "true"
	default:
		return "false"
	}
}

// dateFormatted reports whether the number format of cell renders a date.
// Results are cached per style ID.
func (w *Workbook) dateFormatted(sheet, cell string) (bool, error) {
	id, err := w.f.GetCellStyle(sheet, cell)
	if err != nil {
		return false, fmt.Errorf("style of %s!%s: %w", sheet, cell, err)
	}
	if date, ok := w.dateStyles[id]; ok {
		return date, nil
	}

	st, err := w.f.GetStyle(id)
	if err != nil {
		return false, fmt.Errorf("style %d: %w", id, err)
	}
	var date bool
	if st != nil {
		if st.CustomNumFmt != nil {
			date = isDateFormatCode(*st.CustomNumFmt)
		} else {
			date = isBuiltinDateFormat(st.NumFmt)
		}
	}
	w.dateStyles[id] = date
	return date, nil
}

// isBuiltinDateFormat reports whether a built-in number format ID is a date
// or time format, including the East Asian ones.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains date or
// time tokens outside quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	for i := 0; i < len(code); i++ {
		switch c := code[i]; c {
		case '"':
			for i++; i < len(code) && code[i] != '"'; i++ {
			}
		case '[':
			for i++; i < len(code) && code[i] != ']'; i++ {
			}
		case '\\', '_', '*':
			i++
		case 'y', 'Y', 'm', 'M', 'd', 'D', 'h', 'H', 's', 'S':
			return true
		}
	}
	return false
}

// CloneSheet copies source into a new sheet named target.
func (w *Workbook) CloneSheet(source, target string) error {
	from, err := w.f.GetSheetIndex(source)
	if err != nil {
		return err
	}
	if from < 0 {
		return fmt.Errorf("sheet %q does not exist", source)
	}
	if idx, _ := w.f.GetSheetIndex(target); idx >= 0 {
		return fmt.Errorf("sheet %q already exists", target)
	}

	to, err := w.f.NewSheet(target)
	if err != nil {
		return fmt.Errorf("create sheet %q: %w", target, err)
	}
	if err := w.copySheet(from, to); err != nil {
		_ = w.f.DeleteSheet(target)
		return fmt.Errorf("copy %q to %q: %w", source, target, err)
	}
	return nil
}

// DeleteSheet removes sheet.
func (w *Workbook) DeleteSheet(sheet string) error {
	return w.f.DeleteSheet(sheet)
}

// SetCell writes v to cell. Numbers, booleans and dates keep their type;
// everything else is written as text.
func (w *Workbook) SetCell(sheet, cell string, v core.Value) error {
	switch v.Kind {
	case core.KindEmpty:
		return w.f.SetCellValue(sheet, cell, nil)
	case core.KindNumber:
		if n, err := strconv.ParseFloat(v.Text, 64); err == nil {
			return w.f.SetCellValue(sheet, cell, n)
		}
	case core.KindBool:
		if b, err := strconv.ParseBool(v.Text); err == nil {
			return w.f.SetCellBool(sheet, cell, b)
		}
	case core.KindDate:
		if t, ok := w.dateValue(v.Text); ok {
			if err := w.f.SetCellValue(sheet, cell, t); err != nil {
				return err
			}
			return w.ensureDateFormat(sheet, cell)
		}
	}
	return w.f.SetCellStr(sheet, cell, v.Text)
}

// dateValue converts a stored date, either a serial number or ISO 8601 text,
// to a time.
func (w *Workbook) dateValue(text string) (time.Time, bool) {
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		var date1904 bool
		if props, err := w.f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
			date1904 = *props.Date1904
		}
		t, err := excelize.ExcelDateToTime(n, date1904)
		return t, err == nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ensureDateFormat gives cell a date number format unless it already has one.
// excelize only does this for cells without any style.
func (w *Workbook) ensureDateFormat(sheet, cell string) error {
	date, err := w.dateFormatted(sheet, cell)
	if err != nil || date {
		return err
	}
	base, err := w.f.GetCellStyle(sheet, cell)
	if err != nil {
		return err
	}
	st, err := w.f.GetStyle(base)
	if err != nil {
		return err
	}
	if st == nil {
		st = &excelize.Style{}
	}
	st.NumFmt = 14
	st.CustomNumFmt = nil
	id, err := w.f.NewStyle(st)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, cell, cell, id)
}

// StyleCells applies font size and alignment to each cell while keeping the
// rest of the cell's existing style (borders, fills, number formats).
func (w *Workbook) StyleCells(sheet string, cells []string, style core.CellStyle) error {
	for _, cell := range cells {
		base, err := w.f.GetCellStyle(sheet, cell)
		if err != nil {
			return fmt.Errorf("style of %s: %w", cell, err)
		}
		id, err := w.derivedStyle(base, style)
		if err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
		if err := w.f.SetCellStyle(sheet, cell, cell, id); err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
	}
	return nil
}

func (w *Workbook) derivedStyle(base int, style core.CellStyle) (int, error) {
	key := styleKey{base: base, style: style}
	if id, ok := w.styles[key]; ok {
		return id, nil
	}

	st, err := w.f.GetStyle(base)
	if err != nil {
		return 0, err
	}
	if st == nil {
		st = &excelize.Style{}
	}

	font := excelize.Font{}
	if st.Font != nil {
		font = *st.Font
	}
	font.Size = style.FontSize
	st.Font = &font

	align := excelize.Alignment{}
	if st.Alignment != nil {
		align = *st.Alignment
	}
	align.Horizontal = style.Horizontal
	align.Vertical = style.Vertical
	align.WrapText = style.WrapText
	st.Alignment = &align

	id, err := w.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	w.styles[key] = id
	return id, nil
}

// HideSheet hides sheet. excelize will not hide the selected tab, so when
// sheet is active the first other sheet is activated first.
func (w *Workbook) HideSheet(sheet string) error {
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("sheet %q does not exist", sheet)
	}

	if w.f.GetActiveSheetIndex() == idx {
		for _, name := range w.f.GetSheetList() {
			if name == sheet {
				continue
			}
			other, err := w.f.GetSheetIndex(name)
			if err != nil {
				return err
			}
			w.f.SetActiveSheet(other)
			break
		}
	}
	return w.f.SetSheetVisible(sheet, false)
}

// Visible reports whether sheet is shown.
func (w *Workbook) Visible(sheet string) (bool, error) {
	return w.f.GetSheetVisible(sheet)
}

// Write serializes the workbook to out.
func (w *Workbook) Write(out io.Writer) error {
	return w.f.Write(out)
}

var _ core.Document = (*Workbook)(nil)
