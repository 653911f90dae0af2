package core

import (
	"io"
	"time"
)

// TemplateVariant selects one of the fixed output layouts.
type TemplateVariant string

const (
	VariantInstrument TemplateVariant = "Instrument"
	VariantValve      TemplateVariant = "Valve"
)

// SemanticField names a logical attribute independent of the label the
// source document uses for it.
type SemanticField string

// FieldSpec declares one semantic field of a template variant.
type FieldSpec struct {
	Field    SemanticField // Logical name: "tag", "manufacturer", ...
	Variants []string      // Acceptable header labels, in priority order
	Required bool          // Resolution fails when no variant matches
	Cell     string        // Destination cell on the output sheet
}

// ConstantSlot is a destination cell that always receives the same value.
type ConstantSlot struct {
	Cell  string
	Value string
}

// TemplateInfo contains display information about a template variant.
type TemplateInfo struct {
	Variant    TemplateVariant `json:"variant"`
	Label      string          `json:"label"`
	SheetMatch string          `json:"sheetMatch"` // Case-insensitive substring of the template sheet name
	Fields     []string        `json:"fields"`
}

// TemplateDefinition contains everything needed to produce forms for one variant.
// Definitions are immutable values; build them once and pass them explicitly.
type TemplateDefinition struct {
	Info TemplateInfo

	// KeyField is the field whose blank value marks a row as not a data row.
	KeyField SemanticField

	// Fields are resolved and projected in this order.
	Fields []FieldSpec

	// Constants are written after the projected fields.
	Constants []ConstantSlot

	// IdentifierLabels are exact (normalized) header labels accepted for the
	// entity-number column used for de-duplication.
	IdentifierLabels []string

	// Keywords mark a row as the header row when any cell contains one.
	Keywords []string
}

// KeyIndex returns the position of KeyField in Fields, or -1.
func (d TemplateDefinition) KeyIndex() int {
	for i, f := range d.Fields {
		if f.Field == d.KeyField {
			return i
		}
	}
	return -1
}

// StaticLayout holds the cells of the metadata block shared by every variant.
type StaticLayout struct {
	Project   string
	Client    string
	Reference string
	Revision  string
	Date      string
	FormName  string
}

// DefaultStaticLayout is the metadata block position used by both templates.
var DefaultStaticLayout = StaticLayout{
	Project:   "A5",
	Client:    "E5",
	Reference: "A7",
	Revision:  "E7",
	Date:      "I5",
	FormName:  "I7",
}

// StaticFields are the free-text values written to every generated form.
type StaticFields struct {
	Project   string
	Client    string
	Reference string
	Revision  string
	Date      string
}

// CellStyle is the uniform formatting applied to written cells.
type CellStyle struct {
	FontSize   float64
	Horizontal string
	Vertical   string
	WrapText   bool
}

// DefaultFontSize is the font size applied to written cells.
const DefaultFontSize = 11

// Document is the tabular document store the engine reads from and writes to.
// Rows and columns are addressed 0-based in Rows; cells use A1 references.
type Document interface {
	SheetNames() []string
	Rows(sheet string) ([][]Value, error)
	CloneSheet(source, target string) error
	DeleteSheet(sheet string) error
	SetCell(sheet, cell string, v Value) error
	StyleCells(sheet string, cells []string, style CellStyle) error
	HideSheet(sheet string) error
	Write(w io.Writer) error
}

// SaveFunc persists the finished document.
type SaveFunc func(doc Document) error

// RunPhase is a state of the generation state machine.
type RunPhase string

const (
	PhaseIdle            RunPhase = "idle"
	PhaseHeaderResolved  RunPhase = "header_resolved"
	PhaseMappingResolved RunPhase = "mapping_resolved"
	PhaseEmitting        RunPhase = "emitting"
	PhaseTemplateHidden  RunPhase = "template_hidden"
	PhaseSaved           RunPhase = "saved"
	PhaseDone            RunPhase = "done"
	PhaseFailed          RunPhase = "failed"
)

// Terminal reports whether no further transitions follow.
func (p RunPhase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Progress represents the current state of a generation run.
type Progress struct {
	RunID   string   `json:"runId"`
	Phase   RunPhase `json:"phase"`
	Current int      `json:"current"` // Data rows processed so far
	Total   int      `json:"total"`   // Data rows below the header
	Emitted int      `json:"emitted"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Error   string   `json:"error,omitempty"` // Non-empty if Phase is PhaseFailed
}

// Percent returns the progress as a percentage (0-100).
func (p Progress) Percent() float64 {
	if p.Phase == PhaseDone {
		return 100
	}
	if p.Total <= 0 {
		return 0
	}
	pct := float64(p.Current) * 100 / float64(p.Total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ProgressCallback is called after every state transition and data row.
type ProgressCallback func(Progress)

// SkipReason explains why a data row produced no form.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipMissingKey
	SkipBlankIdentifier
	SkipDuplicate
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipMissingKey:
		return "missing key field"
	case SkipBlankIdentifier:
		return "blank identifier"
	case SkipDuplicate:
		return "duplicate identifier"
	default:
		return "unknown"
	}
}

// OutcomeKind is the per-row result of a run.
type OutcomeKind int

const (
	OutcomeEmitted OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

// RowOutcome records what happened to one data row.
type RowOutcome struct {
	Row        int         `json:"row"` // 1-based sheet row
	Kind       OutcomeKind `json:"kind"`
	Identifier string      `json:"identifier,omitempty"`
	FormName   string      `json:"formName,omitempty"` // Set when Kind is OutcomeEmitted
	Reason     SkipReason  `json:"reason,omitempty"`   // Set when Kind is OutcomeSkipped
	Err        error       `json:"-"`                  // Set when Kind is OutcomeFailed
}

// ResolvedField summarizes how one semantic field was mapped.
type ResolvedField struct {
	Field  SemanticField `json:"field"`
	Column int           `json:"column"` // 0-based; -1 when absent
	Label  string        `json:"label,omitempty"`
}

// RunResult contains the final result of a generation run.
type RunResult struct {
	RunID          string          `json:"runId"`
	Variant        TemplateVariant `json:"variant"`
	Project        string          `json:"project"`
	FileName       string          `json:"fileName,omitempty"`
	HeaderRow      int             `json:"headerRow"`
	HeaderFallback bool            `json:"headerFallback"`
	Fields         []ResolvedField `json:"fields,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
	Forms          []string        `json:"forms"`
	Outcomes       []RowOutcome    `json:"outcomes,omitempty"`
	Skipped        int             `json:"skipped"`
	Failed         int             `json:"failed"`
	StartedAt      time.Time       `json:"startedAt"`
	Duration       time.Duration   `json:"duration"`
	Error          string          `json:"error,omitempty"` // Non-empty if the run failed
	Err            error           `json:"-"`
}

// Emitted returns the number of generated forms.
func (r *RunResult) Emitted() int {
	return len(r.Forms)
}
