package core

// generate.go drives one generation run.
//
// A run is synchronous and single-threaded. It moves through the phases
//
//	idle → header_resolved → mapping_resolved → emitting → template_hidden → saved → done
//
// and ends in failed on the first fatal error. Setup errors (header, mapping,
// template) abort before any sheet is cloned. Errors on a single row are
// recorded, logged and skipped; the form counter only advances when a form
// is actually written, so names stay gapless.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/rvforms/internal/logging"
	"github.com/google/uuid"
)

// DefaultDateFormat renders the run date, e.g. "07 MAR 2025" after upper-casing.
const DefaultDateFormat = "02 Jan 2006"

// GeneratorConfig tunes a Generator. Zero values select defaults.
type GeneratorConfig struct {
	HeaderScanRows int
	FontSize       float64
	DateFormat     string
}

// Generator produces forms from a source document. It holds only immutable
// configuration, so one Generator can serve many runs.
type Generator struct {
	templates      *Registry
	headerScanRows int
	emitter        *RecordEmitter
	dateFormat     string
	now            func() time.Time
	newID          func() string
}

// NewGenerator creates a Generator for the given template definitions.
func NewGenerator(templates *Registry, cfg GeneratorConfig) *Generator {
	if cfg.HeaderScanRows <= 0 {
		cfg.HeaderScanRows = DefaultHeaderScanRows
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	return &Generator{
		templates:      templates,
		headerScanRows: cfg.HeaderScanRows,
		emitter:        NewRecordEmitter(cfg.FontSize),
		dateFormat:     cfg.DateFormat,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// Templates returns the registry the generator was built with.
func (g *Generator) Templates() *Registry {
	return g.templates
}

// RunRequest bundles the inputs of one run.
type RunRequest struct {
	RunID    string // Optional; generated when empty
	Document Document
	Options  Options
	Save     SaveFunc         // Called once after the template is hidden; nil skips saving
	Progress ProgressCallback // Optional
	Log      *slog.Logger     // Append-only run log; nil discards
}

// run carries the mutable state of one run.
type run struct {
	g        *Generator
	req      RunRequest
	def      TemplateDefinition
	result   *RunResult
	progress Progress
	log      *slog.Logger // operational log
	runLog   *slog.Logger // human-readable run log
}

// Run executes a generation run to completion. It blocks until the document
// has been saved or a fatal error occurred. On failure the returned result
// is still populated with whatever was known at the time.
func (g *Generator) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	runID := req.RunID
	if runID == "" {
		runID = g.newID()
	}

	r := &run{
		g:   g,
		req: req,
		result: &RunResult{
			RunID:     runID,
			Variant:   req.Options.Variant,
			Project:   req.Options.Project,
			FileName:  req.Options.FileName,
			Forms:     []string{},
			StartedAt: g.now(),
		},
		progress: Progress{RunID: runID, Phase: PhaseIdle},
		log:      logging.WithFields(ctx, "run_id", runID, "template", req.Options.Variant),
		runLog:   req.Log,
	}
	if r.runLog == nil {
		r.runLog = slog.New(slog.DiscardHandler)
	}

	err := r.execute()
	r.result.Duration = time.Since(r.result.StartedAt)
	if err != nil {
		r.fail(err)
		return r.result, err
	}

	r.report(PhaseDone)
	r.runLog.Info("RV form generation completed successfully", "forms", len(r.result.Forms))
	r.log.Info("run completed",
		"forms", len(r.result.Forms),
		"skipped", r.result.Skipped,
		"failed", r.result.Failed,
		"duration_ms", r.result.Duration.Milliseconds(),
	)
	return r.result, nil
}

func (r *run) execute() error {
	opts := r.req.Options
	if err := ValidateOptions(opts); err != nil {
		return err
	}
	if r.req.Document == nil {
		return fmt.Errorf("no document provided")
	}

	def, ok := r.g.templates.Get(opts.Variant)
	if !ok {
		return fmt.Errorf("unknown template type %q", opts.Variant)
	}
	r.def = def
	r.result.Variant = def.Info.Variant

	r.report(PhaseIdle)
	r.runLog.Info("Starting RV form generation", "project", opts.Project, "template", def.Info.Variant, "file", opts.FileName)

	doc := r.req.Document
	sheets := doc.SheetNames()
	if len(sheets) == 0 {
		return ErrNoDataSheet
	}
	template, err := FindSheet(sheets, def.Info.SheetMatch)
	if err != nil {
		return err
	}
	dataSheet := sheets[0]

	rows, err := doc.Rows(dataSheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", dataSheet, err)
	}

	// Header row
	locator := HeaderLocator{MaxRows: r.g.headerScanRows, Keywords: def.Keywords}
	headerRow, usedFallback, err := locator.Locate(rows, opts.HeaderRow)
	if err != nil {
		return err
	}
	r.result.HeaderRow = headerRow
	r.result.HeaderFallback = usedFallback
	if usedFallback {
		r.runLog.Info("Auto-detect failed. Using fallback header row", "row", headerRow)
	} else {
		r.runLog.Info("Detected header row", "row", headerRow)
	}
	r.report(PhaseHeaderResolved)

	// Field mapping
	var header []Value
	if headerRow-1 < len(rows) {
		header = rows[headerRow-1]
	}
	mapping, warnings, err := Resolve(header, def)
	for _, w := range warnings {
		r.result.Warnings = append(r.result.Warnings, w.String())
		r.runLog.Warn("Field not found", "field", w.Field, "possible_names", strings.Join(w.Tried, ", "))
		r.log.Warn("field unresolved", "field", w.Field)
	}
	if err != nil {
		return err
	}
	r.result.Fields = mapping.Summary()

	idCol, idLabel, idFound := ResolveIdentifier(header, def.IdentifierLabels)
	if !idFound {
		r.runLog.Warn("Identifier column not found, using first column", "possible_names", strings.Join(def.IdentifierLabels, ", "))
	} else {
		r.log.Debug("identifier column resolved", "label", idLabel, "column", idCol)
	}
	r.report(PhaseMappingResolved)

	// Rows
	keyCol := mapping.At(def.KeyIndex()).Index
	it := NewRowIterator(rows, headerRow, keyCol, idCol)
	r.progress.Total = it.Remaining()
	r.emitRows(it, mapping, template)

	// Terminal transitions
	if err := doc.HideSheet(template); err != nil {
		return fmt.Errorf("hide template sheet: %w", err)
	}
	r.report(PhaseTemplateHidden)

	if r.req.Save != nil {
		if err := r.req.Save(doc); err != nil {
			return &SaveError{Err: err}
		}
	}
	r.report(PhaseSaved)
	return nil
}

// emitRows consumes the iterator, writing one form per accepted row.
func (r *run) emitRows(it *RowIterator, mapping FieldMapping, template string) {
	static := r.req.Options.Static(strings.ToUpper(r.g.now().Format(r.g.dateFormat)))
	counter := 1

	for {
		step, ok := it.Next()
		if !ok {
			return
		}

		outcome := RowOutcome{Row: step.Row, Identifier: step.Identifier.Text}

		if !step.Accepted() {
			outcome.Kind = OutcomeSkipped
			outcome.Reason = step.Skip
			r.result.Skipped++
			r.progress.Skipped++
			r.runLog.Info("Skipping row", "row", step.Row, "reason", step.Skip.String(), "identifier", step.Identifier.Text)
		} else {
			formName := FormName(counter)
			if err := r.emitRow(step, mapping, template, formName, static); err != nil {
				rowErr := &RowProcessingError{Row: step.Row, Identifier: step.Identifier.Text, Err: err}
				outcome.Kind = OutcomeFailed
				outcome.Err = rowErr
				r.result.Failed++
				r.progress.Failed++
				r.runLog.Error("Error processing a row", "row", step.Row, "error", rowErr.Error())
				r.log.Warn("row failed", "row", step.Row, "error", err)
			} else {
				counter++
				outcome.Kind = OutcomeEmitted
				outcome.FormName = formName
				r.result.Forms = append(r.result.Forms, formName)
				r.progress.Emitted++
				r.runLog.Info("Processed", "form", formName, "identifier", step.Identifier.Text)
			}
		}

		r.result.Outcomes = append(r.result.Outcomes, outcome)
		r.progress.Current++
		r.report(PhaseEmitting)
	}
}

// emitRow projects and writes a single form. A panic inside a Document
// implementation is turned into an error so only this row is lost.
func (r *run) emitRow(step Step, mapping FieldMapping, template, formName string, static StaticFields) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure: %v", p)
			_ = r.req.Document.DeleteSheet(formName)
		}
	}()

	rec := Project(step.Cells, mapping, r.def)
	rec.FormName = formName
	return r.g.emitter.Emit(r.req.Document, template, rec, static)
}

func (r *run) report(phase RunPhase) {
	r.progress.Phase = phase
	if r.req.Progress != nil {
		r.req.Progress(r.progress)
	}
}

func (r *run) fail(err error) {
	r.result.Error = err.Error()
	r.result.Err = err
	r.progress.Error = err.Error()
	r.report(PhaseFailed)

	r.runLog.Error("Error", "error", err.Error())

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		r.log.Info("run rejected", "error", err)
		return
	}
	r.log.Error("run failed", "error", err, "code", MapError(err).Code)
}

// FindSheet returns the first sheet whose name contains match, ignoring case.
func FindSheet(sheets []string, match string) (string, error) {
	m := strings.ToLower(match)
	for _, name := range sheets {
		if strings.Contains(strings.ToLower(name), m) {
			return name, nil
		}
	}
	return "", &TemplateNotFoundError{Match: match}
}
