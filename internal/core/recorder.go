package core

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RunSummary is the history record kept for every finished run.
type RunSummary struct {
	RunID      string          `json:"runId"`
	Variant    TemplateVariant `json:"variant"`
	Project    string          `json:"project"`
	FileName   string          `json:"fileName"`
	Forms      int             `json:"forms"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	HeaderRow  int             `json:"headerRow"`
	Error      string          `json:"error,omitempty"`
	ClientIP   string          `json:"clientIp,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	DurationMS int64           `json:"durationMs"`
}

// Succeeded reports whether the run produced a workbook.
func (s RunSummary) Succeeded() bool {
	return s.Error == ""
}

// SummarizeRun condenses a result into a history record.
func SummarizeRun(r *RunResult, clientIP string) RunSummary {
	return RunSummary{
		RunID:      r.RunID,
		Variant:    r.Variant,
		Project:    r.Project,
		FileName:   r.FileName,
		Forms:      len(r.Forms),
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		HeaderRow:  r.HeaderRow,
		Error:      r.Error,
		ClientIP:   clientIP,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
	}
}

// RunRecorder stores run history.
type RunRecorder interface {
	RecordRun(ctx context.Context, s RunSummary) error
	RecentRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// DefaultHistorySize is how many runs MemoryHistory keeps.
const DefaultHistorySize = 100

// MemoryHistory is a RunRecorder that keeps the most recent runs in memory.
// It is used when no database is configured.
type MemoryHistory struct {
	mu   sync.Mutex
	size int
	runs []RunSummary // oldest first
}

// NewMemoryHistory keeps at most size runs; DefaultHistorySize if size <= 0.
func NewMemoryHistory(size int) *MemoryHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MemoryHistory{size: size}
}

func (h *MemoryHistory) RecordRun(_ context.Context, s RunSummary) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, s)
	if over := len(h.runs) - h.size; over > 0 {
		h.runs = append(h.runs[:0:0], h.runs[over:]...)
	}
	return nil
}

func (h *MemoryHistory) RecentRuns(_ context.Context, limit int) ([]RunSummary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > len(h.runs) {
		limit = len(h.runs)
	}
	out := make([]RunSummary, 0, limit)
	for i := len(h.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.runs[i])
	}
	return out, nil
}

// OutputFileName names the generated workbook "<project>-RVs<ext>", keeping
// the macro-enabled extension of the input when it has one.
func OutputFileName(project, inputName string) string {
	ext := strings.ToLower(filepath.Ext(inputName))
	if ext != ".xlsx" && ext != ".xlsm" {
		ext = ".xlsx"
	}

	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(project))
	if name == "" {
		name = "output"
	}
	return name + "-RVs" + ext
}
