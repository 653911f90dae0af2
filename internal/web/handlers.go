package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/rvforms/internal/core"
	rvmw "github.com/JonMunkholm/rvforms/internal/web/middleware"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is how much of a multipart form is kept in memory; the
// rest spills to temporary files.
const multipartMemory = 8 << 20

// StartRunResponse is returned by POST /api/runs.
type StartRunResponse struct {
	RunID    string `json:"runId"`
	Progress string `json:"progress"`
	Result   string `json:"result"`
}

// RunResponse is returned by GET /api/runs/{runID}.
type RunResponse struct {
	*core.RunResult
	Emitted   int    `json:"emitted"`
	UserError string `json:"userError,omitempty"`
	Code      string `json:"code,omitempty"`
	Output    string `json:"output,omitempty"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Templates())
}

// handleStartRun accepts the upload form and starts a background run.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Runs.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, r, fmt.Errorf("file too large: %w", err))
			return
		}
		s.respondError(w, r, fmt.Errorf("invalid form: %w", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	headerRow, err := core.ParseHeaderRow(r.FormValue("header_row"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	opts := core.Options{
		Variant:   core.TemplateVariant(strings.TrimSpace(r.FormValue("template"))),
		Project:   r.FormValue("project"),
		Client:    r.FormValue("client"),
		Reference: r.FormValue("reference"),
		Revision:  r.FormValue("revision"),
		HeaderRow: headerRow,
	}

	ctx := core.ContextWithClientIP(r.Context(), rvmw.ClientIP(r))
	runID, err := s.service.StartRun(ctx, filepath.Base(header.Filename), data, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, StartRunResponse{
		RunID:    runID,
		Progress: "/api/runs/" + runID + "/progress",
		Result:   "/api/runs/" + runID,
	})
}

// handleRunProgress streams progress as server-sent events. The event ID is
// the number of processed rows so a reconnecting client can skip what it saw.
func (s *Server) handleRunProgress(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	lastID := -1
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			lastID = n
		}
	}

	progressCh, err := s.service.SubscribeProgress(runID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case p, ok := <-progressCh:
			if !ok {
				fmt.Fprint(w, "event: complete\ndata: {}\n\n")
				rc.Flush()
				return
			}
			if !p.Phase.Terminal() && p.Current <= lastID {
				continue
			}

			data, _ := json.Marshal(struct {
				core.Progress
				Percent float64 `json:"percent"`
			}{p, p.Percent()})
			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", p.Current, data)
			if err := rc.Flush(); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

// handleRunResult waits for the run and returns its result.
func (s *Server) handleRunResult(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	res, err := s.service.GetResult(r.Context(), runID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := RunResponse{RunResult: res, Emitted: res.Emitted()}
	if res.Error != "" {
		runErr := res.Err
		if runErr == nil {
			runErr = errors.New(res.Error)
		}
		resp.UserError = core.FormatUserError(runErr)
		resp.Code = core.MapError(runErr).Code
	} else {
		resp.Output = "/api/runs/" + runID + "/output"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRunOutput downloads the generated workbook.
func (s *Server) handleRunOutput(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.service.GetOutput(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if strings.EqualFold(filepath.Ext(name), ".xlsm") {
		contentType = "application/vnd.ms-excel.sheet.macroEnabled.12"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.History(r.Context(), parseIntParam(r, "limit", 50))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []core.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// parseIntParam parses a positive integer query parameter.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
