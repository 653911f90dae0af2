package web

// errors.go turns errors into HTTP responses.
//
// The technical error is logged with the request ID; the client receives the
// coded user message from core.MapError. The status code is chosen from the
// error's kind.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/rvforms/internal/core"
	"github.com/JonMunkholm/rvforms/internal/logging"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Action  string                 `json:"action,omitempty"`
	Code    string                 `json:"code"`
	Fields  []core.ValidationError `json:"fields,omitempty"`
}

// respondError logs err and writes a user-facing JSON error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Fields = verrs
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}
	writeJSON(w, status, resp)
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var (
		verrs  core.ValidationErrors
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.Is(err, core.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoOutput):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &verrs), errors.Is(err, core.ErrNoFile):
		return http.StatusBadRequest
	}

	text := strings.ToLower(err.Error())
	if strings.Contains(text, "unknown template") || strings.Contains(text, "invalid header row") ||
		strings.Contains(text, "invalid form") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
