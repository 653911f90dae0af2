package web

import (
	"net/http"

	"github.com/JonMunkholm/rvforms/internal/logging"
	"github.com/JonMunkholm/rvforms/internal/web/templates"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(s.service.Templates()).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}
