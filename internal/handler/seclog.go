package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/seclog"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/server/authctx"
)

// SecurityLogHandler exposes the in-memory audit trail to admins.
type SecurityLogHandler struct {
	Audit *seclog.Log
}

func (h SecurityLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/security/logs", h.list)
	r.Delete("/security/logs", h.clear)
}

func (h SecurityLogHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   h.Audit.Len(),
		"entries": h.Audit.Recent(limit),
	})
}

func (h SecurityLogHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.Audit.Clear()

	// The clear itself is the first entry of the fresh buffer.
	entry := seclog.Entry{
		Level: seclog.LevelWarning, Event: seclog.EventLogCleared,
		Path: r.URL.Path, Success: true,
	}
	if user := authctx.FromContext(r.Context()); user != nil {
		entry.UserID = &user.ID
		entry.Role = user.Role
	}
	h.Audit.Record(entry)

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
