package httpapi

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// handleInfo processes GET /.
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Message:     "Welcome to the GophForge API",
		Environment: h.opts.Environment,
		Database: databaseInfo{
			Type: h.opts.DatabaseType,
			URL:  h.opts.DatabaseURL,
		},
		Timestamp: h.now().Format(time.RFC3339Nano),
	})
}

// handleHealth processes GET /healthz.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.items.Ping(ctx); err != nil {
		h.logger.Warn(ctx, "database ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
