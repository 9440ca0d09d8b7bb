package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"portal/internal/httputil"
)

// Pinger reports storage reachability; *pgxpool.Pool satisfies it
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness checks
type HealthHandler struct {
	db     Pinger // nil when running on memory storage
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HealthCheck reports ok, or 503 when the database is unreachable
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			httputil.RespondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
