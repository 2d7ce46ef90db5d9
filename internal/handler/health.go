package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger checks the database connection. *sqldb.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /healthz for load balancers.
type HealthHandler struct {
	procedures *Procedures
	db         Pinger
	logger     *slog.Logger
}

// NewHealthHandler creates a HealthHandler. db may be nil when the server
// runs without storage.
func NewHealthHandler(procedures *Procedures, db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{procedures: procedures, db: db, logger: logger}
}

// HandleHealth answers 200 {"ok":true,"storage":"available"} when the
// database answers a ping, and 503 with storage "unavailable" otherwise.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	result := h.procedures.status()

	if result.Storage == "available" && h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("database ping failed", slog.String("error", err.Error()))
			result.Storage = "unavailable"
		}
	}

	status := http.StatusOK
	if result.Storage != "available" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}
