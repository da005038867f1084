package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Togather-Foundation/listings/internal/metrics"
	"github.com/rs/zerolog"
)

const healthTimeout = 5 * time.Second

// Pinger is satisfied by storage.Repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}

type HealthHandler struct {
	DB  Pinger
	now func() time.Time
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{DB: db, now: time.Now}
}

// Health reports database reachability.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		metrics.HealthStatus.Set(0)
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusInternalServerError, healthResponse{
			Status:  "error",
			Message: "Failed to connect to database",
		})
		return
	}

	metrics.HealthStatus.Set(1)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// Root is a liveness banner.
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "All good in here")
}
