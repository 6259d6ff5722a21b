package rest

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gkbsz/leadgate/internal/infrastructure/counter"
)

// HealthHandler reports liveness plus counter-store reachability. A dead
// store degrades the report but never fails it: the limiter fails open, so
// the service keeps serving without it.
type HealthHandler struct {
	store  counter.Store
	logger *zap.Logger
}

func NewHealthHandler(store counter.Store, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Response{OK: false, Error: "Method not allowed"})
		return
	}

	counterState := "off"
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if _, err := h.store.TTL(ctx, "health:ping"); err != nil {
			h.logger.Warn("counter store probe failed", zap.Error(err))
			counterState = "degraded"
		} else {
			counterState = "ok"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"counter": counterState,
	})
}
