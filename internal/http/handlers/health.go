package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/taskboard-be/internal/http/respond"
)

const pingTimeout = 2 * time.Second

// Pinger is implemented by stores that can check their backing database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports uptime and storage reachability.
type HealthHandler struct {
	startedAt time.Time
	store     Pinger
}

// NewHealthHandler creates a health endpoint handler. store may be nil for
// in-process storage.
func NewHealthHandler(startedAt time.Time, store Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store}
}

func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":  "ok",
		"storage": "ok",
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["storage"] = "unreachable"
			respond.JSON(w, http.StatusServiceUnavailable, "storage unreachable", body)
			return
		}
	}
	respond.JSON(w, http.StatusOK, "ok", body)
}
