package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/yjw768/groupup/internal/transport/http/dto"
	httperrors "github.com/yjw768/groupup/internal/transport/http/errors"
)

const (
	serviceName = "GroupUp API"
	pingTimeout = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	postgres Pinger
}

func NewHealthHandler(postgres Pinger) *HealthHandler {
	return &HealthHandler{postgres: postgres}
}

// Get reports liveness only.
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.HealthResponse{Status: "ok", Service: serviceName})
}

// Ready also checks that postgres answers.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.postgres == nil {
		httperrors.Write(w, http.StatusServiceUnavailable, dto.ReadinessResponse{OK: false, Postgres: "unavailable"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := h.postgres.Ping(ctx); err != nil {
		httperrors.Write(w, http.StatusServiceUnavailable, dto.ReadinessResponse{OK: false, Postgres: "unreachable"})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReadinessResponse{OK: true})
}
