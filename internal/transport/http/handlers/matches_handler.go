package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/yjw768/groupup/internal/domain/model"
	httperrors "github.com/yjw768/groupup/internal/transport/http/errors"
)

type MatchService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.MatchView, error)
	Get(ctx context.Context, id uuid.UUID) (model.Match, error)
}

type MatchesHandler struct {
	service MatchService
}

func NewMatchesHandler(service MatchService) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	userID, ok := pathID(r, "user_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	items, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		httperrors.WriteError(w, err, "failed to load matches")
		return
	}
	httperrors.Write(w, http.StatusOK, items)
}

func (h *MatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	matchID, ok := pathID(r, "match_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	match, err := h.service.Get(r.Context(), matchID)
	if err != nil {
		httperrors.WriteError(w, err, "failed to load match")
		return
	}
	httperrors.Write(w, http.StatusOK, match)
}
