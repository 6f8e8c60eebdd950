package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/yjw768/groupup/internal/domain/enums"
	"github.com/yjw768/groupup/internal/pkg/validate"
	swipesvc "github.com/yjw768/groupup/internal/services/swipes"
	"github.com/yjw768/groupup/internal/transport/http/dto"
	httperrors "github.com/yjw768/groupup/internal/transport/http/errors"
)

type SwipeService interface {
	Swipe(ctx context.Context, actorID, targetID uuid.UUID, decision enums.SwipeDecision) (swipesvc.SwipeResult, error)
}

type SwipeHandler struct {
	service SwipeService
}

func NewSwipeHandler(service SwipeService) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	actorID, ok := validate.ID(req.UserID)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "user_id must be a uuid")
		return
	}
	targetID, ok := validate.ID(req.TargetUserID)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "target_user_id must be a uuid")
		return
	}
	decision, ok := enums.ParseSwipeDecision(req.Action)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "action must be like or pass")
		return
	}

	result, err := h.service.Swipe(r.Context(), actorID, targetID, decision)
	if err != nil {
		httperrors.WriteError(w, err, "failed to process swipe")
		return
	}

	resp := dto.SwipeResponse{
		ID:           result.Decision.ID.String(),
		UserID:       result.Decision.ActorID.String(),
		TargetUserID: result.Decision.TargetID.String(),
		Action:       string(result.Decision.Decision),
		CreatedAt:    result.Decision.CreatedAt,
		UpdatedAt:    result.Decision.UpdatedAt,
		Matched:      result.Matched,
	}
	if result.Match != nil {
		matchID := result.Match.ID.String()
		resp.MatchID = &matchID
	}
	httperrors.Write(w, http.StatusOK, resp)
}
