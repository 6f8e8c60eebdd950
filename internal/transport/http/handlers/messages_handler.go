package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/yjw768/groupup/internal/domain/model"
	"github.com/yjw768/groupup/internal/pkg/validate"
	"github.com/yjw768/groupup/internal/transport/http/dto"
	httperrors "github.com/yjw768/groupup/internal/transport/http/errors"
)

type MessageService interface {
	AppendMessage(ctx context.Context, matchID, senderID uuid.UUID, content string) (model.Message, error)
	AppendImageMessage(ctx context.Context, matchID, senderID uuid.UUID, content, imageRef string) (model.Message, error)
	ListMessages(ctx context.Context, matchID uuid.UUID) ([]model.Message, error)
}

type MessagesHandler struct {
	service MessageService
}

func NewMessagesHandler(service MessageService) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	matchID, ok := validate.ID(req.MatchID)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "match_id must be a uuid")
		return
	}
	senderID, ok := validate.ID(req.SenderID)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "sender_id must be a uuid")
		return
	}

	var (
		msg model.Message
		err error
	)
	if req.ImageURL != nil {
		msg, err = h.service.AppendImageMessage(r.Context(), matchID, senderID, req.Content, *req.ImageURL)
	} else {
		msg, err = h.service.AppendMessage(r.Context(), matchID, senderID, req.Content)
	}
	if err != nil {
		httperrors.WriteError(w, err, "failed to send message")
		return
	}
	httperrors.Write(w, http.StatusCreated, msg)
}

func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	matchID, ok := pathID(r, "match_id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	items, err := h.service.ListMessages(r.Context(), matchID)
	if err != nil {
		httperrors.WriteError(w, err, "failed to load messages")
		return
	}
	httperrors.Write(w, http.StatusOK, items)
}
