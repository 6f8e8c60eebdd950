package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/yjw768/groupup/internal/domain/model"
	userssvc "github.com/yjw768/groupup/internal/services/users"
	"github.com/yjw768/groupup/internal/transport/http/dto"
	httperrors "github.com/yjw768/groupup/internal/transport/http/errors"
)

type UserService interface {
	Create(ctx context.Context, in userssvc.CreateInput) (model.User, error)
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type UsersHandler struct {
	service UserService
}

func NewUsersHandler(service UserService) *UsersHandler {
	return &UsersHandler{service: service}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	items, err := h.service.List(r.Context())
	if err != nil {
		httperrors.WriteError(w, err, "failed to load users")
		return
	}
	httperrors.Write(w, http.StatusOK, items)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err, "failed to load user")
		return
	}
	httperrors.Write(w, http.StatusOK, user)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	in := userssvc.CreateInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Age:         req.Age,
		Bio:         req.Bio,
		Interests:   req.Interests,
		AvatarURL:   req.AvatarURL,
	}
	if req.Location != nil {
		in.LocationLat = &req.Location.Lat
		in.LocationLng = &req.Location.Lng
	}

	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		httperrors.WriteError(w, err, "failed to create user")
		return
	}
	httperrors.Write(w, http.StatusCreated, user)
}
