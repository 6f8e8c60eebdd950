package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/yjw768/groupup/internal/pkg/validate"
	mediasvc "github.com/yjw768/groupup/internal/services/media"
	"github.com/yjw768/groupup/internal/transport/http/dto"
	httperrors "github.com/yjw768/groupup/internal/transport/http/errors"
)

const maxUploadSize = 10 << 20 // 10 MiB

type MediaService interface {
	PresignUpload(ctx context.Context, ownerID uuid.UUID, kind, contentType string) (mediasvc.Upload, error)
	Upload(ctx context.Context, ownerID uuid.UUID, kind, contentType string, body io.Reader, size int64) (mediasvc.Object, error)
}

type MediaHandler struct {
	service MediaService
}

func NewMediaHandler(service MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) Presign(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	var req dto.PresignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	ownerID, ok := validate.ID(req.OwnerID)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "owner_id must be a uuid")
		return
	}

	upload, err := h.service.PresignUpload(r.Context(), ownerID, req.Kind, req.ContentType)
	if err != nil {
		httperrors.WriteError(w, err, "failed to presign upload")
		return
	}
	httperrors.Write(w, http.StatusOK, upload)
}

// Upload takes a multipart form with owner_id, kind and file fields.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	ownerID, ok := validate.ID(r.FormValue("owner_id"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "owner_id must be a uuid")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	obj, err := h.service.Upload(r.Context(), ownerID, r.FormValue("kind"), header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		httperrors.WriteError(w, err, "failed to upload media")
		return
	}
	httperrors.Write(w, http.StatusCreated, obj)
}
