package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yjw768/groupup/internal/pkg/apperr"
)

const (
	KindAvatar  = "avatar"
	KindMessage = "message"

	defaultPresignTTL = 15 * time.Minute
	maxUploadSize     = 10 << 20
)

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var kindPrefixes = map[string]string{
	KindAvatar:  "avatars",
	KindMessage: "messages",
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Service struct {
	storage ObjectStorage
	ttl     time.Duration
	now     func() time.Time
}

// Upload is a presigned PUT for one object. ObjectKey is what callers store
// as avatar_url or a message image reference.
type Upload struct {
	ObjectKey string    `json:"object_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Object struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}

func NewService(storage ObjectStorage, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &Service{
		storage: storage,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Service) PresignUpload(ctx context.Context, ownerID uuid.UUID, kind, contentType string) (Upload, error) {
	objectKey, err := s.objectKey(ownerID, kind, contentType)
	if err != nil {
		return Upload{}, err
	}
	if s.storage == nil {
		return Upload{}, apperr.StoreFailure("presign upload", errors.New("object storage is not configured"))
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Upload{}, apperr.StoreFailure("ensure bucket", err)
	}

	uploadURL, err := s.storage.PresignPut(ctx, objectKey, s.ttl)
	if err != nil {
		return Upload{}, apperr.StoreFailure("presign upload", err)
	}

	return Upload{
		ObjectKey: objectKey,
		UploadURL: uploadURL,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}, nil
}

// Upload stores the body server-side for clients that cannot PUT to the
// bucket directly.
func (s *Service) Upload(ctx context.Context, ownerID uuid.UUID, kind, contentType string, body io.Reader, size int64) (Object, error) {
	if body == nil || size <= 0 {
		return Object{}, apperr.InvalidArgument("file is required")
	}
	if size > maxUploadSize {
		return Object{}, apperr.InvalidArgument("file is too large")
	}
	objectKey, err := s.objectKey(ownerID, kind, contentType)
	if err != nil {
		return Object{}, err
	}
	if s.storage == nil {
		return Object{}, apperr.StoreFailure("upload object", errors.New("object storage is not configured"))
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Object{}, apperr.StoreFailure("ensure bucket", err)
	}
	if err := s.storage.PutObject(ctx, objectKey, body, size, normalizeContentType(contentType)); err != nil {
		return Object{}, apperr.StoreFailure("upload object", err)
	}

	url, err := s.storage.PresignGet(ctx, objectKey, s.ttl)
	if err != nil {
		return Object{}, apperr.StoreFailure("presign object url", err)
	}

	return Object{ObjectKey: objectKey, URL: url}, nil
}

// PresignGet signs a read URL for a key produced by this service.
func (s *Service) PresignGet(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	objectKey = strings.TrimSpace(objectKey)
	if !isManagedKey(objectKey) {
		return "", apperr.InvalidArgument("unknown object key")
	}
	if s.storage == nil {
		return "", apperr.StoreFailure("presign download", errors.New("object storage is not configured"))
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	url, err := s.storage.PresignGet(ctx, objectKey, ttl)
	if err != nil {
		return "", apperr.StoreFailure("presign download", err)
	}
	return url, nil
}

func (s *Service) objectKey(ownerID uuid.UUID, kind, contentType string) (string, error) {
	if ownerID == uuid.Nil {
		return "", apperr.InvalidArgument("owner id is required")
	}
	prefix, ok := kindPrefixes[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return "", apperr.InvalidArgument("kind must be avatar or message")
	}
	ext, ok := allowedContentTypes[normalizeContentType(contentType)]
	if !ok {
		return "", apperr.InvalidArgument("content type must be image/jpeg, image/png or image/webp")
	}

	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}

	stamp := s.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("%s/%s/%s_%s%s", prefix, ownerID, stamp, hex.EncodeToString(rnd), ext), nil
}

func normalizeContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return contentType
}

func isManagedKey(key string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	for _, prefix := range kindPrefixes {
		if strings.HasPrefix(key, prefix+"/") {
			return true
		}
	}
	return false
}
