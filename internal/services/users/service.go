package users

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yjw768/groupup/internal/domain/model"
	"github.com/yjw768/groupup/internal/pkg/apperr"
	"github.com/yjw768/groupup/internal/pkg/validate"
	pgrepo "github.com/yjw768/groupup/internal/repo/postgres"
)

const (
	minAge            = 18
	maxAge            = 120
	maxUsernameLen    = 32
	maxDisplayNameLen = 64
	maxBioLen         = 500
	maxInterests      = 20
	maxInterestLen    = 32

	// Avatars uploaded through media presign are stored as object keys and
	// signed on read.
	avatarKeyPrefix = "avatars/"
	signedURLTTL    = 5 * time.Minute
)

type UserStore interface {
	Create(ctx context.Context, p pgrepo.CreateUserParams) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Dependencies struct {
	Store     UserStore
	URLSigner URLSigner
	Logger    *zap.Logger
}

type Service struct {
	store     UserStore
	urlSigner URLSigner
	logger    *zap.Logger
	now       func() time.Time
}

type CreateInput struct {
	Username    string
	DisplayName string
	Age         int
	Bio         string
	Interests   []string
	AvatarURL   *string
	LocationLat *float64
	LocationLng *float64
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:     deps.Store,
		urlSigner: deps.URLSigner,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.User, error) {
	params, err := s.normalize(in)
	if err != nil {
		return model.User{}, err
	}
	if s.store == nil {
		return model.User{}, apperr.StoreFailure("create user", errors.New("user store is not configured"))
	}

	user, err := s.store.Create(ctx, params)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUsernameTaken) {
			return model.User{}, apperr.Conflict("username already taken")
		}
		return model.User{}, apperr.Store("create user", err)
	}

	s.logger.Debug("user created", zap.String("user_id", user.ID.String()))
	s.signAvatar(ctx, &user)
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	if id == uuid.Nil {
		return model.User{}, apperr.InvalidArgument("user id is required")
	}
	if s.store == nil {
		return model.User{}, apperr.StoreFailure("get user", errors.New("user store is not configured"))
	}

	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, apperr.NotFound("user not found")
		}
		return model.User{}, apperr.Store("get user", err)
	}

	s.signAvatar(ctx, &user)
	return user, nil
}

// List returns every profile, newest first.
func (s *Service) List(ctx context.Context) ([]model.User, error) {
	if s.store == nil {
		return nil, apperr.StoreFailure("list users", errors.New("user store is not configured"))
	}

	items, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Store("list users", err)
	}
	for i := range items {
		s.signAvatar(ctx, &items[i])
	}
	return items, nil
}

func (s *Service) normalize(in CreateInput) (pgrepo.CreateUserParams, error) {
	username := strings.TrimSpace(in.Username)
	if !validate.Required(username) {
		return pgrepo.CreateUserParams{}, apperr.InvalidArgument("username is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return pgrepo.CreateUserParams{}, apperr.InvalidArgument("username is too long")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return pgrepo.CreateUserParams{}, apperr.InvalidArgument("username must not contain spaces")
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return pgrepo.CreateUserParams{}, apperr.InvalidArgument("display name is too long")
	}

	if in.Age < minAge || in.Age > maxAge {
		return pgrepo.CreateUserParams{}, apperr.InvalidArgument("age must be between 18 and 120")
	}

	bio := strings.TrimSpace(in.Bio)
	if utf8.RuneCountInString(bio) > maxBioLen {
		return pgrepo.CreateUserParams{}, apperr.InvalidArgument("bio is too long")
	}

	interests, err := normalizeInterests(in.Interests)
	if err != nil {
		return pgrepo.CreateUserParams{}, err
	}

	if (in.LocationLat == nil) != (in.LocationLng == nil) {
		return pgrepo.CreateUserParams{}, apperr.InvalidArgument("location needs both lat and lng")
	}
	if in.LocationLat != nil {
		if *in.LocationLat < -90 || *in.LocationLat > 90 || *in.LocationLng < -180 || *in.LocationLng > 180 {
			return pgrepo.CreateUserParams{}, apperr.InvalidArgument("location is out of range")
		}
	}

	return pgrepo.CreateUserParams{
		Username:    username,
		DisplayName: displayName,
		Age:         in.Age,
		Bio:         bio,
		AvatarURL:   validate.OptionalString(in.AvatarURL),
		LocationLat: in.LocationLat,
		LocationLng: in.LocationLng,
		Interests:   interests,
		Now:         s.now().UTC(),
	}, nil
}

func normalizeInterests(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if utf8.RuneCountInString(value) > maxInterestLen {
			return nil, apperr.InvalidArgument("interest is too long")
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	if len(out) > maxInterests {
		return nil, apperr.InvalidArgument("too many interests")
	}
	return out, nil
}

func (s *Service) signAvatar(ctx context.Context, user *model.User) {
	if s.urlSigner == nil || user.AvatarURL == nil || !strings.HasPrefix(*user.AvatarURL, avatarKeyPrefix) {
		return
	}
	url, err := s.urlSigner.PresignGet(ctx, *user.AvatarURL, signedURLTTL)
	if err != nil {
		s.logger.Warn("sign avatar url failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}
	user.AvatarURL = &url
}
