package matches

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yjw768/groupup/internal/domain/model"
	"github.com/yjw768/groupup/internal/pkg/apperr"
	pgrepo "github.com/yjw768/groupup/internal/repo/postgres"
)

type MatchStore interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.MatchView, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Match, error)
}

type MatchCache interface {
	GetMatches(ctx context.Context, userID uuid.UUID) ([]model.MatchView, bool, error)
	SetMatches(ctx context.Context, userID uuid.UUID, items []model.MatchView) error
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

const (
	avatarKeyPrefix = "avatars/"
	signedURLTTL    = 5 * time.Minute
)

type Dependencies struct {
	Store  MatchStore
	Cache  MatchCache
	Signer URLSigner
	Logger *zap.Logger
}

type Service struct {
	store  MatchStore
	cache  MatchCache
	signer URLSigner
	logger *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  deps.Store,
		cache:  deps.Cache,
		signer: deps.Signer,
		logger: logger,
	}
}

// ListForUser returns the user's matches, newest first, each with the
// counterpart's display fields. An unknown user simply has no matches.
// The cache holds avatar object keys; they are signed on every read.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.MatchView, error) {
	if userID == uuid.Nil {
		return nil, apperr.InvalidArgument("user id is required")
	}
	if s.store == nil {
		return nil, apperr.StoreFailure("list matches", errors.New("match store is not configured"))
	}

	if s.cache != nil {
		items, ok, err := s.cache.GetMatches(ctx, userID)
		if err != nil {
			s.logger.Warn("read match cache failed", zap.String("user_id", userID.String()), zap.Error(err))
		} else if ok {
			s.signAvatars(ctx, items)
			return items, nil
		}
	}

	items, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list matches", err)
	}

	if s.cache != nil {
		if err := s.cache.SetMatches(ctx, userID, items); err != nil {
			s.logger.Warn("write match cache failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	s.signAvatars(ctx, items)
	return items, nil
}

// Get returns a single match; an unknown id is NotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Match, error) {
	if id == uuid.Nil {
		return model.Match{}, apperr.InvalidArgument("match id is required")
	}
	if s.store == nil {
		return model.Match{}, apperr.StoreFailure("get match", errors.New("match store is not configured"))
	}

	match, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, apperr.NotFound("match not found")
		}
		return model.Match{}, apperr.Store("get match", err)
	}
	return match, nil
}

func (s *Service) signAvatars(ctx context.Context, items []model.MatchView) {
	if s.signer == nil {
		return
	}
	for i := range items {
		s.signAvatar(ctx, &items[i].User1)
		s.signAvatar(ctx, &items[i].User2)
		s.signAvatar(ctx, &items[i].Counterpart)
	}
}

func (s *Service) signAvatar(ctx context.Context, p *model.MatchParticipant) {
	if p.AvatarURL == nil || !strings.HasPrefix(*p.AvatarURL, avatarKeyPrefix) {
		return
	}
	url, err := s.signer.PresignGet(ctx, *p.AvatarURL, signedURLTTL)
	if err != nil {
		s.logger.Warn("sign avatar url failed", zap.String("user_id", p.ID.String()), zap.Error(err))
		return
	}
	p.AvatarURL = &url
}
