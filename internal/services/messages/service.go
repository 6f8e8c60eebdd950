// Package messages implements the conversation ledger: appending messages to
// a match and reading a match's history.
package messages

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/yjw768/groupup/internal/domain/model"
	"github.com/yjw768/groupup/internal/pkg/apperr"
	pgrepo "github.com/yjw768/groupup/internal/repo/postgres"
)

const (
	defaultMaxContentLen = 4000
	maxImageRefLen       = 2048
	imageKeyPrefix       = "messages/"
	signedURLTTL         = 5 * time.Minute
)

type Transactor interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type MatchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.Match, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (model.Match, error)
	TouchLastMessage(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error
}

type MessageStore interface {
	Create(ctx context.Context, tx pgx.Tx, p pgrepo.CreateMessageParams) (model.Message, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]model.Message, error)
}

type MatchCache interface {
	InvalidateUsers(ctx context.Context, userIDs ...uuid.UUID) error
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Metrics interface {
	RecordMessageAppended()
	RecordEngineError(op, kind string)
}

type Config struct {
	MaxContentLen int
	// EnforceMembership rejects senders that are not one of the match's users.
	EnforceMembership bool
}

type Dependencies struct {
	Tx       Transactor
	Matches  MatchStore
	Messages MessageStore
	Cache    MatchCache
	Signer   URLSigner
	Metrics  Metrics
	Logger   *zap.Logger
	Config   Config
}

type Service struct {
	tx       Transactor
	matches  MatchStore
	messages MessageStore
	cache    MatchCache
	signer   URLSigner
	metrics  Metrics
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := deps.Config
	if cfg.MaxContentLen <= 0 {
		cfg.MaxContentLen = defaultMaxContentLen
	}

	return &Service{
		tx:       deps.Tx,
		matches:  deps.Matches,
		messages: deps.Messages,
		cache:    deps.Cache,
		signer:   deps.Signer,
		metrics:  deps.Metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// AppendMessage stores a text message and advances the match's
// last_message_at to the message's timestamp in the same transaction.
func (s *Service) AppendMessage(ctx context.Context, matchID, senderID uuid.UUID, content string) (model.Message, error) {
	return s.appendMessage(ctx, matchID, senderID, content, "")
}

// AppendImageMessage is AppendMessage with an attached image reference; the
// text may then be empty.
func (s *Service) AppendImageMessage(ctx context.Context, matchID, senderID uuid.UUID, content, imageRef string) (model.Message, error) {
	imageRef = strings.TrimSpace(imageRef)
	if imageRef == "" {
		return model.Message{}, s.fail("append_message", apperr.InvalidArgument("image reference is required"))
	}
	return s.appendMessage(ctx, matchID, senderID, content, imageRef)
}

// appendMessage ignores caller cancellation: once started, the transaction
// commits or rolls back on its own, bounded by the store's statement timeout.
func (s *Service) appendMessage(ctx context.Context, matchID, senderID uuid.UUID, content, imageRef string) (model.Message, error) {
	ctx = context.WithoutCancel(ctx)
	if matchID == uuid.Nil || senderID == uuid.Nil {
		return model.Message{}, s.fail("append_message", apperr.InvalidArgument("match id and sender id are required"))
	}
	content, err := s.normalizeContent(content, imageRef != "")
	if err != nil {
		return model.Message{}, s.fail("append_message", err)
	}
	if len(imageRef) > maxImageRefLen {
		return model.Message{}, s.fail("append_message", apperr.InvalidArgument("image reference is too long"))
	}
	if s.tx == nil || s.matches == nil || s.messages == nil {
		return model.Message{}, s.fail("append_message", apperr.StoreFailure("append message", errors.New("message dependencies are not configured")))
	}

	var (
		msg   model.Message
		match model.Match
	)
	err = s.tx.WithTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		locked, err := s.matches.GetForUpdate(txCtx, tx, matchID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return apperr.NotFound("match not found")
			}
			return err
		}
		if s.cfg.EnforceMembership && !locked.Has(senderID) {
			return apperr.Conflict("sender is not part of this match")
		}

		// Taken under the row lock so appends to one match get
		// non-decreasing timestamps.
		now := s.now().UTC().Truncate(time.Microsecond)

		params := pgrepo.CreateMessageParams{
			MatchID:  matchID,
			SenderID: senderID,
			Content:  content,
			Now:      now,
		}
		if imageRef != "" {
			params.ImageURL = &imageRef
		}

		created, err := s.messages.Create(txCtx, tx, params)
		if err != nil {
			return err
		}
		if err := s.matches.TouchLastMessage(txCtx, tx, matchID, created.CreatedAt); err != nil {
			return err
		}

		msg = created
		match = locked
		return nil
	})
	if err != nil {
		return model.Message{}, s.fail("append_message", apperr.Store("append message", err))
	}

	if s.metrics != nil {
		s.metrics.RecordMessageAppended()
	}
	s.logger.Debug("message appended",
		zap.String("match_id", matchID.String()),
		zap.String("message_id", msg.ID.String()),
	)
	if s.cache != nil {
		if err := s.cache.InvalidateUsers(ctx, match.User1ID, match.User2ID); err != nil {
			s.logger.Warn("invalidate match cache failed", zap.Error(err))
		}
	}

	s.signImage(ctx, &msg)
	return msg, nil
}

// ListMessages returns the conversation oldest first. Ties on created_at are
// broken by id so repeated reads return the same order.
func (s *Service) ListMessages(ctx context.Context, matchID uuid.UUID) ([]model.Message, error) {
	if matchID == uuid.Nil {
		return nil, s.fail("list_messages", apperr.InvalidArgument("match id is required"))
	}
	if s.matches == nil || s.messages == nil {
		return nil, s.fail("list_messages", apperr.StoreFailure("list messages", errors.New("message dependencies are not configured")))
	}

	if _, err := s.matches.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return nil, s.fail("list_messages", apperr.NotFound("match not found"))
		}
		return nil, s.fail("list_messages", apperr.Store("load match", err))
	}

	items, err := s.messages.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, s.fail("list_messages", apperr.Store("list messages", err))
	}
	for i := range items {
		s.signImage(ctx, &items[i])
	}
	return items, nil
}

// signImage swaps a stored object key for a short-lived download URL. Other
// references, such as external URLs, are returned as stored.
func (s *Service) signImage(ctx context.Context, msg *model.Message) {
	if s.signer == nil || msg.ImageURL == nil || !strings.HasPrefix(*msg.ImageURL, imageKeyPrefix) {
		return
	}
	url, err := s.signer.PresignGet(ctx, *msg.ImageURL, signedURLTTL)
	if err != nil {
		s.logger.Warn("sign message image failed", zap.String("message_id", msg.ID.String()), zap.Error(err))
		return
	}
	msg.ImageURL = &url
}

func (s *Service) normalizeContent(content string, hasImage bool) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" && !hasImage {
		return "", apperr.InvalidArgument("message content is required")
	}
	if utf8.RuneCountInString(content) > s.cfg.MaxContentLen {
		return "", apperr.InvalidArgument("message content is too long")
	}
	return content, nil
}

func (s *Service) fail(op string, err error) error {
	if s.metrics != nil {
		s.metrics.RecordEngineError(op, string(apperr.KindOf(err)))
	}
	return err
}
