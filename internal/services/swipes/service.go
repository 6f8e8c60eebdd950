package swipes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yjw768/groupup/internal/domain/enums"
	"github.com/yjw768/groupup/internal/domain/model"
	"github.com/yjw768/groupup/internal/pkg/apperr"
)

type DecisionStore interface {
	Upsert(ctx context.Context, actorID, targetID uuid.UUID, decision enums.SwipeDecision, now time.Time) (model.SwipeDecision, error)
	HasLike(ctx context.Context, actorID, targetID uuid.UUID) (bool, error)
}

type MatchStore interface {
	CreateIfAbsent(ctx context.Context, userID, targetID uuid.UUID, now time.Time) (model.Match, bool, error)
}

type MatchCache interface {
	InvalidateUsers(ctx context.Context, userIDs ...uuid.UUID) error
}

type Metrics interface {
	RecordDecision(decision string)
	RecordMatch(created bool)
	RecordEngineError(op, kind string)
}

type Dependencies struct {
	Decisions DecisionStore
	Matches   MatchStore
	Cache     MatchCache
	Metrics   Metrics
	Logger    *zap.Logger
}

type MatchResult struct {
	Matched bool
	// Created is false when the pair already had a match.
	Created bool
	Match   *model.Match
}

type SwipeResult struct {
	Decision model.SwipeDecision
	Matched  bool
	Match    *model.Match
}

type Service struct {
	decisions DecisionStore
	matches   MatchStore
	cache     MatchCache
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		decisions: deps.Decisions,
		matches:   deps.Matches,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordDecision stores actor's decision about target, replacing any earlier
// decision for the same ordered pair. It never creates matches. Caller
// cancellation is ignored once the call starts; the store's statement
// timeout bounds it instead.
func (s *Service) RecordDecision(ctx context.Context, actorID, targetID uuid.UUID, decision enums.SwipeDecision) (model.SwipeDecision, error) {
	ctx = context.WithoutCancel(ctx)
	if err := validatePair(actorID, targetID); err != nil {
		return model.SwipeDecision{}, s.fail("record_decision", err)
	}
	if !decision.Valid() {
		return model.SwipeDecision{}, s.fail("record_decision", apperr.InvalidArgument("decision must be like or pass"))
	}
	if s.decisions == nil {
		return model.SwipeDecision{}, s.fail("record_decision", apperr.StoreFailure("record swipe decision", errors.New("decision store is not configured")))
	}

	rec, err := s.decisions.Upsert(ctx, actorID, targetID, decision, s.now().UTC())
	if err != nil {
		return model.SwipeDecision{}, s.fail("record_decision", apperr.Store("record swipe decision", err))
	}

	if s.metrics != nil {
		s.metrics.RecordDecision(string(rec.Decision))
	}
	return rec, nil
}

// MaybeFormMatch creates the match for {actor, target} when target already
// likes actor. Call it only after actor's like has been committed.
func (s *Service) MaybeFormMatch(ctx context.Context, actorID, targetID uuid.UUID) (MatchResult, error) {
	ctx = context.WithoutCancel(ctx)
	if err := validatePair(actorID, targetID); err != nil {
		return MatchResult{}, s.fail("maybe_form_match", err)
	}
	if s.decisions == nil || s.matches == nil {
		return MatchResult{}, s.fail("maybe_form_match", apperr.StoreFailure("form match", errors.New("match dependencies are not configured")))
	}

	reciprocal, err := s.decisions.HasLike(ctx, targetID, actorID)
	if err != nil {
		return MatchResult{}, s.fail("maybe_form_match", apperr.Store("lookup reciprocal like", err))
	}
	if !reciprocal {
		return MatchResult{}, nil
	}

	match, created, err := s.matches.CreateIfAbsent(ctx, actorID, targetID, s.now().UTC())
	if err != nil {
		return MatchResult{}, s.fail("maybe_form_match", apperr.Store("create match", err))
	}

	if s.metrics != nil {
		s.metrics.RecordMatch(created)
	}
	if created {
		s.logger.Debug("match formed",
			zap.String("match_id", match.ID.String()),
			zap.String("user1_id", match.User1ID.String()),
			zap.String("user2_id", match.User2ID.String()),
		)
		s.invalidate(ctx, match.User1ID, match.User2ID)
	}

	return MatchResult{Matched: true, Created: created, Match: &match}, nil
}

// Swipe records the decision and, for a like, runs match detection as a
// separate step. Each step commits on its own: a reciprocal like committed
// concurrently is then visible to at least one of the two detections.
// Detection runs even if the caller goes away after the decision commits.
func (s *Service) Swipe(ctx context.Context, actorID, targetID uuid.UUID, decision enums.SwipeDecision) (SwipeResult, error) {
	ctx = context.WithoutCancel(ctx)
	rec, err := s.RecordDecision(ctx, actorID, targetID, decision)
	if err != nil {
		return SwipeResult{}, err
	}

	result := SwipeResult{Decision: rec}
	if rec.Decision != enums.SwipeDecisionLike {
		return result, nil
	}

	matchResult, err := s.MaybeFormMatch(ctx, actorID, targetID)
	if err != nil {
		return SwipeResult{}, err
	}
	result.Matched = matchResult.Matched
	result.Match = matchResult.Match
	result.Decision.Matched = matchResult.Matched

	return result, nil
}

func (s *Service) invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUsers(ctx, userIDs...); err != nil {
		s.logger.Warn("invalidate match cache failed", zap.Error(err))
	}
}

func (s *Service) fail(op string, err error) error {
	if s.metrics != nil {
		s.metrics.RecordEngineError(op, string(apperr.KindOf(err)))
	}
	return err
}

func validatePair(actorID, targetID uuid.UUID) error {
	if actorID == uuid.Nil || targetID == uuid.Nil {
		return apperr.InvalidArgument("actor and target ids are required")
	}
	if actorID == targetID {
		return apperr.InvalidArgument("actor and target must differ")
	}
	return nil
}
