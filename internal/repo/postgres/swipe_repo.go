package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yjw768/groupup/internal/domain/enums"
	"github.com/yjw768/groupup/internal/domain/model"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Upsert writes the decision for the ordered pair in one statement. Concurrent
// upserts on the same pair serialize on the unique key; the last one wins.
func (r *SwipeRepo) Upsert(ctx context.Context, actorID, targetID uuid.UUID, decision enums.SwipeDecision, now time.Time) (model.SwipeDecision, error) {
	if actorID == uuid.Nil || targetID == uuid.Nil || !decision.Valid() {
		return model.SwipeDecision{}, fmt.Errorf("invalid swipe payload")
	}
	if r.pool == nil {
		return model.SwipeDecision{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var (
		rec    model.SwipeDecision
		action string
	)
	err := r.pool.QueryRow(ctx, `
INSERT INTO swipe_actions (
	id,
	user_id,
	target_user_id,
	action,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (user_id, target_user_id) DO UPDATE SET
	action = EXCLUDED.action,
	updated_at = EXCLUDED.updated_at
RETURNING id, user_id, target_user_id, action, created_at, updated_at
`, uuid.New(), actorID, targetID, string(decision), now.UTC()).Scan(
		&rec.ID,
		&rec.ActorID,
		&rec.TargetID,
		&action,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return model.SwipeDecision{}, fmt.Errorf("upsert swipe decision: %w", err)
	}
	rec.Decision = enums.SwipeDecision(action)

	return rec, nil
}

func (r *SwipeRepo) HasLike(ctx context.Context, actorID, targetID uuid.UUID) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM swipe_actions
WHERE user_id = $1 AND target_user_id = $2 AND action = 'like'
LIMIT 1
`, actorID, targetID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}
