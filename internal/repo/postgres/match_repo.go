package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yjw768/groupup/internal/domain/model"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

const matchColumns = `id, user1_id, user2_id, matched_at, last_message_at`

// CreateIfAbsent inserts the match for the unordered pair or leaves the
// existing one in place. Duplicates are absorbed by matches_pair_key, never
// by a prior lookup.
func (r *MatchRepo) CreateIfAbsent(ctx context.Context, userID, targetID uuid.UUID, now time.Time) (model.Match, bool, error) {
	if userID == uuid.Nil || targetID == uuid.Nil || userID == targetID {
		return model.Match{}, false, fmt.Errorf("invalid match payload")
	}
	if r.pool == nil {
		return model.Match{}, false, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	user1, user2 := model.OrderedPair(userID, targetID)

	match, err := scanMatch(r.pool.QueryRow(ctx, `
INSERT INTO matches (
	id,
	user1_id,
	user2_id,
	matched_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (user1_id, user2_id) DO NOTHING
RETURNING `+matchColumns,
		uuid.New(), user1, user2, now.UTC()))
	if err == nil {
		return match, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, fmt.Errorf("create match: %w", err)
	}

	// The conflicting row is committed by now; a fresh statement sees it.
	match, err = scanMatch(r.pool.QueryRow(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE user1_id = $1 AND user2_id = $2
`, user1, user2))
	if err != nil {
		return model.Match{}, false, fmt.Errorf("load existing match: %w", err)
	}

	return match, false, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	match, err := scanMatch(r.pool.QueryRow(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	return match, nil
}

// GetForUpdate locks the match row for the rest of tx, serializing appends
// to the same conversation.
func (r *MatchRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (model.Match, error) {
	if tx == nil {
		return model.Match{}, fmt.Errorf("transaction is required")
	}

	match, err := scanMatch(tx.QueryRow(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE id = $1
FOR UPDATE
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("lock match: %w", err)
	}
	return match, nil
}

// TouchLastMessage advances last_message_at; it never moves it backwards.
func (r *MatchRepo) TouchLastMessage(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE matches
SET last_message_at = GREATEST(COALESCE(last_message_at, $2), $2)
WHERE id = $1
`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("touch match last message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.MatchView, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	m.user1_id,
	m.user2_id,
	m.matched_at,
	m.last_message_at,
	p1.username,
	p1.display_name,
	p1.avatar_url,
	p2.username,
	p2.display_name,
	p2.avatar_url
FROM matches m
JOIN profiles p1 ON p1.id = m.user1_id
JOIN profiles p2 ON p2.id = m.user2_id
WHERE m.user1_id = $1 OR m.user2_id = $1
ORDER BY m.matched_at DESC, m.id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.MatchView, 0)
	for rows.Next() {
		var item model.MatchView
		if err := rows.Scan(
			&item.ID,
			&item.User1ID,
			&item.User2ID,
			&item.MatchedAt,
			&item.LastMessageAt,
			&item.User1.Username,
			&item.User1.DisplayName,
			&item.User1.AvatarURL,
			&item.User2.Username,
			&item.User2.DisplayName,
			&item.User2.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		item.User1.ID = item.User1ID
		item.User2.ID = item.User2ID
		if item.User1ID == userID {
			item.Counterpart = item.User2
		} else {
			item.Counterpart = item.User1
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var match model.Match
	err := row.Scan(
		&match.ID,
		&match.User1ID,
		&match.User2ID,
		&match.MatchedAt,
		&match.LastMessageAt,
	)
	return match, err
}
