package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yjw768/groupup/internal/domain/model"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

type CreateMessageParams struct {
	MatchID  uuid.UUID
	SenderID uuid.UUID
	Content  string
	ImageURL *string
	Now      time.Time
}

const messageColumns = `id, match_id, sender_id, content, image_url, read, created_at`

func (r *MessageRepo) Create(ctx context.Context, tx pgx.Tx, p CreateMessageParams) (model.Message, error) {
	if p.MatchID == uuid.Nil || p.SenderID == uuid.Nil {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return model.Message{}, fmt.Errorf("transaction is required")
	}
	if p.Now.IsZero() {
		p.Now = time.Now().UTC()
	}

	msg, err := scanMessage(tx.QueryRow(ctx, `
INSERT INTO messages (
	id,
	match_id,
	sender_id,
	content,
	image_url,
	read,
	created_at
) VALUES ($1, $2, $3, $4, $5, FALSE, $6)
RETURNING `+messageColumns,
		uuid.New(), p.MatchID, p.SenderID, p.Content, p.ImageURL, p.Now.UTC()))
	if err != nil {
		return model.Message{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

func (r *MessageRepo) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]model.Message, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE match_id = $1
ORDER BY created_at ASC, id ASC
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, msg)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

func scanMessage(row pgx.Row) (model.Message, error) {
	var msg model.Message
	err := row.Scan(
		&msg.ID,
		&msg.MatchID,
		&msg.SenderID,
		&msg.Content,
		&msg.ImageURL,
		&msg.Read,
		&msg.CreatedAt,
	)
	return msg, err
}
