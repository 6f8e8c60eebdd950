package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yjw768/groupup/internal/domain/model"
)

const (
	matchListPrefix     = "matches:user:"
	defaultMatchListTTL = 30 * time.Second
)

// MatchCacheRepo keeps each user's rendered match list. Entries are dropped
// whenever a match of the user is created or gets a new message.
type MatchCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewMatchCacheRepo(client *goredis.Client, ttl time.Duration) *MatchCacheRepo {
	if ttl <= 0 {
		ttl = defaultMatchListTTL
	}
	return &MatchCacheRepo{client: client, ttl: ttl}
}

func (r *MatchCacheRepo) GetMatches(ctx context.Context, userID uuid.UUID) ([]model.MatchView, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	data, err := r.client.Get(ctx, matchListKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached matches: %w", err)
	}

	var items []model.MatchView
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached matches: %w", err)
	}
	return items, true, nil
}

func (r *MatchCacheRepo) SetMatches(ctx context.Context, userID uuid.UUID, items []model.MatchView) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if items == nil {
		items = []model.MatchView{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode matches for cache: %w", err)
	}
	if err := r.client.Set(ctx, matchListKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set cached matches: %w", err)
	}
	return nil
}

func (r *MatchCacheRepo) InvalidateUsers(ctx context.Context, userIDs ...uuid.UUID) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, matchListKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cached matches: %w", err)
	}
	return nil
}

func matchListKey(userID uuid.UUID) string {
	return matchListPrefix + userID.String()
}
