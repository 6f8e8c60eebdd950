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

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

type CreateUserParams struct {
	Username    string
	DisplayName string
	Age         int
	Bio         string
	AvatarURL   *string
	LocationLat *float64
	LocationLng *float64
	Interests   []string
	Now         time.Time
}

const userColumns = `id, username, display_name, age, bio, avatar_url, location_lat, location_lng, interests, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, p CreateUserParams) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if p.Now.IsZero() {
		p.Now = time.Now().UTC()
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO profiles (
	id,
	username,
	display_name,
	age,
	bio,
	avatar_url,
	location_lat,
	location_lng,
	interests,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
RETURNING `+userColumns,
		uuid.New(),
		p.Username,
		p.DisplayName,
		p.Age,
		p.Bio,
		p.AvatarURL,
		p.LocationLat,
		p.LocationLng,
		p.Interests,
		p.Now.UTC(),
	)

	user, err := scanUser(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM profiles
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+userColumns+`
FROM profiles
ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, user)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}

	return items, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.Age,
		&user.Bio,
		&user.AvatarURL,
		&user.LocationLat,
		&user.LocationLng,
		&user.Interests,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
