package integration_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/yjw768/groupup/internal/domain/enums"
	"github.com/yjw768/groupup/internal/pkg/apperr"
	pgrepo "github.com/yjw768/groupup/internal/repo/postgres"
	messagessvc "github.com/yjw768/groupup/internal/services/messages"
	swipesvc "github.com/yjw768/groupup/internal/services/swipes"
	userssvc "github.com/yjw768/groupup/internal/services/users"
)

var enginePool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := startPostgres(ctx)
	if err != nil {
		log.Printf("postgres container unavailable, skipping engine tests: %v", err)
		os.Exit(m.Run())
	}

	code := func() int {
		defer func() {
			if err := container.Terminate(ctx); err != nil {
				log.Printf("failed to terminate container: %v", err)
			}
		}()

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			log.Printf("failed to get connection string: %v", err)
			return 1
		}
		if err := pgrepo.RunMigrations(dsn); err != nil {
			log.Printf("failed to run migrations: %v", err)
			return 1
		}
		enginePool, err = pgrepo.NewPool(ctx, pgrepo.PoolConfig{DSN: dsn, MaxConns: 32, StatementTimeout: 5 * time.Second})
		if err != nil {
			log.Printf("failed to open pool: %v", err)
			return 1
		}
		defer enginePool.Close()

		return m.Run()
	}()

	os.Exit(code)
}

func startPostgres(ctx context.Context) (container *tcpostgres.PostgresContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("start postgres container: %v", r)
		}
	}()

	return tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("groupup"),
		tcpostgres.WithUsername("groupup"),
		tcpostgres.WithPassword("groupup"),
		tcpostgres.BasicWaitStrategies(),
	)
}

type engine struct {
	pool     *pgxpool.Pool
	users    *userssvc.Service
	swipes   *swipesvc.Service
	messages *messagessvc.Service
	matches  *pgrepo.MatchRepo
}

func newEngine(t *testing.T) engine {
	t.Helper()
	if enginePool == nil {
		t.Skip("postgres is not available")
	}
	t.Cleanup(func() {
		_, err := enginePool.Exec(context.Background(), `TRUNCATE TABLE messages, matches, swipe_actions, profiles CASCADE`)
		require.NoError(t, err)
	})

	matchRepo := pgrepo.NewMatchRepo(enginePool)
	return engine{
		pool:  enginePool,
		users: userssvc.NewService(userssvc.Dependencies{Store: pgrepo.NewUserRepo(enginePool)}),
		swipes: swipesvc.NewService(swipesvc.Dependencies{
			Decisions: pgrepo.NewSwipeRepo(enginePool),
			Matches:   matchRepo,
		}),
		messages: messagessvc.NewService(messagessvc.Dependencies{
			Tx:       pgrepo.NewTxManager(enginePool),
			Matches:  matchRepo,
			Messages: pgrepo.NewMessageRepo(enginePool),
			Config:   messagessvc.Config{EnforceMembership: true},
		}),
		matches: matchRepo,
	}
}

func (e engine) createUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	user, err := e.users.Create(context.Background(), userssvc.CreateInput{Username: username, Age: 30})
	require.NoError(t, err)
	return user.ID
}

func TestEndToEndLikeMatchMessage(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	a := e.createUser(t, "anna")
	b := e.createUser(t, "ben")

	first, err := e.swipes.Swipe(ctx, a, b, enums.SwipeDecisionLike)
	require.NoError(t, err)
	require.False(t, first.Matched)

	second, err := e.swipes.Swipe(ctx, b, a, enums.SwipeDecisionLike)
	require.NoError(t, err)
	require.True(t, second.Matched)
	require.NotNil(t, second.Match)

	msg, err := e.messages.AppendMessage(ctx, second.Match.ID, a, "hi")
	require.NoError(t, err)

	items, err := e.messages.ListMessages(ctx, second.Match.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "hi", items[0].Content)

	match, err := e.matches.GetByID(ctx, second.Match.ID)
	require.NoError(t, err)
	require.NotNil(t, match.LastMessageAt)
	require.True(t, match.LastMessageAt.Equal(msg.CreatedAt))

	views, err := e.matches.ListForUser(ctx, a)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "ben", views[0].Counterpart.Username)
}

func TestConcurrentMutualLikesCreateExactlyOneMatch(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	const pairs = 10
	users := make([][2]uuid.UUID, pairs)
	for i := range users {
		users[i] = [2]uuid.UUID{e.createUser(t, fmt.Sprintf("left%d", i)), e.createUser(t, fmt.Sprintf("right%d", i))}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		matched = make([]int, pairs)
	)
	start := make(chan struct{})
	for i := 0; i < pairs; i++ {
		for side := 0; side < 2; side++ {
			wg.Add(1)
			go func(i, side int) {
				defer wg.Done()
				<-start
				res, err := e.swipes.Swipe(ctx, users[i][side], users[i][1-side], enums.SwipeDecisionLike)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				if res.Matched {
					matched[i]++
				}
			}(i, side)
		}
	}
	close(start)
	wg.Wait()

	require.Empty(t, errs)
	for i := range matched {
		require.GreaterOrEqual(t, matched[i], 1, "pair %d: neither side saw the match", i)
	}

	var count int
	require.NoError(t, e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count))
	require.Equal(t, pairs, count)
}

func TestDecisionRevisionKeepsMatch(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	a := e.createUser(t, "cora")
	b := e.createUser(t, "dan")

	_, err := e.swipes.Swipe(ctx, a, b, enums.SwipeDecisionLike)
	require.NoError(t, err)
	_, err = e.swipes.Swipe(ctx, b, a, enums.SwipeDecisionLike)
	require.NoError(t, err)
	_, err = e.swipes.RecordDecision(ctx, a, b, enums.SwipeDecisionPass)
	require.NoError(t, err)

	var rows int
	var action string
	require.NoError(t, e.pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(action) FROM swipe_actions WHERE user_id = $1 AND target_user_id = $2`, a, b,
	).Scan(&rows, &action))
	require.Equal(t, 1, rows)
	require.Equal(t, "pass", action)

	var matches int
	require.NoError(t, e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&matches))
	require.Equal(t, 1, matches)
}

// failingTouch lets the insert run and then fails the marker update.
type failingTouch struct {
	*pgrepo.MatchRepo
}

func (failingTouch) TouchLastMessage(context.Context, pgx.Tx, uuid.UUID, time.Time) error {
	return errors.New("marker update failed")
}

func TestAppendMessageRollsBackWhenMarkerFails(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	a := e.createUser(t, "eve")
	b := e.createUser(t, "finn")

	match, _, err := e.matches.CreateIfAbsent(ctx, a, b, time.Now())
	require.NoError(t, err)

	svc := messagessvc.NewService(messagessvc.Dependencies{
		Tx:       pgrepo.NewTxManager(e.pool),
		Matches:  failingTouch{e.matches},
		Messages: pgrepo.NewMessageRepo(e.pool),
	})
	_, err = svc.AppendMessage(ctx, match.ID, a, "never visible")
	require.True(t, apperr.Is(err, apperr.KindStoreFailure), "got %v", err)

	var count int
	require.NoError(t, e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE match_id = $1`, match.ID).Scan(&count))
	require.Zero(t, count)
}

func TestUnknownUsersSurfaceAsStoreFailure(t *testing.T) {
	e := newEngine(t)
	_, err := e.swipes.RecordDecision(context.Background(), uuid.New(), uuid.New(), enums.SwipeDecisionLike)
	require.True(t, apperr.Is(err, apperr.KindStoreFailure), "got %v", err)
}
