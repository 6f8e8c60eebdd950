package matches

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yjw768/groupup/internal/domain/model"
	"github.com/yjw768/groupup/internal/pkg/apperr"
	pgrepo "github.com/yjw768/groupup/internal/repo/postgres"
	redrepo "github.com/yjw768/groupup/internal/repo/redis"
)

type matchStoreStub struct {
	items     map[uuid.UUID][]model.MatchView
	byID      map[uuid.UUID]model.Match
	listCalls int
	err       error
}

func (s *matchStoreStub) ListForUser(_ context.Context, userID uuid.UUID) ([]model.MatchView, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	items := s.items[userID]
	if items == nil {
		items = []model.MatchView{}
	}
	return items, nil
}

func (s *matchStoreStub) GetByID(_ context.Context, id uuid.UUID) (model.Match, error) {
	if s.err != nil {
		return model.Match{}, s.err
	}
	match, ok := s.byID[id]
	if !ok {
		return model.Match{}, pgrepo.ErrMatchNotFound
	}
	return match, nil
}

func sampleView(owner uuid.UUID, matchedAt time.Time) model.MatchView {
	other := uuid.New()
	user1, user2 := model.OrderedPair(owner, other)
	view := model.MatchView{
		Match: model.Match{ID: uuid.New(), User1ID: user1, User2ID: user2, MatchedAt: matchedAt},
		User1: model.MatchParticipant{ID: user1, Username: "u1", DisplayName: "User One"},
		User2: model.MatchParticipant{ID: user2, Username: "u2", DisplayName: "User Two"},
	}
	view.Counterpart = view.User1
	if user1 == owner {
		view.Counterpart = view.User2
	}
	return view
}

func TestListForUserUsesCacheAside(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	owner := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	store := &matchStoreStub{items: map[uuid.UUID][]model.MatchView{
		owner: {sampleView(owner, now), sampleView(owner, now.Add(-time.Hour))},
	}}
	svc := NewService(Dependencies{Store: store, Cache: redrepo.NewMatchCacheRepo(client, time.Minute)})

	first, err := svc.ListForUser(context.Background(), owner)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	second, err := svc.ListForUser(context.Background(), owner)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}

	if store.listCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.listCalls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected list sizes: %d and %d", len(first), len(second))
	}
	if second[0].ID != first[0].ID || second[0].Counterpart.ID != first[0].Counterpart.ID {
		t.Fatalf("cached list differs from stored list: %+v vs %+v", second[0], first[0])
	}
	if second[0].Counterpart.ID == owner {
		t.Fatalf("counterpart must be the other user")
	}
}

func TestListForUserFallsBackWhenCacheUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	owner := uuid.New()
	store := &matchStoreStub{items: map[uuid.UUID][]model.MatchView{
		owner: {sampleView(owner, time.Now().UTC())},
	}}
	svc := NewService(Dependencies{Store: store, Cache: redrepo.NewMatchCacheRepo(client, time.Minute)})

	items, err := svc.ListForUser(context.Background(), owner)
	if err != nil {
		t.Fatalf("cache outage must not fail the list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one match, got %d", len(items))
	}
}

func TestListForUserWithoutMatches(t *testing.T) {
	svc := NewService(Dependencies{Store: &matchStoreStub{}})

	items, err := svc.ListForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", items)
	}
}

func TestListForUserErrors(t *testing.T) {
	svc := NewService(Dependencies{Store: &matchStoreStub{err: errors.New("timeout")}})

	if _, err := svc.ListForUser(context.Background(), uuid.Nil); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := svc.ListForUser(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindStoreFailure) {
		t.Fatalf("expected store failure, got %v", err)
	}
}

func TestGetMapsMissingMatchToNotFound(t *testing.T) {
	known := model.Match{ID: uuid.New(), User1ID: uuid.New(), User2ID: uuid.New()}
	svc := NewService(Dependencies{Store: &matchStoreStub{byID: map[uuid.UUID]model.Match{known.ID: known}}})

	got, err := svc.Get(context.Background(), known.ID)
	if err != nil {
		t.Fatalf("get known match: %v", err)
	}
	if got.ID != known.ID {
		t.Fatalf("unexpected match: %+v", got)
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.Nil); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

type signerStub struct {
	calls int
}

func (s *signerStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	s.calls++
	return "https://cdn.test/" + key, nil
}

func TestListForUserSignsAvatarsButCachesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	owner := uuid.New()
	view := sampleView(owner, time.Now().UTC())
	key1, key2 := "avatars/one.jpg", "avatars/two.jpg"
	view.User1.AvatarURL = &key1
	view.User2.AvatarURL = &key2
	view.Counterpart = view.User1
	if view.User1ID == owner {
		view.Counterpart = view.User2
	}
	store := &matchStoreStub{items: map[uuid.UUID][]model.MatchView{owner: {view}}}
	signer := &signerStub{}
	svc := NewService(Dependencies{
		Store:  store,
		Cache:  redrepo.NewMatchCacheRepo(client, time.Minute),
		Signer: signer,
	})

	for i := 0; i < 2; i++ {
		items, err := svc.ListForUser(context.Background(), owner)
		if err != nil {
			t.Fatalf("list #%d: %v", i+1, err)
		}
		got := items[0]
		if got.User1.AvatarURL == nil || *got.User1.AvatarURL != "https://cdn.test/"+key1 {
			t.Fatalf("list #%d: user1 avatar not signed: %v", i+1, got.User1.AvatarURL)
		}
		if got.Counterpart.AvatarURL == nil || (*got.Counterpart.AvatarURL)[:8] != "https://" {
			t.Fatalf("list #%d: counterpart avatar not signed: %v", i+1, got.Counterpart.AvatarURL)
		}
	}
	if store.listCalls != 1 {
		t.Fatalf("expected second read from cache, store hit %d times", store.listCalls)
	}

	raw, err := mr.Get("matches:user:" + owner.String())
	if err != nil {
		t.Fatalf("read cache entry: %v", err)
	}
	if strings.Contains(raw, "https://cdn.test/") || !strings.Contains(raw, key1) {
		t.Fatalf("cache must hold object keys, got %s", raw)
	}
}
