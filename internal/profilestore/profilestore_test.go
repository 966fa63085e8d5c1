package profilestore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/rating"
	"github.com/redis/go-redis/v9"
)

func exercise(t *testing.T, s rating.ProfileStore) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Load(ctx, "Ana")
	if err != nil || got != nil {
		t.Fatalf("missing profile: rec=%+v err=%v", got, err)
	}

	want := domain.RatingRecord{
		PlayerName:  "Ana",
		Rating:      1316,
		GamesPlayed: 3,
		Wins:        2,
		Losses:      1,
		UpdatedAt:   time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = s.Load(ctx, " ana ")
	if err != nil || got == nil {
		t.Fatalf("Load after save: rec=%+v err=%v", got, err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	want.Rating = 1290
	want.Losses = 2
	want.GamesPlayed = 4
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, _ = s.Load(ctx, "Ana")
	if got.Rating != 1290 || got.GamesPlayed != 4 {
		t.Fatalf("overwrite not applied: %+v", got)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemory())
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	exercise(t, NewRedis(rdb, 0))
	if !mr.Exists("arena:profile:ana") {
		t.Fatalf("expected arena:profile:ana key, have %v", mr.Keys())
	}
}

func TestRedisStoreTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedis(rdb, time.Hour)
	if err := s.Save(context.Background(), domain.RatingRecord{PlayerName: "bia", Rating: 1200}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL("arena:profile:bia"); ttl != time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}
	mr.FastForward(2 * time.Hour)
	rec, err := s.Load(context.Background(), "bia")
	if err != nil || rec != nil {
		t.Fatalf("expired profile still loaded: %+v %v", rec, err)
	}
}

func TestRedisStoreCorruptValue(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	if err := mr.Set("arena:profile:bia", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := NewRedis(rdb, 0).Load(context.Background(), "bia"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRedisFeedsEngine(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	cfg := rating.DefaultConfig()
	cfg.PlayerName = "Ana"
	eng, err := rating.NewEngine(cfg, NewRedis(rdb, 0), nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := eng.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	u := eng.UpdateRating(ctx, domain.Win, 1200)
	if !u.Saved {
		t.Fatalf("update not saved")
	}

	again, _ := rating.NewEngine(cfg, NewRedis(rdb, 0), nil, nil)
	if err := again.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Current().Rating != u.After.Rating || again.Current().Wins != 1 {
		t.Fatalf("reloaded record mismatch: %+v vs %+v", again.Current(), u.After)
	}
}

func TestOpenSelectsStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cases := []struct {
		kind string
		rdb  *redis.Client
		want string
		err  bool
	}{
		{"", nil, KindMemory, false},
		{"auto", rdb, KindRedis, false},
		{"memory", rdb, KindMemory, false},
		{"Redis", rdb, KindRedis, false},
		{"redis", nil, "", true},
		{"postgres", rdb, "", true},
		{"etcd", nil, "", true},
	}
	for _, tc := range cases {
		s, got, err := Open(tc.kind, tc.rdb, nil)
		if tc.err {
			if err == nil {
				t.Fatalf("Open(%q): expected error", tc.kind)
			}
			continue
		}
		if err != nil || s == nil || got != tc.want {
			t.Fatalf("Open(%q) = %v %q %v, want %q", tc.kind, s, got, err, tc.want)
		}
	}
}
