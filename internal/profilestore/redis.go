package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "arena:profile:"

// Redis stores each profile as a JSON string under arena:profile:<name>.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis returns a store backed by rdb. A zero ttl keeps keys forever.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (s *Redis) key(playerName string) string { return keyPrefix + profileKey(playerName) }

func (s *Redis) Load(ctx context.Context, playerName string) (*domain.RatingRecord, error) {
	raw, err := s.rdb.Get(ctx, s.key(playerName)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var rec domain.RatingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &rec, nil
}

func (s *Redis) Save(ctx context.Context, rec domain.RatingRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(rec.PlayerName), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}
