package profilestore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/park285/cheese-arena/internal/rating"
	"github.com/redis/go-redis/v9"
)

const (
	KindAuto     = "auto"
	KindMemory   = "memory"
	KindRedis    = "redis"
	KindPostgres = "postgres"
)

// Open picks a store by kind. "auto" prefers Postgres, then Redis, then memory.
func Open(kind string, rdb *redis.Client, db *sql.DB) (rating.ProfileStore, string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindAuto:
		switch {
		case db != nil:
			return NewPostgres(db), KindPostgres, nil
		case rdb != nil:
			return NewRedis(rdb, 0), KindRedis, nil
		default:
			return NewMemory(), KindMemory, nil
		}
	case KindMemory:
		return NewMemory(), KindMemory, nil
	case KindRedis:
		if rdb == nil {
			return nil, "", fmt.Errorf("PROFILE_STORE=redis requires REDIS_URL")
		}
		return NewRedis(rdb, 0), KindRedis, nil
	case KindPostgres:
		if db == nil {
			return nil, "", fmt.Errorf("PROFILE_STORE=postgres requires DATABASE_URL")
		}
		return NewPostgres(db), KindPostgres, nil
	default:
		return nil, "", fmt.Errorf("unknown profile store %q", kind)
	}
}
