package usage

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Config struct {
	Backend string // memory, redis or sql
	Prefix  string
}

// NewLog builds the configured backend.
func NewLog(cfg Config, rdb *redis.Client, db *gorm.DB) (Log, error) {
	switch cfg.Backend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("usage: redis backend needs a redis client")
		}
		return NewRedisLog(rdb, RedisConfig{Prefix: cfg.Prefix}), nil
	case "sql":
		if db == nil {
			return nil, fmt.Errorf("usage: sql backend needs a database")
		}
		return NewSQLLog(db), nil
	case "memory", "":
		return NewMemoryLog(), nil
	default:
		return nil, fmt.Errorf("usage: unknown backend %q", cfg.Backend)
	}
}
