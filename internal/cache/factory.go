package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
)

// ErrPurgeUnsupported is returned by PurgeExpired on backends that expire
// entries on their own.
var ErrPurgeUnsupported = errors.New("cache backend does not support purging")

type Config struct {
	Backend         string
	Prefix          string
	CleanupInterval time.Duration
}

// Deps carries the shared clients a backend may need.
type Deps struct {
	Redis  *redis.Client
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewStore builds the configured backend wrapped in a LoggingStore.
func NewStore(cfg Config, deps Deps) (*LoggingStore, error) {
	switch cfg.Backend {
	case BackendRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("cache: redis backend needs a redis client")
		}
		return NewLoggingStore(NewRedisStore(deps.Redis, RedisConfig{Prefix: cfg.Prefix})), nil
	case BackendSQL:
		if deps.DB == nil {
			return nil, fmt.Errorf("cache: sql backend needs a database")
		}
		return NewLoggingStore(NewSQLStore(deps.DB, deps.Logger)), nil
	case BackendMemory, "":
		return NewLoggingStore(NewMemoryStore(cfg.CleanupInterval)), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}
