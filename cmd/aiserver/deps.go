package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gigmarket-ai/internal/cache"
	"gigmarket-ai/internal/config"
	"gigmarket-ai/internal/ratelimit"
	"gigmarket-ai/internal/store"
	"gigmarket-ai/internal/usage"
	"gigmarket-ai/pkg/logging"
)

// app holds the shared backends every command builds from config.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	redis   *redis.Client
	db      *gorm.DB
	cache   *cache.LoggingStore
	usage   usage.Log
	limiter *ratelimit.Limiter
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Options{Env: cfg.Env, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	logging.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	switch cfg.StoreBackend {
	case cache.BackendRedis:
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
	case cache.BackendSQL:
		a.db, err = store.Open(cfg.DatabaseDSN, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		logger.Info("database ready", zap.String("dialect", a.db.Dialector.Name()))
	}

	a.cache, err = cache.NewStore(
		cache.Config{Backend: cfg.StoreBackend, Prefix: cfg.KeyPrefix},
		cache.Deps{Redis: a.redis, DB: a.db, Logger: logger},
	)
	if err != nil {
		a.close()
		return nil, err
	}

	a.usage, err = usage.NewLog(usage.Config{Backend: cfg.StoreBackend, Prefix: cfg.KeyPrefix}, a.redis, a.db)
	if err != nil {
		a.close()
		return nil, err
	}

	quotas, err := ratelimit.LoadQuotas(cfg.QuotasFile)
	if err != nil {
		a.close()
		return nil, err
	}
	a.limiter = ratelimit.NewLimiter(a.usage, quotas)

	return a, nil
}

func (a *app) close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, store.Close(a.db))
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}
