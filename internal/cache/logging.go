package cache

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"gigmarket-ai/internal/feature"
	"gigmarket-ai/internal/metrics"
	"gigmarket-ai/pkg/logging"
)

// LoggingStore wraps a Store with request-scoped logging and lookup metrics.
type LoggingStore struct {
	inner Store
}

func NewLoggingStore(inner Store) *LoggingStore {
	return &LoggingStore{inner: inner}
}

func (s *LoggingStore) Get(ctx context.Context, f feature.Feature, inputHash string) (string, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, f, inputHash)

	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "hit"
	}
	metrics.CacheLookupsTotal.WithLabelValues(f.String(), result).Inc()

	fields := []zap.Field{
		zap.String("feature", f.String()),
		zap.String("input_hash", inputHash),
		zap.String("cache_result", result),
		zap.Float64("latency_ms", millis(time.Since(start))),
	}
	if err != nil {
		logging.L(ctx).Error("cache_get", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("cache_get", fields...)
	}

	return value, ok, err
}

func (s *LoggingStore) Set(ctx context.Context, f feature.Feature, inputHash, response string, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.Set(ctx, f, inputHash, response, ttl)

	fields := []zap.Field{
		zap.String("feature", f.String()),
		zap.String("input_hash", inputHash),
		zap.Duration("ttl", ttl),
		zap.Float64("latency_ms", millis(time.Since(start))),
	}
	if err != nil {
		logging.L(ctx).Error("cache_set", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("cache_set", fields...)
	}

	return err
}

// PurgeExpired forwards to the wrapped store when it supports purging.
func (s *LoggingStore) PurgeExpired(ctx context.Context) (int64, error) {
	p, ok := s.inner.(Purger)
	if !ok {
		return 0, ErrPurgeUnsupported
	}
	n, err := p.PurgeExpired(ctx)
	if err != nil {
		logging.L(ctx).Error("cache_purge", zap.Error(err))
		return n, err
	}
	logging.L(ctx).Info("cache_purge", zap.Int64("removed", n))
	return n, nil
}

// Close releases the wrapped store when it holds resources.
func (s *LoggingStore) Close() error {
	if c, ok := s.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
