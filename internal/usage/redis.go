package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"gigmarket-ai/internal/feature"
)

// DefaultRetention is how long the redis log keeps records. It must cover
// the quota window.
const DefaultRetention = 25 * time.Hour

// RedisLog keeps one sorted set per user and feature, scored by creation
// time in unix milliseconds. Members are the JSON encoded record.
type RedisLog struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

type RedisConfig struct {
	Prefix    string
	Retention time.Duration
}

func NewRedisLog(client *redis.Client, cfg RedisConfig) *RedisLog {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	return &RedisLog{client: client, prefix: cfg.Prefix, retention: cfg.Retention}
}

func (l *RedisLog) key(userID, f string) string {
	k := "usage:" + userID + ":" + f
	if l.prefix == "" {
		return k
	}
	return l.prefix + ":" + k
}

// Append adds the record and trims members older than the retention.
func (l *RedisLog) Append(ctx context.Context, rec Record) error {
	member, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode usage record: %w", err)
	}

	key := l.key(rec.UserID, rec.Feature)
	cutoff := rec.CreatedAt.Add(-l.retention).UnixMilli()

	_, err = l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: member})
		p.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
		p.Expire(ctx, key, l.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis usage append failed: %w", err)
	}
	return nil
}

func (l *RedisLog) CountSince(ctx context.Context, userID string, f feature.Feature, since time.Time) (int64, error) {
	n, err := l.client.ZCount(ctx, l.key(userID, string(f)), strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis usage count failed: %w", err)
	}
	return n, nil
}
