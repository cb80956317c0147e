// Package cache stores AI responses keyed by feature and a digest of the
// prompt that produced them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gigmarket-ai/internal/feature"
)

// Store is a TTL key/value store for feature responses. An expired entry
// reads as a miss. Set overwrites an existing entry for the same key.
type Store interface {
	Get(ctx context.Context, f feature.Feature, inputHash string) (string, bool, error)
	Set(ctx context.Context, f feature.Feature, inputHash, response string, ttl time.Duration) error
}

// Purger is implemented by stores that keep expired rows until they are
// swept explicitly.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Hash returns the hex SHA-256 digest of input.
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// InputHash derives the cache key digest for a feature prompt.
func InputHash(f feature.Feature, prompt string) string {
	return Hash(string(f) + ":" + prompt)
}

func entryKey(f feature.Feature, inputHash string) string {
	return string(f) + ":" + inputHash
}
