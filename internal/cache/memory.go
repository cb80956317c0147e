package cache

import (
	"context"
	"sync"
	"time"

	"gigmarket-ai/internal/feature"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps entries in process. It is meant for development and
// single instance deployments.
type MemoryStore struct {
	mu              sync.RWMutex
	items           map[string]memoryEntry
	now             func() time.Time
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
	cleanupInterval time.Duration
}

// NewMemoryStore starts a store whose sweeper runs every cleanupInterval
// (5 minutes when not positive).
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return newMemoryStore(cleanupInterval, time.Now)
}

func newMemoryStore(cleanupInterval time.Duration, now func() time.Time) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	s := &MemoryStore{
		items:           make(map[string]memoryEntry),
		now:             now,
		stopCleanup:     make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}

	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) Get(_ context.Context, f feature.Feature, inputHash string) (string, bool, error) {
	key := entryKey(f, inputHash)

	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}

	now := s.now()
	if !now.Before(entry.expiresAt) {
		s.mu.Lock()
		if e, exists := s.items[key]; exists && !now.Before(e.expiresAt) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return "", false, nil
	}

	return entry.value, true, nil
}

// Set stores response until now+ttl. A non-positive ttl removes the entry.
func (s *MemoryStore) Set(_ context.Context, f feature.Feature, inputHash, response string, ttl time.Duration) error {
	key := entryKey(f, inputHash)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		delete(s.items, key)
		return nil
	}
	s.items[key] = memoryEntry{value: response, expiresAt: s.now().Add(ttl)}
	return nil
}

// PurgeExpired drops every expired entry and reports how many were removed.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	return s.sweep(), nil
}

func (s *MemoryStore) sweep() int64 {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, v := range s.items {
		if !now.Before(v.expiresAt) {
			delete(s.items, k)
			n++
		}
	}
	return n
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCleanup:
			return
		}
	}
}

// Close stops the sweeper. Call this on shutdown or in tests.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
