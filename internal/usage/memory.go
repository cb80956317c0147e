package usage

import (
	"context"
	"slices"
	"sync"
	"time"

	"gigmarket-ai/internal/feature"
)

type memoryKey struct {
	userID  string
	feature string
}

// MemoryLog keeps records in process. Counts are only correct for a single
// instance.
type MemoryLog struct {
	mu      sync.RWMutex
	records map[memoryKey][]Record
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{records: make(map[memoryKey][]Record)}
}

func (l *MemoryLog) Append(_ context.Context, rec Record) error {
	k := memoryKey{userID: rec.UserID, feature: rec.Feature}

	l.mu.Lock()
	l.records[k] = append(l.records[k], rec)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLog) CountSince(_ context.Context, userID string, f feature.Feature, since time.Time) (int64, error) {
	k := memoryKey{userID: userID, feature: string(f)}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var n int64
	for _, r := range l.records[k] {
		if !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// Records returns a copy of every record for userID, oldest first.
func (l *MemoryLog) Records(userID string) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Record
	for k, recs := range l.records {
		if k.userID == userID {
			out = append(out, recs...)
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// Len returns the total number of records.
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, recs := range l.records {
		n += len(recs)
	}
	return n
}
