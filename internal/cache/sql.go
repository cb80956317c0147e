package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gigmarket-ai/internal/feature"
)

// CacheEntry is one cached response row.
type CacheEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Feature   string    `gorm:"size:64;not null;uniqueIndex:idx_ai_cache_feature_hash,priority:1"`
	InputHash string    `gorm:"size:64;not null;uniqueIndex:idx_ai_cache_feature_hash,priority:2"`
	Response  string    `gorm:"type:text;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CacheEntry) TableName() string { return "ai_cache_entries" }

// staleDeleteTimeout bounds the background delete of an expired row.
const staleDeleteTimeout = 5 * time.Second

// SQLStore keeps entries in a relational table through gorm. Timestamps
// are written in UTC so expiry comparisons hold on sqlite text columns.
type SQLStore struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewSQLStore(db *gorm.DB, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{
		db:  db,
		log: logger.With(zap.String("component", "cache_sql")),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a live entry. An expired row reads as a miss and is deleted
// in the background; the caller never waits on that delete.
func (s *SQLStore) Get(ctx context.Context, f feature.Feature, inputHash string) (string, bool, error) {
	var row CacheEntry
	err := s.db.WithContext(ctx).
		Where("feature = ? AND input_hash = ?", string(f), inputHash).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup failed: %w", err)
	}

	if !s.now().Before(row.ExpiresAt) {
		go s.deleteStale(context.WithoutCancel(ctx), row.ID, f)
		return "", false, nil
	}
	return row.Response, true, nil
}

func (s *SQLStore) deleteStale(ctx context.Context, id uint, f feature.Feature) {
	ctx, cancel := context.WithTimeout(ctx, staleDeleteTimeout)
	defer cancel()

	// The expiry check is repeated so a concurrent Set that refreshed the
	// row is not undone.
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at <= ?", id, s.now()).
		Delete(&CacheEntry{}).Error
	if err != nil {
		s.log.Warn("cache_stale_delete_failed",
			zap.String("feature", f.String()),
			zap.Uint("id", id),
			zap.Error(err),
		)
	}
}

// Set upserts the entry on (feature, input_hash).
func (s *SQLStore) Set(ctx context.Context, f feature.Feature, inputHash, response string, ttl time.Duration) error {
	now := s.now()
	row := CacheEntry{
		Feature:   string(f),
		InputHash: inputHash,
		Response:  response,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feature"}, {Name: "input_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"response", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("cache upsert failed: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired row.
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&CacheEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("cache purge failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
