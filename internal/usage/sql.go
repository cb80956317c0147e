package usage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gigmarket-ai/internal/feature"
)

// SQLLog stores records in ai_usage_records through gorm.
type SQLLog struct {
	db *gorm.DB
}

func NewSQLLog(db *gorm.DB) *SQLLog {
	return &SQLLog{db: db}
}

func (l *SQLLog) Append(ctx context.Context, rec Record) error {
	if err := l.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("usage append failed: %w", err)
	}
	return nil
}

func (l *SQLLog) CountSince(ctx context.Context, userID string, f feature.Feature, since time.Time) (int64, error) {
	var n int64
	err := l.db.WithContext(ctx).
		Model(&Record{}).
		Where("user_id = ? AND feature = ? AND created_at >= ?", userID, string(f), since.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("usage count failed: %w", err)
	}
	return n, nil
}
