// Package usage is the append-only log of completed AI calls. The rate
// limiter counts it; billing and analytics read it.
package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gigmarket-ai/internal/feature"
)

// Record is one completed orchestrator call.
type Record struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"size:128;not null;index:idx_ai_usage_user_feature_time,priority:1" json:"userId"`
	Feature    string    `gorm:"size:64;not null;index:idx_ai_usage_user_feature_time,priority:2" json:"feature"`
	TokensUsed int       `gorm:"not null;default:0" json:"tokensUsed"`
	Cached     bool      `gorm:"not null;default:false" json:"cached"`
	CreatedAt  time.Time `gorm:"not null;index:idx_ai_usage_user_feature_time,priority:3" json:"createdAt"`
}

func (Record) TableName() string { return "ai_usage_records" }

// NewRecord stamps a record with a fresh id and the current UTC time.
func NewRecord(userID string, f feature.Feature, tokensUsed int, cached bool) Record {
	return Record{
		ID:         uuid.New(),
		UserID:     userID,
		Feature:    string(f),
		TokensUsed: tokensUsed,
		Cached:     cached,
		CreatedAt:  time.Now().UTC(),
	}
}

// Log appends records and counts them per user and feature.
type Log interface {
	Append(ctx context.Context, rec Record) error
	CountSince(ctx context.Context, userID string, f feature.Feature, since time.Time) (int64, error)
}
