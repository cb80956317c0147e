// Package ratelimit enforces per-user, per-feature daily quotas against
// the durable usage log.
//
// Check is read-then-decide without a lock, so concurrent calls at the
// boundary can both pass and a window may briefly hold limit+1 records.
// The quota is soft.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"gigmarket-ai/internal/feature"
	"gigmarket-ai/internal/usage"
)

// Window is the rolling period a quota applies to.
const Window = 24 * time.Hour

// Status is the quota position of one user for one feature.
type Status struct {
	Feature   feature.Feature `json:"feature"`
	Allowed   bool            `json:"allowed"`
	Used      int             `json:"used"`
	Remaining int             `json:"remaining"`
	Limit     int             `json:"limit"`
}

type Limiter struct {
	log    usage.Log
	quotas Quotas
	now    func() time.Time
}

type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func NewLimiter(log usage.Log, quotas Quotas, opts ...Option) *Limiter {
	l := &Limiter{
		log:    log,
		quotas: quotas,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Check counts the user's records for f in the trailing window.
// Allowed requires count < limit.
func (l *Limiter) Check(ctx context.Context, userID string, f feature.Feature) (Status, error) {
	if !f.Valid() {
		return Status{}, fmt.Errorf("%w %q", feature.ErrUnknownFeature, f)
	}

	limit := l.quotas.Limit(f)
	count, err := l.log.CountSince(ctx, userID, f, l.now().Add(-Window))
	if err != nil {
		return Status{}, fmt.Errorf("count usage: %w", err)
	}

	return Status{
		Feature:   f,
		Allowed:   count < int64(limit),
		Used:      int(count),
		Remaining: max(0, limit-int(count)),
		Limit:     limit,
	}, nil
}

// LogUsage appends one record for a completed call.
func (l *Limiter) LogUsage(ctx context.Context, userID string, f feature.Feature, tokensUsed int, cached bool) error {
	rec := usage.NewRecord(userID, f, tokensUsed, cached)
	rec.CreatedAt = l.now()
	if err := l.log.Append(ctx, rec); err != nil {
		return fmt.Errorf("log usage: %w", err)
	}
	return nil
}

// Overview reports the user's status for every feature.
func (l *Limiter) Overview(ctx context.Context, userID string) ([]Status, error) {
	all := feature.All()
	out := make([]Status, 0, len(all))
	for _, f := range all {
		st, err := l.Check(ctx, userID, f)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
