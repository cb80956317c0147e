package ai

import (
	"errors"
	"fmt"

	"gigmarket-ai/internal/feature"
	"gigmarket-ai/internal/llm"
	"gigmarket-ai/internal/prompts"
)

var (
	ErrUnknownFeature = feature.ErrUnknownFeature
	ErrMalformedJSON  = llm.ErrMalformedJSON
	ErrNotConfigured  = llm.ErrNotConfigured
	ErrSchemaMismatch = prompts.ErrSchemaMismatch
)

// QuotaExceededError rejects a call before any cache or provider work.
type QuotaExceededError struct {
	Feature   feature.Feature
	Remaining int
	Limit     int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("ai: daily quota exceeded for %s (%d/%d remaining)", e.Feature, e.Remaining, e.Limit)
}

// Kind is the error class callers switch on.
type Kind int

const (
	KindNone Kind = iota
	KindQuotaExceeded
	KindUpstreamMalformed
	KindSchemaMismatch
	KindNotConfigured
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindUpstreamMalformed:
		return "malformed"
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindNotConfigured:
		return "not_configured"
	}
	return "unavailable"
}

// KindOf classifies err, checking the specific kinds in priority order.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var quota *QuotaExceededError
	switch {
	case errors.As(err, &quota):
		return KindQuotaExceeded
	case errors.Is(err, ErrMalformedJSON):
		return KindUpstreamMalformed
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, ErrNotConfigured):
		return KindNotConfigured
	}
	return KindUnavailable
}
