// Package ai runs every AI feature call through one lifecycle: quota
// check, cache lookup, provider call, cache store and usage accounting.
//
// Exactly one usage record is written per call that is not rejected by
// quota and does not fail. Cache errors never fail a call; they are logged
// and the call proceeds as a miss. Two identical calls racing before
// either stores its result both reach the provider; the store upsert keeps
// that safe.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gigmarket-ai/internal/cache"
	"gigmarket-ai/internal/feature"
	"gigmarket-ai/internal/llm"
	"gigmarket-ai/internal/metrics"
	"gigmarket-ai/internal/prompts"
	"gigmarket-ai/internal/ratelimit"
	"gigmarket-ai/pkg/logging"
)

// Limiter is the quota side of the orchestrator.
type Limiter interface {
	Check(ctx context.Context, userID string, f feature.Feature) (ratelimit.Status, error)
	LogUsage(ctx context.Context, userID string, f feature.Feature, tokensUsed int, cached bool) error
}

// Validator checks a JSON document before it is decoded and cached.
// prompts.Schema implements it.
type Validator interface {
	Validate(doc json.RawMessage) error
}

// Options tune one call. The zero value caches for feature.DefaultCacheTTL
// and uses the provider defaults.
type Options struct {
	// CacheTTL overrides the cache lifetime. A pointer to 0 bypasses the
	// cache entirely: no read and no write.
	CacheTTL *time.Duration
	LLM      llm.Options
	// Validator overrides the feature's registered schema in CallJSON.
	Validator Validator
}

// TTL is a helper for Options.CacheTTL.
func TTL(d time.Duration) *time.Duration { return &d }

// NoCache disables caching for a call.
func NoCache() *time.Duration { return TTL(0) }

type TextResult struct {
	Text       string `json:"text"`
	TokensUsed int    `json:"tokensUsed"`
	Cached     bool   `json:"cached"`
}

type JSONResult[T any] struct {
	Data       T    `json:"data"`
	TokensUsed int  `json:"tokensUsed"`
	Cached     bool `json:"cached"`
}

type Orchestrator struct {
	limiter Limiter
	store   cache.Store
	gen     llm.Generator
}

// New wires the orchestrator. A nil store disables caching.
func New(limiter Limiter, store cache.Store, gen llm.Generator) *Orchestrator {
	return &Orchestrator{limiter: limiter, store: store, gen: gen}
}

// Call runs a plain text feature.
func (o *Orchestrator) Call(ctx context.Context, userID string, f feature.Feature, prompt string, opts Options) (TextResult, error) {
	var text string
	res, err := o.run(ctx, userID, f, prompt, opts, call{
		produce: func(ctx context.Context) (string, int, error) {
			out, err := o.gen.Generate(ctx, prompt, opts.LLM)
			if err != nil {
				return "", 0, err
			}
			text = out.Text
			return out.Text, out.TokensUsed, nil
		},
		decode: func(payload string) error {
			text = payload
			return nil
		},
	})
	if err != nil {
		return TextResult{}, err
	}
	return TextResult{Text: text, TokensUsed: res.tokens, Cached: res.cached}, nil
}

// CallJSON runs a structured feature. The model document is checked
// against opts.Validator, or the feature's registered schema, and decoded
// into T. The re-encoded T is what gets cached.
func CallJSON[T any](ctx context.Context, o *Orchestrator, userID string, f feature.Feature, prompt string, opts Options) (JSONResult[T], error) {
	validator := opts.Validator
	if validator == nil {
		if s, ok := prompts.SchemaFor(f); ok {
			validator = s
		}
	}

	var data T
	res, err := o.run(ctx, userID, f, prompt, opts, call{
		produce: func(ctx context.Context) (string, int, error) {
			out, err := o.gen.GenerateJSON(ctx, prompt, opts.LLM)
			if err != nil {
				return "", 0, err
			}
			if validator != nil {
				if err := validator.Validate(out.Data); err != nil {
					return "", 0, err
				}
			}
			if err := json.Unmarshal(out.Data, &data); err != nil {
				return "", 0, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
			}
			encoded, err := json.Marshal(data)
			if err != nil {
				return "", 0, fmt.Errorf("encode %s result: %w", f, err)
			}
			return string(encoded), out.TokensUsed, nil
		},
		decode: func(payload string) error {
			var v T
			if err := json.Unmarshal([]byte(payload), &v); err != nil {
				return err
			}
			data = v
			return nil
		},
	})
	if err != nil {
		return JSONResult[T]{}, err
	}
	return JSONResult[T]{Data: data, TokensUsed: res.tokens, Cached: res.cached}, nil
}

type call struct {
	// produce calls the provider and returns the payload to cache.
	produce func(ctx context.Context) (payload string, tokens int, err error)
	// decode loads a cached payload into the caller's result.
	decode func(payload string) error
}

type outcome struct {
	tokens int
	cached bool
}

func (o *Orchestrator) run(ctx context.Context, userID string, f feature.Feature, prompt string, opts Options, c call) (outcome, error) {
	if !f.Valid() {
		return outcome{}, fmt.Errorf("%w %q", ErrUnknownFeature, f)
	}

	start := time.Now()
	log := logging.L(ctx).With(zap.String("feature", f.String()), zap.String("user_id", userID))

	status, err := o.limiter.Check(ctx, userID, f)
	if err != nil {
		return outcome{}, fmt.Errorf("quota check: %w", err)
	}
	if !status.Allowed {
		metrics.QuotaRejectionsTotal.WithLabelValues(f.String()).Inc()
		return outcome{}, &QuotaExceededError{Feature: f, Remaining: status.Remaining, Limit: status.Limit}
	}

	ttl := feature.DefaultCacheTTL
	if opts.CacheTTL != nil {
		ttl = *opts.CacheTTL
	}
	useCache := ttl > 0 && o.store != nil
	inputHash := cache.InputHash(f, prompt)

	if useCache {
		if o.serveCached(ctx, log, f, inputHash, c.decode) {
			if err := o.limiter.LogUsage(ctx, userID, f, 0, true); err != nil {
				return outcome{}, err
			}
			log.Info("ai_call",
				zap.Bool("cached", true),
				zap.Int("tokens_used", 0),
				zap.Duration("latency", time.Since(start)),
			)
			return outcome{cached: true}, nil
		}
	}

	payload, tokens, err := c.produce(ctx)
	metrics.ProviderCallsTotal.WithLabelValues(f.String(), KindOf(err).String()).Inc()
	if err != nil {
		return outcome{}, err
	}

	if useCache {
		if err := o.store.Set(ctx, f, inputHash, payload, ttl); err != nil {
			log.Warn("ai_cache_write_failed", zap.Error(err))
		}
	}

	if err := o.limiter.LogUsage(ctx, userID, f, tokens, false); err != nil {
		return outcome{}, err
	}
	metrics.TokensUsedTotal.WithLabelValues(f.String()).Add(float64(tokens))

	log.Info("ai_call",
		zap.Bool("cached", false),
		zap.Int("tokens_used", tokens),
		zap.Duration("latency", time.Since(start)),
	)
	return outcome{tokens: tokens}, nil
}

// serveCached reports whether a usable cached payload was decoded.
func (o *Orchestrator) serveCached(ctx context.Context, log *zap.Logger, f feature.Feature, inputHash string, decode func(string) error) bool {
	payload, hit, err := o.store.Get(ctx, f, inputHash)
	if err != nil {
		log.Warn("ai_cache_read_failed", zap.Error(err))
		return false
	}
	if !hit {
		return false
	}
	if err := decode(payload); err != nil {
		log.Warn("ai_cache_entry_undecodable", zap.String("input_hash", inputHash), zap.Error(err))
		return false
	}
	return true
}
