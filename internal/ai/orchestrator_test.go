package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gigmarket-ai/internal/cache"
	"gigmarket-ai/internal/feature"
	"gigmarket-ai/internal/llm"
	"gigmarket-ai/internal/prompts"
	"gigmarket-ai/internal/ratelimit"
	"gigmarket-ai/internal/usage"
	"gigmarket-ai/pkg/logging"
)

type fakeGenerator struct {
	mu     sync.Mutex
	calls  int
	text   string
	raw    string
	tokens int
	err    error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, _ llm.Options) (llm.TextResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return llm.TextResult{}, g.err
	}
	return llm.TextResult{Text: g.text + " " + prompt, TokensUsed: g.tokens}, nil
}

func (g *fakeGenerator) GenerateJSON(_ context.Context, _ string, _ llm.Options) (llm.JSONResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return llm.JSONResult{}, g.err
	}
	data, err := llm.ParseJSON(g.raw)
	if err != nil {
		return llm.JSONResult{}, err
	}
	return llm.JSONResult{Data: data, TokensUsed: g.tokens}, nil
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// spyStore counts calls and can be made to fail.
type spyStore struct {
	inner  cache.Store
	mu     sync.Mutex
	gets   int
	sets   int
	getErr error
	setErr error
}

func (s *spyStore) Get(ctx context.Context, f feature.Feature, h string) (string, bool, error) {
	s.mu.Lock()
	s.gets++
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return "", false, err
	}
	return s.inner.Get(ctx, f, h)
}

func (s *spyStore) Set(ctx context.Context, f feature.Feature, h, resp string, ttl time.Duration) error {
	s.mu.Lock()
	s.sets++
	err := s.setErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, f, h, resp, ttl)
}

func (s *spyStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.sets
}

type harness struct {
	orch  *Orchestrator
	gen   *fakeGenerator
	store *spyStore
	log   *usage.MemoryLog
}

func newHarness(t *testing.T, quotas ratelimit.Quotas) *harness {
	t.Helper()
	mem := cache.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })

	h := &harness{
		gen:   &fakeGenerator{tokens: 57},
		store: &spyStore{inner: mem},
		log:   usage.NewMemoryLog(),
	}
	h.orch = New(ratelimit.NewLimiter(h.log, quotas), h.store, h.gen)
	return h
}

const pricingJSON = "```json\n" + `{"minPrice":100,"maxPrice":300,"recommendedPrice":200,"currency":"USD","pricingModel":"fixed","confidence":"high","reasoning":"typical"}` + "\n```"

func TestCallJSON_CachesSecondIdenticalCall(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.raw = pricingJSON
	ctx := context.Background()

	first, err := CallJSON[prompts.PricingSuggestion](ctx, h.orch, "user1", feature.PricingSuggestion, "promptA", Options{})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.Cached || first.TokensUsed != 57 {
		t.Fatalf("first call should be live with tokens, got %+v", first)
	}
	if first.Data.RecommendedPrice != 200 || first.Data.PricingModel != "fixed" {
		t.Fatalf("unexpected data %+v", first.Data)
	}

	second, err := CallJSON[prompts.PricingSuggestion](ctx, h.orch, "user1", feature.PricingSuggestion, "promptA", Options{})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !second.Cached || second.TokensUsed != 0 {
		t.Fatalf("second call should be a cache hit, got %+v", second)
	}
	if second.Data != first.Data {
		t.Fatalf("cached data differs: %+v vs %+v", second.Data, first.Data)
	}
	if h.gen.Calls() != 1 {
		t.Fatalf("provider called %d times, want 1", h.gen.Calls())
	}

	recs := h.log.Records("user1")
	if len(recs) != 2 || recs[0].Cached || !recs[1].Cached {
		t.Fatalf("expected live then cached usage record, got %+v", recs)
	}
	if recs[0].TokensUsed != 57 || recs[1].TokensUsed != 0 {
		t.Fatalf("unexpected token accounting %+v", recs)
	}
}

func TestCallJSON_CachesSerializedResultNotRawText(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.raw = pricingJSON
	ctx := context.Background()

	if _, err := CallJSON[prompts.PricingSuggestion](ctx, h.orch, "u", feature.PricingSuggestion, "p", Options{}); err != nil {
		t.Fatalf("call: %v", err)
	}
	stored, hit, _ := h.store.inner.Get(ctx, feature.PricingSuggestion, cache.InputHash(feature.PricingSuggestion, "p"))
	if !hit {
		t.Fatalf("expected cache entry")
	}
	if stored[0] != '{' {
		t.Fatalf("cached payload should be the encoded result, got %q", stored)
	}
}

func TestCallJSON_QuotaExhaustedAfterLimitCalls(t *testing.T) {
	quotas := ratelimit.DefaultQuotas()
	quotas.Limits[feature.ScopeClarifier] = 3
	h := newHarness(t, quotas)
	h.gen.raw = `{"questions":[],"missingDetails":[],"scopeRisk":"low"}`
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := CallJSON[prompts.ScopeClarification](ctx, h.orch, "u", feature.ScopeClarifier, fmt.Sprintf("p%d", i), Options{}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	_, err := CallJSON[prompts.ScopeClarification](ctx, h.orch, "u", feature.ScopeClarifier, "p-last", Options{})
	var quota *QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if quota.Remaining != 0 || quota.Limit != 3 {
		t.Fatalf("unexpected quota error %+v", quota)
	}
	if KindOf(err) != KindQuotaExceeded {
		t.Fatalf("KindOf = %v", KindOf(err))
	}

	gets, sets := h.store.counts()
	if h.gen.Calls() != 3 || gets != 3 || sets != 3 {
		t.Fatalf("rejected call must not touch cache or provider: calls=%d gets=%d sets=%d", h.gen.Calls(), gets, sets)
	}
	if h.log.Len() != 3 {
		t.Fatalf("rejected call must not log usage, have %d records", h.log.Len())
	}
}

func TestCallJSON_MalformedOutputWritesNothing(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.raw = "not json"

	_, err := CallJSON[prompts.FraudAssessment](context.Background(), h.orch, "u", feature.FraudCheck, "p", Options{})
	if !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("expected ErrMalformedJSON, got %v", err)
	}
	if KindOf(err) != KindUpstreamMalformed {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if _, sets := h.store.counts(); sets != 0 {
		t.Fatalf("failed call must not be cached")
	}
	if h.log.Len() != 0 {
		t.Fatalf("failed call must not log usage")
	}
}

func TestCallJSON_SchemaMismatch(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.raw = `{"riskScore":"high","flags":[]}`

	_, err := CallJSON[prompts.FraudAssessment](context.Background(), h.orch, "u", feature.FraudCheck, "p", Options{})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if KindOf(err) != KindSchemaMismatch {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if _, sets := h.store.counts(); sets != 0 || h.log.Len() != 0 {
		t.Fatalf("mismatched output must not be cached or logged")
	}
}

func TestCallJSON_CustomValidator(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.raw = `{"anything":true}`

	res, err := CallJSON[map[string]any](context.Background(), h.orch, "u", feature.FraudCheck, "p", Options{
		Validator: prompts.Schema{Fields: []prompts.Field{{Name: "anything", Kind: prompts.Bool}}},
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if res.Data["anything"] != true {
		t.Fatalf("unexpected data %v", res.Data)
	}
}

func TestCall_CacheBypassNeverTouchesStore(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.text = "reply"
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := h.orch.Call(ctx, "u", feature.MessageReply, "same prompt", Options{CacheTTL: NoCache()})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if res.Cached || res.Text != "reply same prompt" {
			t.Fatalf("unexpected result %+v", res)
		}
	}

	gets, sets := h.store.counts()
	if gets != 0 || sets != 0 {
		t.Fatalf("TTL 0 must bypass the store, got gets=%d sets=%d", gets, sets)
	}
	if h.gen.Calls() != 3 {
		t.Fatalf("provider should be called every time, got %d", h.gen.Calls())
	}
	if h.log.Len() != 3 {
		t.Fatalf("expected 3 usage records, got %d", h.log.Len())
	}
}

func TestCall_CacheErrorsAreNonFatal(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.text = "ok"
	h.store.getErr = errors.New("redis down")
	h.store.setErr = errors.New("redis down")

	core, logs := observer.New(zap.WarnLevel)
	ctx := logging.WithLogger(context.Background(), zap.New(core))

	res, err := h.orch.Call(ctx, "u", feature.MessageReply, "p", Options{})
	if err != nil {
		t.Fatalf("cache outage must not fail the call: %v", err)
	}
	if res.Cached || res.TokensUsed != 57 {
		t.Fatalf("unexpected result %+v", res)
	}
	if h.log.Len() != 1 {
		t.Fatalf("expected exactly one usage record, got %d", h.log.Len())
	}
	if logs.FilterMessage("ai_cache_read_failed").Len() != 1 || logs.FilterMessage("ai_cache_write_failed").Len() != 1 {
		t.Fatalf("cache failures should be logged, got %v", logs.All())
	}
}

func TestCall_ProviderErrorPropagates(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.err = fmt.Errorf("provider: %w", llm.ErrNotConfigured)

	_, err := h.orch.Call(context.Background(), "u", feature.MessageReply, "p", Options{})
	if KindOf(err) != KindNotConfigured {
		t.Fatalf("expected not configured, got %v", err)
	}
	if h.log.Len() != 0 {
		t.Fatalf("failed call must not log usage")
	}

	h.gen.err = errors.New("dial tcp: timeout")
	_, err = h.orch.Call(context.Background(), "u", feature.MessageReply, "p", Options{})
	if KindOf(err) != KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestCall_UnknownFeatureFailsBeforeIO(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())

	_, err := h.orch.Call(context.Background(), "u", feature.Feature("priceSuggestion"), "p", Options{})
	if !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature, got %v", err)
	}
	gets, sets := h.store.counts()
	if h.gen.Calls() != 0 || gets != 0 || sets != 0 || h.log.Len() != 0 {
		t.Fatalf("unknown feature must not perform any I/O")
	}
}

func TestCall_ExpiredEntryCallsProviderAgain(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultQuotas())
	h.gen.text = "hi"
	ctx := context.Background()

	if _, err := h.orch.Call(ctx, "u", feature.MessageReply, "p", Options{CacheTTL: TTL(20 * time.Millisecond)}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	res, err := h.orch.Call(ctx, "u", feature.MessageReply, "p", Options{CacheTTL: TTL(20 * time.Millisecond)})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if res.Cached || h.gen.Calls() != 2 {
		t.Fatalf("expired entry must miss, cached=%v calls=%d", res.Cached, h.gen.Calls())
	}
}

func TestKindOf(t *testing.T) {
	cases := map[error]Kind{
		nil:                                   KindNone,
		&QuotaExceededError{}:                 KindQuotaExceeded,
		fmt.Errorf("x: %w", ErrMalformedJSON):  KindUpstreamMalformed,
		fmt.Errorf("x: %w", ErrSchemaMismatch): KindSchemaMismatch,
		ErrNotConfigured:                      KindNotConfigured,
		errors.New("boom"):                    KindUnavailable,
	}
	for err, want := range cases {
		if got := KindOf(err); got != want {
			t.Errorf("KindOf(%v) = %v, want %v", err, got, want)
		}
	}
}
