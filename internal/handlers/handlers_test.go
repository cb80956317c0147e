package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"gigmarket-ai/internal/ai"
	"gigmarket-ai/internal/auth"
	"gigmarket-ai/internal/cache"
	"gigmarket-ai/internal/feature"
	"gigmarket-ai/internal/llm"
	"gigmarket-ai/internal/ratelimit"
	"gigmarket-ai/internal/usage"
)

const testSecret = "test-secret"

type scriptedClient struct {
	mu      sync.Mutex
	content string
	err     error
	calls   int
}

func (c *scriptedClient) ChatCompletion(_ context.Context, _ *llm.ChatRequest) (*llm.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &llm.ChatResponse{
		Choices: []llm.ChatChoice{{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: c.content}}},
		Usage:   &llm.Usage{TotalTokens: 31},
	}, nil
}

type testServer struct {
	router http.Handler
	client *scriptedClient
	usage  *usage.MemoryLog
	cache  *cache.MemoryStore
	tokens *auth.JWTResolver
}

func newTestServer(t *testing.T, quotas ratelimit.Quotas, gen llm.Generator) *testServer {
	t.Helper()

	s := &testServer{
		client: &scriptedClient{},
		usage:  usage.NewMemoryLog(),
		cache:  cache.NewMemoryStore(time.Hour),
		tokens: auth.NewJWTResolver(testSecret),
	}
	t.Cleanup(func() { _ = s.cache.Close() })

	if gen == nil {
		gen = llm.NewProviderWithClient(s.client, zaptest.NewLogger(t))
	}
	limiter := ratelimit.NewLimiter(s.usage, quotas)
	orch := ai.New(limiter, cache.NewLoggingStore(s.cache), gen)

	r := chi.NewRouter()
	r.Route("/v1/ai", func(r chi.Router) {
		NewAIHandler(orch, limiter).Mount(r, NewAdapter(s.tokens))
	})
	s.router = r
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		tok, err := s.tokens.Issue(auth.Session{UserID: "user-1", Role: "client"}, time.Hour)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	if body.Error == "" {
		t.Fatalf("error body must carry a message: %s", rec.Body.String())
	}
	return body
}

const pricingBody = `{"title":"Logo design","description":"Need a logo for a bakery","category":"Design"}`

const pricingReply = "```json\n{\"minPrice\":80,\"maxPrice\":200,\"recommendedPrice\":120,\"currency\":\"USD\",\"pricingModel\":\"fixed\",\"confidence\":\"medium\",\"reasoning\":\"small brand\"}\n```"

func TestFeatureRoute_RequiresSession(t *testing.T) {
	s := newTestServer(t, ratelimit.DefaultQuotas(), nil)

	rec := s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", pricingBody, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if decodeError(t, rec).Code != "unauthorized" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if s.client.calls != 0 {
		t.Fatalf("handler must not run without a session")
	}
}

func TestFeatureRoute_LiveThenCached(t *testing.T) {
	s := newTestServer(t, ratelimit.DefaultQuotas(), nil)
	s.client.content = pricingReply

	first := s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", pricingBody, true)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", first.Code, first.Body.String())
	}
	var res struct {
		Data struct {
			RecommendedPrice float64 `json:"recommendedPrice"`
		} `json:"data"`
		TokensUsed int  `json:"tokensUsed"`
		Cached     bool `json:"cached"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Cached || res.TokensUsed != 31 || res.Data.RecommendedPrice != 120 {
		t.Fatalf("unexpected first response %+v", res)
	}

	second := s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", pricingBody, true)
	if err := json.Unmarshal(second.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Cached || res.Data.RecommendedPrice != 120 {
		t.Fatalf("second call should be served from cache: %+v", res)
	}
	if s.client.calls != 1 || s.usage.Len() != 2 {
		t.Fatalf("calls=%d usage=%d", s.client.calls, s.usage.Len())
	}
}

func TestFeatureRoute_MalformedUpstreamIs502(t *testing.T) {
	s := newTestServer(t, ratelimit.DefaultQuotas(), nil)
	s.client.content = "not json"

	rec := s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", pricingBody, true)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if decodeError(t, rec).Code != "bad_upstream_response" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if s.usage.Len() != 0 || s.cache.Len() != 0 {
		t.Fatalf("failed call wrote usage=%d cache=%d", s.usage.Len(), s.cache.Len())
	}
}

func TestFeatureRoute_SchemaMismatchIs502(t *testing.T) {
	s := newTestServer(t, ratelimit.DefaultQuotas(), nil)
	s.client.content = `{"minPrice":80}`

	rec := s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", pricingBody, true)
	if rec.Code != http.StatusBadGateway || decodeError(t, rec).Code != "schema_mismatch" {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if s.usage.Len() != 0 {
		t.Fatalf("mismatched output must not log usage")
	}
}

func TestFeatureRoute_QuotaExceededIs429(t *testing.T) {
	quotas := ratelimit.DefaultQuotas()
	quotas.Limits[feature.ContentModeration] = 2
	s := newTestServer(t, quotas, nil)
	s.client.content = `{"approved":true,"categories":[],"severity":"none","reason":"clean"}`

	for i, text := range []string{"hello", "hi there"} {
		body := `{"contentType":"message","content":"` + text + `"}`
		if rec := s.do(t, http.MethodPost, "/v1/ai/content-moderation", body, true); rec.Code != http.StatusOK {
			t.Fatalf("call %d: status %d body=%s", i, rec.Code, rec.Body.String())
		}
	}

	rec := s.do(t, http.MethodPost, "/v1/ai/content-moderation", `{"contentType":"message","content":"third"}`, true)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != "quota_exceeded" || body.Remaining == nil || *body.Remaining != 0 || body.Limit == nil || *body.Limit != 2 {
		t.Fatalf("unexpected quota body %s", rec.Body.String())
	}
	if s.client.calls != 2 {
		t.Fatalf("rejected call reached the provider")
	}
}

func TestFeatureRoute_NotConfiguredIs503(t *testing.T) {
	gen := llm.NewProvider(llm.Config{}, func() string { return "" }, zaptest.NewLogger(t))
	s := newTestServer(t, ratelimit.DefaultQuotas(), gen)

	rec := s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", pricingBody, true)
	if rec.Code != http.StatusServiceUnavailable || decodeError(t, rec).Code != "service_not_configured" {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestFeatureRoute_ProviderFailureHidesDetails(t *testing.T) {
	s := newTestServer(t, ratelimit.DefaultQuotas(), nil)
	s.client.err = errors.New("upstream 500: internal key sk-live-123 rejected")

	rec := s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", pricingBody, true)
	if rec.Code != http.StatusServiceUnavailable || decodeError(t, rec).Code != "service_unavailable" {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "sk-live") {
		t.Fatalf("provider error leaked to client: %s", rec.Body.String())
	}
}

func TestFeatureRoute_BadRequests(t *testing.T) {
	s := newTestServer(t, ratelimit.DefaultQuotas(), nil)

	cases := map[string]string{
		"not json":        `{"title":`,
		"trailing data":   pricingBody + `{}`,
		"missing context": `{"title":"Logo"}`,
	}
	for name, body := range cases {
		rec := s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", body, true)
		if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "invalid_request" {
			t.Errorf("%s: status = %d body=%s", name, rec.Code, rec.Body.String())
		}
	}
	if s.client.calls != 0 || s.usage.Len() != 0 {
		t.Fatalf("bad requests must not reach the orchestrator")
	}
}

func TestMessageReplyRoute(t *testing.T) {
	s := newTestServer(t, ratelimit.DefaultQuotas(), nil)
	s.client.content = "Thanks, I can start Monday."

	body := `{"senderRole":"freelancer","thread":[{"from":"client","text":"When can you start?"}]}`
	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/v1/ai/message-reply", body, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
		}
		var res ai.TextResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res.Text != "Thanks, I can start Monday." || res.Cached {
			t.Fatalf("unexpected reply %+v", res)
		}
	}
	if s.cache.Len() != 0 {
		t.Fatalf("message replies are never cached")
	}
}

func TestQuotaRoute(t *testing.T) {
	s := newTestServer(t, ratelimit.DefaultQuotas(), nil)
	s.client.content = pricingReply
	s.do(t, http.MethodPost, "/v1/ai/pricing-suggestion", pricingBody, true)

	rec := s.do(t, http.MethodGet, "/v1/ai/quota", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res struct {
		UserID string             `json:"userId"`
		Quotas []ratelimit.Status `json:"quotas"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.UserID != "user-1" || len(res.Quotas) != len(feature.All()) {
		t.Fatalf("unexpected quota response %+v", res)
	}
	for _, q := range res.Quotas {
		if q.Feature == feature.PricingSuggestion && (q.Remaining != q.Limit-1 || q.Used != 1) {
			t.Fatalf("pricing used = %d remaining = %d, limit %d", q.Used, q.Remaining, q.Limit)
		}
	}
	if s.usage.Len() != 1 {
		t.Fatalf("quota lookups must not log usage")
	}
}

func TestEveryFeatureHasARoute(t *testing.T) {
	h := NewAIHandler(nil, nil)
	seen := map[feature.Feature]bool{}
	for _, rt := range h.routes() {
		seen[rt.feature] = true
	}
	for _, f := range feature.All() {
		if !seen[f] {
			t.Errorf("no route for %s", f)
		}
	}
}

func TestAdapter_RecoversPanics(t *testing.T) {
	a := NewAdapter(auth.NewJWTResolver(testSecret))
	h := a.Wrap("boom", func(http.ResponseWriter, *http.Request, auth.Session) error {
		panic("nil map write")
	})

	tok, _ := auth.NewJWTResolver(testSecret).Issue(auth.Session{UserID: "u"}, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable || decodeError(t, rec).Code != "service_unavailable" {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "nil map") {
		t.Fatalf("panic text leaked: %s", rec.Body.String())
	}
}

func TestAdapter_HandsResolvedSessionToHandler(t *testing.T) {
	tokens := auth.NewJWTResolver(testSecret)
	a := NewAdapter(tokens)

	var got auth.Session
	h := a.Wrap("whoami", func(w http.ResponseWriter, _ *http.Request, s auth.Session) error {
		got = s
		w.WriteHeader(http.StatusNoContent)
		return nil
	})

	tok, err := tokens.Issue(auth.Session{UserID: "u-42", Role: "freelancer", Email: "a@b.test"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.UserID != "u-42" || got.Role != "freelancer" || got.Email != "a@b.test" {
		t.Fatalf("session = %+v", got)
	}
}
