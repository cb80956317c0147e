package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"gigmarket-ai/internal/ai"
	"gigmarket-ai/internal/auth"
	"gigmarket-ai/internal/cache"
	"gigmarket-ai/internal/handlers"
	"gigmarket-ai/internal/llm"
	"gigmarket-ai/internal/ratelimit"
	"gigmarket-ai/internal/usage"
)

func newRouter(t *testing.T) (*chi.Mux, *auth.JWTResolver) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := cache.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	limiter := ratelimit.NewLimiter(usage.NewMemoryLog(), ratelimit.DefaultQuotas())
	provider := llm.NewProvider(llm.Config{}, func() string { return "" }, logger)
	orch := ai.New(limiter, store, provider)
	resolver := auth.NewJWTResolver("secret")

	r := chi.NewRouter()
	SetupRouter(r, logger, handlers.NewAIHandler(orch, limiter), handlers.NewAdapter(resolver), Options{RequestTimeout: 5 * time.Second})
	return r, resolver
}

func TestHealthz(t *testing.T) {
	r, _ := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
}

func TestOversizedBodyIsRejected(t *testing.T) {
	r, resolver := newRouter(t)
	tok, _ := resolver.Issue(auth.Session{UserID: "u"}, time.Hour)

	body := `{"title":"t","description":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/ai/job-quality", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUnconfiguredProviderIs503(t *testing.T) {
	r, resolver := newRouter(t)
	tok, _ := resolver.Issue(auth.Session{UserID: "u"}, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/v1/ai/skill-extraction", bytes.NewBufferString(`{"description":"Go developer for a payments API"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "service_not_configured") {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}
