package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gigmarket-ai/internal/handlers"
	"gigmarket-ai/internal/metrics"
	"gigmarket-ai/internal/middleware"
)

// MaxBodyBytes caps feature request bodies.
const MaxBodyBytes = 512 * 1024

type Options struct {
	// RequestTimeout bounds a whole request. It should exceed the
	// provider timeout so provider failures surface as mapped errors.
	RequestTimeout time.Duration
}

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, aiHandler *handlers.AIHandler, adapter *handlers.Adapter, opts Options) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 45 * time.Second
	}

	r.Use(metrics.Middleware)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.MaxBodySize(MaxBodyBytes))

	r.Route("/v1/ai", func(r chi.Router) {
		aiHandler.Mount(r, adapter)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
