package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gigmarket-ai/internal/ai"
	"gigmarket-ai/internal/auth"
	"gigmarket-ai/internal/config"
	"gigmarket-ai/internal/handlers"
	"gigmarket-ai/internal/httpserver"
	"gigmarket-ai/internal/llm"
	"gigmarket-ai/internal/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	logger := a.logger
	cfg := a.cfg

	metrics.Register()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("llm_model", cfg.LLMModel),
		zap.Duration("llm_timeout", cfg.LLMTimeout),
		zap.Bool("quota_overrides", cfg.QuotasFile != ""),
	)
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; every AI route will answer 401")
	}

	// The API key is resolved on the first feature call.
	provider := llm.NewProvider(llm.Config{
		BaseURL:         cfg.LLMBaseURL,
		Model:           cfg.LLMModel,
		UpstreamTimeout: cfg.LLMTimeout,
	}, config.LLMCredential, logger)
	defer provider.Close()

	orch := ai.New(a.limiter, a.cache, provider)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger,
		handlers.NewAIHandler(orch, a.limiter),
		handlers.NewAdapter(auth.NewJWTResolver(cfg.JWTSecret)),
		httpserver.Options{RequestTimeout: cfg.LLMTimeout + 15*time.Second},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
