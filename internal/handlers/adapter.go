package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"gigmarket-ai/internal/ai"
	"gigmarket-ai/internal/auth"
	"gigmarket-ai/internal/prompts"
	"gigmarket-ai/pkg/logging"
)

// HandlerFunc is a route body that runs with a resolved session. A
// returned error is mapped to a response by the Adapter.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, s auth.Session) error

// Adapter resolves sessions and converts every failure, panics included,
// into a stable JSON error response.
type Adapter struct {
	resolver auth.Resolver
}

func NewAdapter(resolver auth.Resolver) *Adapter {
	return &Adapter{resolver: resolver}
}

// Wrap turns h into an http.HandlerFunc. name labels log lines.
func (a *Adapter) Wrap(name string, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := a.resolver.Resolve(r)
		if err != nil {
			logging.L(r.Context()).Debug("unauthenticated request", zap.String("route", name), zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, ErrorBody{Error: "Authentication required.", Code: "unauthorized"})
			return
		}

		ctx := logging.WithFields(r.Context(), zap.String("user_id", session.UserID))
		r = r.WithContext(ctx)

		defer func() {
			if rec := recover(); rec != nil {
				logging.L(ctx).Error("route panic",
					zap.String("route", name),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				a.fail(w, r, name, fmt.Errorf("panic: %v", rec))
			}
		}()

		if err := h(w, r, session); err != nil {
			a.fail(w, r, name, err)
		}
	}
}

func (a *Adapter) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	status, body := mapError(err)

	fields := []zap.Field{
		zap.String("route", name),
		zap.Int("status", status),
		zap.String("code", body.Code),
		zap.Error(err),
	}
	if status < http.StatusInternalServerError {
		logging.L(r.Context()).Info("ai_route_rejected", fields...)
	} else {
		logging.L(r.Context()).Error("ai_route_failed", fields...)
	}

	writeJSON(w, status, body)
}

// mapError picks the response for err. Client messages are fixed strings;
// provider error text is never echoed.
func mapError(err error) (int, ErrorBody) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorBody{Error: "Request body is too large.", Code: "request_too_large"}
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, ErrorBody{Error: "Request body must be a JSON object.", Code: "invalid_request"}
	case errors.Is(err, prompts.ErrInvalidContext):
		return http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: "invalid_request"}
	}

	switch ai.KindOf(err) {
	case ai.KindQuotaExceeded:
		var q *ai.QuotaExceededError
		errors.As(err, &q)
		remaining, limit := q.Remaining, q.Limit
		return http.StatusTooManyRequests, ErrorBody{
			Error:     "Daily limit reached for this feature. Try again tomorrow.",
			Code:      "quota_exceeded",
			Remaining: &remaining,
			Limit:     &limit,
		}
	case ai.KindUpstreamMalformed:
		return http.StatusBadGateway, ErrorBody{Error: "The AI service returned an invalid response. Please try again.", Code: "bad_upstream_response"}
	case ai.KindSchemaMismatch:
		return http.StatusBadGateway, ErrorBody{Error: "The AI service returned an incomplete response. Please try again.", Code: "schema_mismatch"}
	case ai.KindNotConfigured:
		return http.StatusServiceUnavailable, ErrorBody{Error: "AI features are not configured.", Code: "service_not_configured"}
	}
	return http.StatusServiceUnavailable, ErrorBody{Error: "The AI service is temporarily unavailable. Please try again.", Code: "service_unavailable"}
}
