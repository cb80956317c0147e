package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gigmarket-ai/internal/ai"
	"gigmarket-ai/internal/auth"
	"gigmarket-ai/internal/feature"
	"gigmarket-ai/internal/prompts"
	"gigmarket-ai/internal/ratelimit"
)

// QuotaReporter lists a user's quota position for every feature.
type QuotaReporter interface {
	Overview(ctx context.Context, userID string) ([]ratelimit.Status, error)
}

// AIHandler serves the feature routes under /v1/ai.
type AIHandler struct {
	orch   *ai.Orchestrator
	quotas QuotaReporter
}

func NewAIHandler(orch *ai.Orchestrator, quotas QuotaReporter) *AIHandler {
	return &AIHandler{orch: orch, quotas: quotas}
}

type route struct {
	feature feature.Feature
	handle  HandlerFunc
}

func (h *AIHandler) routes() []route {
	return []route{
		{feature.PricingSuggestion, jsonRoute[prompts.PricingContext, prompts.PricingSuggestion](h.orch, feature.PricingSuggestion, prompts.PricingSuggestionPrompt)},
		{feature.JobDescription, jsonRoute[prompts.JobDescriptionContext, prompts.JobDescription](h.orch, feature.JobDescription, prompts.JobDescriptionPrompt)},
		{feature.JobQualityScore, jsonRoute[prompts.JobQualityContext, prompts.JobQualityScore](h.orch, feature.JobQualityScore, prompts.JobQualityScorePrompt)},
		{feature.FraudCheck, jsonRoute[prompts.FraudCheckContext, prompts.FraudAssessment](h.orch, feature.FraudCheck, prompts.FraudCheckPrompt)},
		{feature.DisputeMediation, jsonRoute[prompts.DisputeContext, prompts.DisputeMediation](h.orch, feature.DisputeMediation, prompts.DisputeMediationPrompt)},
		{feature.BidWriter, jsonRoute[prompts.BidWriterContext, prompts.BidDraft](h.orch, feature.BidWriter, prompts.BidWriterPrompt)},
		{feature.BidAnalysis, jsonRoute[prompts.BidAnalysisContext, prompts.BidAnalysis](h.orch, feature.BidAnalysis, prompts.BidAnalysisPrompt)},
		{feature.SkillExtraction, jsonRoute[prompts.SkillExtractionContext, prompts.SkillExtraction](h.orch, feature.SkillExtraction, prompts.SkillExtractionPrompt)},
		{feature.ProfileOptimizer, jsonRoute[prompts.ProfileContext, prompts.ProfileSuggestions](h.orch, feature.ProfileOptimizer, prompts.ProfileOptimizerPrompt)},
		{feature.ReviewSummary, jsonRoute[prompts.ReviewSummaryContext, prompts.ReviewSummary](h.orch, feature.ReviewSummary, prompts.ReviewSummaryPrompt)},
		{feature.MessageReply, textRoute(h.orch, feature.MessageReply, prompts.MessageReplyPrompt)},
		{feature.JobMatch, jsonRoute[prompts.JobMatchContext, prompts.JobMatch](h.orch, feature.JobMatch, prompts.JobMatchPrompt)},
		{feature.MilestonePlanner, jsonRoute[prompts.MilestoneContext, prompts.MilestonePlan](h.orch, feature.MilestonePlanner, prompts.MilestonePlannerPrompt)},
		{feature.CategorySuggestion, jsonRoute[prompts.CategoryContext, prompts.CategorySuggestion](h.orch, feature.CategorySuggestion, prompts.CategorySuggestionPrompt)},
		{feature.ScopeClarifier, jsonRoute[prompts.ScopeContext, prompts.ScopeClarification](h.orch, feature.ScopeClarifier, prompts.ScopeClarifierPrompt)},
		{feature.ContentModeration, jsonRoute[prompts.ModerationContext, prompts.ModerationResult](h.orch, feature.ContentModeration, prompts.ContentModerationPrompt)},
	}
}

// Mount registers POST /<slug> for every feature and GET /quota.
func (h *AIHandler) Mount(r chi.Router, a *Adapter) {
	for _, rt := range h.routes() {
		def, _ := rt.feature.Definition()
		r.Post("/"+def.Slug, a.Wrap(rt.feature.String(), rt.handle))
	}
	r.Get("/quota", a.Wrap("quota", h.quota))
}

func (h *AIHandler) quota(w http.ResponseWriter, r *http.Request, s auth.Session) error {
	statuses, err := h.quotas.Overview(r.Context(), s.UserID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": s.UserID,
		"quotas": statuses,
	})
	return nil
}

type promptContext interface {
	Validate() error
}

// options applies the feature's cache lifetime.
func options(f feature.Feature) ai.Options {
	def, _ := f.Definition()
	return ai.Options{CacheTTL: ai.TTL(def.CacheTTL)}
}

func jsonRoute[C promptContext, T any](o *ai.Orchestrator, f feature.Feature, build func(C) string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, s auth.Session) error {
		var c C
		if err := decodeBody(r, &c); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}

		res, err := ai.CallJSON[T](r.Context(), o, s.UserID, f, build(c), options(f))
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, res)
		return nil
	}
}

func textRoute[C promptContext](o *ai.Orchestrator, f feature.Feature, build func(C) string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, s auth.Session) error {
		var c C
		if err := decodeBody(r, &c); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}

		res, err := o.Call(r.Context(), s.UserID, f, build(c), options(f))
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, res)
		return nil
	}
}
