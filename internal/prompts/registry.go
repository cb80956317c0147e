package prompts

import "gigmarket-ai/internal/feature"

var schemas = map[feature.Feature]Schema{
	feature.PricingSuggestion:  PricingSuggestionSchema,
	feature.JobDescription:     JobDescriptionSchema,
	feature.JobQualityScore:    JobQualitySchema,
	feature.FraudCheck:         FraudCheckSchema,
	feature.DisputeMediation:   DisputeMediationSchema,
	feature.BidWriter:          BidWriterSchema,
	feature.BidAnalysis:        BidAnalysisSchema,
	feature.SkillExtraction:    SkillExtractionSchema,
	feature.ProfileOptimizer:   ProfileOptimizerSchema,
	feature.ReviewSummary:      ReviewSummarySchema,
	feature.JobMatch:           JobMatchSchema,
	feature.MilestonePlanner:   MilestonePlannerSchema,
	feature.CategorySuggestion: CategorySuggestionSchema,
	feature.ScopeClarifier:     ScopeClarifierSchema,
	feature.ContentModeration:  ContentModerationSchema,
}

// SchemaFor returns the output schema of a structured feature. Text
// features such as messageReply have none.
func SchemaFor(f feature.Feature) (Schema, bool) {
	s, ok := schemas[f]
	return s, ok
}
