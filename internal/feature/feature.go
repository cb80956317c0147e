// Package feature enumerates the AI-assisted marketplace capabilities.
//
// The set is closed: every route, prompt builder and quota entry refers to
// one of the constants below, never to a free-form string.
package feature

import (
	"errors"
	"fmt"
	"time"
)

type Feature string

const (
	PricingSuggestion  Feature = "pricingSuggestion"
	JobDescription     Feature = "jobDescription"
	JobQualityScore    Feature = "jobQualityScore"
	FraudCheck         Feature = "fraudCheck"
	DisputeMediation   Feature = "disputeMediation"
	BidWriter          Feature = "bidWriter"
	BidAnalysis        Feature = "bidAnalysis"
	SkillExtraction    Feature = "skillExtraction"
	ProfileOptimizer   Feature = "profileOptimizer"
	ReviewSummary      Feature = "reviewSummary"
	MessageReply       Feature = "messageReply"
	JobMatch           Feature = "jobMatch"
	MilestonePlanner   Feature = "milestonePlanner"
	CategorySuggestion Feature = "categorySuggestion"
	ScopeClarifier     Feature = "scopeClarifier"
	ContentModeration  Feature = "contentModeration"
)

// DefaultDailyLimit applies to any feature missing from a quota table.
const DefaultDailyLimit = 20

// DefaultCacheTTL is used when a call does not specify one.
const DefaultCacheTTL = 24 * time.Hour

// Definition holds the static per-feature settings.
type Definition struct {
	Feature    Feature
	Slug       string        // route segment under /v1/ai
	DailyLimit int           // calls per rolling 24h
	CacheTTL   time.Duration // 0 disables caching
}

var definitions = []Definition{
	{PricingSuggestion, "pricing-suggestion", 20, 24 * time.Hour},
	{JobDescription, "job-description", 20, 24 * time.Hour},
	{JobQualityScore, "job-quality", 30, 24 * time.Hour},
	{FraudCheck, "fraud-check", 100, time.Hour},
	{DisputeMediation, "dispute-mediation", 10, 24 * time.Hour},
	{BidWriter, "bid-writer", 30, 0},
	{BidAnalysis, "bid-analysis", 20, 24 * time.Hour},
	{SkillExtraction, "skill-extraction", 50, 24 * time.Hour},
	{ProfileOptimizer, "profile-optimizer", 10, 0},
	{ReviewSummary, "review-summary", 30, 24 * time.Hour},
	{MessageReply, "message-reply", 50, 0},
	{JobMatch, "job-match", 50, 24 * time.Hour},
	{MilestonePlanner, "milestone-planner", 20, 24 * time.Hour},
	{CategorySuggestion, "category-suggestion", 50, 24 * time.Hour},
	{ScopeClarifier, "scope-clarifier", 20, 24 * time.Hour},
	{ContentModeration, "content-moderation", 200, 24 * time.Hour},
}

var byName = func() map[Feature]Definition {
	m := make(map[Feature]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Feature] = d
	}
	return m
}()

// All returns every feature in declaration order.
func All() []Feature {
	out := make([]Feature, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d.Feature)
	}
	return out
}

// Definitions returns a copy of the static table.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

func (f Feature) Valid() bool {
	_, ok := byName[f]
	return ok
}

func (f Feature) String() string { return string(f) }

// Definition returns the static settings for f.
func (f Feature) Definition() (Definition, bool) {
	d, ok := byName[f]
	return d, ok
}

// ErrUnknownFeature is returned for names outside the closed set.
var ErrUnknownFeature = errors.New("unknown feature")

// Parse converts a name into a Feature, rejecting anything outside the set.
func Parse(name string) (Feature, error) {
	f := Feature(name)
	if !f.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownFeature, name)
	}
	return f, nil
}
