package cache

import (
	"testing"

	"gigmarket-ai/internal/feature"
)

func TestHashIsStableHex(t *testing.T) {
	a := Hash("hello")
	if a != Hash("hello") {
		t.Fatalf("hash is not deterministic")
	}
	// sha256("hello")
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if a != want {
		t.Fatalf("Hash(hello) = %s, want %s", a, want)
	}
}

func TestInputHashSeparatesFeatureAndPrompt(t *testing.T) {
	base := InputHash(feature.PricingSuggestion, "prompt A")
	if base != Hash("pricingSuggestion:prompt A") {
		t.Fatalf("InputHash must digest feature:prompt")
	}
	if base == InputHash(feature.JobDescription, "prompt A") {
		t.Fatalf("different features produced the same digest")
	}
	if base == InputHash(feature.PricingSuggestion, "prompt B") {
		t.Fatalf("different prompts produced the same digest")
	}
}
