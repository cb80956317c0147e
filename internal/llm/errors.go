package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned on first use when no backend credential
	// is available. The message names the env var operators must set.
	ErrNotConfigured = errors.New("llm: LLM_API_KEY is not configured")

	// ErrMalformedJSON is returned by GenerateJSON when the backend text
	// does not parse as JSON after fence stripping.
	ErrMalformedJSON = errors.New("llm: malformed JSON in model response")

	// ErrEmptyResponse is returned when the backend produced no choices.
	ErrEmptyResponse = errors.New("llm: provider returned no choices")
)

// UpstreamError is a non-2xx answer from the backend.
type UpstreamError struct {
	Status  int
	Type    string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llmclient: upstream %d: %s (%s)", e.Status, e.Message, e.Type)
	}
	return fmt.Sprintf("llmclient: upstream %d: %s", e.Status, e.Message)
}
