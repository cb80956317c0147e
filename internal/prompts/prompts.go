// Package prompts builds the model instructions for every AI feature.
//
// Builders are pure: they interpolate a typed context into an instruction
// followed by the JSON shape the model must return. Every user-supplied
// string is bounded: free text to MaxFreeText runes, labels such as titles
// and names to MaxLabelText, lists to MaxListItems entries.
package prompts

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxFreeText caps descriptions, notes, claims and other prose.
	MaxFreeText = 300
	// MaxLabelText caps titles, names, roles and list entries.
	MaxLabelText = 100
	// MaxListItems caps how many entries of a string list are embedded.
	MaxListItems = 25
)

const jsonOnly = "Respond with a single JSON object only, no prose and no markdown, matching exactly this shape:"

const noInvention = "Use only the information provided. Do not make up requirements, facts or details that are not in the input."

// ErrInvalidContext is wrapped by every context Validate method.
var ErrInvalidContext = errors.New("invalid prompt context")

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}

func excerpt(s string) string { return Truncate(s, MaxFreeText) }

func label(s string) string { return Truncate(s, MaxLabelText) }

// orNone bounds a short optional value.
func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return label(s)
}

// textOrNone bounds an optional prose value.
func textOrNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return excerpt(s)
}

func joinList(items []string) string {
	clean := make([]string, 0, min(len(items), MaxListItems))
	for _, it := range items {
		if len(clean) == MaxListItems {
			break
		}
		if it = strings.TrimSpace(it); it != "" {
			clean = append(clean, label(it))
		}
	}
	if len(clean) == 0 {
		return "none listed"
	}
	return excerpt(strings.Join(clean, ", "))
}

func money(v float64, currency string) string {
	if v <= 0 {
		return "not specified"
	}
	currency = Truncate(currency, 8)
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

// requireFields returns an ErrInvalidContext error naming the first empty
// entry in pairs (name, value, name, value...).
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidContext, pairs[i])
		}
	}
	return nil
}

type section struct {
	b strings.Builder
}

func (s *section) line(format string, args ...any) {
	fmt.Fprintf(&s.b, format, args...)
	s.b.WriteByte('\n')
}

func (s *section) blank() { s.b.WriteByte('\n') }

func (s *section) shape(example string) string {
	s.blank()
	s.line("%s", jsonOnly)
	s.b.WriteString(strings.TrimSpace(example))
	return s.b.String()
}
