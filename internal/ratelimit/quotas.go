package ratelimit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gigmarket-ai/internal/feature"
)

// Quotas is the per-feature daily call allowance.
type Quotas struct {
	Default int
	Limits  map[feature.Feature]int
}

// DefaultQuotas returns the compiled-in table.
func DefaultQuotas() Quotas {
	q := Quotas{
		Default: feature.DefaultDailyLimit,
		Limits:  make(map[feature.Feature]int),
	}
	for _, d := range feature.Definitions() {
		q.Limits[d.Feature] = d.DailyLimit
	}
	return q
}

// Limit returns the allowance for f, falling back to the default.
func (q Quotas) Limit(f feature.Feature) int {
	if n, ok := q.Limits[f]; ok {
		return n
	}
	return q.Default
}

type quotaFile struct {
	Default  *int           `yaml:"default"`
	Features map[string]int `yaml:"features"`
}

// ParseQuotas overlays a YAML document on the compiled-in table:
//
//	default: 25
//	features:
//	  fraudCheck: 500
//
// Unknown feature names and negative limits are rejected.
func ParseQuotas(data []byte) (Quotas, error) {
	q := DefaultQuotas()

	var f quotaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Quotas{}, fmt.Errorf("parse quotas: %w", err)
	}

	if f.Default != nil {
		if *f.Default < 0 {
			return Quotas{}, fmt.Errorf("parse quotas: default must not be negative")
		}
		q.Default = *f.Default
	}
	for name, n := range f.Features {
		feat, err := feature.Parse(name)
		if err != nil {
			return Quotas{}, fmt.Errorf("parse quotas: %w", err)
		}
		if n < 0 {
			return Quotas{}, fmt.Errorf("parse quotas: %s must not be negative", name)
		}
		q.Limits[feat] = n
	}
	return q, nil
}

// LoadQuotas reads a quota override file. An empty path yields the defaults.
func LoadQuotas(path string) (Quotas, error) {
	if path == "" {
		return DefaultQuotas(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Quotas{}, fmt.Errorf("read quotas file: %w", err)
	}
	return ParseQuotas(data)
}
