package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dvloznov/finance-insights/internal/detect"
)

// fileConfig is the YAML shape of the engine options. Every field is
// optional; unset fields keep their defaults. The cache TTL is a Go
// duration string ("24h", "90m").
type fileConfig struct {
	MinOccurrences                *int     `yaml:"min_occurrences"`
	AmountTolerance               *float64 `yaml:"amount_tolerance"`
	DateToleranceDays             *float64 `yaml:"date_tolerance_days"`
	EnableEnrichment              *bool    `yaml:"enable_enrichment"`
	EnrichmentConfidenceThreshold *float64 `yaml:"enrichment_confidence_threshold"`
	EnrichmentMaxCostPerDay       *float64 `yaml:"enrichment_max_cost_per_day"`
	EnrichmentCacheTTL            string   `yaml:"enrichment_cache_ttl"`
}

// loadConfigFile overlays YAML options on top of base. Validation happens
// later in detect.New, so a bad value fails fast there either way.
func loadConfigFile(path string, base detect.Config) (detect.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("loadConfigFile: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return base, fmt.Errorf("loadConfigFile: parse %s: %w", path, err)
	}

	cfg := base
	if fc.MinOccurrences != nil {
		cfg.MinOccurrences = *fc.MinOccurrences
	}
	if fc.AmountTolerance != nil {
		cfg.AmountTolerance = *fc.AmountTolerance
	}
	if fc.DateToleranceDays != nil {
		cfg.DateToleranceDays = *fc.DateToleranceDays
	}
	if fc.EnableEnrichment != nil {
		cfg.EnableEnrichment = *fc.EnableEnrichment
	}
	if fc.EnrichmentConfidenceThreshold != nil {
		cfg.EnrichmentConfidenceThreshold = *fc.EnrichmentConfidenceThreshold
	}
	if fc.EnrichmentMaxCostPerDay != nil {
		cfg.EnrichmentMaxCostPerDay = *fc.EnrichmentMaxCostPerDay
	}
	if fc.EnrichmentCacheTTL != "" {
		ttl, err := time.ParseDuration(fc.EnrichmentCacheTTL)
		if err != nil {
			return base, fmt.Errorf("loadConfigFile: enrichment_cache_ttl: %w", err)
		}
		cfg.EnrichmentCacheTTL = ttl
	}
	return cfg, nil
}
