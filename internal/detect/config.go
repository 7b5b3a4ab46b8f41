package detect

import (
	"fmt"
	"time"
)

// Default configuration values. These are empirically tuned heuristics;
// override them through Config rather than editing call sites.
const (
	// DefaultMinOccurrences is the minimum number of occurrences before a
	// merchant group can become a pattern.
	DefaultMinOccurrences = 3

	// DefaultAmountTolerance is the fractional amount variance threshold
	// below which a pattern is classified FIXED.
	DefaultAmountTolerance = 0.10

	// DefaultDateToleranceDays is the base jitter tolerance around a
	// canonical period, scaled up for longer cadences.
	DefaultDateToleranceDays = 3.0

	// DefaultEnrichmentConfidenceThreshold is the confidence below which a
	// VARIABLE pattern is sent to the enrichment port for a second opinion.
	// At or above it the deterministic classification stands unasked.
	DefaultEnrichmentConfidenceThreshold = 0.7
)

// Config holds the engine's recognized options. Invalid values are a fatal
// configuration error at construction, never a runtime error.
type Config struct {
	MinOccurrences    int
	AmountTolerance   float64
	DateToleranceDays float64

	EnableEnrichment              bool
	EnrichmentConfidenceThreshold float64
	EnrichmentMaxCostPerDay       float64
	EnrichmentCacheTTL            time.Duration
}

// DefaultConfig returns the engine defaults: enrichment off, tolerances as
// documented above.
func DefaultConfig() Config {
	return Config{
		MinOccurrences:                DefaultMinOccurrences,
		AmountTolerance:               DefaultAmountTolerance,
		DateToleranceDays:             DefaultDateToleranceDays,
		EnrichmentConfidenceThreshold: DefaultEnrichmentConfidenceThreshold,
	}
}

// Validate checks every recognized option and returns a *ConfigError for
// the first invalid one.
func (c Config) Validate() error {
	if c.MinOccurrences < 2 {
		return &ConfigError{Option: "min_occurrences", Reason: fmt.Sprintf("must be at least 2, got %d", c.MinOccurrences)}
	}
	if c.AmountTolerance < 0 {
		return &ConfigError{Option: "amount_tolerance", Reason: fmt.Sprintf("must be non-negative, got %g", c.AmountTolerance)}
	}
	if c.DateToleranceDays <= 0 {
		return &ConfigError{Option: "date_tolerance_days", Reason: fmt.Sprintf("must be positive, got %g", c.DateToleranceDays)}
	}
	if c.EnrichmentConfidenceThreshold < 0 || c.EnrichmentConfidenceThreshold > 1 {
		return &ConfigError{Option: "enrichment_confidence_threshold", Reason: fmt.Sprintf("must be in [0,1], got %g", c.EnrichmentConfidenceThreshold)}
	}
	if c.EnrichmentMaxCostPerDay < 0 {
		return &ConfigError{Option: "enrichment_max_cost_per_day", Reason: fmt.Sprintf("must be non-negative, got %g", c.EnrichmentMaxCostPerDay)}
	}
	if c.EnrichmentCacheTTL < 0 {
		return &ConfigError{Option: "enrichment_cache_ttl", Reason: fmt.Sprintf("must be non-negative, got %s", c.EnrichmentCacheTTL)}
	}
	return nil
}

// Fingerprint returns a canonical string of every option that influences
// detection output. It feeds the memoization key; enrichment budget and
// cache options are included because they can change which path answered.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("min=%d;amt=%g;date=%g;enrich=%t;ect=%g;ecost=%g;ettl=%s",
		c.MinOccurrences, c.AmountTolerance, c.DateToleranceDays,
		c.EnableEnrichment, c.EnrichmentConfidenceThreshold,
		c.EnrichmentMaxCostPerDay, c.EnrichmentCacheTTL)
}
