// Package enrich is the optional AI-assisted refinement port. The engine is
// correct without it: every operation here is best-effort and every failure
// degrades silently to the deterministic rule-based path.
package enrich

import (
	"context"
	"errors"
)

// ErrUnavailable signals that enrichment could not be performed: the call
// failed, timed out, or the daily budget is exhausted. Callers must recover
// locally by falling back to the deterministic path; this error never
// propagates out of a detection run.
var ErrUnavailable = errors.New("enrichment unavailable")

// Enricher is the pluggable enrichment capability. Implementations must be
// safe for concurrent use.
type Enricher interface {
	// NormalizeMerchant returns a canonical brand name for a raw merchant
	// description ("NETFLIX.COM *8842" -> "Netflix").
	NormalizeMerchant(ctx context.Context, raw string) (string, error)

	// ClassifyVariable judges whether a merchant's fluctuating amounts
	// still represent one recurring commitment (usage-based billing)
	// rather than unrelated purchases.
	ClassifyVariable(ctx context.Context, merchant string, amounts []float64) (bool, error)
}
