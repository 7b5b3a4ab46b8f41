package detect

import (
	"math"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Confidence model weights. The score is a product of three sub-scores in
// [0,1]: occurrence volume, date regularity, amount stability.
const (
	// occurrenceHalfLife controls how fast the volume score saturates;
	// it approaches (but never reaches) 1 past roughly 10 occurrences.
	occurrenceHalfLife = 4.0

	// dateJitterWeight scales the normalized gap deviation penalty.
	dateJitterWeight = 2.0

	// Amount variance penalties. VARIABLE patterns are penalized less:
	// fluctuation is expected there, while any variance on a FIXED
	// pattern is evidence against regularity.
	fixedVarianceWeight    = 1.5
	variableVarianceWeight = 0.5
)

// confidenceInputs carries everything the scorer looks at. Identical inputs
// always produce identical output.
type confidenceInputs struct {
	occurrenceCount   int
	amountVariancePct float64
	dateStdDev        float64
	periodDays        float64
	patternType       domain.PatternType
}

// scoreConfidence produces a reproducible confidence in [0,1]. It increases
// with occurrence count (diminishing returns), decreases with normalized
// date jitter, and decreases with amount variance.
func scoreConfidence(in confidenceInputs) float64 {
	occurrenceScore := 1 - math.Exp(-float64(in.occurrenceCount)/occurrenceHalfLife)

	jitter := 0.0
	if in.periodDays > 0 {
		jitter = in.dateStdDev / in.periodDays
	}
	dateScore := clamp01(1 - jitter*dateJitterWeight)

	weight := fixedVarianceWeight
	if in.patternType == domain.PatternVariable {
		weight = variableVarianceWeight
	}
	amountScore := clamp01(1 - in.amountVariancePct*weight)

	return clamp01(occurrenceScore * dateScore * amountScore)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
