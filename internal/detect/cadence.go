package detect

import (
	"math"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Tolerance scaling for longer cadences. Quarters and years move around
// with calendar length (28-31 day months, leap years), so their windows are
// wider than the weekly/biweekly/monthly base. With the default base of 3
// days these yield ±7 for quarterly and ±10 for yearly.
const (
	quarterlyToleranceScale = 7.0 / 3.0
	yearlyToleranceScale    = 10.0 / 3.0
)

var canonicalCadences = []domain.Cadence{
	domain.CadenceWeekly,
	domain.CadenceBiweekly,
	domain.CadenceMonthly,
	domain.CadenceQuarterly,
	domain.CadenceYearly,
}

// toleranceDays returns the jitter window half-width for a cadence, scaled
// from the configured base tolerance.
func toleranceDays(c domain.Cadence, base float64) float64 {
	switch c {
	case domain.CadenceQuarterly:
		return base * quarterlyToleranceScale
	case domain.CadenceYearly:
		return base * yearlyToleranceScale
	default:
		return base
	}
}

// classifyCadence matches a median gap (in days) to the nearest canonical
// period whose tolerance window contains it. No match means the group is
// not regular enough, which is a rejection, not an error.
func classifyCadence(medianGap, base float64) (domain.Cadence, bool) {
	var best domain.Cadence
	bestDist := math.MaxFloat64
	found := false
	for _, c := range canonicalCadences {
		dist := math.Abs(medianGap - c.Days())
		if dist <= toleranceDays(c, base) && dist < bestDist {
			best = c
			bestDist = dist
			found = true
		}
	}
	return best, found
}

// gapConsistent reports whether one observed gap is explained by the chosen
// cadence: inside its tolerance window, or inside the doubled window around
// twice the period, which is the signature of a single missed charge.
func gapConsistent(gap float64, c domain.Cadence, base float64) bool {
	tol := toleranceDays(c, base)
	if math.Abs(gap-c.Days()) <= tol {
		return true
	}
	return math.Abs(gap-2*c.Days()) <= 2*tol
}
