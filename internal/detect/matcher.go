package detect

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
)

// evaluateGroup decides whether one merchant group forms a recurring
// pattern. A false return is the InsufficientDataNotRecurring case: the
// group simply fails to qualify and is omitted, never an error.
func (d *Detector) evaluateGroup(ctx context.Context, g merchantGroup) (domain.RecurringPattern, bool) {
	log := logger.FromContext(ctx)

	gaps := dayGaps(g.occurrences)
	if len(gaps) == 0 {
		return domain.RecurringPattern{}, false
	}

	amounts := make([]float64, len(g.occurrences))
	for i, o := range g.occurrences {
		amounts[i] = o.amount
	}

	variancePct, ok := amountVariancePct(amounts)
	if !ok {
		return domain.RecurringPattern{}, false
	}

	patternType := domain.PatternFixed
	representative := median(amounts)
	var amountRange *domain.AmountRange
	if variancePct > d.cfg.AmountTolerance {
		patternType = domain.PatternVariable
		representative = mean(amounts)
		min, max := minMax(amounts)
		amountRange = &domain.AmountRange{Min: min, Max: max}
	}

	medianGap := median(gaps)
	cadence, matched := classifyCadence(medianGap, d.cfg.DateToleranceDays)
	if !matched {
		log.Debug().Str("merchant", g.key).Float64("median_gap", medianGap).
			Msg("no canonical cadence fits, rejecting group")
		return domain.RecurringPattern{}, false
	}

	// Every gap must be explained by the chosen cadence (allowing a
	// doubled gap for a missed charge). Competing gap clusters mean the
	// group is not provably recurring; reject rather than guess.
	for _, gap := range gaps {
		if !gapConsistent(gap, cadence, d.cfg.DateToleranceDays) {
			log.Debug().Str("merchant", g.key).Float64("gap", gap).
				Str("cadence", string(cadence)).Msg("inconsistent gap, rejecting group")
			return domain.RecurringPattern{}, false
		}
	}

	gapStdDev := stdDev(gaps)
	confidence := scoreConfidence(confidenceInputs{
		occurrenceCount:   len(g.occurrences),
		amountVariancePct: variancePct,
		dateStdDev:        gapStdDev,
		periodDays:        cadence.Days(),
		patternType:       patternType,
	})

	// Optional AI judgment for low-confidence variable patterns: fluctuating
	// amounts on a regular cycle can also be unrelated purchases at the same
	// store. Above the threshold the deterministic classification stands; the
	// deterministic path also keeps the pattern when enrichment cannot answer.
	enrichedJudgment := false
	if patternType == domain.PatternVariable && confidence < d.cfg.EnrichmentConfidenceThreshold &&
		d.cfg.EnableEnrichment && d.enricher != nil {
		recurring, err := d.enricher.ClassifyVariable(ctx, g.displayName, amounts)
		if err == nil {
			enrichedJudgment = true
			if !recurring {
				return domain.RecurringPattern{}, false
			}
		}
	}

	first := g.occurrences[0].date
	last := g.occurrences[len(g.occurrences)-1].date

	return domain.RecurringPattern{
		MerchantName:       g.displayName,
		NormalizedMerchant: g.key,
		PatternType:        patternType,
		Cadence:            cadence,
		Amount:             representative,
		AmountRange:        amountRange,
		AmountVariancePct:  variancePct,
		OccurrenceCount:    len(g.occurrences),
		FirstDate:          first,
		LastDate:           last,
		NextExpectedDate:   cadence.Advance(last),
		DateStdDev:         gapStdDev,
		Confidence:         confidence,
		Reasoning:          buildReasoning(g, patternType, cadence, representative, amountRange, enrichedJudgment),
	}, true
}

// dayGaps returns consecutive date gaps in days between sorted occurrences.
// Zero-day gaps from same-day duplicates are kept: they fit no cadence
// window, so a group padded with duplicates fails the consistency check
// instead of qualifying on fewer real intervals.
func dayGaps(occurrences []occurrence) []float64 {
	var gaps []float64
	for i := 1; i < len(occurrences); i++ {
		gaps = append(gaps, occurrences[i].date.Sub(occurrences[i-1].date).Hours()/24)
	}
	return gaps
}

// amountVariancePct computes (max-min)/|mean| over the group's amounts.
// A zero mean cannot be normalized against, so such groups are rejected.
func amountVariancePct(amounts []float64) (float64, bool) {
	m := math.Abs(mean(amounts))
	if m == 0 {
		return 0, false
	}
	min, max := minMax(amounts)
	return (max - min) / m, true
}

func buildReasoning(g merchantGroup, pt domain.PatternType, c domain.Cadence, amount float64, r *domain.AmountRange, enrichedJudgment bool) string {
	verb := "charged"
	if g.sign < 0 {
		verb = "paid"
	}

	var b strings.Builder
	if pt == domain.PatternFixed {
		fmt.Fprintf(&b, "Fixed amount $%.2f %s %s (%d occurrences)",
			math.Abs(amount), verb, cadenceAdverb(c), len(g.occurrences))
	} else {
		fmt.Fprintf(&b, "Variable amount averaging $%.2f (range $%.2f-$%.2f) %s %s (%d occurrences)",
			math.Abs(amount), math.Abs(r.Min), math.Abs(r.Max), verb, cadenceAdverb(c), len(g.occurrences))
	}
	if g.enriched {
		b.WriteString("; merchant name canonicalized by enrichment")
	}
	if enrichedJudgment {
		b.WriteString("; variable cadence confirmed by enrichment")
	}
	return b.String()
}

func cadenceAdverb(c domain.Cadence) string {
	switch c {
	case domain.CadenceWeekly:
		return "weekly"
	case domain.CadenceBiweekly:
		return "every two weeks"
	case domain.CadenceMonthly:
		return "monthly"
	case domain.CadenceQuarterly:
		return "quarterly"
	case domain.CadenceYearly:
		return "yearly"
	default:
		return string(c)
	}
}
