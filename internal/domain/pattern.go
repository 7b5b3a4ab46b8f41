package domain

import (
	"time"
)

// PatternType labels how the charged amount behaves across occurrences.
type PatternType string

const (
	// PatternFixed means the amount stays within tolerance across occurrences.
	PatternFixed PatternType = "FIXED"
	// PatternVariable means the amount fluctuates beyond tolerance
	// (usage-based bills, utilities).
	PatternVariable PatternType = "VARIABLE"
)

// Cadence is the periodic interval class a recurring pattern belongs to.
type Cadence string

const (
	CadenceWeekly    Cadence = "WEEKLY"
	CadenceBiweekly  Cadence = "BIWEEKLY"
	CadenceMonthly   Cadence = "MONTHLY"
	CadenceQuarterly Cadence = "QUARTERLY"
	CadenceYearly    Cadence = "YEARLY"
)

// Days returns the canonical period length in days. Monthly and longer
// cadences are calendar-aware for prediction; this figure is only used for
// gap matching and jitter normalization.
func (c Cadence) Days() float64 {
	switch c {
	case CadenceWeekly:
		return 7
	case CadenceBiweekly:
		return 14
	case CadenceMonthly:
		return 30
	case CadenceQuarterly:
		return 91
	case CadenceYearly:
		return 365
	default:
		return 0
	}
}

// Advance moves a date forward by exactly one canonical period. Monthly,
// quarterly and yearly cadences use calendar arithmetic ("same day next
// month"), never 30-day addition, so predictions do not drift.
func (c Cadence) Advance(from time.Time) time.Time {
	switch c {
	case CadenceWeekly:
		return from.AddDate(0, 0, 7)
	case CadenceBiweekly:
		return from.AddDate(0, 0, 14)
	case CadenceMonthly:
		return from.AddDate(0, 1, 0)
	case CadenceQuarterly:
		return from.AddDate(0, 3, 0)
	case CadenceYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}

// AmountRange is the observed min/max for a VARIABLE pattern.
type AmountRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RecurringPattern is the core detection output: one merchant charging (or
// paying) the user on a regular cycle.
type RecurringPattern struct {
	MerchantName       string       `json:"merchant_name"`
	NormalizedMerchant string       `json:"normalized_merchant"`
	PatternType        PatternType  `json:"pattern_type"`
	Cadence            Cadence      `json:"cadence"`
	Amount             float64      `json:"amount"`
	AmountRange        *AmountRange `json:"amount_range,omitempty"`
	AmountVariancePct  float64      `json:"amount_variance_pct"`
	OccurrenceCount    int          `json:"occurrence_count"`
	FirstDate          time.Time    `json:"first_date"`
	LastDate           time.Time    `json:"last_date"`
	NextExpectedDate   time.Time    `json:"next_expected_date"`
	DateStdDev         float64      `json:"date_std_dev"`
	Confidence         float64      `json:"confidence"`
	Reasoning          string       `json:"reasoning"`
}
