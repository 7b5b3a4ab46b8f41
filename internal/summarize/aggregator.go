// Package summarize rolls detected recurring patterns into an actionable
// view: monthly-equivalent costs, the subscription/income split, category
// totals, and cancellation opportunities. It is the only component that
// looks across patterns.
package summarize

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// DefaultCancellationThreshold is how many subscriptions a category may
// hold before the cheapest extras are flagged as cancellation candidates.
const DefaultCancellationThreshold = 2

// CategoryClassifier infers a spending category for a merchant. Absence of
// a classifier (or of an answer) degrades to the Uncategorized bucket,
// never to an error.
type CategoryClassifier interface {
	Categorize(merchantName string) (category string, ok bool)
}

// Monthly-equivalent multipliers per cadence. Weekly uses the average week
// count of a month (52.14/12); biweekly uses 26 pay periods a year.
var (
	weeklyMultiplier    = decimal.NewFromFloat(4.345)
	biweeklyMultiplier  = decimal.NewFromInt(26).Div(decimal.NewFromInt(12))
	monthlyMultiplier   = decimal.NewFromInt(1)
	quarterlyMultiplier = decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	yearlyMultiplier    = decimal.NewFromInt(1).Div(decimal.NewFromInt(12))
)

// MonthlyCost converts a pattern's representative amount to its monthly-
// equivalent magnitude.
func MonthlyCost(p domain.RecurringPattern) decimal.Decimal {
	amount := decimal.NewFromFloat(p.Amount).Abs()
	switch p.Cadence {
	case domain.CadenceWeekly:
		return amount.Mul(weeklyMultiplier)
	case domain.CadenceBiweekly:
		return amount.Mul(biweeklyMultiplier)
	case domain.CadenceQuarterly:
		return amount.Mul(quarterlyMultiplier)
	case domain.CadenceYearly:
		return amount.Mul(yearlyMultiplier)
	default:
		return amount.Mul(monthlyMultiplier)
	}
}

// Aggregator builds summaries. The zero threshold means the default.
type Aggregator struct {
	classifier            CategoryClassifier
	cancellationThreshold int
	now                   func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClassifier installs an external category classifier.
func WithClassifier(c CategoryClassifier) Option {
	return func(a *Aggregator) { a.classifier = c }
}

// WithCancellationThreshold overrides the per-category subscription count
// above which cancellation candidates are flagged.
func WithCancellationThreshold(n int) Option {
	return func(a *Aggregator) { a.cancellationThreshold = n }
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		cancellationThreshold: DefaultCancellationThreshold,
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize partitions patterns by sign, normalizes costs to a monthly
// basis, groups subscriptions by category, and flags cancellation
// opportunities. It is a pure transformation over its input.
func (a *Aggregator) Summarize(patterns []domain.RecurringPattern) domain.Summary {
	summary := domain.Summary{
		TotalMonthlyCost:          decimal.Zero,
		TotalMonthlyIncome:        decimal.Zero,
		Subscriptions:             []domain.Subscription{},
		RecurringIncome:           []domain.IncomeEntry{},
		ByCategory:                map[string]decimal.Decimal{},
		CancellationOpportunities: []domain.Opportunity{},
		GeneratedAt:               a.now(),
	}

	for _, p := range patterns {
		monthly := MonthlyCost(p)
		if p.Amount > 0 {
			sub := domain.Subscription{
				Pattern:     p,
				MonthlyCost: monthly,
				Category:    a.categorize(p.MerchantName),
			}
			summary.Subscriptions = append(summary.Subscriptions, sub)
			summary.TotalMonthlyCost = summary.TotalMonthlyCost.Add(monthly)
			existing, ok := summary.ByCategory[sub.Category]
			if !ok {
				existing = decimal.Zero
			}
			summary.ByCategory[sub.Category] = existing.Add(monthly)
		} else {
			summary.RecurringIncome = append(summary.RecurringIncome, domain.IncomeEntry{
				Pattern:       p,
				MonthlyAmount: monthly,
			})
			summary.TotalMonthlyIncome = summary.TotalMonthlyIncome.Add(monthly)
		}
	}

	sortSubscriptions(summary.Subscriptions)
	sort.Slice(summary.RecurringIncome, func(i, j int) bool {
		return summary.RecurringIncome[i].MonthlyAmount.GreaterThan(summary.RecurringIncome[j].MonthlyAmount)
	})

	summary.CancellationOpportunities = a.findCancellations(summary.Subscriptions)
	return summary
}

func (a *Aggregator) categorize(merchantName string) string {
	if a.classifier == nil {
		return domain.CategoryUncategorized
	}
	category, ok := a.classifier.Categorize(merchantName)
	if !ok || category == "" {
		return domain.CategoryUncategorized
	}
	return category
}

// findCancellations flags the cheapest subscriptions in categories that
// hold more than the configured count, citing the category overlap.
func (a *Aggregator) findCancellations(subs []domain.Subscription) []domain.Opportunity {
	byCategory := make(map[string][]domain.Subscription)
	for _, s := range subs {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	opportunities := []domain.Opportunity{}
	for _, category := range categories {
		group := byCategory[category]
		if len(group) <= a.cancellationThreshold {
			continue
		}
		// Cheapest first; everything past the threshold count is a
		// candidate.
		sort.Slice(group, func(i, j int) bool {
			return group[i].MonthlyCost.LessThan(group[j].MonthlyCost)
		})
		excess := len(group) - a.cancellationThreshold
		for _, s := range group[:excess] {
			opportunities = append(opportunities, domain.Opportunity{
				MerchantName:   s.Pattern.MerchantName,
				Category:       category,
				MonthlySavings: s.MonthlyCost,
				Reason: fmt.Sprintf("%d %s subscriptions overlap; this is the cheapest at $%s/month",
					len(group), category, s.MonthlyCost.StringFixed(2)),
			})
		}
	}
	return opportunities
}

func sortSubscriptions(subs []domain.Subscription) {
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].MonthlyCost.Equal(subs[j].MonthlyCost) {
			return subs[i].MonthlyCost.GreaterThan(subs[j].MonthlyCost)
		}
		return subs[i].Pattern.NormalizedMerchant < subs[j].Pattern.NormalizedMerchant
	})
}
