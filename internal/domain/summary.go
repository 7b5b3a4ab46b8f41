package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryUncategorized is the bucket used when no category classifier is
// configured or the classifier has no opinion.
const CategoryUncategorized = "Uncategorized"

// Subscription is a recurring outflow pattern projected onto a monthly-
// equivalent cost basis.
type Subscription struct {
	Pattern     RecurringPattern `json:"pattern"`
	MonthlyCost decimal.Decimal  `json:"monthly_cost"`
	Category    string           `json:"category"`
}

// IncomeEntry is a recurring inflow pattern; MonthlyAmount is reported as a
// positive magnitude.
type IncomeEntry struct {
	Pattern       RecurringPattern `json:"pattern"`
	MonthlyAmount decimal.Decimal  `json:"monthly_amount"`
}

// Opportunity flags a subscription whose category already holds cheaper-or-
// equal alternatives, suggesting it as a cancellation candidate.
type Opportunity struct {
	MerchantName   string          `json:"merchant_name"`
	Category       string          `json:"category"`
	MonthlySavings decimal.Decimal `json:"monthly_savings"`
	Reason         string          `json:"reason"`
}

// Summary rolls all detected patterns into an actionable view: monthly
// totals, the subscription/income split, category breakdown, and
// cancellation opportunities.
type Summary struct {
	TotalMonthlyCost          decimal.Decimal            `json:"total_monthly_cost"`
	TotalMonthlyIncome        decimal.Decimal            `json:"total_monthly_income"`
	Subscriptions             []Subscription             `json:"subscriptions"`
	RecurringIncome           []IncomeEntry              `json:"recurring_income"`
	ByCategory                map[string]decimal.Decimal `json:"by_category"`
	CancellationOpportunities []Opportunity              `json:"cancellation_opportunities"`
	GeneratedAt               time.Time                  `json:"generated_at"`
}
