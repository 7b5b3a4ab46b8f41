package detect

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/memo"
)

var testBase = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

// seriesEveryNDays builds count transactions for one merchant, n days
// apart, with the given amounts cycled.
func seriesEveryNDays(merchant string, n, count int, amounts ...float64) []domain.Transaction {
	txs := make([]domain.Transaction, count)
	for i := 0; i < count; i++ {
		txs[i] = domain.Transaction{
			ID:                  fmt.Sprintf("%s-%d", merchant, i),
			AccountID:           "acc-1",
			MerchantDescription: merchant,
			Amount:              amounts[i%len(amounts)],
			Date:                testBase.AddDate(0, 0, n*i),
		}
	}
	return txs
}

func newTestDetector(t *testing.T, cfg Config, opts ...DetectorOption) *Detector {
	t.Helper()
	d, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d
}

func TestDetect_EmptyInput(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())

	patterns, err := d.Detect(context.Background(), nil)
	if err != nil {
		t.Fatalf("Detect returned error on empty input: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("expected no patterns, got %d", len(patterns))
	}
}

func TestDetect_MonthlyFixedPattern(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())
	txs := seriesEveryNDays("NETFLIX.COM", 30, 12, 15.99)

	patterns, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}

	p := patterns[0]
	if p.PatternType != domain.PatternFixed {
		t.Errorf("PatternType = %s, want FIXED", p.PatternType)
	}
	if p.Cadence != domain.CadenceMonthly {
		t.Errorf("Cadence = %s, want MONTHLY", p.Cadence)
	}
	if p.AmountVariancePct != 0 {
		t.Errorf("AmountVariancePct = %g, want 0", p.AmountVariancePct)
	}
	if p.Amount != 15.99 {
		t.Errorf("Amount = %g, want 15.99", p.Amount)
	}
	if p.OccurrenceCount != 12 {
		t.Errorf("OccurrenceCount = %d, want 12", p.OccurrenceCount)
	}
	if p.AmountRange != nil {
		t.Errorf("AmountRange should be nil for FIXED patterns, got %+v", p.AmountRange)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		t.Errorf("Confidence = %g, out of [0,1]", p.Confidence)
	}

	wantNext := p.LastDate.AddDate(0, 1, 0)
	if !p.NextExpectedDate.Equal(wantNext) {
		t.Errorf("NextExpectedDate = %s, want %s (last date + 1 calendar month)",
			p.NextExpectedDate, wantNext)
	}
}

func TestDetect_VariablePattern(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())
	txs := seriesEveryNDays("CITY POWER AND LIGHT", 30, 6, 80, 95, 110)

	patterns, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}

	p := patterns[0]
	if p.PatternType != domain.PatternVariable {
		t.Fatalf("PatternType = %s, want VARIABLE", p.PatternType)
	}
	if p.AmountRange == nil {
		t.Fatal("AmountRange missing for VARIABLE pattern")
	}
	if p.AmountRange.Min != 80 || p.AmountRange.Max != 110 {
		t.Errorf("AmountRange = %+v, want min 80 max 110", p.AmountRange)
	}
	wantMean := (80.0 + 95 + 110 + 80 + 95 + 110) / 6
	if p.Amount != wantMean {
		t.Errorf("Amount = %g, want mean %g", p.Amount, wantMean)
	}
	if p.AmountVariancePct <= DefaultAmountTolerance {
		t.Errorf("AmountVariancePct = %g, expected above tolerance", p.AmountVariancePct)
	}
}

func TestDetect_OccurrenceThreshold(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())

	below := seriesEveryNDays("SPOTIFY", 30, DefaultMinOccurrences-1, 9.99)
	patterns, err := d.Detect(context.Background(), below)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("merchant with %d occurrences must never appear, got %d patterns",
			DefaultMinOccurrences-1, len(patterns))
	}

	at := seriesEveryNDays("SPOTIFY", 30, DefaultMinOccurrences, 9.99)
	patterns, err = d.Detect(context.Background(), at)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Errorf("merchant with %d occurrences should qualify, got %d patterns",
			DefaultMinOccurrences, len(patterns))
	}
}

func TestDetect_RejectsIrregularGaps(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())

	// Gaps of 5, 47, 12, 90 days: no canonical cadence fits them all.
	dates := []time.Time{
		testBase,
		testBase.AddDate(0, 0, 5),
		testBase.AddDate(0, 0, 5+47),
		testBase.AddDate(0, 0, 5+47+12),
		testBase.AddDate(0, 0, 5+47+12+90),
	}
	txs := make([]domain.Transaction, len(dates))
	for i, date := range dates {
		txs[i] = domain.Transaction{
			ID:                  fmt.Sprintf("odd-%d", i),
			MerchantDescription: "CORNER STORE",
			Amount:              20,
			Date:                date,
		}
	}

	patterns, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("irregular gaps must be rejected, got %d patterns", len(patterns))
	}
}

func TestDetect_RejectsSameDayDuplicatePadding(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())

	// Two charges on the same day plus one a month later reach the
	// occurrence minimum with only one real interval; the zero-day gap
	// fits no cadence, so the group must not qualify.
	txs := []domain.Transaction{
		{ID: "dup-1", MerchantDescription: "CAFE LUNA", Amount: 10, Date: testBase},
		{ID: "dup-2", MerchantDescription: "CAFE LUNA", Amount: 10, Date: testBase},
		{ID: "dup-3", MerchantDescription: "CAFE LUNA", Amount: 10, Date: testBase.AddDate(0, 0, 30)},
	}

	patterns, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("same-day duplicates must not prove a cadence, got %d patterns", len(patterns))
	}
}

func TestDetect_AbsorbsSingleMissedCharge(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())

	// Monthly history with one doubled gap where a charge was skipped.
	offsets := []int{0, 30, 60, 120, 150, 180}
	txs := make([]domain.Transaction, len(offsets))
	for i, off := range offsets {
		txs[i] = domain.Transaction{
			ID:                  fmt.Sprintf("gym-%d", i),
			MerchantDescription: "IRON WORKS GYM",
			Amount:              45,
			Date:                testBase.AddDate(0, 0, off),
		}
	}

	patterns, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected the doubled gap to be absorbed, got %d patterns", len(patterns))
	}
	if patterns[0].Cadence != domain.CadenceMonthly {
		t.Errorf("Cadence = %s, want MONTHLY", patterns[0].Cadence)
	}
}

func TestDetect_SeparatesDebitAndCreditStreams(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())

	var txs []domain.Transaction
	txs = append(txs, seriesEveryNDays("ACME SERVICES", 30, 6, 50)...)
	refunds := seriesEveryNDays("ACME SERVICES", 30, 4, -50)
	for i := range refunds {
		refunds[i].ID = fmt.Sprintf("refund-%d", i)
		refunds[i].Date = refunds[i].Date.AddDate(0, 0, 3)
	}
	txs = append(txs, refunds...)

	patterns, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected separate charge and refund patterns, got %d", len(patterns))
	}

	signs := map[bool]int{}
	for _, p := range patterns {
		signs[p.Amount > 0]++
	}
	if signs[true] != 1 || signs[false] != 1 {
		t.Errorf("expected one positive and one negative pattern, got %+v", signs)
	}
}

func TestDetect_SkipsMalformedTransactions(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())

	txs := seriesEveryNDays("HULU", 30, 4, 7.99)
	txs = append(txs,
		domain.Transaction{ID: "bad-1", MerchantDescription: "", Amount: 5, Date: testBase},
		domain.Transaction{ID: "bad-2", MerchantDescription: "HULU", Amount: 0, Date: testBase},
		domain.Transaction{ID: "bad-3", MerchantDescription: "HULU", Amount: 7.99},
	)

	patterns, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("malformed rows must not abort the run: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].OccurrenceCount != 4 {
		t.Errorf("OccurrenceCount = %d, want 4 (malformed rows skipped)", patterns[0].OccurrenceCount)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	d := newTestDetector(t, DefaultConfig())

	var txs []domain.Transaction
	txs = append(txs, seriesEveryNDays("NETFLIX", 30, 8, 15.99)...)
	txs = append(txs, seriesEveryNDays("EMPLOYER PAYROLL", 14, 10, -2000)...)
	txs = append(txs, seriesEveryNDays("WATER WORKS", 91, 5, 60)...)

	first, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	second, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input and config must produce identical output")
	}
}

func TestDetect_MemoStoreReuse(t *testing.T) {
	store := memo.NewStore()
	d := newTestDetector(t, DefaultConfig(), WithMemo(store))

	txs := seriesEveryNDays("NETFLIX", 30, 8, 15.99)

	first, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 memoized run, got %d", store.Len())
	}

	second, err := d.Detect(context.Background(), txs)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("memoized result differs from computed result")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinOccurrences = 0

	if _, err := New(cfg); err == nil {
		t.Fatal("expected a configuration error")
	}
}
