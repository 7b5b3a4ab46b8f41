package detect

import (
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

func TestClassifyCadence(t *testing.T) {
	tests := []struct {
		name      string
		medianGap float64
		want      domain.Cadence
		wantMatch bool
	}{
		{"exact weekly", 7, domain.CadenceWeekly, true},
		{"weekly with jitter", 9, domain.CadenceWeekly, true},
		{"exact biweekly", 14, domain.CadenceBiweekly, true},
		{"biweekly upper edge", 17, domain.CadenceBiweekly, true},
		{"exact monthly", 30, domain.CadenceMonthly, true},
		{"short month", 28, domain.CadenceMonthly, true},
		{"long month", 33, domain.CadenceMonthly, true},
		{"quarterly with calendar drift", 96, domain.CadenceQuarterly, true},
		{"yearly with leap drift", 372, domain.CadenceYearly, true},
		{"between biweekly and monthly", 21, "", false},
		{"too short", 2, "", false},
		{"between monthly and quarterly", 55, "", false},
		{"far beyond yearly", 500, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := classifyCadence(tt.medianGap, DefaultDateToleranceDays)
			if matched != tt.wantMatch {
				t.Fatalf("classifyCadence(%g) matched = %t, want %t", tt.medianGap, matched, tt.wantMatch)
			}
			if matched && got != tt.want {
				t.Errorf("classifyCadence(%g) = %s, want %s", tt.medianGap, got, tt.want)
			}
		})
	}
}

func TestToleranceDays_ScalesWithPeriod(t *testing.T) {
	base := DefaultDateToleranceDays

	if got := toleranceDays(domain.CadenceMonthly, base); got != base {
		t.Errorf("monthly tolerance = %g, want base %g", got, base)
	}
	if got := toleranceDays(domain.CadenceQuarterly, base); got != 7 {
		t.Errorf("quarterly tolerance = %g, want 7", got)
	}
	if got := toleranceDays(domain.CadenceYearly, base); got != 10 {
		t.Errorf("yearly tolerance = %g, want 10", got)
	}
}

func TestGapConsistent_DoubledGap(t *testing.T) {
	if !gapConsistent(30, domain.CadenceMonthly, DefaultDateToleranceDays) {
		t.Error("exact period gap must be consistent")
	}
	if !gapConsistent(61, domain.CadenceMonthly, DefaultDateToleranceDays) {
		t.Error("doubled gap (missed charge) must be consistent")
	}
	if gapConsistent(45, domain.CadenceMonthly, DefaultDateToleranceDays) {
		t.Error("a gap half-way between clusters must not be consistent")
	}
}

func TestCadenceAdvance_CalendarAware(t *testing.T) {
	jan31 := mustDate(t, "2025-01-31")

	next := domain.CadenceMonthly.Advance(jan31)
	// AddDate normalizes Jan 31 + 1 month to Mar 3; the point is calendar
	// arithmetic, never naive 30-day addition.
	if next.Equal(jan31.AddDate(0, 0, 30)) && !next.Equal(jan31.AddDate(0, 1, 0)) {
		t.Errorf("monthly advance used 30-day arithmetic: %s", next)
	}
	if got := domain.CadenceYearly.Advance(jan31); !got.Equal(jan31.AddDate(1, 0, 0)) {
		t.Errorf("yearly advance = %s, want +1 year", got)
	}
	if got := domain.CadenceBiweekly.Advance(jan31); !got.Equal(jan31.AddDate(0, 0, 14)) {
		t.Errorf("biweekly advance = %s, want +14 days", got)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := parseDate(s)
	if err != nil {
		t.Fatalf("parseDate(%q): %v", s, err)
	}
	return parsed
}
