package enrich

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubEnricher struct {
	NormalizeMerchantFunc func(ctx context.Context, raw string) (string, error)
	ClassifyVariableFunc  func(ctx context.Context, merchant string, amounts []float64) (bool, error)
	calls                 int
}

func (s *stubEnricher) NormalizeMerchant(ctx context.Context, raw string) (string, error) {
	s.calls++
	if s.NormalizeMerchantFunc != nil {
		return s.NormalizeMerchantFunc(ctx, raw)
	}
	return "Stub", nil
}

func (s *stubEnricher) ClassifyVariable(ctx context.Context, merchant string, amounts []float64) (bool, error) {
	s.calls++
	if s.ClassifyVariableFunc != nil {
		return s.ClassifyVariableFunc(ctx, merchant, amounts)
	}
	return true, nil
}

func TestGate_CallBudgetExhaustion(t *testing.T) {
	inner := &stubEnricher{}
	gate := NewGate(inner, GateConfig{MaxCallsPerDay: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := gate.NormalizeMerchant(ctx, "raw"); err != nil {
			t.Fatalf("call %d should be within budget: %v", i+1, err)
		}
	}

	_, err := gate.NormalizeMerchant(ctx, "raw")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("exhausted budget must yield ErrUnavailable, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("budget must be checked before issuing a call; inner saw %d calls", inner.calls)
	}
}

func TestGate_CostBudgetExhaustion(t *testing.T) {
	inner := &stubEnricher{}
	gate := NewGate(inner, GateConfig{MaxCostPerDay: 0.25, CostPerCall: 0.1})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := gate.ClassifyVariable(ctx, "m", []float64{1, 2}); err != nil {
			t.Fatalf("call %d should be within budget: %v", i+1, err)
		}
	}

	_, err := gate.ClassifyVariable(ctx, "m", []float64{1, 2})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("exhausted cost budget must yield ErrUnavailable, got %v", err)
	}
}

func TestGate_BudgetResetsNextDay(t *testing.T) {
	inner := &stubEnricher{}
	gate := NewGate(inner, GateConfig{MaxCallsPerDay: 1})

	day := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return day }

	ctx := context.Background()
	if _, err := gate.NormalizeMerchant(ctx, "raw"); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := gate.NormalizeMerchant(ctx, "raw"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("second same-day call must be rejected, got %v", err)
	}

	day = day.AddDate(0, 0, 1)
	if _, err := gate.NormalizeMerchant(ctx, "raw"); err != nil {
		t.Errorf("budget must reset on the next day: %v", err)
	}
}

func TestGate_InnerFailureMapsToUnavailable(t *testing.T) {
	inner := &stubEnricher{
		NormalizeMerchantFunc: func(ctx context.Context, raw string) (string, error) {
			return "", errors.New("upstream exploded")
		},
	}
	gate := NewGate(inner, GateConfig{})

	_, err := gate.NormalizeMerchant(context.Background(), "raw")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("inner failure must map to ErrUnavailable, got %v", err)
	}
}

func TestGate_PerCallTimeout(t *testing.T) {
	inner := &stubEnricher{
		NormalizeMerchantFunc: func(ctx context.Context, raw string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	gate := NewGate(inner, GateConfig{Timeout: 10 * time.Millisecond})

	start := time.Now()
	_, err := gate.NormalizeMerchant(context.Background(), "raw")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("timeout must map to ErrUnavailable, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout did not bound the call")
	}
}
