package enrich

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// GateConfig bounds the enrichment port's resource usage.
type GateConfig struct {
	// Timeout applies per call.
	Timeout time.Duration
	// MaxConcurrent caps in-flight calls across the whole process.
	MaxConcurrent int
	// MaxCallsPerDay and MaxCostPerDay are checked before a call is issued;
	// once either is exhausted all further calls degrade to ErrUnavailable
	// until the next UTC day.
	MaxCallsPerDay int
	MaxCostPerDay  float64
	// CostPerCall is the estimated spend attributed to one model call.
	CostPerCall float64
}

// Gate wraps an Enricher with a per-call timeout, capped fan-out, and a
// per-day call-and-cost budget. It is the only way the engine talks to a
// network-backed enricher.
type Gate struct {
	inner Enricher
	cfg   GateConfig
	sem   chan struct{}

	mu    sync.Mutex
	day   string // UTC date the counters belong to
	calls int
	cost  float64

	now func() time.Time
}

// NewGate wraps inner with the given bounds.
func NewGate(inner Enricher, cfg GateConfig) *Gate {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Gate{
		inner: inner,
		cfg:   cfg,
		sem:   make(chan struct{}, cfg.MaxConcurrent),
		now:   time.Now,
	}
}

// NormalizeMerchant implements Enricher.
func (g *Gate) NormalizeMerchant(ctx context.Context, raw string) (string, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	name, err := g.inner.NormalizeMerchant(callCtx, raw)
	if err != nil {
		return "", fmt.Errorf("gate: normalize merchant: %w", ErrUnavailable)
	}
	return name, nil
}

// ClassifyVariable implements Enricher.
func (g *Gate) ClassifyVariable(ctx context.Context, merchant string, amounts []float64) (bool, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	recurring, err := g.inner.ClassifyVariable(callCtx, merchant, amounts)
	if err != nil {
		return false, fmt.Errorf("gate: classify variable: %w", ErrUnavailable)
	}
	return recurring, nil
}

// acquire charges the budget and takes a concurrency slot. The budget is
// charged before the call is issued, never refunded on failure.
func (g *Gate) acquire(ctx context.Context) (func(), error) {
	if err := g.charge(); err != nil {
		return nil, err
	}

	select {
	case g.sem <- struct{}{}:
		return func() { <-g.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("gate: waiting for slot: %w", ErrUnavailable)
	}
}

func (g *Gate) charge() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now().UTC().Format("2006-01-02")
	if g.day != today {
		g.day = today
		g.calls = 0
		g.cost = 0
	}

	if g.cfg.MaxCallsPerDay > 0 && g.calls >= g.cfg.MaxCallsPerDay {
		return fmt.Errorf("gate: daily call budget exhausted: %w", ErrUnavailable)
	}
	if g.cfg.MaxCostPerDay > 0 && g.cost+g.cfg.CostPerCall > g.cfg.MaxCostPerDay {
		return fmt.Errorf("gate: daily cost budget exhausted: %w", ErrUnavailable)
	}

	g.calls++
	g.cost += g.cfg.CostPerCall
	return nil
}
