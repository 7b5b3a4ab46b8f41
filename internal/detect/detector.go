// Package detect implements the recurring transaction pattern engine: it
// partitions a user's transactions by normalized merchant, decides which
// groups charge on a regular cycle, classifies the cadence and amount
// behavior, scores confidence, and predicts the next occurrence.
package detect

import (
	"context"
	"fmt"
	"sort"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/enrich"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/memo"
	"github.com/dvloznov/finance-insights/internal/normalize"
)

// Detector runs recurring pattern detection. It holds no mutable state
// across invocations; concurrent Detect calls on independent inputs need no
// locking.
type Detector struct {
	cfg        Config
	normalizer *normalize.Normalizer
	enricher   enrich.Enricher
	memo       *memo.Store
}

// DetectorOption configures optional collaborators.
type DetectorOption func(*Detector)

// WithEnricher installs the enrichment port. It is only consulted when the
// configuration also enables enrichment; failures always fall back to the
// deterministic path.
func WithEnricher(e enrich.Enricher) DetectorOption {
	return func(d *Detector) { d.enricher = e }
}

// WithMemo installs a memoization store for repeated identical runs.
func WithMemo(s *memo.Store) DetectorOption {
	return func(d *Detector) { d.memo = s }
}

// New creates a Detector. An invalid configuration is a fatal construction
// error; nothing runs until it is fixed.
func New(cfg Config, opts ...DetectorOption) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("detect.New: %w", err)
	}
	d := &Detector{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}

	var normOpts []normalize.Option
	if cfg.EnableEnrichment && d.enricher != nil {
		normOpts = append(normOpts, normalize.WithEnricher(d.enricher))
	}
	d.normalizer = normalize.New(normOpts...)
	return d, nil
}

// Config returns the validated configuration the detector runs with.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect discovers recurring patterns in an unordered transaction window.
// The result is deterministic for identical input and configuration: an
// empty window yields an empty pattern list, never an error. Patterns are
// ordered by confidence descending, then by merchant key.
func (d *Detector) Detect(ctx context.Context, txs []domain.Transaction) ([]domain.RecurringPattern, error) {
	log := logger.FromContext(ctx)

	key := ""
	if d.memo != nil {
		key = memo.Key(txs, d.cfg.Fingerprint())
		if patterns, ok := d.memo.Get(key); ok {
			log.Debug().Str("key", key).Msg("detection result served from memo store")
			return patterns, nil
		}
	}

	groups := d.groupTransactions(ctx, txs)

	patterns := make([]domain.RecurringPattern, 0, len(groups))
	for _, g := range groups {
		if pattern, ok := d.evaluateGroup(ctx, g); ok {
			patterns = append(patterns, pattern)
		}
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Confidence != patterns[j].Confidence {
			return patterns[i].Confidence > patterns[j].Confidence
		}
		return patterns[i].NormalizedMerchant < patterns[j].NormalizedMerchant
	})

	log.Info().Int("transactions", len(txs)).Int("groups", len(groups)).
		Int("patterns", len(patterns)).Msg("detection run complete")

	if d.memo != nil {
		d.memo.Put(key, patterns)
	}
	return patterns, nil
}
