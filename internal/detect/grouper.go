package detect

import (
	"context"
	"sort"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
)

// occurrence is one (date, amount) pair tied to a transaction, used while
// grouping and matching.
type occurrence struct {
	date   time.Time
	amount float64
}

// merchantGroup is one candidate recurring stream: a normalized merchant on
// one side of the ledger, occurrences sorted by date ascending.
type merchantGroup struct {
	key         string
	displayName string
	sign        int // +1 outflow, -1 inflow
	occurrences []occurrence
	enriched    bool
}

// groupTransactions partitions transactions by (normalized merchant, sign).
// Debit and credit streams for the same payee are kept apart so refunds are
// never conflated with charges. Groups below the occurrence minimum are
// dropped here: they cannot be proven recurring.
func (d *Detector) groupTransactions(ctx context.Context, txs []domain.Transaction) []merchantGroup {
	log := logger.FromContext(ctx)

	type groupKey struct {
		merchant string
		sign     int
	}
	groups := make(map[groupKey]*merchantGroup)
	skipped := 0

	for _, tx := range txs {
		if !tx.Valid() {
			skipped++
			continue
		}

		key, enriched := d.canonicalKey(ctx, tx.MerchantDescription)
		if key == "" {
			skipped++
			continue
		}

		sign := 1
		if tx.Amount < 0 {
			sign = -1
		}

		gk := groupKey{merchant: key, sign: sign}
		g, ok := groups[gk]
		if !ok {
			g = &merchantGroup{
				key:         key,
				displayName: d.normalizer.DisplayName(tx.MerchantDescription),
				sign:        sign,
			}
			groups[gk] = g
		}
		g.enriched = g.enriched || enriched
		g.occurrences = append(g.occurrences, occurrence{date: tx.Date, amount: tx.Amount})
	}

	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("skipped malformed transactions")
	}

	result := make([]merchantGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.occurrences) < d.cfg.MinOccurrences {
			continue
		}
		sort.Slice(g.occurrences, func(i, j int) bool {
			return g.occurrences[i].date.Before(g.occurrences[j].date)
		})
		result = append(result, *g)
	}

	// Map iteration order is random; keep runs reproducible.
	sort.Slice(result, func(i, j int) bool {
		if result[i].key != result[j].key {
			return result[i].key < result[j].key
		}
		return result[i].sign < result[j].sign
	})
	return result
}

// canonicalKey resolves the grouping key, consulting the enrichment port
// only when it is enabled and configured.
func (d *Detector) canonicalKey(ctx context.Context, raw string) (string, bool) {
	if d.cfg.EnableEnrichment && d.enricher != nil {
		return d.normalizer.Canonical(ctx, raw)
	}
	return d.normalizer.Key(raw), false
}
