// Package normalize canonicalizes raw merchant descriptions into stable
// grouping keys. Bank feeds decorate the same payee with store numbers,
// card-scheme prefixes and legal suffixes ("NETFLIX.COM *8842",
// "Netflix Inc"); grouping only works if all of those collapse to one key.
package normalize

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dvloznov/finance-insights/internal/enrich"
)

var (
	separatorNoise = regexp.MustCompile(`[*/]+`)
	referenceToken = regexp.MustCompile(`^#?\d{3,}$`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// legalTokens are entity suffixes that vary between feeds for the same
// merchant and carry no grouping signal.
var legalTokens = map[string]bool{
	"inc":  true,
	"llc":  true,
	"co":   true,
	"corp": true,
}

// Normalizer produces grouping keys and display names for raw merchant
// strings. The zero value is usable; WithEnricher adds the optional
// AI-assisted canonicalization path.
type Normalizer struct {
	enricher enrich.Enricher
	caser    cases.Caser
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithEnricher installs an optional enrichment port consulted by Canonical.
// Enrichment failures silently fall back to the rule-based key.
func WithEnricher(e enrich.Enricher) Option {
	return func(n *Normalizer) { n.enricher = e }
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{caser: cases.Title(language.English)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Key canonicalizes a raw merchant description into a stable grouping key.
// It is deterministic and idempotent: Key(Key(x)) == Key(x). Garbage input
// yields a best-effort trimmed, folded string; it never fails.
func (n *Normalizer) Key(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = separatorNoise.ReplaceAllString(s, " ")

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if referenceToken.MatchString(f) {
			continue
		}
		if legalTokens[strings.TrimSuffix(f, ".")] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// DisplayName formats a raw merchant description for human-facing output:
// cleaned of reference noise, title-cased per word, short tokens upper-cased.
func (n *Normalizer) DisplayName(raw string) string {
	cleaned := n.Key(raw)
	words := strings.Fields(cleaned)
	for i, w := range words {
		if len(w) > 2 {
			words[i] = n.caser.String(w)
		} else {
			words[i] = strings.ToUpper(w)
		}
	}
	name := whitespaceRun.ReplaceAllString(strings.Join(words, " "), " ")
	if runes := []rune(name); len(runes) > 50 {
		name = strings.TrimSpace(string(runes[:50]))
	}
	return name
}

// Canonical returns the grouping key for raw, preferring the enrichment
// port's canonical brand name when one is configured and answers in time.
// The boolean reports whether the enriched path was used; callers only
// surface that through reasoning strings, never through structure.
func (n *Normalizer) Canonical(ctx context.Context, raw string) (string, bool) {
	if n.enricher == nil {
		return n.Key(raw), false
	}
	name, err := n.enricher.NormalizeMerchant(ctx, raw)
	if err != nil || strings.TrimSpace(name) == "" {
		return n.Key(raw), false
	}
	// Enriched names still go through the rule pass so keys from the two
	// paths stay comparable.
	return n.Key(name), true
}
