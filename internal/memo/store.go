// Package memo provides a content-addressed cache for detection results.
// Detection is referentially transparent (transactions + config in,
// patterns out), so identical inputs may reuse a previous run's output.
package memo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Store is an explicitly constructed, injectable memoization cache. It is
// safe for concurrent use and clearable on demand; it is never a package
// level singleton.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]domain.RecurringPattern
}

// NewStore creates an empty memoization store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]domain.RecurringPattern)}
}

// Get returns a copy of the memoized patterns for key, if any.
func (s *Store) Get(key string) ([]domain.RecurringPattern, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patterns, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return clonePatterns(patterns), true
}

// Put memoizes patterns under key, storing a private copy.
func (s *Store) Put(key string, patterns []domain.RecurringPattern) {
	stored := clonePatterns(patterns)
	s.mu.Lock()
	s.entries[key] = stored
	s.mu.Unlock()
}

// clonePatterns copies the slice and the AmountRange pointers inside it, so
// callers and the store never share mutable state.
func clonePatterns(patterns []domain.RecurringPattern) []domain.RecurringPattern {
	out := make([]domain.RecurringPattern, len(patterns))
	copy(out, patterns)
	for i := range out {
		if out[i].AmountRange != nil {
			r := *out[i].AmountRange
			out[i].AmountRange = &r
		}
	}
	return out
}

// Clear drops all memoized results.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string][]domain.RecurringPattern)
	s.mu.Unlock()
}

// Len reports the number of memoized runs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Key derives the content address for one detection run: a sha256 over the
// order-independent transaction content plus the config fingerprint.
func Key(txs []domain.Transaction, configFingerprint string) string {
	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = fmt.Sprintf("%s|%s|%s|%.4f|%s",
			tx.ID, tx.AccountID, tx.MerchantDescription, tx.Amount,
			tx.Date.UTC().Format("2006-01-02"))
	}
	sort.Strings(lines)

	h := sha256.New()
	h.Write([]byte(configFingerprint))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}
