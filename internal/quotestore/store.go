// Package quotestore holds the in-memory (exchange, canonical symbol) ->
// Quote map that is the single source of truth the evaluation engine reads
// from. Its defining constraint is lock discipline: per-quote work (symbol
// translation and filtering) happens outside the lock, and only the
// last-write-wins timestamp check and the map write happen inside it,
// bounded to a small batch so a concurrent snapshot reader is never starved
// by a long write.
package quotestore

import (
	"sync"

	"arbitrage/internal/models"
)

type key struct {
	exchange string
	symbol   string
}

// Store is the process-singleton quote table. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	quotes map[key]models.Quote
}

// New builds an empty Store.
func New() *Store {
	return &Store{quotes: make(map[key]models.Quote)}
}

// Item pairs the exchange a quote came from with the quote itself, the unit
// UpsertBatch operates on.
type Item struct {
	Exchange string
	Quote    models.Quote
}

// UpsertBatch applies items atomically: the whole batch is written under a
// single lock acquisition. Per spec, batches are kept small by the caller
// (the aggregator's batch processor) so this never blocks a snapshot reader
// for long. An incoming quote older than the one already stored for the
// same (exchange, canonical_symbol) is dropped (last-write-wins by
// timestamp); that check reads the stored quote, so it runs inside the lock.
func (s *Store) UpsertBatch(items []Item) {
	if len(items) == 0 {
		return
	}

	// Outside the lock: nothing to do here but pass quotes through, since
	// symbol translation already happened in the adapter/aggregator. This
	// is the "compute outside" half of the discipline — kept as a no-op
	// pass so future per-quote enrichment has an obvious home that isn't
	// the critical section.
	prepared := items

	s.mu.Lock()
	for _, it := range prepared {
		k := key{exchange: it.Exchange, symbol: it.Quote.CanonicalSymbol}
		if existing, ok := s.quotes[k]; ok && it.Quote.TimestampMs < existing.TimestampMs {
			continue
		}
		s.quotes[k] = it.Quote
	}
	s.mu.Unlock()
}

// Snapshot returns a point-in-time copy of every stored quote. The returned
// slice shares no mutable state with the store; a writer running
// concurrently with Snapshot cannot produce a torn read.
func (s *Store) Snapshot() []models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	return out
}

// CountFresh returns the number of canonical symbols stored for exchange
// whose quote is not stale as of nowMs.
func (s *Store) CountFresh(exchange string, nowMs int64, ttlMs int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for k, q := range s.quotes {
		if k.exchange != exchange {
			continue
		}
		if !q.IsStale(nowMs, ttlMs) {
			count++
		}
	}
	return count
}
