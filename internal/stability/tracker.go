// Package stability tracks, per (canonical symbol, buy exchange, sell
// exchange) direction, a rolling window of net spread samples used to label
// an opportunity "stable": one that has been continuously profitable for
// the whole configured window, not just on the current tick.
package stability

import (
	"sync"
	"time"

	"arbitrage/internal/models"
)

// Tracker is the process-singleton stability window table.
type Tracker struct {
	mu      sync.Mutex
	window  time.Duration
	records map[string]*models.StabilityRecord
}

// New builds a Tracker with the given rolling window (default 5 minutes).
func New(window time.Duration) *Tracker {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &Tracker{window: window, records: make(map[string]*models.StabilityRecord)}
}

func directionKey(symbol, buyExchange, sellExchange string) string {
	return symbol + "|" + buyExchange + "|" + sellExchange
}

// Observe records one sample for (symbol, buyExchange, sellExchange) at
// nowMs, evicts samples that have aged out of the window, and returns
// whether the direction is currently stable: every sample in the window is
// positive and the window is fully covered (before eviction, the oldest
// sample is at least one window-width old, so there's no start-up gap
// masquerading as stability).
func (t *Tracker) Observe(symbol, buyExchange, sellExchange string, nowMs int64, netSpreadPct float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := directionKey(symbol, buyExchange, sellExchange)
	rec, ok := t.records[k]
	if !ok {
		rec = &models.StabilityRecord{CanonicalSymbol: symbol, BuyExchange: buyExchange, SellExchange: sellExchange}
		t.records[k] = rec
	}

	rec.Samples = append(rec.Samples, models.StabilitySample{TimestampMs: nowMs, NetSpreadPct: netSpreadPct})

	cutoff := nowMs - t.window.Milliseconds()
	covered := rec.Samples[0].TimestampMs <= cutoff
	i := 0
	for ; i < len(rec.Samples); i++ {
		if rec.Samples[i].TimestampMs >= cutoff {
			break
		}
	}
	if i > 0 {
		rec.Samples = append(rec.Samples[:0], rec.Samples[i:]...)
	}

	if len(rec.Samples) == 0 {
		return false
	}
	if !covered {
		// Window not yet fully covered — too young to call stable.
		return false
	}
	for _, s := range rec.Samples {
		if s.NetSpreadPct <= 0 {
			return false
		}
	}
	return true
}

// Prune drops directions that haven't been observed in longer than twice
// the window, to keep the table from growing unbounded as symbols rotate out
// of the evaluation universe. Safe to call periodically from the engine.
func (t *Tracker) Prune(nowMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := nowMs - 2*t.window.Milliseconds()
	for k, rec := range t.records {
		if len(rec.Samples) == 0 || rec.Samples[len(rec.Samples)-1].TimestampMs < cutoff {
			delete(t.records, k)
		}
	}
}
