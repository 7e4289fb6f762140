// Package status tracks per-exchange health: whether the adapter is
// currently connected, when it last produced data, and its error history.
// Deliberately decoupled from quotestore's lock so a slow quote-store write
// never blocks a status read, and vice versa.
package status

import (
	"sync"

	"arbitrage/internal/models"
)

// Tracker is the process-singleton exchange health table.
type Tracker struct {
	mu       sync.Mutex
	statuses map[string]models.ExchangeStatus
	notifier models.NotifierPort
}

// New builds a Tracker pre-populated with a disconnected entry for each
// known exchange name, so Snapshot never has to special-case an exchange
// that hasn't polled yet. notifier may be nil.
func New(exchanges []string, notifier models.NotifierPort) *Tracker {
	t := &Tracker{statuses: make(map[string]models.ExchangeStatus, len(exchanges)), notifier: notifier}
	for _, name := range exchanges {
		t.statuses[name] = models.ExchangeStatus{Name: name}
	}
	return t
}

// RecordSuccess marks exchange connected, advances last_update_ms and sets
// quote_count, leaving the error history intact.
func (t *Tracker) RecordSuccess(exchange string, nowMs int64, quoteCount int) {
	t.mu.Lock()
	st := t.statuses[exchange]
	wasConnected := st.Connected
	st.Name = exchange
	st.Connected = true
	st.LastUpdateMs = nowMs
	st.QuoteCount = quoteCount
	t.statuses[exchange] = st
	t.mu.Unlock()

	if !wasConnected && t.notifier != nil {
		t.notifier.Notify(models.NotifierEvent{
			Kind:        "exchange_connected",
			Severity:    "info",
			Message:     exchange + " is now connected",
			TimestampMs: nowMs,
		})
	}
}

// RecordError marks exchange disconnected and records the failure, keeping
// a running error count across reconnects.
func (t *Tracker) RecordError(exchange string, err error) {
	t.mu.Lock()
	st := t.statuses[exchange]
	wasConnected := st.Connected
	st.Name = exchange
	st.Connected = false
	st.ErrorCount++
	if err != nil {
		st.LastError = err.Error()
	}
	t.statuses[exchange] = st
	t.mu.Unlock()

	if wasConnected && t.notifier != nil {
		msg := exchange + " disconnected"
		if err != nil {
			msg += ": " + err.Error()
		}
		t.notifier.Notify(models.NotifierEvent{
			Kind:        "exchange_disconnected",
			Severity:    "warn",
			Message:     msg,
			TimestampMs: models.NowMs(),
		})
	}
}

// Snapshot returns an immutable copy of every tracked exchange's status.
func (t *Tracker) Snapshot() map[string]models.ExchangeStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]models.ExchangeStatus, len(t.statuses))
	for name, st := range t.statuses {
		out[name] = st
	}
	return out
}
