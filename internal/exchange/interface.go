// Package exchange provides read-only ticker polling adapters for public
// REST endpoints of each supported venue. Adapters never sign requests and
// never place orders: the only operation is fetching the venue's current
// ticker list and translating it into canonical quotes.
package exchange

import (
	"context"
	"time"

	"arbitrage/internal/models"
)

// Adapter polls one venue's public ticker endpoint. An Adapter does not
// loop or sleep on its own: Poll fetches exactly one snapshot of every
// ticker the venue currently publishes, and the caller (the aggregator's
// per-adapter worker) owns cadence, backoff and restart. This mirrors a
// lazy, finite-per-poll, restartable stream while staying a plain
// synchronous call — the aggregator only ever depends on "give me the next
// batch".
type Adapter interface {
	// Name is the lowercase venue identifier used throughout the system
	// (config, status tracking, symbol mapping rules).
	Name() string

	// FeeSchedule returns the venue's taker/maker fee, used by the
	// evaluation engine to net out costs.
	FeeSchedule() models.FeeSchedule

	// PollInterval is the cadence the aggregator worker should sleep
	// between successful polls of this venue.
	PollInterval() time.Duration

	// Poll fetches the venue's full ticker list and returns every quote
	// whose canonical symbol is in targets. A nil or empty targets map
	// means "no filter, return everything translatable".
	Poll(ctx context.Context, targets map[string]bool) ([]models.Quote, error)
}

// ExchangeError wraps a venue-specific failure with the exchange name, for
// status reporting and log fields.
type ExchangeError struct {
	Exchange string
	Message  string
	Original error
}

func (e *ExchangeError) Error() string {
	return e.Exchange + ": " + e.Message
}

func (e *ExchangeError) Unwrap() error {
	return e.Original
}
