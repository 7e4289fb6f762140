// Package breaker wraps sony/gobreaker into a small per-adapter circuit
// breaker used to shed load against a venue that is failing consistently,
// independent of (and faster-reacting than) the adapter's own
// backoff-and-restart poll loop.
package breaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// Breaker trips after ConsecutiveFailureThreshold consecutive failures, or
// when the failure ratio exceeds 5% once at least 20 requests have been
// counted since the breaker last changed state (counts are not cleared on a
// timer while closed), and stays open for OpenTimeout before allowing a
// single probe request through.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// Config controls the trip threshold and open-state cooldown.
type Config struct {
	Name                        string
	ConsecutiveFailureThreshold uint32
	OpenTimeout                 time.Duration
}

// New builds a Breaker for one exchange adapter.
func New(cfg Config) *Breaker {
	if cfg.ConsecutiveFailureThreshold == 0 {
		cfg.ConsecutiveFailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.ConsecutiveFailureThreshold {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker. When the breaker is open, fn is not
// called and gobreaker.ErrOpenState is returned.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return b.cb.Execute(fn)
}

// State returns the breaker's current state name, for status reporting.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
