package exchange

import (
	"fmt"
	"strings"

	"arbitrage/internal/breaker"
	"arbitrage/internal/symbolmap"
	"arbitrage/pkg/ratelimit"
)

// SupportedExchanges lists every venue this build knows how to poll.
var SupportedExchanges = []string{
	"okx",
	"bybit",
	"bitget",
	"gate",
	"htx",
	"bingx",
}

// IsSupported reports whether name (case-insensitively) names a known venue.
func IsSupported(name string) bool {
	name = strings.ToLower(name)
	for _, supported := range SupportedExchanges {
		if name == supported {
			return true
		}
	}
	return false
}

// New builds the Adapter for name, wiring in the shared symbol mapper and
// a dedicated rate limiter and circuit breaker for that venue.
func New(name string, mapper *symbolmap.Mapper, limiter *ratelimit.RateLimiter, cb *breaker.Breaker) (Adapter, error) {
	switch strings.ToLower(name) {
	case "okx":
		return NewOKX(mapper, limiter, cb), nil
	case "bybit":
		return NewBybit(mapper, limiter, cb), nil
	case "bitget":
		return NewBitget(mapper, limiter, cb), nil
	case "gate":
		return NewGate(mapper, limiter, cb), nil
	case "htx":
		return NewHTX(mapper, limiter, cb), nil
	case "bingx":
		return NewBingX(mapper, limiter, cb), nil
	default:
		return nil, fmt.Errorf("unsupported exchange: %s", name)
	}
}

// DefaultVenueRules returns the symbol-spelling rule for each supported
// venue, used to build the shared Mapper at startup.
func DefaultVenueRules() map[string]symbolmap.VenueRule {
	return map[string]symbolmap.VenueRule{
		"okx":   {Separator: symbolmap.SeparatorDash, Suffix: "-SWAP"},
		"bybit": {Separator: symbolmap.SeparatorNone},
		"bitget": {Separator: symbolmap.SeparatorNone},
		"gate":  {Separator: symbolmap.SeparatorUnderscore},
		"htx":   {Separator: symbolmap.SeparatorDash},
		"bingx": {Separator: symbolmap.SeparatorDash},
	}
}
