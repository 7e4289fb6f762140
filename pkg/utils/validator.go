package utils

import (
	"fmt"
	"math"
	"regexp"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// ValidateSymbol checks that a canonical symbol looks like an uppercase
// alphanumeric trading pair, e.g. BTCUSDT.
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("invalid symbol %q: must be 2-20 uppercase alphanumeric characters", symbol)
	}
	return nil
}

// ValidateSpreadPct checks that a spread percentage is finite and not
// absurdly large, guarding against a bad upstream quote producing a
// meaningless opportunity.
func ValidateSpreadPct(spreadPct float64) error {
	if spreadPct != spreadPct { // NaN
		return fmt.Errorf("spread percent is NaN")
	}
	if spreadPct > 1000 || spreadPct < -1000 {
		return fmt.Errorf("spread percent %.2f is out of a plausible range", spreadPct)
	}
	return nil
}

// ValidatePrice checks that a price quoted by an exchange is a finite
// positive number.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return fmt.Errorf("price must be finite and positive, got %v", price)
	}
	return nil
}

// ValidateNotional checks that a configured trade notional is positive.
func ValidateNotional(notionalUSDT float64) error {
	if notionalUSDT <= 0 {
		return fmt.Errorf("trade notional must be positive, got %v", notionalUSDT)
	}
	return nil
}
