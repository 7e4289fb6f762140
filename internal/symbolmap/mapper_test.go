package symbolmap

import "testing"

func testRules() map[string]VenueRule {
	return map[string]VenueRule{
		"okx":   {Separator: SeparatorDash, Suffix: "-SWAP"},
		"bybit": {Separator: SeparatorNone},
		"gate":  {Separator: SeparatorUnderscore},
	}
}

func TestCanonical_RuleBased(t *testing.T) {
	m := New(testRules())

	canon, ok := m.Canonical("okx", "BTC-USDT-SWAP")
	if !ok || canon != "BTCUSDT" {
		t.Errorf("expected BTCUSDT, got %q ok=%v", canon, ok)
	}

	canon, ok = m.Canonical("bybit", "ETHUSDT")
	if !ok || canon != "ETHUSDT" {
		t.Errorf("expected ETHUSDT, got %q ok=%v", canon, ok)
	}

	canon, ok = m.Canonical("gate", "SOL_USDT")
	if !ok || canon != "SOLUSDT" {
		t.Errorf("expected SOLUSDT, got %q ok=%v", canon, ok)
	}
}

func TestCanonical_UnknownExchange(t *testing.T) {
	m := New(testRules())
	if _, ok := m.Canonical("unknown", "BTCUSDT"); ok {
		t.Error("expected an unregistered exchange to fail translation")
	}
}

func TestCanonical_RejectsNonUSDTPairs(t *testing.T) {
	m := New(testRules())
	if _, ok := m.Canonical("bybit", "BTCUSD"); ok {
		t.Error("a pair not ending in USDT should not translate to a canonical symbol")
	}
}

func TestRegisterOverride_TakesPrecedenceOverRule(t *testing.T) {
	m := New(testRules())
	m.RegisterOverride("okx", "XBT-USDT-SWAP", "BTCUSDT")

	canon, ok := m.Canonical("okx", "XBT-USDT-SWAP")
	if !ok || canon != "BTCUSDT" {
		t.Errorf("expected the override to win, got %q ok=%v", canon, ok)
	}

	venue, ok := m.Venue("okx", "BTCUSDT")
	if !ok || venue != "XBT-USDT-SWAP" {
		t.Errorf("expected the reverse override mapping, got %q ok=%v", venue, ok)
	}
}

func TestVenue_RuleBased(t *testing.T) {
	m := New(testRules())
	venue, ok := m.Venue("gate", "SOLUSDT")
	if !ok || venue != "SOL_USDT" {
		t.Errorf("expected SOL_USDT, got %q ok=%v", venue, ok)
	}
}

func TestIntersection(t *testing.T) {
	m := New(testRules())
	m.RegisterSymbol("okx", "BTCUSDT", "BTC-USDT-SWAP")
	m.RegisterSymbol("bybit", "BTCUSDT", "BTCUSDT")
	m.RegisterSymbol("okx", "ETHUSDT", "ETH-USDT-SWAP")

	got := m.Intersection(2)
	if len(got) != 1 || got[0] != "BTCUSDT" {
		t.Errorf("expected only BTCUSDT to meet the 2-exchange threshold, got %v", got)
	}

	got = m.Intersection(1)
	if len(got) != 2 {
		t.Errorf("expected both symbols at threshold 1, got %v", got)
	}
}
