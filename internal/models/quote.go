// Package models holds the domain types shared across the ingestion and
// evaluation pipeline: quotes, exchange health, arbitrage opportunities and
// stability records.
package models

import "time"

// Quote is the latest known bid/ask/last for one (exchange, canonical
// symbol) pair. A Quote is immutable once constructed — adapters and the
// aggregator build a new value for every update rather than mutating one in
// place, so a Quote handed to a reader can be retained safely.
type Quote struct {
	Exchange        string
	VenueSymbol     string
	CanonicalSymbol string
	Bid             float64
	Ask             float64
	Last            float64
	TimestampMs     int64
}

// IsStale reports whether the quote is older than ttlMs as of nowMs.
func (q Quote) IsStale(nowMs int64, ttlMs int64) bool {
	return nowMs-q.TimestampMs > ttlMs
}

// BuyPrice returns the price to use when buying on this quote, following the
// fallback chain ask -> last -> bid, skipping non-positive values. Returns 0
// if nothing usable is present.
func (q Quote) BuyPrice() float64 {
	if q.Ask > 0 {
		return q.Ask
	}
	if q.Last > 0 {
		return q.Last
	}
	if q.Bid > 0 {
		return q.Bid
	}
	return 0
}

// SellPrice returns the price to use when selling on this quote, following
// the mirrored fallback chain bid -> last -> ask.
func (q Quote) SellPrice() float64 {
	if q.Bid > 0 {
		return q.Bid
	}
	if q.Last > 0 {
		return q.Last
	}
	if q.Ask > 0 {
		return q.Ask
	}
	return 0
}

// FeeSchedule is a venue's taker/maker fee, expressed as fractions (0.001 ==
// 0.1%). The evaluation engine only ever uses the taker rate.
type FeeSchedule struct {
	TakerPct float64
	MakerPct float64
}

// ExchangeStatus is the mutable per-exchange health record tracked by
// StatusTracker.
type ExchangeStatus struct {
	Name         string
	Connected    bool
	LastUpdateMs int64
	QuoteCount   int
	ErrorCount   int64
	LastError    string
}

// Opportunity is a single buy-low/sell-high triangulation for one canonical
// symbol across two exchanges, net of taker fees, computed on a configured
// notional trade size.
type Opportunity struct {
	CanonicalSymbol string
	BuyExchange     string
	BuyVenueSymbol  string
	BuyPrice        float64
	BuyFeePct       float64
	SellExchange    string
	SellVenueSymbol string
	SellPrice       float64
	SellFeePct      float64
	GrossProfitUSDT float64
	TotalFeesUSDT   float64
	SpreadUSDT      float64
	SpreadPct       float64
	TimestampMs     int64
	IsStable        bool

	// GroupKey distinguishes opportunities the identity filter (§4.6) has
	// split out of an otherwise shared canonical symbol. Equal to
	// CanonicalSymbol when no split applies.
	GroupKey string
}

// StabilitySample is one observation of net spread percent at a point in
// time, used by StabilityTracker's rolling window.
type StabilitySample struct {
	TimestampMs  int64
	NetSpreadPct float64
}

// StabilityRecord is the bounded time-ordered window of samples for one
// (canonical symbol, buy exchange, sell exchange) direction.
type StabilityRecord struct {
	CanonicalSymbol string
	BuyExchange     string
	SellExchange    string
	Samples         []StabilitySample
}

// NowMs returns the current wall-clock time in integer milliseconds since
// epoch, the unit Quote.TimestampMs and related fields are expressed in.
func NowMs() int64 {
	return time.Now().UnixMilli()
}
