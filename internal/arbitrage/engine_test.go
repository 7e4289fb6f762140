package arbitrage

import (
	"testing"
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/quotestore"
	"arbitrage/internal/stability"
)

func flatFee(pct float64) FeeLookup {
	return func(string) float64 { return pct }
}

func newTestEngine(cfg Config) (*Engine, *quotestore.Store) {
	store := quotestore.New()
	stab := stability.New(time.Minute)
	e := New(store, stab, flatFee(0.001), cfg, nil, nil, nil)
	return e, store
}

func TestEvaluatePair_ProfitableNetOfFees(t *testing.T) {
	cfg := DefaultConfig()
	e, _ := newTestEngine(cfg)

	buy := models.Quote{Exchange: "okx", Ask: 100, Bid: 99.5}
	sell := models.Quote{Exchange: "bybit", Bid: 102, Ask: 102.5}

	opp, ok := e.evaluatePair("BTCUSDT", buy, sell, 1000)
	if !ok {
		t.Fatal("expected a profitable opportunity")
	}
	if opp.BuyExchange != "okx" || opp.SellExchange != "bybit" {
		t.Errorf("unexpected exchanges: %+v", opp)
	}
	if opp.SpreadUSDT <= 0 {
		t.Errorf("expected positive net spread, got %f", opp.SpreadUSDT)
	}
}

func TestEvaluatePair_UnprofitableAfterFeesRejected(t *testing.T) {
	cfg := DefaultConfig()
	store := quotestore.New()
	stab := stability.New(time.Minute)
	e := New(store, stab, flatFee(0.05), cfg, nil, nil, nil) // 5% taker fee swamps a tiny spread

	buy := models.Quote{Exchange: "okx", Ask: 100, Bid: 99.9}
	sell := models.Quote{Exchange: "bybit", Bid: 100.1, Ask: 100.2}

	_, ok := e.evaluatePair("BTCUSDT", buy, sell, 1000)
	if ok {
		t.Error("expected the opportunity to be rejected once fees exceed the gross spread")
	}
}

func TestEvaluatePair_NonPositivePricesRejected(t *testing.T) {
	cfg := DefaultConfig()
	e, _ := newTestEngine(cfg)

	buy := models.Quote{Exchange: "okx"} // zero ask/bid/last
	sell := models.Quote{Exchange: "bybit", Bid: 100}

	if _, ok := e.evaluatePair("BTCUSDT", buy, sell, 1000); ok {
		t.Error("expected a quote with no usable price to be rejected")
	}
}

func TestEvaluatePair_BelowMinSpreadRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSpreadPct = 1000 // impossibly high floor
	e, _ := newTestEngine(cfg)

	buy := models.Quote{Exchange: "okx", Ask: 100}
	sell := models.Quote{Exchange: "bybit", Bid: 101}

	if _, ok := e.evaluatePair("BTCUSDT", buy, sell, 1000); ok {
		t.Error("expected the min-spread floor to reject an otherwise-profitable pair")
	}
}

func TestTick_ProducesRankedSnapshot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QuoteTTLMs = 60000
	e, store := newTestEngine(cfg)

	now := models.NowMs()
	store.UpsertBatch([]quotestore.Item{
		{Exchange: "okx", Quote: models.Quote{Exchange: "okx", CanonicalSymbol: "BTCUSDT", Ask: 100, Bid: 99.9, TimestampMs: now}},
		{Exchange: "bybit", Quote: models.Quote{Exchange: "bybit", CanonicalSymbol: "BTCUSDT", Bid: 105, Ask: 105.1, TimestampMs: now}},
	})

	e.tick()
	latest := e.GetLatest()
	if len(latest) == 0 {
		t.Fatal("expected at least one opportunity in the snapshot")
	}
	for _, opp := range latest {
		if opp.CanonicalSymbol != "BTCUSDT" {
			t.Errorf("unexpected symbol in snapshot: %+v", opp)
		}
	}
}

func TestTick_IgnoresStaleQuotes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QuoteTTLMs = 1000
	e, store := newTestEngine(cfg)

	store.UpsertBatch([]quotestore.Item{
		{Exchange: "okx", Quote: models.Quote{Exchange: "okx", CanonicalSymbol: "BTCUSDT", Ask: 100, TimestampMs: 0}},
		{Exchange: "bybit", Quote: models.Quote{Exchange: "bybit", CanonicalSymbol: "BTCUSDT", Bid: 105, TimestampMs: 0}},
	})

	e.tick()
	if len(e.GetLatest()) != 0 {
		t.Error("expected stale quotes (relative to now) to be excluded from the tick")
	}
}

func TestNotifyIfNewlyStable_FiresOnceThenAgainAfterDrop(t *testing.T) {
	n := &recordingEngineNotifier{}
	cfg := DefaultConfig()
	store := quotestore.New()
	stab := stability.New(time.Minute)
	e := New(store, stab, flatFee(0.001), cfg, nil, n, nil)

	opp := models.Opportunity{GroupKey: "BTCUSDT", BuyExchange: "okx", SellExchange: "bybit", IsStable: true}
	e.notifyIfNewlyStable(opp)
	e.notifyIfNewlyStable(opp) // still stable, no second event

	opp.IsStable = false
	e.notifyIfNewlyStable(opp)

	opp.IsStable = true
	e.notifyIfNewlyStable(opp) // re-stabilized, should fire again

	if len(n.events) != 2 {
		t.Fatalf("expected exactly 2 opportunity_stable events, got %d", len(n.events))
	}
}

type recordingEngineNotifier struct {
	events []models.NotifierEvent
}

func (n *recordingEngineNotifier) Notify(e models.NotifierEvent) {
	n.events = append(n.events, e)
}
