// Package arbitrage runs the periodic evaluation tick: snapshot the quote
// store, find every profitable buy-low/sell-high pairing net of taker fees,
// split out opportunities that only look like the same asset, track their
// stability over time, and publish a ranked snapshot for readers.
package arbitrage

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/metrics"
	"arbitrage/internal/models"
	"arbitrage/internal/quotestore"
	"arbitrage/internal/stability"
	"arbitrage/pkg/utils"
)

// Config controls the evaluation tick.
type Config struct {
	Interval         time.Duration // default 1s
	TradeNotionalUSDT float64      // default 100
	MinSpreadPct      float64      // default 0
	QuoteTTLMs        int64        // default 15000
	Filter            FilterConfig
}

// DefaultConfig matches the defaults named in the evaluation design.
func DefaultConfig() Config {
	return Config{
		Interval:          time.Second,
		TradeNotionalUSDT: 100,
		MinSpreadPct:      0,
		QuoteTTLMs:        15000,
		Filter:            DefaultFilterConfig(),
	}
}

// FeeLookup resolves an exchange's taker fee fraction.
type FeeLookup func(exchange string) float64

// Engine runs the evaluation loop and caches the latest ranked snapshot.
type Engine struct {
	store    *quotestore.Store
	stab     *stability.Tracker
	fees     FeeLookup
	cfg      Config
	log      *zap.SugaredLogger
	notifier models.NotifierPort

	snapMu sync.Mutex
	latest []models.Opportunity

	stableMu sync.Mutex
	stableAs map[string]bool // groupKey|buy|sell -> was stable as of the previous tick

	onTick func([]models.Opportunity) // optional hook, e.g. PublishPort.Broadcast
}

// New builds an Engine. fees resolves each exchange's taker fee; onTick, if
// non-nil, is invoked with every new snapshot outside the snapshot lock.
// notifier, if non-nil, receives an "opportunity_stable" event the tick a
// group's stability first turns true.
func New(store *quotestore.Store, stab *stability.Tracker, fees FeeLookup, cfg Config, log *zap.SugaredLogger, notifier models.NotifierPort, onTick func([]models.Opportunity)) *Engine {
	return &Engine{store: store, stab: stab, fees: fees, cfg: cfg, log: log, notifier: notifier, stableAs: make(map[string]bool), onTick: onTick}
}

// GetLatest returns the most recently published snapshot. Safe to call
// from any number of concurrent readers; never blocks behind a tick.
func (e *Engine) GetLatest() []models.Opportunity {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()
	out := make([]models.Opportunity, len(e.latest))
	copy(out, e.latest)
	return out
}

// Run fires evaluation ticks on cfg.Interval until ctx is cancelled. A tick
// that overruns the interval causes the next tick to fire immediately
// rather than queueing more than one pending tick.
func (e *Engine) Run(ctx context.Context) {
	interval := e.cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			start := time.Now()
			e.tick()
			elapsed := time.Since(start)
			remaining := interval - elapsed
			if remaining < 0 {
				remaining = 0
			}
			timer.Reset(remaining)
		}
	}
}

func (e *Engine) tick() {
	tickStart := time.Now()
	now := models.NowMs()
	quotes := e.store.Snapshot()

	bySymbol := make(map[string]map[string]models.Quote)
	for _, q := range quotes {
		if q.IsStale(now, e.cfg.QuoteTTLMs) {
			continue
		}
		if bySymbol[q.CanonicalSymbol] == nil {
			bySymbol[q.CanonicalSymbol] = make(map[string]models.Quote)
		}
		bySymbol[q.CanonicalSymbol][q.Exchange] = q
	}

	var opportunities []models.Opportunity

	for symbol, byExchange := range bySymbol {
		if len(byExchange) < 2 {
			continue
		}
		opportunities = append(opportunities, e.evaluateSymbolSafe(symbol, byExchange, now)...)
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		a, b := opportunities[i], opportunities[j]
		if a.SpreadUSDT != b.SpreadUSDT {
			return a.SpreadUSDT > b.SpreadUSDT
		}
		if a.SpreadPct != b.SpreadPct {
			return a.SpreadPct > b.SpreadPct
		}
		return a.CanonicalSymbol < b.CanonicalSymbol
	})

	e.snapMu.Lock()
	e.latest = opportunities
	e.snapMu.Unlock()

	bestSpread := make(map[string]float64)
	countBySymbol := make(map[string]int)
	stableCount := 0
	for _, opp := range opportunities {
		countBySymbol[opp.CanonicalSymbol]++
		if cur, ok := bestSpread[opp.CanonicalSymbol]; !ok || opp.SpreadPct > cur {
			bestSpread[opp.CanonicalSymbol] = opp.SpreadPct
		}
		if opp.IsStable {
			stableCount++
		}
	}
	metrics.RecordTick(float64(time.Since(tickStart).Microseconds())/1000, bestSpread, countBySymbol, stableCount)

	if e.onTick != nil {
		e.onTick(opportunities)
	}
}

// evaluateSymbolSafe isolates one symbol's computation from the rest of the
// tick: a panic here (an arithmetic anomaly the caller didn't anticipate)
// is logged and treated as zero opportunities for that symbol, never
// propagated to abort the tick.
func (e *Engine) evaluateSymbolSafe(symbol string, byExchange map[string]models.Quote, nowMs int64) (result []models.Opportunity) {
	defer func() {
		if r := recover(); r != nil {
			if e.log != nil {
				e.log.Errorw("evaluation panic, skipping symbol", "symbol", symbol, "recover", r)
			}
			result = nil
		}
	}()
	return e.evaluateSymbol(symbol, byExchange, nowMs)
}

// evaluateSymbol computes every ordered-pair opportunity for one canonical
// symbol group, applies the identity filter, and updates stability. A pair
// that evaluatePair rejects is skipped without logging; it never aborts the
// symbol or the tick.
func (e *Engine) evaluateSymbol(symbol string, byExchange map[string]models.Quote, nowMs int64) []models.Opportunity {
	var raw []models.Opportunity

	exchanges := make([]string, 0, len(byExchange))
	for ex := range byExchange {
		exchanges = append(exchanges, ex)
	}

	for _, buyEx := range exchanges {
		for _, sellEx := range exchanges {
			if buyEx == sellEx {
				continue
			}
			opp, ok := e.evaluatePair(symbol, byExchange[buyEx], byExchange[sellEx], nowMs)
			if !ok {
				continue
			}
			raw = append(raw, opp)
		}
	}

	if len(raw) == 0 {
		return nil
	}

	cls := classifyGroup(byExchange, len(raw), e.cfg.Filter)
	for i := range raw {
		raw[i].GroupKey = groupKey(symbol, cls, byExchange, raw[i].BuyExchange, raw[i].SellExchange)

		netSpreadPct := raw[i].SpreadPct
		stable := e.stab.Observe(raw[i].GroupKey, raw[i].BuyExchange, raw[i].SellExchange, nowMs, netSpreadPct)
		raw[i].IsStable = stable
		e.notifyIfNewlyStable(raw[i])
	}

	return raw
}

// notifyIfNewlyStable emits an "opportunity_stable" event the first tick a
// (group, buy, sell) direction turns stable, and clears its record once it
// stops being stable so a later re-stabilization notifies again.
func (e *Engine) notifyIfNewlyStable(opp models.Opportunity) {
	if e.notifier == nil {
		return
	}

	key := opp.GroupKey + "|" + opp.BuyExchange + "|" + opp.SellExchange

	e.stableMu.Lock()
	wasStable := e.stableAs[key]
	if opp.IsStable {
		e.stableAs[key] = true
	} else {
		delete(e.stableAs, key)
	}
	e.stableMu.Unlock()

	if opp.IsStable && !wasStable {
		oppCopy := opp
		e.notifier.Notify(models.NotifierEvent{
			Kind:        "opportunity_stable",
			Severity:    "info",
			Symbol:      opp.CanonicalSymbol,
			Opportunity: &oppCopy,
			Message:     opp.CanonicalSymbol + " arbitrage opportunity has stabilized",
			TimestampMs: opp.TimestampMs,
		})
	}
}

func (e *Engine) evaluatePair(symbol string, buy, sell models.Quote, nowMs int64) (models.Opportunity, bool) {
	buyPrice := buy.BuyPrice()
	sellPrice := sell.SellPrice()
	if buyPrice <= 0 || sellPrice <= 0 {
		return models.Opportunity{}, false
	}

	notional := e.cfg.TradeNotionalUSDT
	if notional <= 0 {
		notional = 100
	}

	buyFeePct := e.fees(buy.Exchange)
	sellFeePct := e.fees(sell.Exchange)

	qty := utils.Quantity(notional, buyPrice)
	grossProfit := utils.GrossProfit(qty, buyPrice, sellPrice)
	buyFee := utils.TradeFee(qty, buyPrice, buyFeePct)
	sellFee := utils.TradeFee(qty, sellPrice, sellFeePct)
	totalFees := buyFee + sellFee
	net := grossProfit - totalFees
	spreadPct := utils.SpreadPct(buyPrice, sellPrice)

	if net <= 0 || spreadPct < e.cfg.MinSpreadPct {
		return models.Opportunity{}, false
	}

	return models.Opportunity{
		CanonicalSymbol: symbol,
		BuyExchange:     buy.Exchange,
		BuyVenueSymbol:  buy.VenueSymbol,
		BuyPrice:        buyPrice,
		BuyFeePct:       buyFeePct,
		SellExchange:    sell.Exchange,
		SellVenueSymbol: sell.VenueSymbol,
		SellPrice:       sellPrice,
		SellFeePct:      sellFeePct,
		GrossProfitUSDT: grossProfit,
		TotalFeesUSDT:   totalFees,
		SpreadUSDT:      net,
		SpreadPct:       spreadPct,
		TimestampMs:     nowMs,
		GroupKey:        symbol,
	}, true
}
