// Package aggregator wires exchange adapters to the quote store: one
// long-running worker goroutine per adapter feeding a bounded intake
// channel, and a single batch processor draining that channel into
// QuoteStore and StatusTracker.
package aggregator

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/exchange"
	"arbitrage/internal/metrics"
	"arbitrage/internal/models"
	"arbitrage/internal/quotestore"
	"arbitrage/internal/status"
)

const (
	defaultIntakeCapacity = 10000
	defaultBatchSize      = 100
	backoffBase           = time.Second
	backoffCap            = 60 * time.Second
)

// intakeItem is what an adapter worker pushes onto the shared channel.
type intakeItem struct {
	exchange string
	quote    models.Quote
}

// Aggregator owns the adapter worker pool and the batch processor. Created
// once at startup and run for the process lifetime.
type Aggregator struct {
	adapters  []exchange.Adapter
	targets   func() map[string]bool
	store     *quotestore.Store
	statuses  *status.Tracker
	log       *zap.SugaredLogger

	intake    chan intakeItem
	batchSize int
	ttlMs     int64

	dropCounts map[string]*int64
}

// New builds an Aggregator. targets is called before every poll so the
// target symbol universe can change at runtime as the symbol mapper learns
// new intersections; it may return nil/empty for "no filter". ttlMs is the
// staleness threshold used when recomputing quote_count after each batch.
func New(adapters []exchange.Adapter, targets func() map[string]bool, store *quotestore.Store, statuses *status.Tracker, log *zap.SugaredLogger, intakeCapacity, batchSize int, ttlMs int64) *Aggregator {
	if intakeCapacity <= 0 {
		intakeCapacity = defaultIntakeCapacity
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if ttlMs <= 0 {
		ttlMs = 15000
	}

	drops := make(map[string]*int64, len(adapters))
	for _, a := range adapters {
		var v int64
		drops[a.Name()] = &v
	}

	return &Aggregator{
		adapters:   adapters,
		targets:    targets,
		store:      store,
		statuses:   statuses,
		log:        log,
		intake:     make(chan intakeItem, intakeCapacity),
		batchSize:  batchSize,
		ttlMs:      ttlMs,
		dropCounts: drops,
	}
}

// Run starts one worker per adapter plus the batch processor, and blocks
// until ctx is cancelled. Workers and the batch processor check ctx between
// suspension points (polls, backoff sleeps, empty-channel waits), never
// mid-batch, so shutdown never tears a batch.
func (a *Aggregator) Run(ctx context.Context) {
	done := make(chan struct{}, len(a.adapters)+1)

	for _, adp := range a.adapters {
		adp := adp
		go func() {
			a.runAdapterWorker(ctx, adp)
			done <- struct{}{}
		}()
	}

	go func() {
		a.runBatchProcessor(ctx)
		done <- struct{}{}
	}()

	for i := 0; i < len(a.adapters)+1; i++ {
		<-done
	}
}

// runAdapterWorker polls one venue forever, enqueuing every quote it
// returns and restarting after a capped exponential backoff on error.
func (a *Aggregator) runAdapterWorker(ctx context.Context, adp exchange.Adapter) {
	backoff := backoffBase

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var targets map[string]bool
		if a.targets != nil {
			targets = a.targets()
		}

		quotes, err := adp.Poll(ctx, targets)
		if err != nil {
			a.statuses.RecordError(adp.Name(), err)
			metrics.AdapterPollErrorsTotal.WithLabelValues(adp.Name()).Inc()
			metrics.ExchangeConnectionStatus.WithLabelValues(adp.Name()).Set(0)
			if a.log != nil {
				a.log.Warnw("adapter poll failed", "exchange", adp.Name(), "error", err, "backoff", backoff)
			}
			if !sleepOrDone(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = backoffBase

		for _, q := range quotes {
			select {
			case a.intake <- intakeItem{exchange: adp.Name(), quote: q}:
				metrics.QuotesIngestedTotal.WithLabelValues(adp.Name()).Inc()
			default:
				a.recordDrop(adp.Name())
				metrics.QuotesDroppedTotal.WithLabelValues(adp.Name()).Inc()
			}
		}

		if !sleepOrDone(ctx, adp.PollInterval()) {
			return
		}
	}
}

func (a *Aggregator) recordDrop(exch string) {
	if c, ok := a.dropCounts[exch]; ok {
		*c++
	}
}

// DropCount returns the number of quotes dropped for exchange due to a full
// intake channel, exposed for metrics.
func (a *Aggregator) DropCount(exchange string) int64 {
	if c, ok := a.dropCounts[exchange]; ok {
		return *c
	}
	return 0
}

// runBatchProcessor drains up to batchSize items at a time and applies them
// to the store and status tracker in one pass. It suspends on an empty
// channel rather than polling, and never holds more than one batch's worth
// of items in memory.
func (a *Aggregator) runBatchProcessor(ctx context.Context) {
	batch := make([]intakeItem, 0, a.batchSize)
	counts := make(map[string]int)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		items := make([]quotestore.Item, len(batch))
		for i, it := range batch {
			items[i] = quotestore.Item{Exchange: it.exchange, Quote: it.quote}
			counts[it.exchange]++
		}
		a.store.UpsertBatch(items)

		now := models.NowMs()
		for exch := range counts {
			fresh := a.store.CountFresh(exch, now, a.ttlMs)
			a.statuses.RecordSuccess(exch, now, fresh)
			metrics.ExchangeConnectionStatus.WithLabelValues(exch).Set(1)
			metrics.ExchangeQuoteCount.WithLabelValues(exch).Set(float64(fresh))
		}

		batch = batch[:0]
		for k := range counts {
			delete(counts, k)
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case item := <-a.intake:
			batch = append(batch, item)
		drain:
			for len(batch) < a.batchSize {
				select {
				case next := <-a.intake:
					batch = append(batch, next)
				default:
					break drain
				}
			}
			flush()
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := time.Duration(math.Min(float64(current)*2, float64(backoffCap)))
	if next <= 0 {
		next = backoffBase
	}
	return next
}
