package aggregator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"arbitrage/internal/exchange"
	"arbitrage/internal/models"
	"arbitrage/internal/quotestore"
	"arbitrage/internal/status"
)

// floodingAdapter returns a fixed batch of quotes on every Poll call with no
// delay, so it can fill an intake channel far faster than a batch processor
// (or, in this test, no processor at all) can drain it.
type floodingAdapter struct {
	pollCount int64
}

func (f *floodingAdapter) Name() string                    { return "flood" }
func (f *floodingAdapter) FeeSchedule() models.FeeSchedule { return models.FeeSchedule{} }
func (f *floodingAdapter) PollInterval() time.Duration     { return 0 }

func (f *floodingAdapter) Poll(ctx context.Context, targets map[string]bool) ([]models.Quote, error) {
	atomic.AddInt64(&f.pollCount, 1)
	quotes := make([]models.Quote, 5)
	for i := range quotes {
		quotes[i] = models.Quote{Exchange: "flood", CanonicalSymbol: "BTCUSDT", Bid: 1, Ask: 1.01, TimestampMs: models.NowMs()}
	}
	return quotes, nil
}

var _ exchange.Adapter = (*floodingAdapter)(nil)

// TestRunAdapterWorker_OverloadedIntakeDoesNotThrottleAdapter asserts that a
// full intake channel drops quotes instead of blocking the adapter worker:
// with a tiny intake capacity and no batch processor draining it at all,
// the worker must still keep calling Poll well past the point the channel
// saturates, and the overflow must show up as drops rather than as a stall.
func TestRunAdapterWorker_OverloadedIntakeDoesNotThrottleAdapter(t *testing.T) {
	adp := &floodingAdapter{}
	a := New([]exchange.Adapter{adp}, nil, quotestore.New(), status.New([]string{"flood"}, nil), nil, 4, 4, 15000)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		a.runAdapterWorker(ctx, adp)
		close(done)
	}()
	<-done

	polls := atomic.LoadInt64(&adp.pollCount)
	if polls < 10 {
		t.Fatalf("expected the worker to keep polling well past the intake capacity, got only %d polls", polls)
	}
	if a.DropCount("flood") == 0 {
		t.Error("expected quotes to be dropped once the intake channel saturated")
	}
}
