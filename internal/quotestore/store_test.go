package quotestore

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"arbitrage/internal/models"
)

func quote(exchange, symbol string, bid, ask float64, ts int64) models.Quote {
	return models.Quote{Exchange: exchange, CanonicalSymbol: symbol, Bid: bid, Ask: ask, Last: (bid + ask) / 2, TimestampMs: ts}
}

func TestUpsertBatch_SnapshotRoundTrip(t *testing.T) {
	s := New()
	s.UpsertBatch([]Item{
		{Exchange: "okx", Quote: quote("okx", "BTCUSDT", 100, 101, 1000)},
		{Exchange: "bybit", Quote: quote("bybit", "BTCUSDT", 99, 100, 1000)},
	})

	got := s.Snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(got))
	}
}

func TestUpsertBatch_LastWriteWinsByTimestamp(t *testing.T) {
	s := New()
	s.UpsertBatch([]Item{{Exchange: "okx", Quote: quote("okx", "BTCUSDT", 100, 101, 2000)}})

	// Older update for the same (exchange, symbol) is dropped.
	s.UpsertBatch([]Item{{Exchange: "okx", Quote: quote("okx", "BTCUSDT", 50, 51, 1000)}})

	got := s.Snapshot()
	if len(got) != 1 || got[0].Bid != 100 {
		t.Fatalf("expected the newer quote to survive, got %+v", got)
	}

	// A newer update replaces it.
	s.UpsertBatch([]Item{{Exchange: "okx", Quote: quote("okx", "BTCUSDT", 200, 201, 3000)}})
	got = s.Snapshot()
	if len(got) != 1 || got[0].Bid != 200 {
		t.Fatalf("expected the newest quote to win, got %+v", got)
	}
}

func TestUpsertBatch_Empty(t *testing.T) {
	s := New()
	s.UpsertBatch(nil)
	if len(s.Snapshot()) != 0 {
		t.Error("expected an empty store to stay empty")
	}
}

func TestCountFresh(t *testing.T) {
	s := New()
	s.UpsertBatch([]Item{
		{Exchange: "okx", Quote: quote("okx", "BTCUSDT", 100, 101, 1000)},
		{Exchange: "okx", Quote: quote("okx", "ETHUSDT", 10, 11, 500)},
		{Exchange: "bybit", Quote: quote("bybit", "BTCUSDT", 99, 100, 1000)},
	})

	fresh := s.CountFresh("okx", 2000, 1000)
	if fresh != 1 {
		t.Errorf("expected 1 fresh symbol for okx, got %d", fresh)
	}

	fresh = s.CountFresh("gate", 2000, 1000)
	if fresh != 0 {
		t.Errorf("expected 0 for an exchange with no quotes, got %d", fresh)
	}
}

// TestConcurrentWritesDoNotStarveReaders drives many small concurrent
// UpsertBatch writers against many concurrent Snapshot readers and asserts
// that no single Snapshot call is held up for long. Lock discipline keeps
// each write's critical section bounded to one small batch, so a reader's
// worst-case wait is proportional to a batch, not to how many quotes are
// queued up behind it.
func TestConcurrentWritesDoNotStarveReaders(t *testing.T) {
	s := New()
	const writers = 20
	const batchesPerWriter = 500
	const batchSize = 10
	const readers = 100

	var maxReadLatencyNs atomic.Int64
	var writersWG, readersWG sync.WaitGroup
	stop := make(chan struct{})

	writersWG.Add(writers)
	for w := 0; w < writers; w++ {
		w := w
		go func() {
			defer writersWG.Done()
			for b := 0; b < batchesPerWriter; b++ {
				items := make([]Item, batchSize)
				for i := range items {
					exch := "ex" + strconv.Itoa(w)
					items[i] = Item{Exchange: exch, Quote: quote(exch, "SYM"+strconv.Itoa(i), 1, 2, int64(b))}
				}
				s.UpsertBatch(items)
			}
		}()
	}

	readersWG.Add(readers)
	for r := 0; r < readers; r++ {
		go func() {
			defer readersWG.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				start := time.Now()
				s.Snapshot()
				latency := time.Since(start).Nanoseconds()
				for {
					cur := maxReadLatencyNs.Load()
					if latency <= cur || maxReadLatencyNs.CompareAndSwap(cur, latency) {
						break
					}
				}
			}
		}()
	}

	writersDone := make(chan struct{})
	go func() {
		writersWG.Wait()
		close(writersDone)
	}()

	select {
	case <-writersDone:
	case <-time.After(5 * time.Second):
		t.Fatal("writers did not finish within the timeout")
	}
	close(stop)
	readersWG.Wait()

	maxLatency := time.Duration(maxReadLatencyNs.Load())
	if maxLatency > 100*time.Millisecond {
		t.Errorf("expected Snapshot latency bounded by batch size, got a worst case of %s", maxLatency)
	}
}
