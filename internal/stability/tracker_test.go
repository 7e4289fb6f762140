package stability

import (
	"testing"
	"time"
)

func TestObserve_NotStableUntilWindowCovered(t *testing.T) {
	tr := New(5 * time.Minute)
	windowMs := int64(5 * time.Minute / time.Millisecond)

	stable := tr.Observe("BTCUSDT", "okx", "bybit", 0, 0.5)
	if stable {
		t.Error("a single sample should never be stable: the window isn't covered yet")
	}

	stable = tr.Observe("BTCUSDT", "okx", "bybit", windowMs, 0.5)
	if !stable {
		t.Error("expected stability once the oldest sample is exactly window-old and all samples are positive")
	}
}

func TestObserve_NegativeSampleBreaksStability(t *testing.T) {
	tr := New(time.Minute)
	windowMs := int64(time.Minute / time.Millisecond)

	tr.Observe("BTCUSDT", "okx", "bybit", 0, 0.5)
	stable := tr.Observe("BTCUSDT", "okx", "bybit", windowMs, -0.1)
	if stable {
		t.Error("a non-positive sample in the window must break stability")
	}
}

func TestObserve_OldSamplesEvicted(t *testing.T) {
	tr := New(time.Minute)
	windowMs := int64(time.Minute / time.Millisecond)

	tr.Observe("BTCUSDT", "okx", "bybit", 0, -5) // would break stability if retained
	stable := tr.Observe("BTCUSDT", "okx", "bybit", 3*windowMs, 0.5)
	if !stable {
		t.Error("a sample older than the window should have been evicted before the stability check")
	}
}

func TestObserve_DirectionsAreIndependent(t *testing.T) {
	tr := New(time.Minute)
	windowMs := int64(time.Minute / time.Millisecond)

	tr.Observe("BTCUSDT", "okx", "bybit", 0, 0.5)
	tr.Observe("BTCUSDT", "okx", "bybit", windowMs, 0.5)

	stable := tr.Observe("BTCUSDT", "bybit", "okx", windowMs, 0.5)
	if stable {
		t.Error("the reverse direction has only one sample and shouldn't be stable yet")
	}
}

func TestPrune_DropsStaleDirections(t *testing.T) {
	tr := New(time.Minute)
	windowMs := int64(time.Minute / time.Millisecond)

	tr.Observe("BTCUSDT", "okx", "bybit", 0, 0.5)
	tr.Prune(3 * windowMs)

	stable := tr.Observe("BTCUSDT", "okx", "bybit", 3 * windowMs, 0.5)
	if stable {
		t.Error("expected the pruned direction to have lost its history and start fresh (not immediately stable)")
	}
}
