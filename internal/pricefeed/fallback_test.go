package pricefeed

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

// go test -v --run TestFallbackStepBounds
func TestFallbackStepBounds(t *testing.T) {
	f := NewFallback("BTCUSDT", nil, zap.NewNop())
	now := time.Now()

	prev := 0.0
	for i := 0; i < 1000; i++ {
		u := f.Step(now)
		if u.Close < fallbackFloor || u.Close > fallbackCeil {
			t.Fatalf("step %d out of bounds: %f", i, u.Close)
		}
		if u.Live {
			t.Fatal("fallback updates must never be flagged live")
		}

		// Per-step move stays within the 2% volatility ceiling.
		if prev != 0 {
			move := u.Close - prev
			if move < 0 {
				move = -move
			}
			if move > prev*0.02+1e-9 {
				t.Fatalf("step %d moved %.2f from %.2f, above the volatility cap", i, move, prev)
			}
		}
		prev = u.Close
	}
}

// go test -v --run TestFallbackBasePriceRange
func TestFallbackBasePriceRange(t *testing.T) {
	f := NewFallback("BTCUSDT", nil, zap.NewNop())
	u := f.Step(time.Now())

	// First step moves at most 2% off the seeded base.
	if u.Close < fallbackBaseMin*0.98 || u.Close > (fallbackBaseMin+fallbackBaseSpan)*1.02 {
		t.Errorf("first step %f outside seeded range", u.Close)
	}
}

// go test -v --run TestFallbackStartStopIdempotent
func TestFallbackStartStopIdempotent(t *testing.T) {
	f := NewFallback("BTCUSDT", func(PriceUpdate) {}, zap.NewNop())

	f.Start()
	f.Start() // second start is a no-op
	if !f.Running() {
		t.Fatal("expected fallback running")
	}

	f.Stop()
	f.Stop() // second stop is a no-op
	if f.Running() {
		t.Fatal("expected fallback stopped")
	}

	// Restart after stop works.
	f.Start()
	if !f.Running() {
		t.Fatal("expected fallback running after restart")
	}
	f.Stop()
}
