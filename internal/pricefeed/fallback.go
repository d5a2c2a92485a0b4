package pricefeed

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fallback price bounds. The walk starts in [65k, 75k) and is clamped to
// [50k, 100k], matching the live feed's plausible range.
const (
	fallbackFloor    = 50000.0
	fallbackCeil     = 100000.0
	fallbackBaseMin  = 65000.0
	fallbackBaseSpan = 10000.0
)

// Fallback generates one simulated price update per second using a
// bounded random walk. It substitutes for the live feed when the
// connection budget is exhausted and must never run concurrently with
// it: the supervisor stops it the moment a real update arrives.
//
// The generator emits price updates only; it never synthesizes candle
// events, so switching back to live data cannot fabricate a trend entry.
type Fallback struct {
	symbol string
	emit   func(PriceUpdate)
	log    *zap.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	price   float64
	running bool
	stop    chan struct{}
}

func NewFallback(symbol string, emit func(PriceUpdate), logger *zap.Logger) *Fallback {
	return &Fallback{
		symbol: symbol,
		emit:   emit,
		log:    logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins emitting simulated updates at 1 Hz. Idempotent.
func (f *Fallback) Start() {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return
	}
	f.running = true
	f.stop = make(chan struct{})
	if f.price == 0 {
		f.price = fallbackBaseMin + f.rng.Float64()*fallbackBaseSpan
	}
	stop := f.stop
	f.mu.Unlock()

	f.log.Info("fallback price generation started", zap.Float64("base_price", f.price))

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				u := f.Step(time.Now())
				if f.emit != nil {
					f.emit(u)
				}
			}
		}
	}()
}

// Stop halts generation. Idempotent; safe to call from the live-update
// path on every real price received.
func (f *Fallback) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	f.running = false
	close(f.stop)
	f.log.Info("fallback price generation stopped")
}

func (f *Fallback) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Step advances the walk one tick: next = clamp(prev + prev*vol*sign)
// with volatility uniform in [0.001, 0.02) and a fair sign.
func (f *Fallback) Step(now time.Time) PriceUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.price == 0 {
		f.price = fallbackBaseMin + f.rng.Float64()*fallbackBaseSpan
	}

	volatility := 0.001 + f.rng.Float64()*0.019
	sign := 1.0
	if f.rng.Float64() < 0.5 {
		sign = -1.0
	}

	next := f.price + f.price*volatility*sign
	if next < fallbackFloor {
		next = fallbackFloor
	}
	if next > fallbackCeil {
		next = fallbackCeil
	}
	f.price = next

	// Small synthetic spread so open != close most ticks.
	open := next - (f.rng.Float64()*200 - 100)

	return PriceUpdate{
		Symbol: f.symbol,
		Open:   open,
		Close:  next,
		Time:   now,
		Live:   false,
	}
}
