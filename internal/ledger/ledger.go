package ledger

import (
	"sync"
	"time"
)

// PricePoint is a single raw price observation at 1-second granularity.
// Immutable once appended.
type PricePoint struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// Ledger is an append-only bounded buffer of raw price points. It is the
// source of truth for timeframe aggregation and for current-price lookups
// during settlement. Oldest points are evicted FIFO once capacity is reached.
//
// Single-writer (the price feed or the fallback generator, never both at
// once), many-reader.
type Ledger struct {
	mu       sync.RWMutex
	points   []PricePoint
	capacity int
}

// DefaultCapacity keeps enough raw points for every chart timeframe.
const DefaultCapacity = 1000

func New(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{
		points:   make([]PricePoint, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a new point, evicting the oldest when full.
func (l *Ledger) Append(p PricePoint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.points = append(l.points, p)
	if len(l.points) > l.capacity {
		// Shift in place so the backing array does not grow unbounded.
		n := copy(l.points, l.points[len(l.points)-l.capacity:])
		l.points = l.points[:n]
	}
}

// Latest returns the most recent point. The second return value is false
// when no point has been appended yet.
func (l *Ledger) Latest() (PricePoint, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.points) == 0 {
		return PricePoint{}, false
	}
	return l.points[len(l.points)-1], true
}

// Slice returns a copy of the most recent lastN points (all points when
// lastN <= 0 or exceeds the stored count).
func (l *Ledger) Slice(lastN int) []PricePoint {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.points)
	if lastN <= 0 || lastN > n {
		lastN = n
	}

	cp := make([]PricePoint, lastN)
	copy(cp, l.points[n-lastN:])
	return cp
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.points)
}

// Reset drops all stored points. Used when the first real feed price
// arrives and seeded/simulated data must be discarded.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.points = l.points[:0]
}
