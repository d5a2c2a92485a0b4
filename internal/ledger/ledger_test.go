package ledger

import (
	"testing"
	"time"
)

// go test -v --run TestAppendAndLatest
func TestAppendAndLatest(t *testing.T) {
	l := New(10)

	if _, ok := l.Latest(); ok {
		t.Fatal("expected no latest point on empty ledger")
	}

	now := time.Now()
	l.Append(PricePoint{Value: 65000, Time: now})
	l.Append(PricePoint{Value: 65100, Time: now.Add(time.Second)})

	p, ok := l.Latest()
	if !ok {
		t.Fatal("expected a latest point")
	}
	if p.Value != 65100 {
		t.Errorf("unexpected latest value: %f", p.Value)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 points, got %d", l.Len())
	}
}

// go test -v --run TestCapacityEviction
func TestCapacityEviction(t *testing.T) {
	l := New(3)
	now := time.Now()

	for i := 0; i < 5; i++ {
		l.Append(PricePoint{Value: float64(i), Time: now.Add(time.Duration(i) * time.Second)})
	}

	if l.Len() != 3 {
		t.Fatalf("expected capacity 3, got %d", l.Len())
	}

	// Oldest points must have been evicted FIFO.
	points := l.Slice(0)
	if points[0].Value != 2 || points[2].Value != 4 {
		t.Errorf("unexpected points after eviction: %v", points)
	}
}

// go test -v --run TestSliceReturnsCopy
func TestSliceReturnsCopy(t *testing.T) {
	l := New(10)
	l.Append(PricePoint{Value: 100, Time: time.Now()})

	s := l.Slice(0)
	s[0].Value = 999

	p, _ := l.Latest()
	if p.Value != 100 {
		t.Error("Slice must not alias internal storage")
	}
}

// go test -v --run TestSliceLastN
func TestSliceLastN(t *testing.T) {
	l := New(10)
	now := time.Now()
	for i := 0; i < 5; i++ {
		l.Append(PricePoint{Value: float64(i), Time: now})
	}

	s := l.Slice(2)
	if len(s) != 2 {
		t.Fatalf("expected 2 points, got %d", len(s))
	}
	if s[0].Value != 3 || s[1].Value != 4 {
		t.Errorf("unexpected tail: %v", s)
	}
}

// go test -v --run TestReset
func TestReset(t *testing.T) {
	l := New(10)
	l.Append(PricePoint{Value: 100, Time: time.Now()})
	l.Reset()

	if l.Len() != 0 {
		t.Errorf("expected empty ledger after reset, got %d points", l.Len())
	}
	if _, ok := l.Latest(); ok {
		t.Error("expected no latest point after reset")
	}
}
