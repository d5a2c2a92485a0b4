package candle

import (
	"testing"
	"time"

	"updown/internal/ledger"
)

func secondPoints(t0 time.Time, values ...float64) []ledger.PricePoint {
	points := make([]ledger.PricePoint, 0, len(values))
	for i, v := range values {
		points = append(points, ledger.PricePoint{
			Value: v,
			Time:  t0.Add(time.Duration(i) * time.Second),
		})
	}
	return points
}

// go test -v --run TestAggregateBucketAlignment
func TestAggregateBucketAlignment(t *testing.T) {
	// Start mid-bucket: 12:00:07. The first 15s bucket must still be
	// aligned to :00, not to the first point.
	t0 := time.Date(2026, 8, 28, 12, 0, 7, 0, time.UTC)
	points := secondPoints(t0, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109)

	candles := Aggregate(points, Timeframe15s)
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}

	if !candles[0].BucketStart.Equal(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("first bucket misaligned: %v", candles[0].BucketStart)
	}
	if !candles[1].BucketStart.Equal(time.Date(2026, 8, 28, 12, 0, 15, 0, time.UTC)) {
		t.Errorf("second bucket misaligned: %v", candles[1].BucketStart)
	}

	// Open is the first point in the bucket, close the last.
	if candles[0].Open != 100 || candles[0].Close != 107 {
		t.Errorf("unexpected first candle: open=%f close=%f", candles[0].Open, candles[0].Close)
	}
	if candles[1].Open != 108 || candles[1].Close != 109 {
		t.Errorf("unexpected second candle: open=%f close=%f", candles[1].Open, candles[1].Close)
	}
}

// go test -v --run TestAggregateDeterministic
func TestAggregateDeterministic(t *testing.T) {
	t0 := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	values := make([]float64, 120)
	for i := range values {
		values[i] = 65000 + float64(i%17)*3.5
	}
	points := secondPoints(t0, values...)

	for _, tf := range []Timeframe{Timeframe1s, Timeframe15s, Timeframe30s, Timeframe1m} {
		a := Aggregate(points, tf)
		b := Aggregate(points, tf)
		if len(a) != len(b) {
			t.Fatalf("%s: non-deterministic length %d vs %d", tf, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s: candle %d differs between runs", tf, i)
			}
		}
	}
}

// go test -v --run TestHierarchicalComposition
func TestHierarchicalComposition(t *testing.T) {
	t0 := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	values := make([]float64, 180)
	for i := range values {
		values[i] = 64000 + float64(i)*1.25
	}
	points := secondPoints(t0, values...)

	// The 1m pipeline must equal the explicit raw→15s→30s→1m chain.
	want := Roll(Roll(aggregatePoints(points, 15*time.Second), 30*time.Second), time.Minute)
	got := Aggregate(points, Timeframe1m)

	if len(got) != len(want) {
		t.Fatalf("expected %d candles, got %d", len(want), len(got))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("candle %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	// Source point counts must survive the composition.
	total := 0
	for _, c := range got {
		total += c.SourcePoints
	}
	if total != len(points) {
		t.Errorf("expected %d source points across candles, got %d", len(points), total)
	}
}

// go test -v --run TestRollOpenCloseSemantics
func TestRollOpenCloseSemantics(t *testing.T) {
	t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	points := secondPoints(t0,
		100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 110, // first 15s, closes 110
		110, 110, 110, 110, 110, 110, 110, 110, 110, 110, 110, 110, 110, 110, 120, // second 15s, closes 120
	)

	c30 := Aggregate(points, Timeframe30s)
	if len(c30) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(c30))
	}
	// Open comes from the first 15s candle's open, close from the last's close.
	if c30[0].Open != 100 || c30[0].Close != 120 {
		t.Errorf("unexpected 30s candle: open=%f close=%f", c30[0].Open, c30[0].Close)
	}
}

// go test -v --run TestTail
func TestTail(t *testing.T) {
	t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	points := secondPoints(t0, 1, 2, 3, 4, 5)
	candles := Aggregate(points, Timeframe1s)

	if got := Tail(candles, 2); len(got) != 2 || got[1].Close != 5 {
		t.Errorf("unexpected tail: %v", got)
	}
	if got := Tail(candles, 0); len(got) != 5 {
		t.Errorf("Tail(0) should return everything, got %d", len(got))
	}
	if got := Tail(candles, 99); len(got) != 5 {
		t.Errorf("Tail beyond length should return everything, got %d", len(got))
	}
}

// go test -v --run TestAggregateEmpty
func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil, Timeframe15s); got != nil {
		t.Errorf("expected nil candles for empty input, got %v", got)
	}
}
