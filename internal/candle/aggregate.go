package candle

import (
	"sort"
	"time"

	"updown/internal/ledger"
)

// Candle is a derived bucket of raw price points. Candles are recomputed
// on demand from the raw ledger and never persisted independently of
// their inputs. A candle exists only for buckets holding at least one
// source point.
type Candle struct {
	Open         float64   `json:"open"`
	Close        float64   `json:"close"`
	BucketStart  time.Time `json:"bucketStart"`
	BucketEnd    time.Time `json:"bucketEnd"`
	SourcePoints int       `json:"sourcePoints"`
}

// bucketStartMillis aligns a timestamp to an absolute interval boundary:
// floor(t/interval)*interval.
func bucketStartMillis(t time.Time, interval time.Duration) int64 {
	intervalMs := interval.Milliseconds()
	return t.UnixMilli() / intervalMs * intervalMs
}

// aggregatePoints buckets raw points by absolute time alignment. The
// representative close is the LAST point in each bucket, not an average:
// the chart and round semantics want "price at bucket close", not
// smoothing.
func aggregatePoints(points []ledger.PricePoint, interval time.Duration) []Candle {
	if len(points) == 0 {
		return nil
	}

	type bucket struct {
		first, last ledger.PricePoint
		count       int
	}

	buckets := make(map[int64]*bucket)
	for _, p := range points {
		start := bucketStartMillis(p.Time, interval)
		b, ok := buckets[start]
		if !ok {
			buckets[start] = &bucket{first: p, last: p, count: 1}
			continue
		}
		b.last = p
		b.count++
	}

	starts := make([]int64, 0, len(buckets))
	for start := range buckets {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	out := make([]Candle, 0, len(starts))
	for _, start := range starts {
		b := buckets[start]
		out = append(out, Candle{
			Open:         b.first.Value,
			Close:        b.last.Value,
			BucketStart:  time.UnixMilli(start).UTC(),
			BucketEnd:    time.UnixMilli(start + interval.Milliseconds() - 1).UTC(),
			SourcePoints: b.count,
		})
	}
	return out
}

// Roll re-buckets already-aggregated candles into a coarser interval.
// Each input candle is treated as a point at its bucket start carrying
// its close value, so each stage's last-in-bucket choice compounds.
func Roll(candles []Candle, interval time.Duration) []Candle {
	if len(candles) == 0 {
		return nil
	}

	type bucket struct {
		first, last Candle
		count       int
	}

	buckets := make(map[int64]*bucket)
	for _, c := range candles {
		start := bucketStartMillis(c.BucketStart, interval)
		b, ok := buckets[start]
		if !ok {
			buckets[start] = &bucket{first: c, last: c, count: c.SourcePoints}
			continue
		}
		b.last = c
		b.count += c.SourcePoints
	}

	starts := make([]int64, 0, len(buckets))
	for start := range buckets {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	out := make([]Candle, 0, len(starts))
	for _, start := range starts {
		b := buckets[start]
		out = append(out, Candle{
			Open:         b.first.Open,
			Close:        b.last.Close,
			BucketStart:  time.UnixMilli(start).UTC(),
			BucketEnd:    time.UnixMilli(start + interval.Milliseconds() - 1).UTC(),
			SourcePoints: b.count,
		})
	}
	return out
}

// Aggregate builds candles for the target timeframe from raw points.
// Coarser timeframes are composed hierarchically: raw→15s→30s→1m.
// Aggregating raw→1m directly would NOT give identical results, because
// each stage picks the last value per bucket; the two-stage composition
// is deliberate and matches the displayed chart semantics.
func Aggregate(points []ledger.PricePoint, target Timeframe) []Candle {
	switch target {
	case Timeframe1s:
		return aggregatePoints(points, time.Second)
	case Timeframe15s:
		return aggregatePoints(points, 15*time.Second)
	case Timeframe30s:
		c15 := aggregatePoints(points, 15*time.Second)
		return Roll(c15, 30*time.Second)
	case Timeframe1m:
		c15 := aggregatePoints(points, 15*time.Second)
		c30 := Roll(c15, 30*time.Second)
		return Roll(c30, time.Minute)
	default:
		return nil
	}
}

// Tail returns the most recent n candles.
func Tail(candles []Candle, n int) []Candle {
	if n <= 0 || n >= len(candles) {
		return candles
	}
	return candles[len(candles)-n:]
}
