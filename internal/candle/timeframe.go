package candle

import (
	"fmt"
	"time"
)

// Timeframe identifies a chart/round interval.
type Timeframe string

const (
	Timeframe1s  Timeframe = "1s"
	Timeframe15s Timeframe = "15s"
	Timeframe30s Timeframe = "30s"
	Timeframe1m  Timeframe = "1m"
)

// RoundTimeframes are the intervals that run betting rounds. The 1s
// timeframe is chart-only.
var RoundTimeframes = []Timeframe{Timeframe15s, Timeframe30s, Timeframe1m}

var timeframeIntervals = map[Timeframe]time.Duration{
	Timeframe1s:  time.Second,
	Timeframe15s: 15 * time.Second,
	Timeframe30s: 30 * time.Second,
	Timeframe1m:  time.Minute,
}

// Interval returns the bucket width of the timeframe.
func (t Timeframe) Interval() time.Duration {
	return timeframeIntervals[t]
}

// Seconds returns the bucket width in whole seconds.
func (t Timeframe) Seconds() int {
	return int(timeframeIntervals[t] / time.Second)
}

func (t Timeframe) IsValid() bool {
	_, ok := timeframeIntervals[t]
	return ok
}

// ParseTimeframe parses a string into a valid Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !tf.IsValid() {
		return "", fmt.Errorf("invalid timeframe: %s", s)
	}
	return tf, nil
}
