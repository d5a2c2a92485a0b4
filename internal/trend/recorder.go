package trend

import (
	"sync"
	"time"

	"updown/internal/candle"

	"go.uber.org/zap"
)

// Direction is the outcome of a completed round.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Tie  Direction = "tie"
)

// Entry is one completed round outcome.
type Entry struct {
	OpenPrice   float64          `json:"openPrice"`
	ClosePrice  float64          `json:"closePrice"`
	Trend       Direction        `json:"trend"`
	Timeframe   candle.Timeframe `json:"timeframe"`
	RoundNumber int              `json:"roundNumber"`
	Timestamp   time.Time        `json:"timestamp"`
}

// MaxEntries is how many outcomes each timeframe retains.
const MaxEntries = 20

// Recorder keeps a capped, deduplicated log of round outcomes per
// timeframe for the historical-trend display. Newest entries are first.
type Recorder struct {
	mu   sync.Mutex
	log  *zap.Logger
	max  int
	byTF map[candle.Timeframe][]Entry
}

func NewRecorder(logger *zap.Logger) *Recorder {
	return &Recorder{
		log:  logger,
		max:  MaxEntries,
		byTF: make(map[candle.Timeframe][]Entry),
	}
}

// Record appends a round outcome. A round number already present for the
// timeframe is silently dropped and logged at debug; replayed candle
// events must never produce two entries for the same round. Returns
// false on a duplicate.
func (r *Recorder) Record(tf candle.Timeframe, roundNumber int, open, close float64, ts time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.byTF[tf]
	for _, e := range entries {
		if e.RoundNumber == roundNumber {
			r.log.Debug("duplicate round outcome dropped",
				zap.String("timeframe", string(tf)),
				zap.Int("round", roundNumber),
			)
			return false
		}
	}

	entry := Entry{
		OpenPrice:   open,
		ClosePrice:  close,
		Trend:       direction(open, close),
		Timeframe:   tf,
		RoundNumber: roundNumber,
		Timestamp:   ts,
	}

	entries = append([]Entry{entry}, entries...)
	if len(entries) > r.max {
		entries = entries[:r.max]
	}
	r.byTF[tf] = entries
	return true
}

// History returns a copy of the timeframe's outcomes, newest first.
func (r *Recorder) History(tf candle.Timeframe) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.byTF[tf]
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return cp
}

func direction(open, close float64) Direction {
	switch {
	case close > open:
		return Up
	case close < open:
		return Down
	default:
		return Tie
	}
}
