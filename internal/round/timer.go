package round

import (
	"time"

	"updown/internal/candle"
)

// BetLockSeconds is the tail of every round during which betting is
// closed. canBet == timeLeft > BetLockSeconds always holds.
const BetLockSeconds = 3

// State is the canonical per-timeframe clock, recomputed every tick from
// wall-clock time rather than by decrementing a counter, so it cannot
// drift.
type State struct {
	Timeframe   candle.Timeframe `json:"timeframe"`
	TimeLeft    int              `json:"timeLeft"`
	CanBet      bool             `json:"canBet"`
	RoundNumber int              `json:"roundNumber"`
	RoundStart  int              `json:"roundStart"` // second-of-minute the round began
	RoundEnd    int              `json:"roundEnd"`   // second-of-minute the round ends
	NewRound    bool             `json:"newRound"`   // true on the first tick of a round
}

// Timer computes round state for all betting timeframes once per second.
// It remembers the previous round number per timeframe to flag rollover.
type Timer struct {
	lastRound map[candle.Timeframe]int
}

func NewTimer() *Timer {
	return &Timer{
		lastRound: make(map[candle.Timeframe]int, len(candle.RoundTimeframes)),
	}
}

// Compute derives the round state for one timeframe at the given instant.
// Timeframes that subdivide a minute (15s, 30s) align their boundaries to
// floor(secondsOfMinute/interval)*interval; 1-minute rounds always span
// the full minute and never subdivide.
func Compute(tf candle.Timeframe, now time.Time) State {
	now = now.UTC()
	interval := tf.Seconds()
	secOfMin := now.Second()
	secOfDay := now.Hour()*3600 + now.Minute()*60 + secOfMin

	var start, end int
	if tf == candle.Timeframe1m {
		start, end = 0, 60
	} else {
		start = secOfMin / interval * interval
		end = start + interval
	}

	timeLeft := end - secOfMin
	if timeLeft <= 0 {
		// Boundary rounding landed exactly on a round edge: treat it as
		// the start of a fresh round, never emit zero or negative.
		timeLeft = interval
	}

	return State{
		Timeframe:   tf,
		TimeLeft:    timeLeft,
		CanBet:      timeLeft > BetLockSeconds,
		RoundNumber: secOfDay / interval,
		RoundStart:  start,
		RoundEnd:    end,
	}
}

// RoundNumberAt returns the globally unique (within a day) round number
// for a timeframe at the given instant. Used to key trend history.
func RoundNumberAt(tf candle.Timeframe, at time.Time) int {
	at = at.UTC()
	secOfDay := at.Hour()*3600 + at.Minute()*60 + at.Second()
	return secOfDay / tf.Seconds()
}

// Tick computes the state of every betting timeframe, flagging rounds
// that rolled over since the previous tick.
func (t *Timer) Tick(now time.Time) map[candle.Timeframe]State {
	out := make(map[candle.Timeframe]State, len(candle.RoundTimeframes))
	for _, tf := range candle.RoundTimeframes {
		st := Compute(tf, now)
		if prev, ok := t.lastRound[tf]; ok && prev != st.RoundNumber {
			st.NewRound = true
		}
		t.lastRound[tf] = st.RoundNumber
		out[tf] = st
	}
	return out
}
