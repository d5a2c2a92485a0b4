package round

import (
	"testing"
	"time"

	"updown/internal/candle"
)

// go test -v --run TestComputeMidRound
func TestComputeMidRound(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 7, 0, time.UTC)

	st := Compute(candle.Timeframe15s, now)
	if st.RoundStart != 0 || st.RoundEnd != 15 {
		t.Errorf("unexpected boundaries: start=%d end=%d", st.RoundStart, st.RoundEnd)
	}
	if st.TimeLeft != 8 {
		t.Errorf("expected timeLeft 8, got %d", st.TimeLeft)
	}
	if !st.CanBet {
		t.Error("expected canBet with 8s left")
	}
}

// go test -v --run TestBetLockWindow
func TestBetLockWindow(t *testing.T) {
	// canBet == timeLeft > BetLockSeconds must hold at every second.
	for sec := 0; sec < 60; sec++ {
		now := time.Date(2026, 8, 28, 12, 0, sec, 0, time.UTC)
		for _, tf := range candle.RoundTimeframes {
			st := Compute(tf, now)
			if st.CanBet != (st.TimeLeft > BetLockSeconds) {
				t.Errorf("%s at :%02d: canBet=%v timeLeft=%d", tf, sec, st.CanBet, st.TimeLeft)
			}
		}
	}
}

// go test -v --run TestTimeLeftRange
func TestTimeLeftRange(t *testing.T) {
	// timeLeft is always in [1, interval]; never zero or negative.
	for sec := 0; sec < 60; sec++ {
		now := time.Date(2026, 8, 28, 12, 0, sec, 0, time.UTC)
		for _, tf := range candle.RoundTimeframes {
			st := Compute(tf, now)
			if st.TimeLeft < 1 || st.TimeLeft > tf.Seconds() {
				t.Errorf("%s at :%02d: timeLeft %d out of range", tf, sec, st.TimeLeft)
			}
		}
	}
}

// go test -v --run TestOneMinuteNeverSubdivides
func TestOneMinuteNeverSubdivides(t *testing.T) {
	for sec := 0; sec < 60; sec++ {
		now := time.Date(2026, 8, 28, 12, 0, sec, 0, time.UTC)
		st := Compute(candle.Timeframe1m, now)
		if st.RoundStart != 0 || st.RoundEnd != 60 {
			t.Fatalf("1m round must span the full minute, got start=%d end=%d at :%02d",
				st.RoundStart, st.RoundEnd, sec)
		}
	}
}

// go test -v --run TestRoundNumberMonotonic
func TestRoundNumberMonotonic(t *testing.T) {
	base := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	prev := -1
	for sec := 0; sec < 120; sec++ {
		n := RoundNumberAt(candle.Timeframe15s, base.Add(time.Duration(sec)*time.Second))
		if n < prev {
			t.Fatalf("round number decreased at second %d: %d < %d", sec, n, prev)
		}
		prev = n
	}

	// 15s rounds: second 0 is round 0, second 15 is round 1.
	if n := RoundNumberAt(candle.Timeframe15s, base.Add(15*time.Second)); n != 1 {
		t.Errorf("expected round 1 at :15, got %d", n)
	}
}

// go test -v --run TestTickFlagsRollover
func TestTickFlagsRollover(t *testing.T) {
	timer := NewTimer()

	t1 := time.Date(2026, 8, 28, 12, 0, 14, 0, time.UTC)
	first := timer.Tick(t1)
	if first[candle.Timeframe15s].NewRound {
		t.Error("first tick must not flag a new round")
	}

	t2 := time.Date(2026, 8, 28, 12, 0, 15, 0, time.UTC)
	second := timer.Tick(t2)
	if !second[candle.Timeframe15s].NewRound {
		t.Error("expected 15s rollover at :15")
	}
	if second[candle.Timeframe30s].NewRound {
		t.Error("30s round must not roll over at :15")
	}
	if second[candle.Timeframe1m].NewRound {
		t.Error("1m round must not roll over at :15")
	}

	// Same round again: no flag.
	t3 := time.Date(2026, 8, 28, 12, 0, 16, 0, time.UTC)
	third := timer.Tick(t3)
	if third[candle.Timeframe15s].NewRound {
		t.Error("no rollover expected within the same round")
	}
}
