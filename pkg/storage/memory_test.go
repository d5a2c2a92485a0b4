package storage

import (
	"testing"
	"time"
)

// go test -v --run TestSaveAndRetrieveBet
func TestSaveAndRetrieveBet(t *testing.T) {
	store := NewMemoryStore()

	store.SaveBet(SettledBet{
		BetID:     "b-1",
		Direction: "up",
		Amount:    100,
		Payout:    197,
		Result:    "win",
		SettledAt: time.Now(),
	})

	bets := store.GetBets()
	t.Log("Stored bets: ", bets)

	if len(bets) != 1 {
		t.Fatalf("expected 1 bet, got %d", len(bets))
	}
	if bets[0].BetID != "b-1" || bets[0].Payout != 197 {
		t.Errorf("unexpected bet: %+v", bets[0])
	}
}

// go test -v --run TestSaveTrendIdempotent
func TestSaveTrendIdempotent(t *testing.T) {
	store := NewMemoryStore()

	trend := RoundTrend{
		Timeframe:   "15s",
		RoundNumber: 42,
		OpenPrice:   65000,
		ClosePrice:  65100,
		Trend:       "up",
		Timestamp:   time.Now(),
	}

	if err := store.SaveTrend(trend); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SaveTrend(trend); err != nil {
		t.Fatalf("replay must not error: %v", err)
	}

	if store.TrendCount() != 1 {
		t.Errorf("expected 1 trend after replay, got %d", store.TrendCount())
	}

	// Same round on another timeframe is distinct.
	other := trend
	other.Timeframe = "30s"
	store.SaveTrend(other)
	if store.TrendCount() != 2 {
		t.Errorf("expected 2 trends, got %d", store.TrendCount())
	}
}
