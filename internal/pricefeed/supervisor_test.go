package pricefeed

import (
	"testing"
	"time"

	"updown/config"

	"go.uber.org/zap"
)

func testSupervisor(updates *[]PriceUpdate) *Supervisor {
	cfg := config.PriceHubConfig{
		URL:         "ws://localhost:0/hub",
		Symbol:      "BTCUSDT",
		DialTimeout: time.Second,
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
	}
	return NewSupervisor(cfg, zap.NewNop(), Events{
		OnPriceUpdate: func(u PriceUpdate) {
			if updates != nil {
				*updates = append(*updates, u)
			}
		},
	})
}

// go test -v --run TestFallbackSwitchover
func TestFallbackSwitchover(t *testing.T) {
	s := testSupervisor(nil)
	defer s.Teardown()

	s.startFallback()

	if !s.fallback.Running() {
		t.Fatal("expected fallback running after switchover")
	}
	st := s.Status()
	if st.Status != StatusFallback || !st.UsingFallback {
		t.Fatalf("expected fallback status, got %+v", st)
	}
}

// go test -v --run TestLiveUpdateStopsFallback
func TestLiveUpdateStopsFallback(t *testing.T) {
	var updates []PriceUpdate
	s := testSupervisor(&updates)
	defer s.Teardown()

	s.startFallback()
	if !s.fallback.Running() {
		t.Fatal("expected fallback running")
	}

	// The first real update must stop the generator before it is
	// forwarded, so live and simulated prices never interleave.
	s.handleLiveUpdate(PriceUpdate{Symbol: "BTCUSDT", Close: 65000, Time: time.Now(), Live: true})

	if s.fallback.Running() {
		t.Fatal("fallback still running after a live update")
	}
	st := s.Status()
	if st.UsingFallback {
		t.Errorf("status still flags fallback: %+v", st)
	}
	if st.Status != StatusConnected {
		t.Errorf("expected connected status, got %s", st.Status)
	}

	if len(updates) != 1 || !updates[0].Live {
		t.Fatalf("expected the live update forwarded, got %v", updates)
	}
}

// go test -v --run TestConnectionLossStartsFallback
func TestConnectionLossStartsFallback(t *testing.T) {
	s := testSupervisor(nil)
	defer s.Teardown()

	s.handleUp()
	if st := s.Status(); st.Status != StatusConnected {
		t.Fatalf("expected connected, got %s", st.Status)
	}

	s.handleDown(nil)

	if !s.fallback.Running() {
		t.Fatal("connection loss must start fallback")
	}
	if st := s.Status(); st.Status != StatusFallback || !st.UsingFallback {
		t.Errorf("expected fallback status after loss, got %+v", st)
	}
}

// go test -v --run TestTeardownStopsEverything
func TestTeardownStopsEverything(t *testing.T) {
	var updates []PriceUpdate
	s := testSupervisor(&updates)

	s.startFallback()
	s.Teardown()

	if s.fallback.Running() {
		t.Fatal("fallback still running after teardown")
	}

	// No event may fire after teardown.
	s.handleLiveUpdate(PriceUpdate{Symbol: "BTCUSDT", Close: 65000, Live: true})
	if len(updates) != 0 {
		t.Errorf("update forwarded after teardown: %v", updates)
	}

	// Status is frozen; restarting fallback is refused.
	s.startFallback()
	if s.fallback.Running() {
		t.Error("fallback restarted after teardown")
	}
}
