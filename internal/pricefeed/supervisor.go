package pricefeed

import (
	"sync"
	"time"

	"updown/config"

	"go.uber.org/zap"
)

// Status is the connection state surfaced to the UI layer. Connection
// errors are never propagated to callers; they only move this status.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusFallback     Status = "fallback"
	StatusDisconnected Status = "disconnected"
	StatusNoData       Status = "nodata" // no live feed and no fallback: degraded, not crashed
)

// StatusInfo pairs the status with its user-visible message.
type StatusInfo struct {
	Status        Status `json:"status"`
	Message       string `json:"message"`
	UsingFallback bool   `json:"usingFallback"`
}

// statusResetDelay clears the transient "connected" banner message a
// moment after switchback from fallback.
const statusResetDelay = 2 * time.Second

// Supervisor wraps the hub client and the fallback generator, owning the
// switchover and switchback policy:
//
//   - initial connect failures beyond the retry budget start fallback;
//   - a connection loss after establishment starts fallback while the
//     client reconnects in the background;
//   - the first real price update stops fallback in the same tick.
//
// Round progression never stops: the session keeps consuming whichever
// source is live.
type Supervisor struct {
	log      *zap.Logger
	client   *Client
	fallback *Fallback
	events   Events

	mu         sync.Mutex
	status     StatusInfo
	resetTimer *time.Timer
	tornDown   bool
}

func NewSupervisor(cfg config.PriceHubConfig, logger *zap.Logger, events Events) *Supervisor {
	s := &Supervisor{
		log:    logger,
		events: events,
		status: StatusInfo{Status: StatusConnecting, Message: "Catching the Bitcoin stream..."},
	}

	s.client = NewClient(cfg, logger)
	s.client.SetMessageHandler(NewDispatcher(cfg.Symbol, logger, Events{
		OnPriceUpdate:  s.handleLiveUpdate,
		OnCandleClosed: s.handleCandle,
	}).HandleRaw)
	s.client.SetStateHandlers(s.handleUp, s.handleDown)

	s.fallback = NewFallback(cfg.Symbol, s.handleFallbackUpdate, logger)

	return s
}

// Start connects in the background; it never blocks the caller and never
// returns an error. Total failure degrades to fallback or, failing
// that, to the nodata status.
func (s *Supervisor) Start() {
	go func() {
		s.setStatus(StatusConnecting, "Catching the Bitcoin stream...", false)

		if err := s.client.Connect(); err != nil {
			s.log.Warn("live feed unavailable, switching to fallback", zap.Error(err))
			s.startFallback()
			return
		}

		s.setStatus(StatusConnected, "Connected! Let's ride these waves!", false)
		s.client.Listen()
	}()
}

// Status returns the current connection status snapshot.
func (s *Supervisor) Status() StatusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Teardown stops both sources and cancels any pending deferred status
// reset. No event fires after Teardown returns.
func (s *Supervisor) Teardown() {
	s.mu.Lock()
	s.tornDown = true
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.mu.Unlock()

	s.client.Close()
	s.fallback.Stop()
}

// handleLiveUpdate receives real feed updates. Arrival of live data
// immediately and idempotently stops the fallback generator.
func (s *Supervisor) handleLiveUpdate(u PriceUpdate) {
	if s.isTornDown() {
		return
	}

	if s.fallback.Running() {
		s.fallback.Stop()
		s.setStatus(StatusConnected, "Connected! Let's ride these waves!", false)
		s.scheduleStatusReset()
	}

	if s.events.OnPriceUpdate != nil {
		s.events.OnPriceUpdate(u)
	}
}

func (s *Supervisor) handleFallbackUpdate(u PriceUpdate) {
	if s.isTornDown() {
		return
	}
	if s.events.OnPriceUpdate != nil {
		s.events.OnPriceUpdate(u)
	}
}

// handleCandle forwards candle events; fallback never produces them.
func (s *Supervisor) handleCandle(c CandleClosed) {
	if s.isTornDown() {
		return
	}
	if s.events.OnCandleClosed != nil {
		s.events.OnCandleClosed(c)
	}
}

func (s *Supervisor) handleUp() {
	s.setStatus(StatusConnected, "Connected! Let's ride these waves!", false)
}

func (s *Supervisor) handleDown(err error) {
	s.setStatus(StatusDisconnected, "Connection lost", false)
	// Keep prices flowing while the client reconnects; the next real
	// update switches back.
	s.startFallback()
}

func (s *Supervisor) startFallback() {
	if s.isTornDown() {
		return
	}
	if s.fallback == nil {
		s.setStatus(StatusNoData, "No price data available", false)
		return
	}
	s.fallback.Start()
	s.setStatus(StatusFallback, "Using simulated data", true)
}

// scheduleStatusReset clears the transient banner message after a short
// delay. The timer is cancellable so teardown never races it.
func (s *Supervisor) scheduleStatusReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return
	}
	if s.resetTimer != nil {
		s.resetTimer.Stop()
	}
	s.resetTimer = time.AfterFunc(statusResetDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.tornDown {
			return
		}
		s.status.Message = ""
	})
}

func (s *Supervisor) setStatus(st Status, msg string, usingFallback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return
	}
	s.status = StatusInfo{Status: st, Message: msg, UsingFallback: usingFallback}
}

func (s *Supervisor) isTornDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tornDown
}
