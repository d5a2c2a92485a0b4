package game

import (
	"errors"
	"sync"
	"time"

	"updown/config"
	"updown/internal/bet"
	"updown/internal/candle"
	"updown/internal/ledger"
	"updown/internal/orders"
	"updown/internal/pricefeed"
	"updown/internal/round"
	"updown/internal/settle"
	"updown/internal/trend"
	"updown/pkg/storage"

	"go.uber.org/zap"
)

// ErrNoPrice rejects bets placed before any price has been observed.
var ErrNoPrice = errors.New("no price data available")

// MaxHistory caps the in-memory betting history.
const MaxHistory = 50

// HistoryEntry is one settled bet in the session's recent history.
type HistoryEntry struct {
	BetID     string        `json:"betId"`
	Pattern   string        `json:"pattern"`
	Direction bet.Direction `json:"direction"`
	Amount    float64       `json:"amount"`
	Payout    float64       `json:"payout"`
	Result    settle.Result `json:"result"`
	SettledAt time.Time     `json:"settledAt"`
}

// Session is the composition root of the game: it owns the price
// supervisor, the raw ledger, the round timers, the bet manager, the
// trend recorder and the order-service client, and drives them all from
// a single 1 Hz clock.
//
// Every tick reads ONE price snapshot from the ledger and feeds it to
// both the round timers and the bet checkpoints, so no two consumers
// ever see different prices within the same tick.
type Session struct {
	log   *zap.Logger
	cfg   *config.Config
	mode  Mode
	store storage.Store
	notif Notifier

	supervisor *pricefeed.Supervisor
	ledger     *ledger.Ledger
	timer      *round.Timer
	manager    *bet.Manager
	trends     *trend.Recorder
	ordersCli  *orders.Client

	mu            sync.Mutex
	orderState    orders.OrderState
	history       []HistoryEntry
	seenFirstLive bool
	stop          chan struct{}
	stopped       bool
}

func NewSession(cfg *config.Config, logger *zap.Logger, store storage.Store, notif Notifier) *Session {
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if notif == nil {
		notif = NopNotifier{}
	}

	mode := LookupMode(cfg.Orders.GameID)
	if cfg.Game.PayoutMultiplier > 0 {
		mode.Multiplier = cfg.Game.PayoutMultiplier
	}
	if p := settle.TiePolicy(cfg.Game.TiePolicy); p.IsValid() {
		mode.Tie = p
	}

	s := &Session{
		log:    logger,
		cfg:    cfg,
		mode:   mode,
		store:  store,
		notif:  notif,
		ledger: ledger.New(ledger.DefaultCapacity),
		timer:  round.NewTimer(),
		trends: trend.NewRecorder(logger),
		stop:   make(chan struct{}),
	}

	s.manager = bet.NewManager(bet.Config{
		InitialBalance:   cfg.Game.InitialBalance,
		InsuranceEnabled: mode.HasInsurance,
		Section1:         mode.Section1,
		Section2:         mode.Section2,
	}, logger)
	s.manager.SetOnComplete(s.handleCompletedBet)

	s.supervisor = pricefeed.NewSupervisor(cfg.PriceHub, logger, pricefeed.Events{
		OnPriceUpdate:  s.handlePriceUpdate,
		OnCandleClosed: s.handleCandleClosed,
	})

	if cfg.Orders.URL != "" {
		s.ordersCli = orders.NewClient(cfg.Orders, logger, orders.Handlers{
			OnOrderCreated:     s.handleOrderCreated,
			OnOrderUpdate:      s.handleOrderUpdate,
			OnOrderResult:      s.handleOrderResult,
			OnInsuranceCreated: s.handleInsuranceCreated,
		})
	}

	return s
}

// Start launches the price supervisor, the order-service connection and
// the session clock. Connection failures degrade; they never abort the
// session.
func (s *Session) Start() {
	s.supervisor.Start()

	if s.ordersCli != nil {
		go func() {
			if err := s.ordersCli.Connect(); err != nil {
				s.log.Warn("order service unavailable, bets stay local", zap.Error(err))
			}
		}()
	}

	go s.clock()
	s.log.Info("game session started",
		zap.Int("mode", s.mode.ID),
		zap.String("mode_name", s.mode.Name),
		zap.Float64("initial_balance", s.cfg.Game.InitialBalance),
	)
}

// clock drives all time-based progression at 1 Hz.
func (s *Session) clock() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// tick advances round timers and bet checkpoints with one consistent
// price snapshot.
func (s *Session) tick(now time.Time) {
	snapshot, ok := s.ledger.Latest()
	states := s.timer.Tick(now)

	if ok {
		s.manager.Tick(snapshot.Value, now)
	}

	for tf, st := range states {
		if st.NewRound {
			s.recordRoundTrend(tf, now)
		}
	}
}

// recordRoundTrend derives the just-finished round's candle from the raw
// ledger and records its direction. Replayed rollovers are absorbed by
// the recorder's round-number dedup.
func (s *Session) recordRoundTrend(tf candle.Timeframe, now time.Time) {
	interval := time.Duration(tf.Seconds()) * time.Second
	prev := now.Add(-interval)

	intervalMs := interval.Milliseconds()
	wantStart := prev.UnixMilli() / intervalMs * intervalMs

	candles := candle.Aggregate(s.ledger.Slice(0), tf)
	for _, c := range candles {
		if c.BucketStart.UnixMilli() != wantStart {
			continue
		}

		roundNum := round.RoundNumberAt(tf, prev)
		if !s.trends.Record(tf, roundNum, c.Open, c.Close, now) {
			return
		}

		if err := s.store.SaveTrend(storage.RoundTrend{
			Timeframe:   string(tf),
			RoundNumber: roundNum,
			OpenPrice:   c.Open,
			ClosePrice:  c.Close,
			Trend:       string(trendOf(c.Open, c.Close)),
			Timestamp:   now,
		}); err != nil {
			s.log.Error("trend persist failed", zap.String("timeframe", string(tf)), zap.Error(err))
		}
		return
	}
}

func trendOf(open, close float64) trend.Direction {
	switch {
	case close > open:
		return trend.Up
	case close < open:
		return trend.Down
	default:
		return trend.Tie
	}
}

// handlePriceUpdate appends feed prices to the ledger. The first real
// update after simulated data clears the ledger so synthesized prices
// never contaminate charts or settlements.
func (s *Session) handlePriceUpdate(u pricefeed.PriceUpdate) {
	if u.Live {
		s.mu.Lock()
		first := !s.seenFirstLive
		s.seenFirstLive = true
		s.mu.Unlock()

		if first {
			s.ledger.Reset()
			s.log.Info("live feed established, simulated prices discarded")
		}
	}

	s.ledger.Append(ledger.PricePoint{Value: u.Close, Time: u.Time})
}

// handleCandleClosed records a finished 1-minute candle from the feed.
// The recorder dedups against the rollover-derived entry for the same
// round.
func (s *Session) handleCandleClosed(c pricefeed.CandleClosed) {
	roundNum := round.RoundNumberAt(candle.Timeframe1m, c.Time)
	if !s.trends.Record(candle.Timeframe1m, roundNum, c.Open, c.Close, c.Time) {
		return
	}

	if err := s.store.SaveTrend(storage.RoundTrend{
		Timeframe:   string(candle.Timeframe1m),
		RoundNumber: roundNum,
		OpenPrice:   c.Open,
		ClosePrice:  c.Close,
		Trend:       string(trendOf(c.Open, c.Close)),
		Timestamp:   c.Time,
	}); err != nil {
		s.log.Error("trend persist failed", zap.Error(err))
	}
}

// PlaceBet opens a bet at the current price and, when the order service
// is connected, mirrors it to the backend.
func (s *Session) PlaceBet(direction bet.Direction, amount float64, pattern string) (bet.Bet, error) {
	snapshot, ok := s.ledger.Latest()
	if !ok {
		return bet.Bet{}, ErrNoPrice
	}

	now := time.Now().UTC()
	b, err := s.manager.PlaceBet(direction, amount, pattern, snapshot.Value, now)
	if err != nil {
		return bet.Bet{}, err
	}

	s.mu.Lock()
	s.orderState.Reset()
	s.mu.Unlock()

	if s.ordersCli != nil {
		s.ordersCli.CreateOrder(orders.CreateOrderRequest{
			MemberID:    s.cfg.Orders.MemberID,
			GameID:      s.mode.ID,
			BetNumber:   pattern,
			BetAmount:   amount,
			OrderDate:   now.Format(time.RFC3339),
			OrderPrice:  snapshot.Value,
			Symbol:      s.cfg.PriceHub.Symbol,
			DrawType:    s.mode.ID,
			InsuranceID: s.mode.ID,
		})
	}

	s.notif.BetPlaced(b)
	return b, nil
}

// PurchaseInsurance buys a section for the active bet. With no order
// service connected the purchase confirms locally in the same call.
func (s *Session) PurchaseInsurance(section int) (bet.Insurance, error) {
	ins, err := s.manager.PurchaseInsurance(section, time.Now().UTC())
	if err != nil {
		return bet.Insurance{}, err
	}

	if s.ordersCli == nil {
		s.manager.ConfirmInsurance(section, true)
		cur, _ := s.manager.Current()
		if section == 1 {
			return cur.Insurance1, nil
		}
		return cur.Insurance2, nil
	}

	cur, _ := s.manager.Current()
	sent := s.ordersCli.CreateInsurance(orders.CreateInsuranceRequest{
		MemberID:      s.cfg.Orders.MemberID,
		OrderGUID:     cur.OrderGUID,
		TransactionID: cur.TransactionID,
		Section:       section,
	})
	if !sent {
		// The request never reached the backend; resolve locally rather
		// than leaving the section pending with the cost debited.
		s.manager.ConfirmInsurance(section, true)
		cur, _ = s.manager.Current()
		if section == 1 {
			return cur.Insurance1, nil
		}
		return cur.Insurance2, nil
	}
	return ins, nil
}

// handleCompletedBet settles a finished bet: payout, history, storage
// and notification. Runs on the manager's resolve timer goroutine.
func (s *Session) handleCompletedBet(b bet.Bet) {
	outcome := settle.Settle(b, settle.Policy{
		Multiplier: s.mode.Multiplier,
		Tie:        s.mode.TiePolicyFor(b),
	})

	entry := HistoryEntry{
		BetID:     b.ID,
		Pattern:   b.Pattern,
		Direction: b.Direction,
		Amount:    b.Amount,
		Payout:    outcome.Payout,
		Result:    outcome.Result,
		SettledAt: time.Now().UTC(),
	}

	// History is keyed by bet ID; a replayed completion must not pay out
	// or record twice.
	s.mu.Lock()
	for _, h := range s.history {
		if h.BetID == entry.BetID {
			s.mu.Unlock()
			s.log.Debug("duplicate settlement ignored", zap.String("bet_id", b.ID))
			return
		}
	}
	s.history = append([]HistoryEntry{entry}, s.history...)
	if len(s.history) > MaxHistory {
		s.history = s.history[:MaxHistory]
	}
	s.mu.Unlock()

	s.manager.Credit(outcome.Payout)

	finalPrice := b.StartPrice
	if b.Price90 != nil {
		finalPrice = *b.Price90
	}
	if err := s.store.SaveBet(storage.SettledBet{
		BetID:         b.ID,
		Pattern:       b.Pattern,
		Direction:     string(b.Direction),
		Amount:        b.Amount,
		Payout:        outcome.Payout,
		Result:        string(outcome.Result),
		StartPrice:    b.StartPrice,
		FinalPrice:    finalPrice,
		Insurance1:    b.Insurance1.Purchased,
		Insurance2:    b.Insurance2.Purchased,
		OrderGUID:     b.OrderGUID,
		TransactionID: b.TransactionID,
		PlacedAt:      b.StartTime,
		SettledAt:     entry.SettledAt,
	}); err != nil {
		s.log.Error("bet persist failed", zap.String("bet_id", b.ID), zap.Error(err))
	}

	s.log.Info("bet settled",
		zap.String("bet_id", b.ID),
		zap.String("result", string(outcome.Result)),
		zap.Float64("payout", outcome.Payout),
	)
	s.notif.BetSettled(b, outcome)
}

func (s *Session) handleOrderCreated(ev orders.OrderCreated) {
	if !ev.IsSuccess {
		s.log.Warn("backend rejected order")
		return
	}
	s.manager.SetOrderRef(ev.OrderGUID, ev.TransactionID)
}

func (s *Session) handleOrderUpdate(ev orders.OrderUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderState.Apply(ev, s.log)
}

func (s *Session) handleOrderResult(ev orders.OrderResult) {
	s.log.Info("backend order result",
		zap.String("draw_result", ev.DrawResult),
		zap.Float64("win_lose_amount", ev.WinLoseAmount),
	)
}

func (s *Session) handleInsuranceCreated(ev orders.InsuranceCreated) {
	s.manager.ConfirmInsurance(ev.Section, ev.IsSuccess)
}

// Balance returns the current balance.
func (s *Session) Balance() float64 {
	return s.manager.Balance()
}

// Timers returns the round state of every betting timeframe at now.
func (s *Session) Timers(now time.Time) map[candle.Timeframe]round.State {
	out := make(map[candle.Timeframe]round.State, len(candle.RoundTimeframes))
	for _, tf := range candle.RoundTimeframes {
		out[tf] = round.Compute(tf, now)
	}
	return out
}

// CurrentBet returns a copy of the active bet, if any.
func (s *Session) CurrentBet() (bet.Bet, bool) {
	return s.manager.Current()
}

// BackendOrder returns a copy of the round results and payout text the
// order service has reported for the current bet.
func (s *Session) BackendOrder() orders.OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.orderState
	if s.orderState.Round1Price != nil {
		v := *s.orderState.Round1Price
		cp.Round1Price = &v
	}
	if s.orderState.Round2Price != nil {
		v := *s.orderState.Round2Price
		cp.Round2Price = &v
	}
	return cp
}

// PhaseCountdown reports seconds to the active bet's next checkpoint.
func (s *Session) PhaseCountdown(now time.Time) int {
	return s.manager.PhaseCountdown(now)
}

// Candles aggregates the raw ledger into the requested timeframe,
// returning at most n candles (all when n <= 0).
func (s *Session) Candles(tf candle.Timeframe, n int) []candle.Candle {
	return candle.Tail(candle.Aggregate(s.ledger.Slice(0), tf), n)
}

// TrendHistory returns recorded round outcomes, newest first.
func (s *Session) TrendHistory(tf candle.Timeframe) []trend.Entry {
	return s.trends.History(tf)
}

// History returns the recent settled bets, newest first.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]HistoryEntry, len(s.history))
	copy(cp, s.history)
	return cp
}

// FeedStatus reports the price connection state.
func (s *Session) FeedStatus() pricefeed.StatusInfo {
	return s.supervisor.Status()
}

// GameMode exposes the active mode parameters.
func (s *Session) GameMode() Mode {
	return s.mode
}

// Teardown stops the clock and tears every component down. Safe to call
// once; deferred bet resolution and status resets are cancelled.
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stop)
	s.mu.Unlock()

	s.manager.Teardown()
	s.supervisor.Teardown()
	if s.ordersCli != nil {
		s.ordersCli.Close()
	}
	s.log.Info("game session stopped")
}
