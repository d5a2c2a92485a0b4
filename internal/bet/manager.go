package bet

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Checkpoint offsets measured from the bet's start, in whole seconds of
// wall-clock elapsed time (never tick counts, which drift).
const (
	phase1Seconds = 30
	phase2Seconds = 60
	phase3Seconds = 90
)

// DefaultResolveDelay is how long after the 90s checkpoint the completed
// bet is handed to settlement. The window exists so the UI can show a
// brief "resolving" state.
const DefaultResolveDelay = 500 * time.Millisecond

// InsuranceOption prices one purchasable section: its cost as a fraction
// of the stake and the payout deduction it causes.
type InsuranceOption struct {
	CostPercent      float64
	DeductionPercent float64
}

// Config holds the manager's game-mode parameters.
type Config struct {
	InitialBalance   float64
	InsuranceEnabled bool
	Section1         InsuranceOption
	Section2         InsuranceOption
	ResolveDelay     time.Duration
}

// Manager owns the session's single bet slot and its balance. All Bet
// mutation goes through the manager; settlement only ever reads a
// completed copy.
//
// Lifecycle: ready → active → resolving → completed → ready. Placing a
// bet while one is active is rejected, never queued.
type Manager struct {
	mu  sync.Mutex
	log *zap.Logger
	cfg Config

	balance float64
	cur     Bet

	resolveTimer *time.Timer
	onComplete   func(Bet)
	tornDown     bool
}

func NewManager(cfg Config, logger *zap.Logger) *Manager {
	if cfg.ResolveDelay <= 0 {
		cfg.ResolveDelay = DefaultResolveDelay
	}
	return &Manager{
		log:     logger,
		cfg:     cfg,
		balance: cfg.InitialBalance,
		cur:     Bet{Status: StatusReady},
	}
}

// SetOnComplete registers the settlement handoff. The callback receives
// a copy of the completed bet after the resolve delay; the caller applies
// payout and history updates itself.
func (m *Manager) SetOnComplete(fn func(Bet)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = fn
}

// PlaceBet validates and activates a new bet, debiting the stake
// atomically with the ready→active transition.
func (m *Manager) PlaceBet(direction Direction, amount float64, pattern string, price float64, now time.Time) (Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !direction.IsValid() {
		return Bet{}, ErrInvalidDirection
	}
	if amount <= 0 {
		return Bet{}, ErrInvalidAmount
	}
	if amount > m.balance {
		return Bet{}, ErrInsufficientFunds
	}
	if m.cur.Status != StatusReady {
		return Bet{}, ErrBetAlreadyActive
	}

	m.balance -= amount
	m.cur = Bet{
		ID:         uuid.NewString(),
		Pattern:    pattern,
		Direction:  direction,
		Amount:     amount,
		StartTime:  now,
		StartPrice: price,
		Status:     StatusActive,
	}

	m.log.Info("bet placed",
		zap.String("id", m.cur.ID),
		zap.String("direction", string(direction)),
		zap.Float64("amount", amount),
		zap.Float64("start_price", price),
	)

	return m.snapshotLocked(), nil
}

// Tick advances the active bet's checkpoints. Called once per second with
// the tick's consistent price snapshot. Elapsed time is measured from
// StartTime, and a captured checkpoint price is never recomputed, so a
// double invocation within the same second is harmless.
func (m *Manager) Tick(price float64, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Status != StatusActive {
		return
	}

	elapsed := int(now.Sub(m.cur.StartTime) / time.Second)

	if elapsed >= phase1Seconds && m.cur.Price30 == nil {
		v := price
		m.cur.Price30 = &v
		res := phaseResult(price, m.cur.StartPrice)
		if m.cur.Insurance1.Purchased {
			// Section 1 insurance forces the user's direction regardless
			// of the market outcome.
			res = PhaseResult(m.cur.Direction)
		}
		m.cur.Phase30Result = res
		m.log.Debug("checkpoint captured",
			zap.Int("phase", 1), zap.Float64("price", price), zap.String("result", string(res)))
	}

	if elapsed >= phase2Seconds && m.cur.Price60 == nil && m.cur.Price30 != nil {
		v := price
		m.cur.Price60 = &v
		res := phaseResult(price, *m.cur.Price30)
		if m.cur.Insurance2.Purchased {
			res = PhaseResult(m.cur.Direction)
		}
		m.cur.Phase60Result = res
		m.log.Debug("checkpoint captured",
			zap.Int("phase", 2), zap.Float64("price", price), zap.String("result", string(res)))
	}

	if elapsed >= phase3Seconds && m.cur.Price90 == nil && m.cur.Price60 != nil {
		v := price
		m.cur.Price90 = &v
		// The final phase has no insurance override: only two sections
		// are modeled.
		m.cur.Phase90Result = phaseResult(price, *m.cur.Price60)
		m.cur.EndTime = now
		m.cur.Status = StatusResolving
		m.log.Debug("checkpoint captured",
			zap.Int("phase", 3), zap.Float64("price", price), zap.String("result", string(m.cur.Phase90Result)))

		m.scheduleResolveLocked()
	}
}

// scheduleResolveLocked arms the cancellable resolve timer. Teardown
// stops it so no callback fires against a torn-down session.
func (m *Manager) scheduleResolveLocked() {
	if m.tornDown {
		return
	}
	m.resolveTimer = time.AfterFunc(m.cfg.ResolveDelay, m.resolve)
}

func (m *Manager) resolve() {
	m.mu.Lock()
	if m.tornDown || m.cur.Status != StatusResolving {
		m.mu.Unlock()
		return
	}
	m.cur.Status = StatusCompleted
	completed := m.snapshotLocked()
	m.cur = Bet{Status: StatusReady} // fresh slot before handing off
	fn := m.onComplete
	m.mu.Unlock()

	if fn != nil {
		fn(completed)
	}
}

// PurchaseInsurance debits the section's cost and marks it pending. The
// section becomes effective only when ConfirmInsurance reports success;
// ordering (section 2 after section 1) is checked against confirmed
// state, not the optimistic pending flag, so a client cannot race its
// own unconfirmed section-1 purchase.
func (m *Manager) PurchaseInsurance(section int, now time.Time) (Insurance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.InsuranceEnabled {
		return Insurance{}, ErrInsuranceDisabled
	}
	if m.cur.Status != StatusActive {
		return Insurance{}, ErrNoActiveBet
	}

	var slot *Insurance
	var opt InsuranceOption
	switch section {
	case 1:
		slot, opt = &m.cur.Insurance1, m.cfg.Section1
	case 2:
		if !m.cur.Insurance1.Purchased {
			return Insurance{}, ErrInsuranceOrdering
		}
		slot, opt = &m.cur.Insurance2, m.cfg.Section2
	default:
		return Insurance{}, ErrInvalidSection
	}

	if slot.Purchased || slot.Pending {
		return Insurance{}, ErrInsurancePurchased
	}

	cost := m.cur.Amount * opt.CostPercent
	if cost > m.balance {
		return Insurance{}, ErrInsufficientFunds
	}

	m.balance -= cost
	*slot = Insurance{
		Pending:          true,
		Cost:             cost,
		DeductionPercent: opt.DeductionPercent,
	}

	m.log.Info("insurance purchase requested",
		zap.Int("section", section), zap.Float64("cost", cost))

	return *slot, nil
}

// ConfirmInsurance finalizes a pending purchase. A failed confirmation
// refunds the cost. Confirming a non-pending section is a no-op so a
// replayed confirmation event cannot double-apply.
func (m *Manager) ConfirmInsurance(section int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var slot *Insurance
	switch section {
	case 1:
		slot = &m.cur.Insurance1
	case 2:
		slot = &m.cur.Insurance2
	default:
		return
	}

	if !slot.Pending {
		m.log.Debug("ignoring insurance confirmation for non-pending section",
			zap.Int("section", section))
		return
	}

	slot.Pending = false
	if ok {
		slot.Purchased = true
		m.log.Info("insurance confirmed", zap.Int("section", section))
		return
	}

	m.balance += slot.Cost
	m.log.Warn("insurance purchase rejected, cost refunded",
		zap.Int("section", section), zap.Float64("refund", slot.Cost))
	*slot = Insurance{}
}

// SetOrderRef attaches the backend correlation IDs once OrderCreated
// arrives.
func (m *Manager) SetOrderRef(orderGUID, transactionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.Status == StatusActive {
		m.cur.OrderGUID = orderGUID
		m.cur.TransactionID = transactionID
	}
}

// Credit applies a settlement payout (or tie refund) to the balance.
func (m *Manager) Credit(amount float64) {
	if amount <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance += amount
}

func (m *Manager) Balance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance
}

// Current returns a copy of the bet slot; ok is false when no bet is
// placed.
func (m *Manager) Current() (Bet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.Status == StatusReady {
		return Bet{}, false
	}
	return m.snapshotLocked(), true
}

// PhaseCountdown reports seconds remaining until the next checkpoint of
// the active bet (30/60/90 battle clock), or 0 when idle.
func (m *Manager) PhaseCountdown(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Status != StatusActive {
		return 0
	}
	elapsed := int(now.Sub(m.cur.StartTime) / time.Second)
	for _, boundary := range []int{phase1Seconds, phase2Seconds, phase3Seconds} {
		if elapsed < boundary {
			return boundary - elapsed
		}
	}
	return 0
}

// Teardown cancels any pending deferred resolution. No callback fires
// after Teardown returns.
func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tornDown = true
	if m.resolveTimer != nil {
		m.resolveTimer.Stop()
		m.resolveTimer = nil
	}
}

// snapshotLocked deep-copies the current bet so callers never alias the
// manager's checkpoint pointers.
func (m *Manager) snapshotLocked() Bet {
	cp := m.cur
	cp.Price30 = copyFloat(m.cur.Price30)
	cp.Price60 = copyFloat(m.cur.Price60)
	cp.Price90 = copyFloat(m.cur.Price90)
	return cp
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
