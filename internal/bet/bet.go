package bet

import "time"

// Direction is the side of a price-prediction bet.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func (d Direction) IsValid() bool {
	return d == DirectionUp || d == DirectionDown
}

// PhaseResult is the directional outcome captured at a checkpoint. The
// empty string means the checkpoint has not happened yet.
type PhaseResult string

const (
	PhaseUp   PhaseResult = "up"
	PhaseDown PhaseResult = "down"
	PhaseTie  PhaseResult = "tie"
)

// Status is the lifecycle state of the session's bet slot.
type Status string

const (
	StatusReady     Status = "ready"     // no bet placed
	StatusActive    Status = "active"    // stake debited, checkpoints running
	StatusResolving Status = "resolving" // 90s checkpoint hit, settlement pending
	StatusCompleted Status = "completed" // settled, about to reset to ready
)

// Insurance is one purchasable section attached to a bet. Purchased is
// set only once the purchase has been confirmed (by the order backend,
// or immediately by the engine when running without one); checkpoint
// overrides and section-2 ordering checks read confirmed state, never an
// optimistic in-flight purchase.
type Insurance struct {
	Purchased        bool    `json:"purchased"`
	Pending          bool    `json:"pending"`
	DeductionPercent float64 `json:"deductionPercent"`
	Cost             float64 `json:"cost"`
}

// Bet is the single bet a session may hold. Checkpoint prices are
// pointers so "not yet captured" is distinguishable from a price of 0.
type Bet struct {
	ID         string    `json:"id"`
	Pattern    string    `json:"pattern"` // trend pattern code sent to the order service, e.g. "AU"
	Direction  Direction `json:"direction"`
	Amount     float64   `json:"amount"`
	StartTime  time.Time `json:"startTime"`
	StartPrice float64   `json:"startPrice"`
	EndTime    time.Time `json:"endTime"`
	Status     Status    `json:"status"`

	Phase30Result PhaseResult `json:"phase30sResult,omitempty"`
	Phase60Result PhaseResult `json:"phase60sResult,omitempty"`
	Phase90Result PhaseResult `json:"phase90sResult,omitempty"`

	Price30 *float64 `json:"price30s,omitempty"`
	Price60 *float64 `json:"price60s,omitempty"`
	Price90 *float64 `json:"price90s,omitempty"`

	Insurance1 Insurance `json:"insuranceSection1"`
	Insurance2 Insurance `json:"insuranceSection2"`

	// Backend correlation, filled in asynchronously by the order service.
	OrderGUID     string `json:"orderGuid,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

// phaseResult maps a price move against its reference to a directional
// outcome. Equal prices are a tie.
func phaseResult(current, reference float64) PhaseResult {
	switch {
	case current > reference:
		return PhaseUp
	case current < reference:
		return PhaseDown
	default:
		return PhaseTie
	}
}
