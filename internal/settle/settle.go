// Package settle computes the final result and payout of a completed
// bet. It is side-effect free: callers apply the returned payout to the
// balance and to history themselves.
package settle

import (
	"math"

	"updown/internal/bet"
)

// Result is the settled outcome of a bet.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultTie  Result = "tie"
)

// TiePolicy selects what a tie pays. Which policy applies is a game-mode
// configuration, never hardcoded at the call site.
type TiePolicy string

const (
	// TieRefund50 returns half the stake on a tie.
	TieRefund50 TiePolicy = "refund50"
	// TieLoss forfeits the stake on a tie.
	TieLoss TiePolicy = "loss"
)

func (p TiePolicy) IsValid() bool {
	return p == TieRefund50 || p == TieLoss
}

// Policy holds the payout rules for one game mode.
type Policy struct {
	// Multiplier applied to the stake on a win, e.g. 1.975 for a 97.5%
	// profit with a 2.5% house edge.
	Multiplier float64
	Tie        TiePolicy
}

// Outcome is the settlement verdict.
type Outcome struct {
	Result Result  `json:"result"`
	Payout float64 `json:"payout"`
}

// Settle maps a completed bet to its outcome. The win condition is the
// final-phase result matching the bet direction; the phase chain already
// encodes any insurance overrides from phases 1 and 2.
//
// Win payout is floor(amount * multiplier), then reduced by each
// purchased insurance section's deduction, applied sequentially in
// section order with the floor taken at every step:
//
//	100 @ 1.975            -> 197
//	with section 1 (30%)   -> floor(197 * 0.70) = 137
//	with both sections     -> floor(137 * 0.70) = 95
func Settle(b bet.Bet, p Policy) Outcome {
	final := b.Phase90Result

	switch {
	case final == bet.PhaseTie:
		if p.Tie == TieRefund50 {
			return Outcome{Result: ResultTie, Payout: b.Amount * 0.5}
		}
		return Outcome{Result: ResultTie, Payout: 0}

	case string(final) == string(b.Direction):
		payout := math.Floor(b.Amount * p.Multiplier)
		if b.Insurance1.Purchased {
			payout = math.Floor(payout * (1 - b.Insurance1.DeductionPercent))
		}
		if b.Insurance2.Purchased {
			payout = math.Floor(payout * (1 - b.Insurance2.DeductionPercent))
		}
		return Outcome{Result: ResultWin, Payout: payout}

	default:
		return Outcome{Result: ResultLoss, Payout: 0}
	}
}
