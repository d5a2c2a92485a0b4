package game

import (
	"updown/internal/bet"
	"updown/internal/settle"
)

// Mode bundles the payout and insurance parameters of one game variant.
// All tie and insurance behavior is looked up here, never hardcoded at
// the call site.
type Mode struct {
	ID           int
	Name         string
	HasInsurance bool
	// TiePolicy without insurance purchased.
	Tie settle.TiePolicy
	// TiePolicyInsured applies when at least one section was bought.
	TieInsured settle.TiePolicy
	Multiplier float64
	Section1   bet.InsuranceOption
	Section2   bet.InsuranceOption
}

const (
	ModeInsurance = 6
	ModeBattle    = 7
	ModeExtreme   = 8
)

var modes = map[int]Mode{
	ModeInsurance: {
		ID:           ModeInsurance,
		Name:         "insurance",
		HasInsurance: true,
		// A bare tie forfeits; buying insurance is what earns the
		// half-stake refund.
		Tie:        settle.TieLoss,
		TieInsured: settle.TieRefund50,
		Multiplier: 1.975,
		Section1:   bet.InsuranceOption{CostPercent: 0.20, DeductionPercent: 0.30},
		Section2:   bet.InsuranceOption{CostPercent: 0.30, DeductionPercent: 0.30},
	},
	ModeBattle: {
		ID:         ModeBattle,
		Name:       "battle",
		Tie:        settle.TieLoss,
		TieInsured: settle.TieLoss,
		Multiplier: 1.975,
	},
	ModeExtreme: {
		ID:         ModeExtreme,
		Name:       "extreme",
		Tie:        settle.TieLoss,
		TieInsured: settle.TieLoss,
		Multiplier: 1.975,
	},
}

// LookupMode returns the mode for an ID, falling back to the insurance
// mode for unknown IDs.
func LookupMode(id int) Mode {
	if m, ok := modes[id]; ok {
		return m
	}
	return modes[ModeInsurance]
}

// TiePolicyFor picks the effective tie policy for a settled bet: buying
// insurance switches the tie treatment in modes where they differ.
func (m Mode) TiePolicyFor(b bet.Bet) settle.TiePolicy {
	if b.Insurance1.Purchased || b.Insurance2.Purchased {
		return m.TieInsured
	}
	return m.Tie
}
