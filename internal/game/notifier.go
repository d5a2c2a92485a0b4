package game

import (
	"updown/internal/bet"
	"updown/internal/settle"
)

// Notifier receives game events for surfacing to the user (toasts,
// sounds). Implementations must not block the game loop.
type Notifier interface {
	BetPlaced(b bet.Bet)
	BetSettled(b bet.Bet, outcome settle.Outcome)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) BetPlaced(bet.Bet) {}

func (NopNotifier) BetSettled(bet.Bet, settle.Outcome) {}
