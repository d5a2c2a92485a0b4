package storage

import "time"

// SettledBet is the persistence shape of a completed bet.
type SettledBet struct {
	BetID         string
	Pattern       string
	Direction     string
	Amount        float64
	Payout        float64
	Result        string // win | loss | tie
	StartPrice    float64
	FinalPrice    float64
	Insurance1    bool
	Insurance2    bool
	OrderGUID     string
	TransactionID string
	PlacedAt      time.Time
	SettledAt     time.Time
}

// RoundTrend is the persistence shape of one finished round's direction.
type RoundTrend struct {
	Timeframe   string
	RoundNumber int
	OpenPrice   float64
	ClosePrice  float64
	Trend       string // up | down | tie
	Timestamp   time.Time
}

// Store persists settlement and trend data. Implementations must make
// SaveTrend idempotent on (timeframe, round number): replays of the same
// round are absorbed, not duplicated.
type Store interface {
	SaveBet(bet SettledBet) error
	SaveTrend(trend RoundTrend) error
}
