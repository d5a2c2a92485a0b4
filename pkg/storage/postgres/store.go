package postgres

import (
	"context"
	"time"

	"updown/pkg/storage"

	"gorm.io/gorm/clause"
)

// GameStore adapts PostgresClient to the storage.Store interface.
type GameStore struct {
	client *PostgresClient
}

func NewGameStore(client *PostgresClient) *GameStore {
	return &GameStore{client: client}
}

func (s *GameStore) SaveBet(b storage.SettledBet) error {
	record := &BetRecord{
		BetID:         b.BetID,
		Pattern:       b.Pattern,
		Direction:     b.Direction,
		Result:        b.Result,
		Amount:        b.Amount,
		Payout:        b.Payout,
		StartPrice:    b.StartPrice,
		FinalPrice:    b.FinalPrice,
		Insurance1:    b.Insurance1,
		Insurance2:    b.Insurance2,
		OrderGUID:     b.OrderGUID,
		TransactionID: b.TransactionID,
		PlacedAt:      b.PlacedAt,
		SettledAt:     b.SettledAt,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.client.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bet_id"}},
		DoNothing: true,
	}).Create(record).Error
}

// SaveTrend inserts one round's trend. Replays of the same
// (timeframe, round) pair are absorbed by the unique index.
func (s *GameStore) SaveTrend(t storage.RoundTrend) error {
	record := &TrendRecord{
		Timeframe:   t.Timeframe,
		RoundNumber: t.RoundNumber,
		OpenPrice:   t.OpenPrice,
		ClosePrice:  t.ClosePrice,
		Trend:       t.Trend,
		Timestamp:   t.Timestamp,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.client.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "timeframe"},
			{Name: "round_number"},
		},
		DoNothing: true,
	}).Create(record).Error
}

// RecentTrends returns the latest trends for a timeframe, newest first.
func (s *GameStore) RecentTrends(ctx context.Context, timeframe string, limit int) ([]TrendRecord, error) {
	var records []TrendRecord
	err := s.client.DB.WithContext(ctx).
		Where("timeframe = ?", timeframe).
		Order("round_number DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
