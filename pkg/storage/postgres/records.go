package postgres

import "time"

// BetRecord represents a settled bet stored in the database.
type BetRecord struct {
	ID uint `gorm:"primaryKey"`

	BetID     string `gorm:"type:text;not null;uniqueIndex:idx_bet_id"`
	Pattern   string `gorm:"type:varchar(10);not null"`
	Direction string `gorm:"type:varchar(10);not null"`
	Result    string `gorm:"type:varchar(10);not null;index:idx_bet_result"`

	Amount float64 `gorm:"type:numeric;not null"`
	Payout float64 `gorm:"type:numeric;not null"`

	StartPrice float64 `gorm:"type:numeric;not null"`
	FinalPrice float64 `gorm:"type:numeric;not null"`

	Insurance1 bool `gorm:"not null"`
	Insurance2 bool `gorm:"not null"`

	OrderGUID     string `gorm:"type:text"`
	TransactionID string `gorm:"type:text"`

	PlacedAt  time.Time `gorm:"not null;index:idx_bet_placed_at"`
	SettledAt time.Time `gorm:"not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (BetRecord) TableName() string {
	return "bet_record"
}

// TrendRecord represents one finished round's direction.
type TrendRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Timeframe   string `gorm:"type:varchar(10);not null;index:idx_timeframe_round,unique"`
	RoundNumber int    `gorm:"not null;index:idx_timeframe_round,unique"`

	OpenPrice  float64 `gorm:"type:numeric;not null"`
	ClosePrice float64 `gorm:"type:numeric;not null"`
	Trend      string  `gorm:"type:varchar(10);not null"`

	Timestamp time.Time `gorm:"not null;index:idx_trend_timestamp"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (TrendRecord) TableName() string {
	return "trend_record"
}
