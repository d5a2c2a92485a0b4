package pricefeed

import "time"

// hubMessage is the envelope delivered by the price hub. Price values
// arrive as comma-formatted decimal strings ("113,245.50") and must be
// normalized before use.
type hubMessage struct {
	Source string     `json:"source"` // "stream" or "candle"
	Data   hubPayload `json:"data"`
}

type hubPayload struct {
	Symbol     string `json:"symbol"`
	OpenPrice  string `json:"openPrice"`
	ClosePrice string `json:"closePrice"`
	Trend      string `json:"trend"`    // candle messages only
	DateTime   string `json:"dateTime"` // ISO timestamp, candle messages only
}

// PriceUpdate is a normalized live (or simulated) price observation.
type PriceUpdate struct {
	Symbol string
	Open   float64
	Close  float64
	Time   time.Time
	Live   bool // false when produced by the fallback generator
}

// CandleClosed is a normalized finished-candle event from the hub.
type CandleClosed struct {
	Symbol string
	Open   float64
	Close  float64
	Trend  string // "up" or "down" as reported by the hub
	Time   time.Time
}

// Events are the downstream subscriber callbacks. Nil callbacks are
// skipped.
type Events struct {
	OnPriceUpdate  func(PriceUpdate)
	OnCandleClosed func(CandleClosed)
}
