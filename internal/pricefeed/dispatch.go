package pricefeed

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Dispatcher parses raw hub messages and fans the normalized events out
// to subscribers. It filters on the configured symbol, drops malformed
// prices with a warning, and absorbs replayed candle events.
type Dispatcher struct {
	symbol string
	log    *zap.Logger
	events Events

	// Composite key of the last processed candle; reconnection replay
	// redelivers the same event back-to-back.
	lastCandleKey string
}

func NewDispatcher(symbol string, logger *zap.Logger, events Events) *Dispatcher {
	return &Dispatcher{
		symbol: symbol,
		log:    logger,
		events: events,
	}
}

// HandleRaw is the websocket client's message handler.
func (d *Dispatcher) HandleRaw(msg []byte) {
	var m hubMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		d.log.Warn("failed to parse hub message", zap.Error(err))
		return
	}

	switch m.Source {
	case "stream":
		d.handleStream(m.Data)
	case "candle":
		d.handleCandle(m.Data)
	default:
		// Subscription acks and other control frames.
	}
}

func (d *Dispatcher) handleStream(p hubPayload) {
	if p.Symbol != d.symbol {
		return
	}

	open, errOpen := parsePrice(p.OpenPrice)
	close, errClose := parsePrice(p.ClosePrice)
	if errOpen != nil || errClose != nil {
		d.log.Warn("dropping malformed price update",
			zap.String("open", p.OpenPrice),
			zap.String("close", p.ClosePrice),
		)
		return
	}

	if d.events.OnPriceUpdate != nil {
		d.events.OnPriceUpdate(PriceUpdate{
			Symbol: p.Symbol,
			Open:   open,
			Close:  close,
			Time:   time.Now(),
			Live:   true,
		})
	}
}

func (d *Dispatcher) handleCandle(p hubPayload) {
	if p.Symbol != d.symbol {
		return
	}

	key := candleKey(p)
	if key == d.lastCandleKey {
		d.log.Debug("dropping replayed candle event", zap.String("key", key))
		return
	}

	open, errOpen := parsePrice(p.OpenPrice)
	close, errClose := parsePrice(p.ClosePrice)
	if errOpen != nil || errClose != nil {
		d.log.Warn("dropping malformed candle event",
			zap.String("open", p.OpenPrice),
			zap.String("close", p.ClosePrice),
		)
		return
	}

	d.lastCandleKey = key

	ts, err := time.Parse(time.RFC3339, p.DateTime)
	if err != nil {
		ts = time.Now()
	}

	if d.events.OnCandleClosed != nil {
		d.events.OnCandleClosed(CandleClosed{
			Symbol: p.Symbol,
			Open:   open,
			Close:  close,
			Trend:  p.Trend,
			Time:   ts,
		})
	}
}

func candleKey(p hubPayload) string {
	return fmt.Sprintf("%s-%s-%s", p.DateTime, p.OpenPrice, p.ClosePrice)
}

// parsePrice normalizes a comma-formatted decimal string. NaN and
// non-numeric values are rejected rather than propagated.
func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite price: %s", s)
	}
	return v, nil
}
