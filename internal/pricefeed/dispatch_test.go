package pricefeed

import (
	"testing"

	"go.uber.org/zap"
)

// go test -v --run TestParsePrice
func TestParsePrice(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"113,245.50", 113245.50, false},
		{"65000", 65000, false},
		{"1,234,567.89", 1234567.89, false},
		{"", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"+Inf", 0, true},
	}

	for _, tc := range cases {
		got, err := parsePrice(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got %f", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %f, got %f", tc.in, tc.want, got)
		}
	}
}

// go test -v --run TestStreamDispatch
func TestStreamDispatch(t *testing.T) {
	var updates []PriceUpdate
	d := NewDispatcher("BTCUSDT", zap.NewNop(), Events{
		OnPriceUpdate: func(u PriceUpdate) { updates = append(updates, u) },
	})

	d.HandleRaw([]byte(`{"source":"stream","data":{"symbol":"BTCUSDT","openPrice":"65,000.00","closePrice":"65,120.50"}}`))

	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if updates[0].Open != 65000 || updates[0].Close != 65120.50 {
		t.Errorf("unexpected prices: %f / %f", updates[0].Open, updates[0].Close)
	}
	if !updates[0].Live {
		t.Error("hub updates must be flagged live")
	}
}

// go test -v --run TestSymbolFilter
func TestSymbolFilter(t *testing.T) {
	var updates []PriceUpdate
	d := NewDispatcher("BTCUSDT", zap.NewNop(), Events{
		OnPriceUpdate: func(u PriceUpdate) { updates = append(updates, u) },
	})

	d.HandleRaw([]byte(`{"source":"stream","data":{"symbol":"ETHUSDT","openPrice":"3,000","closePrice":"3,010"}}`))

	if len(updates) != 0 {
		t.Errorf("foreign symbols must be dropped, got %d updates", len(updates))
	}
}

// go test -v --run TestMalformedPriceDropped
func TestMalformedPriceDropped(t *testing.T) {
	var updates []PriceUpdate
	d := NewDispatcher("BTCUSDT", zap.NewNop(), Events{
		OnPriceUpdate: func(u PriceUpdate) { updates = append(updates, u) },
	})

	d.HandleRaw([]byte(`{"source":"stream","data":{"symbol":"BTCUSDT","openPrice":"NaN","closePrice":"65,000"}}`))
	d.HandleRaw([]byte(`{"source":"stream","data":{"symbol":"BTCUSDT","openPrice":"65,000","closePrice":""}}`))
	d.HandleRaw([]byte(`not json at all`))

	if len(updates) != 0 {
		t.Errorf("malformed updates must be dropped, got %d", len(updates))
	}
}

// go test -v --run TestCandleReplayDeduped
func TestCandleReplayDeduped(t *testing.T) {
	var candles []CandleClosed
	d := NewDispatcher("BTCUSDT", zap.NewNop(), Events{
		OnCandleClosed: func(c CandleClosed) { candles = append(candles, c) },
	})

	msg := []byte(`{"source":"candle","data":{"symbol":"BTCUSDT","openPrice":"65,000","closePrice":"65,200","trend":"up","dateTime":"2026-08-28T12:00:00Z"}}`)
	d.HandleRaw(msg)
	d.HandleRaw(msg) // reconnection replay

	if len(candles) != 1 {
		t.Fatalf("expected replayed candle deduped, got %d events", len(candles))
	}

	// A genuinely new candle still passes.
	d.HandleRaw([]byte(`{"source":"candle","data":{"symbol":"BTCUSDT","openPrice":"65,200","closePrice":"65,300","trend":"up","dateTime":"2026-08-28T12:01:00Z"}}`))
	if len(candles) != 2 {
		t.Fatalf("expected new candle accepted, got %d events", len(candles))
	}
	if candles[1].Open != 65200 || candles[1].Trend != "up" {
		t.Errorf("unexpected candle: %+v", candles[1])
	}
}

// go test -v --run TestControlFramesIgnored
func TestControlFramesIgnored(t *testing.T) {
	var updates []PriceUpdate
	d := NewDispatcher("BTCUSDT", zap.NewNop(), Events{
		OnPriceUpdate: func(u PriceUpdate) { updates = append(updates, u) },
	})

	d.HandleRaw([]byte(`{"source":"subscribed","data":{}}`))

	if len(updates) != 0 {
		t.Errorf("control frames must be ignored, got %d updates", len(updates))
	}
}
