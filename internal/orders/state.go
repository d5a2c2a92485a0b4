package orders

import (
	"go.uber.org/zap"
)

// OrderState accumulates OrderUpdate deliveries for the active order.
// The backend may deliver updates out of order or more than once; Apply
// takes only non-null fields and never overwrites a field that is
// already set, so replays are absorbed silently.
type OrderState struct {
	Round1Result      string   `json:"round1Result,omitempty"`
	Round2Result      string   `json:"round2Result,omitempty"`
	Round3Result      string   `json:"round3Result,omitempty"`
	Round1Price       *float64 `json:"round1Price,omitempty"`
	Round2Price       *float64 `json:"round2Price,omitempty"`
	InsuranceSection1 bool     `json:"insuranceSection1"`
	InsuranceSection2 bool     `json:"insuranceSection2"`
	PayoutText        string   `json:"payoutText,omitempty"`
}

// Apply merges an update into the state and reports whether anything
// actually changed. A fully-duplicate update returns false.
func (s *OrderState) Apply(u OrderUpdate, log *zap.Logger) bool {
	changed := false

	if u.Round1Result != nil && s.Round1Result == "" {
		s.Round1Result = *u.Round1Result
		changed = true
	}
	if u.Round2Result != nil && s.Round2Result == "" {
		s.Round2Result = *u.Round2Result
		changed = true
	}
	if u.Round3Result != nil && s.Round3Result == "" {
		s.Round3Result = *u.Round3Result
		changed = true
	}
	if u.Round1Price != nil && s.Round1Price == nil {
		v := *u.Round1Price
		s.Round1Price = &v
		changed = true
	}
	if u.Round2Price != nil && s.Round2Price == nil {
		v := *u.Round2Price
		s.Round2Price = &v
		changed = true
	}
	if u.InsuranceSection1 != nil && !s.InsuranceSection1 {
		s.InsuranceSection1 = *u.InsuranceSection1
		changed = changed || s.InsuranceSection1
	}
	if u.InsuranceSection2 != nil && !s.InsuranceSection2 {
		s.InsuranceSection2 = *u.InsuranceSection2
		changed = changed || s.InsuranceSection2
	}
	if u.PayoutText != nil && s.PayoutText == "" {
		s.PayoutText = *u.PayoutText
		changed = true
	}

	if !changed && log != nil {
		log.Debug("duplicate order update absorbed")
	}
	return changed
}

// Reset clears the state for a new order.
func (s *OrderState) Reset() {
	*s = OrderState{}
}
