package orders

// Request and event shapes exchanged with the backend game engine over a
// persistent duplex channel. Calls are fire-and-forget; responses arrive
// as asynchronous events that may be duplicated or reordered, so every
// consumer applies them idempotently.

// CreateOrderRequest opens a bet order with the backend.
type CreateOrderRequest struct {
	MemberID    string  `json:"memberId"`
	GameID      int     `json:"gameId"`
	BetNumber   string  `json:"betNumber"` // trend pattern code, e.g. "AU"
	BetAmount   float64 `json:"betAmount"`
	OrderDate   string  `json:"orderDate"`
	OrderPrice  float64 `json:"orderPrice"`
	Symbol      string  `json:"symbol"`
	DrawType    int     `json:"drawType"`
	InsuranceID int     `json:"insuranceId"`
}

// CreateInsuranceRequest purchases an insurance section for an order.
type CreateInsuranceRequest struct {
	MemberID      string `json:"memberId"`
	OrderGUID     string `json:"orderGuid"`
	TransactionID string `json:"transactionId"`
	Section       int    `json:"section"`
}

// OrderCreated acknowledges a CreateOrder call.
type OrderCreated struct {
	IsSuccess     bool   `json:"isSuccess"`
	TransactionID string `json:"transactionId"`
	OrderGUID     string `json:"orderGuid"`
}

// OrderUpdate carries incremental round results. All fields are optional;
// only non-null fields are applied, and a field that is already set is
// never overwritten, which makes duplicate delivery a no-op.
type OrderUpdate struct {
	Round1Result      *string  `json:"round1Result,omitempty"`
	Round2Result      *string  `json:"round2Result,omitempty"`
	Round3Result      *string  `json:"round3Result,omitempty"`
	Round1Price       *float64 `json:"round1Price,omitempty"`
	Round2Price       *float64 `json:"round2Price,omitempty"`
	InsuranceSection1 *bool    `json:"insuranceSection1,omitempty"`
	InsuranceSection2 *bool    `json:"insuranceSection2,omitempty"`
	PayoutText        *string  `json:"payoutText,omitempty"`
}

// OrderResult is the final settlement report for an order.
type OrderResult struct {
	DrawResult    string  `json:"drawResult"` // up | down | tie | lose
	WinLoseAmount float64 `json:"winLoseAmount"`
	BetAmount     float64 `json:"betAmount"`
}

// InsuranceCreated acknowledges a CreateInsurance call.
type InsuranceCreated struct {
	IsSuccess bool   `json:"isSuccess"`
	Section   int    `json:"section"`
	Message   string `json:"message"`
}

// Handlers are the subscriber callbacks for backend events. Nil
// callbacks are skipped.
type Handlers struct {
	OnOrderCreated     func(OrderCreated)
	OnOrderUpdate      func(OrderUpdate)
	OnOrderResult      func(OrderResult)
	OnInsuranceCreated func(InsuranceCreated)
}
