package bet

import "errors"

// Validation errors returned synchronously from PlaceBet and
// PurchaseInsurance. They are user-facing rejections, never retried.
var (
	ErrInvalidAmount      = errors.New("bet amount must be positive")
	ErrInsufficientFunds  = errors.New("bet amount exceeds balance")
	ErrBetAlreadyActive   = errors.New("a bet is already active")
	ErrNoActiveBet        = errors.New("no active bet")
	ErrInvalidDirection   = errors.New("direction must be up or down")
	ErrInvalidSection     = errors.New("insurance section must be 1 or 2")
	ErrInsuranceOrdering  = errors.New("section 2 requires a confirmed section 1 purchase")
	ErrInsurancePurchased = errors.New("insurance section already purchased")
	ErrInsuranceDisabled  = errors.New("insurance is not available in this game mode")
)
