package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"updown/internal/bet"
	"updown/internal/candle"
	"updown/internal/game"

	"github.com/gin-gonic/gin"
)

// gameHandler handles game endpoints
type gameHandler struct {
	session *game.Session
}

func newGameHandler(session *game.Session) *gameHandler {
	return &gameHandler{session: session}
}

// GetStatus returns the price-feed connection status and active mode.
// GET /api/v1/status
func (h *gameHandler) GetStatus(c *gin.Context) {
	mode := h.session.GameMode()
	c.JSON(http.StatusOK, gin.H{
		"feed": h.session.FeedStatus(),
		"mode": gin.H{
			"id":           mode.ID,
			"name":         mode.Name,
			"hasInsurance": mode.HasInsurance,
			"multiplier":   mode.Multiplier,
		},
	})
}

// GetBalance returns the current balance.
// GET /api/v1/balance
func (h *gameHandler) GetBalance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"balance": h.session.Balance()})
}

// GetTimers returns the round state of every betting timeframe.
// GET /api/v1/timers
func (h *gameHandler) GetTimers(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Timers(time.Now()))
}

// GetTimer returns the round state of one timeframe.
// GET /api/v1/timers/:timeframe
func (h *gameHandler) GetTimer(c *gin.Context) {
	tf, err := candle.ParseTimeframe(c.Param("timeframe"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	states := h.session.Timers(time.Now())
	st, ok := states[tf]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeframe does not run rounds"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetCandles returns aggregated candles for a timeframe.
// GET /api/v1/candles/:timeframe?count=60
func (h *gameHandler) GetCandles(c *gin.Context) {
	tf, err := candle.ParseTimeframe(c.Param("timeframe"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count := 0
	if countStr := c.Query("count"); countStr != "" {
		count, err = strconv.Atoi(countStr)
		if err != nil || count < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid count parameter"})
			return
		}
	}

	c.JSON(http.StatusOK, h.session.Candles(tf, count))
}

// GetTrends returns recorded round outcomes for a timeframe, newest first.
// GET /api/v1/trends/:timeframe
func (h *gameHandler) GetTrends(c *gin.Context) {
	tf, err := candle.ParseTimeframe(c.Param("timeframe"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.session.TrendHistory(tf))
}

// GetBet returns the active bet and its phase countdown.
// GET /api/v1/bet
func (h *gameHandler) GetBet(c *gin.Context) {
	b, ok := h.session.CurrentBet()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":    true,
		"bet":       b,
		"countdown": h.session.PhaseCountdown(time.Now()),
		"backend":   h.session.BackendOrder(),
	})
}

type placeBetRequest struct {
	Direction string  `json:"direction" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Pattern   string  `json:"pattern"`
}

// PlaceBet opens a new bet.
// POST /api/v1/bet
func (h *gameHandler) PlaceBet(c *gin.Context) {
	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.session.PlaceBet(bet.Direction(req.Direction), req.Amount, req.Pattern)
	if err != nil {
		c.JSON(betErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

type insuranceRequest struct {
	Section int `json:"section" binding:"required"`
}

// PurchaseInsurance buys an insurance section for the active bet.
// POST /api/v1/bet/insurance
func (h *gameHandler) PurchaseInsurance(c *gin.Context) {
	var req insuranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ins, err := h.session.PurchaseInsurance(req.Section)
	if err != nil {
		c.JSON(betErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ins)
}

// GetHistory returns recent settled bets, newest first.
// GET /api/v1/history
func (h *gameHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.History())
}

// betErrorStatus maps betting errors to HTTP statuses: conflicts for
// state violations, 400 for bad input.
func betErrorStatus(err error) int {
	switch {
	case errors.Is(err, bet.ErrBetAlreadyActive),
		errors.Is(err, bet.ErrInsurancePurchased),
		errors.Is(err, bet.ErrInsuranceOrdering):
		return http.StatusConflict
	case errors.Is(err, bet.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}
