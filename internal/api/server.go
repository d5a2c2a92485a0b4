package api

import (
	"net/http"
	"time"

	"updown/internal/game"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server exposes the game session over HTTP.
type Server struct {
	log     *zap.Logger
	session *game.Session
	engine  *gin.Engine
	addr    string
}

func NewServer(addr string, session *game.Session, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		log:     logger,
		session: session,
		engine:  gin.New(),
		addr:    addr,
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		h := newGameHandler(s.session)
		api.GET("/status", h.GetStatus)
		api.GET("/balance", h.GetBalance)
		api.GET("/timers", h.GetTimers)
		api.GET("/timers/:timeframe", h.GetTimer)
		api.GET("/candles/:timeframe", h.GetCandles)
		api.GET("/trends/:timeframe", h.GetTrends)
		api.GET("/bet", h.GetBet)
		api.POST("/bet", h.PlaceBet)
		api.POST("/bet/insurance", h.PurchaseInsurance)
		api.GET("/history", h.GetHistory)
	}
}

// Run serves until the listener fails; the caller decides whether that
// is fatal.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("api server listening", zap.String("addr", s.addr))
	return srv.ListenAndServe()
}
