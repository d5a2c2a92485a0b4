package orders

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"updown/config"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// envelope is the wire frame for both directions: a method name plus a
// JSON payload.
type envelope struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload"`
}

// Client is the duplex connection to the backend order service. Invokes
// are fire-and-forget: errors are logged, never returned to the betting
// path, and results come back as events on Handlers.
type Client struct {
	url      string
	dialer   *websocket.Dialer
	log      *zap.Logger
	handlers Handlers

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func NewClient(cfg config.OrdersConfig, logger *zap.Logger, handlers Handlers) *Client {
	return &Client{
		url:      cfg.URL,
		dialer:   &websocket.Dialer{HandshakeTimeout: cfg.Timeout},
		log:      logger,
		handlers: handlers,
	}
}

// Connect dials the order service and starts the event reader. The
// reader reconnects on its own; a client that never connects simply
// drops invokes on the floor, by the same degraded-but-running policy
// the price feed follows.
func (c *Client) Connect() error {
	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("order service dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.log.Info("order service connected", zap.String("url", c.url))
	go c.listen()
	return nil
}

// CreateOrder sends an order-open request. Fire-and-forget; the
// OrderCreated event carries the server's identifiers.
func (c *Client) CreateOrder(req CreateOrderRequest) bool {
	return c.invoke("CreateOrder", req)
}

// CreateInsurance sends an insurance purchase for the active order.
// Confirmation arrives as an InsuranceCreated event. Returns false when
// the request never left, so the caller can resolve the purchase itself.
func (c *Client) CreateInsurance(req CreateInsuranceRequest) bool {
	return c.invoke("CreateInsurance", req)
}

func (c *Client) invoke(method string, payload interface{}) bool {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.log.Warn("order service not connected, dropping invoke", zap.String("method", method))
		return false
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("order payload marshal failed", zap.String("method", method), zap.Error(err))
		return false
	}

	if err := conn.WriteJSON(envelope{Method: method, Payload: raw}); err != nil {
		c.log.Error("order invoke failed", zap.String("method", method), zap.Error(err))
		return false
	}
	return true
}

func (c *Client) listen() {
	for {
		c.mu.Lock()
		conn, closed := c.conn, c.closed
		c.mu.Unlock()
		if closed || conn == nil {
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if c.isClosed() {
				return
			}
			c.log.Error("order service read error", zap.Error(err))
			if !c.reconnect() {
				return
			}
			continue
		}

		c.dispatch(msg)
	}
}

// dispatch routes a server event to its handler. Unknown methods are
// logged and dropped.
func (c *Client) dispatch(msg []byte) {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		c.log.Warn("malformed order event", zap.Error(err))
		return
	}

	switch env.Method {
	case "OrderCreated":
		var ev OrderCreated
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			c.log.Warn("malformed OrderCreated payload", zap.Error(err))
			return
		}
		if c.handlers.OnOrderCreated != nil {
			c.handlers.OnOrderCreated(ev)
		}
	case "OrderUpdate":
		var ev OrderUpdate
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			c.log.Warn("malformed OrderUpdate payload", zap.Error(err))
			return
		}
		if c.handlers.OnOrderUpdate != nil {
			c.handlers.OnOrderUpdate(ev)
		}
	case "OrderResult":
		var ev OrderResult
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			c.log.Warn("malformed OrderResult payload", zap.Error(err))
			return
		}
		if c.handlers.OnOrderResult != nil {
			c.handlers.OnOrderResult(ev)
		}
	case "InsuranceCreated":
		var ev InsuranceCreated
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			c.log.Warn("malformed InsuranceCreated payload", zap.Error(err))
			return
		}
		if c.handlers.OnInsuranceCreated != nil {
			c.handlers.OnInsuranceCreated(ev)
		}
	default:
		c.log.Debug("unknown order event", zap.String("method", env.Method))
	}
}

func (c *Client) reconnect() bool {
	wait := time.Second
	for {
		if c.isClosed() {
			return false
		}
		time.Sleep(wait)
		if wait < 8*time.Second {
			wait *= 2
		}

		conn, _, err := c.dialer.Dial(c.url, nil)
		if err != nil {
			c.log.Warn("order service reconnect failed", zap.Error(err))
			continue
		}

		c.mu.Lock()
		old := c.conn
		c.conn = conn
		c.mu.Unlock()
		if old != nil {
			_ = old.Close()
		}

		c.log.Info("order service reconnected")
		return true
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close shuts the connection down; the reader exits without reconnecting.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
