package pricefeed

import (
	"fmt"
	"sync"
	"time"

	"updown/config"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client maintains the websocket connection to the price hub.
//
// Initial connection has a fixed retry budget; once that is exhausted the
// supervisor switches to the fallback generator. After a session has been
// established, reconnection is automatic and unlimited, stepping through
// the configured backoff waits and holding at the last one.
type Client struct {
	url     string
	symbol  string
	dialer  *websocket.Dialer
	log     *zap.Logger
	handler func([]byte)

	maxRetries     int
	retryDelay     time.Duration
	reconnectWaits []time.Duration

	onUp   func()
	onDown func(error)

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func NewClient(cfg config.PriceHubConfig, logger *zap.Logger) *Client {
	waits := make([]time.Duration, 0, len(cfg.ReconnectWaits))
	for _, ms := range cfg.ReconnectWaits {
		waits = append(waits, time.Duration(ms)*time.Millisecond)
	}
	if len(waits) == 0 {
		waits = []time.Duration{0, 500 * time.Millisecond, time.Second, 2 * time.Second}
	}

	return &Client{
		url:            cfg.URL,
		symbol:         cfg.Symbol,
		dialer:         &websocket.Dialer{HandshakeTimeout: cfg.DialTimeout},
		log:            logger,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		reconnectWaits: waits,
	}
}

// SetMessageHandler sets the function to handle incoming messages.
func (c *Client) SetMessageHandler(h func([]byte)) {
	c.handler = h
}

// SetStateHandlers registers connection state callbacks: onUp fires on
// every (re)connect, onDown on every connection loss.
func (c *Client) SetStateHandlers(onUp func(), onDown func(error)) {
	c.onUp = onUp
	c.onDown = onDown
}

// Connect establishes the initial connection, spending the retry budget.
// The first retry is immediate, the rest wait retryDelay. It does not
// start the listener.
func (c *Client) Connect() error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt == 1 {
			// First retry is immediate.
		} else if attempt > 1 {
			time.Sleep(c.retryDelay)
		}

		if err := c.dialAndSubscribe(); err != nil {
			lastErr = err
			c.log.Warn("price hub connection attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Int("budget", c.maxRetries),
				zap.Error(err),
			)
			continue
		}

		c.log.Info("price hub connected", zap.String("url", c.url))
		return nil
	}

	return fmt.Errorf("price hub unreachable after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) dialAndSubscribe() error {
	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	sub := map[string]interface{}{
		"op":   "subscribe",
		"args": []string{"price." + c.symbol, "candle." + c.symbol},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("subscribe failed: %w", err)
	}

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	return nil
}

// Listen reads messages until Close is called, reconnecting with backoff
// on read errors.
func (c *Client) Listen() {
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
			c.log.Error("price hub read error", zap.Error(err))
			if c.onDown != nil {
				c.onDown(err)
			}
			if !c.reconnect() {
				return
			}
			continue
		}

		if c.handler != nil {
			c.handler(msg)
		}
	}
}

// reconnect retries indefinitely, walking the backoff sequence and
// staying at its last step. Returns false when the client was closed.
func (c *Client) reconnect() bool {
	for i := 0; ; i++ {
		if c.isClosed() {
			return false
		}

		wait := c.reconnectWaits[len(c.reconnectWaits)-1]
		if i < len(c.reconnectWaits) {
			wait = c.reconnectWaits[i]
		}
		time.Sleep(wait)

		if err := c.dialAndSubscribe(); err != nil {
			c.log.Warn("price hub reconnect failed", zap.Error(err))
			continue
		}

		c.log.Info("price hub reconnected")
		if c.onUp != nil {
			c.onUp()
		}
		return true
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close tears the connection down; Listen returns and no reconnect is
// attempted afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
