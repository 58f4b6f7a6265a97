// Package feed consumes the PumpPortal-style token event stream over
// WebSocket and turns inbound frames into domain events.
package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"solana-paper-trader/internal/domain"
)

// ClientConfig configures WebSocket client behavior.
type ClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// EventBuffer is the capacity of the delivered-event channel.
	EventBuffer int

	// OnFrameDropped, when set, is called once per malformed frame.
	OnFrameDropped func()
	// OnReconnect, when set, is called once per reconnect attempt.
	OnReconnect func()
}

// DefaultClientConfig returns default WebSocket configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		EventBuffer:       1024,
	}
}

// Client maintains the stream connection: it subscribes to the three
// event streams on every (re)connect, decodes inbound frames, and
// delivers events on Events(). A malformed frame is logged and dropped;
// the connection is never torn down for a single bad message.
type Client struct {
	endpoint string
	config   ClientConfig
	logger   zerolog.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	events chan domain.Event

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool

	// counters surfaced to the engine's metrics
	dropped    atomic.Uint64
	reconnects atomic.Uint64
}

// NewClient creates a client, connects, and subscribes.
func NewClient(ctx context.Context, endpoint string, config *ClientConfig, logger zerolog.Logger) (*Client, error) {
	cfg := DefaultClientConfig()
	if config != nil {
		cfg = *config
	}

	c := &Client{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger.With().Str("component", "feed").Logger(),
		events:   make(chan domain.Event, cfg.EventBuffer),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	if err := c.subscribeAll(); err != nil {
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.connMu.Unlock()
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Events returns the delivered-event channel. It is closed on Close.
func (c *Client) Events() <-chan domain.Event {
	return c.events
}

// Dropped returns the number of frames dropped as malformed.
func (c *Client) Dropped() uint64 {
	return c.dropped.Load()
}

// Reconnects returns the number of reconnect attempts performed.
func (c *Client) Reconnects() uint64 {
	return c.reconnects.Load()
}

// connect establishes the WebSocket connection.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// subscribeAll sends the three stream subscriptions.
func (c *Client) subscribeAll() error {
	reqs := []subscribeRequest{
		{Method: methodSubscribeNewToken},
		{Method: methodSubscribeTokenTrade},
		{Method: methodSubscribeLiquidity},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	for _, req := range reqs {
		c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		if err := c.conn.WriteJSON(req); err != nil {
			return fmt.Errorf("write subscribe %s: %w", req.Method, err)
		}
	}
	return nil
}

// Close closes the connection and the event channel.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.events)
	return nil
}

// readLoop reads frames and dispatches events until shutdown.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error - reconnect with exponential backoff
			if !c.reconnecting.Swap(true) {
				c.logger.Warn().Err(err).Msg("feed connection lost, reconnecting")
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect redials and resubscribes after the given delay.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.reconnects.Add(1)
	if c.config.OnReconnect != nil {
		c.config.OnReconnect()
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("reconnect failed, will retry on next read error")
		return
	}

	if err := c.subscribeAll(); err != nil {
		c.logger.Warn().Err(err).Msg("resubscribe failed")
		return
	}
	c.logger.Info().Msg("feed reconnected and resubscribed")
}

// handleMessage decodes one frame and delivers the event, if any.
func (c *Client) handleMessage(message []byte) {
	ev, isEvent, err := ParseFrame(message, time.Now())
	if err != nil {
		c.dropped.Add(1)
		if c.config.OnFrameDropped != nil {
			c.config.OnFrameDropped()
		}
		c.logger.Warn().Err(err).Int("bytes", len(message)).Msg("frame dropped")
		return
	}
	if !isEvent {
		c.logger.Debug().RawJSON("frame", message).Msg("server notice")
		return
	}

	// Block until we can send - never drop events
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			c.connMu.Unlock()
		}
	}
}
