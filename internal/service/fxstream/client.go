package fxstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"KankoLens/internal/domain/models"
	drepo "KankoLens/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a RateStream backed by a forex WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	pairs          []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new FX RateStream.
func New(apiKey, websocketURL string, pairs []string, reconnectDelay, pingInterval time.Duration) drepo.RateStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		pairs:          pairs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("fxstream connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("fxstream: connected")
	return nil
}

// Subscribe subscribes to configured currency pairs.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("fxstream not connected")
	}
	for _, p := range c.pairs {
		msg := map[string]string{"type": "subscribe", "symbol": p}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", p, err)
		}
		log.Printf("fxstream: subscribed %s", p)
	}
	return nil
}

type wsQuote struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsQuote `json:"data"`
}

// Read streams FXQuote events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.FXQuote, <-chan error) {
	quotes := make(chan *models.FXQuote, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("fxstream conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("fxstream read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-quote frames
					continue
				}
				if m.Type != "trade" && m.Type != "quote" {
					continue
				}
				for _, d := range m.Data {
					q := &models.FXQuote{
						Pair:      d.S,
						Rate:      d.P,
						Timestamp: time.UnixMilli(d.T),
					}
					select {
					case quotes <- q:
					default:
						// drop on backpressure; only the latest rate matters
					}
				}
			}
		}
	}()

	return quotes, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
