package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// PriceFeedConfig configures the price feed WebSocket behavior.
type PriceFeedConfig struct {
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
}

// DefaultPriceFeedConfig returns default price feed configuration.
func DefaultPriceFeedConfig() PriceFeedConfig {
	return PriceFeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// PriceFeed streams reserve price updates over a WebSocket subscription,
// reconnecting with backoff on connection loss.
type PriceFeed struct {
	endpoint string
	config   PriceFeedConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	updates chan PriceUpdate
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewPriceFeed connects to the endpoint and starts streaming updates.
func NewPriceFeed(ctx context.Context, endpoint string, config *PriceFeedConfig) (*PriceFeed, error) {
	cfg := DefaultPriceFeedConfig()
	if config != nil {
		cfg = *config
	}

	f := &PriceFeed{
		endpoint: endpoint,
		config:   cfg,
		updates:  make(chan PriceUpdate, 256),
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	f.wg.Add(1)
	go f.pingLoop()

	return f, nil
}

// Updates returns the stream of price ticks. The channel is closed when
// the feed shuts down.
func (f *PriceFeed) Updates() <-chan PriceUpdate {
	return f.updates
}

// Close shuts the feed down and closes the updates channel.
func (f *PriceFeed) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	close(f.updates)
	return nil
}

// connect establishes the WebSocket connection.
func (f *PriceFeed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	f.conn = conn
	return nil
}

// readLoop reads price notifications until shutdown, reconnecting with
// exponential backoff on read failure.
func (f *PriceFeed) readLoop() {
	defer f.wg.Done()

	for {
		select {
		case <-f.done:
			return
		default:
		}

		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}
			log.Printf("[ws-price] read error: %v, reconnecting", err)
			if !f.reconnect() {
				return
			}
			continue
		}

		var notification priceNotification
		if err := json.Unmarshal(message, &notification); err != nil {
			log.Printf("[ws-price] malformed notification: %v", err)
			continue
		}

		update := PriceUpdate{
			CoinType:    notification.CoinType,
			Price:       notification.Price,
			TimestampMs: notification.TimestampMs,
		}

		select {
		case f.updates <- update:
		case <-f.done:
			return
		default:
			// Slow consumer: drop the oldest tick in favor of the newest.
			select {
			case <-f.updates:
			default:
			}
			select {
			case f.updates <- update:
			default:
			}
		}
	}
}

// reconnect retries the connection with exponential backoff. Returns
// false when the feed was closed while reconnecting.
func (f *PriceFeed) reconnect() bool {
	delay := f.config.ReconnectDelay

	for {
		select {
		case <-f.done:
			return false
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := f.connect(ctx)
		cancel()
		if err == nil {
			log.Printf("[ws-price] reconnected")
			return true
		}

		log.Printf("[ws-price] reconnect failed: %v", err)
		delay *= 2
		if delay > f.config.MaxReconnectDelay {
			delay = f.config.MaxReconnectDelay
		}
	}
}

// pingLoop keeps the connection alive.
func (f *PriceFeed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			conn := f.conn
			if conn != nil {
				conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					log.Printf("[ws-price] ping failed: %v", err)
				}
			}
			f.connMu.Unlock()
		}
	}
}
