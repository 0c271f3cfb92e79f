package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// Stream implements a TickStream backed by the Bybit public trade
// WebSocket feed.
type Stream struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	l              *applogger.Logger

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a new exchange TickStream.
func NewStream(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) drepo.TickStream {
	return &Stream{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	s.l.Info("trade stream connected", applogger.String("url", s.websocketURL))
	return nil
}

// Subscribe subscribes to the public trade topic for each configured
// symbol.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("stream not connected")
	}
	args := make([]string, len(s.symbols))
	for i, sym := range s.symbols {
		args[i] = "publicTrade." + sym
	}
	msg := map[string]interface{}{"op": "subscribe", "args": args}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.l.Info("subscribed trade topics", applogger.Strings("topics", args))
	return nil
}

type wsTrade struct {
	T int64  `json:"T"` // ms
	S string `json:"s"`
	P string `json:"p"`
	V string `json:"v"`
}

type wsMessage struct {
	Topic string    `json:"topic"`
	Data  []wsTrade `json:"data"`
}

// Read streams Tick events and errors.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteJSON(map[string]string{"op": "ping"})
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("stream conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-trade frames
					continue
				}
				if len(m.Topic) < len("publicTrade.") || m.Topic[:len("publicTrade.")] != "publicTrade." {
					continue
				}
				for _, d := range m.Data {
					tick, err := parseWSTrade(d)
					if err != nil {
						continue
					}
					select {
					case ticks <- tick:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return ticks, errs
}

func parseWSTrade(d wsTrade) (*models.Tick, error) {
	price, err := strconv.ParseFloat(d.P, 64)
	if err != nil {
		return nil, err
	}
	volume, err := strconv.ParseFloat(d.V, 64)
	if err != nil {
		return nil, err
	}
	return &models.Tick{
		Symbol:    d.S,
		Timestamp: d.T / 1000,
		Price:     price,
		Volume:    volume,
	}, nil
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
