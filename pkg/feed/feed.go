// Package feed receives frames from an external landmark detector over a
// websocket.
//
// Each text message is one JSON frame carrying named landmark regions, an
// optional JPEG image, or both. The connection is re-dialed with backoff
// until the caller's context ends.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-vibewave/pkg/face"
	"github.com/teslashibe/go-vibewave/pkg/inference"
)

var (
	// ErrNoURL is returned when the feed has no URL configured.
	ErrNoURL = errors.New("feed: url required")

	// ErrEmptyMessage is returned for a message with neither image nor landmarks.
	ErrEmptyMessage = errors.New("feed: message has no image or landmarks")
)

// Config configures the feed client.
type Config struct {
	URL               string        `toml:"url" validate:"omitempty,url"`
	HandshakeTimeout  time.Duration `toml:"handshake_timeout" validate:"gte=0"`
	ReadTimeout       time.Duration `toml:"read_timeout" validate:"gte=0"`
	ReconnectDelay    time.Duration `toml:"reconnect_delay" validate:"gte=0"`
	MaxReconnectDelay time.Duration `toml:"max_reconnect_delay" validate:"gte=0"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:               "ws://127.0.0.1:8765/landmarks",
		HandshakeTimeout:  10 * time.Second,
		ReadTimeout:       30 * time.Second,
		ReconnectDelay:    500 * time.Millisecond,
		MaxReconnectDelay: 10 * time.Second,
	}
}

// Message is the wire form of one frame.
type Message struct {
	Timestamp time.Time       `json:"timestamp,omitzero"`
	Image     []byte          `json:"image,omitempty"` // base64 JPEG
	Landmarks *face.Landmarks `json:"landmarks,omitempty"`
}

// Frame converts the message to an inference frame.
func (m Message) Frame(received time.Time) (inference.Frame, error) {
	if len(m.Image) == 0 && m.Landmarks.Empty() {
		return inference.Frame{}, ErrEmptyMessage
	}
	at := m.Timestamp
	if at.IsZero() {
		at = received
	}
	return inference.Frame{Image: m.Image, Landmarks: m.Landmarks, CapturedAt: at}, nil
}

// Decode parses one wire message.
func Decode(data []byte, received time.Time) (inference.Frame, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return inference.Frame{}, fmt.Errorf("feed: decode message: %w", err)
	}
	return m.Frame(received)
}

// Feed is a websocket frame source.
type Feed struct {
	cfg    Config
	dialer *websocket.Dialer
	header http.Header
	logger *slog.Logger

	received atomic.Uint64
	invalid  atomic.Uint64
}

// New creates a feed client.
func New(cfg Config, logger *slog.Logger) (*Feed, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		header: http.Header{},
		logger: logger.With("component", "feed", "url", cfg.URL),
	}, nil
}

// Received returns the number of frames delivered.
func (f *Feed) Received() uint64 { return f.received.Load() }

// Invalid returns the number of messages that could not be decoded.
func (f *Feed) Invalid() uint64 { return f.invalid.Load() }

// Stream connects and delivers frames until ctx is cancelled. Connection
// failures are retried with exponential backoff.
func (f *Feed) Stream(ctx context.Context, emit func(inference.Frame)) error {
	delay := f.cfg.ReconnectDelay
	for {
		connected, err := f.session(ctx, emit)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			delay = f.cfg.ReconnectDelay
		}
		f.logger.Warn("feed disconnected, reconnecting", "error", err, "delay", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, f.cfg.MaxReconnectDelay)
		if delay <= 0 {
			delay = f.cfg.MaxReconnectDelay
		}
	}
}

// session runs one connection. connected reports whether the dial succeeded.
func (f *Feed) session(ctx context.Context, emit func(inference.Frame)) (connected bool, err error) {
	conn, _, err := f.dialer.DialContext(ctx, f.cfg.URL, f.header)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	f.logger.Info("feed connected")

	// Unblock ReadMessage when the caller is done.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if f.cfg.ReadTimeout > 0 {
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))
		})
	}

	for {
		if f.cfg.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))
		}
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		frame, err := Decode(data, time.Now())
		if err != nil {
			f.invalid.Add(1)
			f.logger.Debug("dropping feed message", "error", err)
			continue
		}
		f.received.Add(1)
		emit(frame)
	}
}
