// Package web serves the mood dashboard API and a websocket stream of
// aggregator snapshots.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-vibewave/pkg/aggregator"
	"github.com/teslashibe/go-vibewave/pkg/camera"
	"github.com/teslashibe/go-vibewave/pkg/hub"
)

// controlTimeout bounds how long a request waits for the engine to accept a
// control command.
const controlTimeout = 2 * time.Second

// Config configures the dashboard server.
type Config struct {
	Addr string `toml:"addr" validate:"required"`

	// StaticDir is served at / when set.
	StaticDir string `toml:"static_dir"`

	// AccessLog logs every request.
	AccessLog bool `toml:"access_log"`
}

// DefaultConfig returns the default server config.
func DefaultConfig() Config {
	return Config{Addr: ":8080"}
}

// Engine is the part of the aggregator the server reads and controls.
type Engine interface {
	State() aggregator.State
	Subscribe() (<-chan aggregator.State, func())
	StartCapture(ctx context.Context) error
	StopCapture(ctx context.Context) error
	StartScan(ctx context.Context, d time.Duration) error
	CancelScan(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Server is the dashboard server.
type Server struct {
	app    *fiber.App
	cfg    Config
	engine Engine
	logger *slog.Logger

	// camera is nil when frames come from somewhere other than a webcam.
	camera *camera.Manager

	states   *hub.Hub
	validate *validator.Validate
}

// NewServer creates a server over engine. cam may be nil.
func NewServer(cfg Config, engine Engine, cam *camera.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "web")

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		camera:   cam,
		logger:   logger,
		states:   hub.New("state", logger),
		validate: validator.New(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "vibewave",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if cfg.AccessLog {
		app.Use(fiberlog.New())
	}
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/live", s.handleLive)
	api.Get("/moods", s.handleMoods)
	api.Get("/config", s.handleConfig)
	api.Post("/reset", s.handleReset)

	api.Get("/capture", s.handleCapture)
	api.Get("/capture/history", s.handleCaptureHistory)
	api.Post("/capture/start", s.handleCaptureStart)
	api.Post("/capture/stop", s.handleCaptureStop)

	api.Get("/scan", s.handleScan)
	api.Post("/scan/start", s.handleScanStart)
	api.Post("/scan/cancel", s.handleScanCancel)

	api.Get("/camera", s.handleCameraGet)
	api.Post("/camera", s.handleCameraUpdate)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// Start runs the state hub and serves until Shutdown is called. It blocks.
func (s *Server) Start(ctx context.Context) error {
	go s.states.Run(ctx)
	go s.relay(ctx)

	s.logger.Info("dashboard listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// StartAsync runs Start in a goroutine and logs a failure.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("server stopped", "error", err)
		}
	}()
}

// relay forwards every engine snapshot to websocket clients.
func (s *Server) relay(ctx context.Context) {
	updates, cancel := s.engine.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := s.states.BroadcastEvent("state", st); err != nil {
				s.logger.Warn("encode state", "error", err)
			}
		}
	}
}

// Hub returns the hub that carries state events.
func (s *Server) Hub() *hub.Hub {
	return s.states
}

// Shutdown stops the server, waiting at most until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
