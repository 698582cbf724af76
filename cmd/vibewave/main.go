// vibewave infers the mood of the face in front of a camera and serves the
// live, periodic capture and timed scan views over HTTP and websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/teslashibe/go-vibewave/internal/config"
	vlog "github.com/teslashibe/go-vibewave/internal/log"
	"github.com/teslashibe/go-vibewave/pkg/aggregator"
	"github.com/teslashibe/go-vibewave/pkg/camera"
	"github.com/teslashibe/go-vibewave/pkg/classifier"
	"github.com/teslashibe/go-vibewave/pkg/detection"
	"github.com/teslashibe/go-vibewave/pkg/feed"
	"github.com/teslashibe/go-vibewave/pkg/inference"
	"github.com/teslashibe/go-vibewave/pkg/session"
	"github.com/teslashibe/go-vibewave/pkg/web"
)

var version = "0.1.0"

const shutdownTimeout = 5 * time.Second

type flags struct {
	config  string
	debug   bool
	source  string
	device  int
	feedURL string
	port    int
	capture bool
}

func main() {
	f := parseFlags()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg, f)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	closer := vlog.InitConfig(cfg.Log)
	defer closer.Close()
	logger := vlog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("vibewave starting", "version", version, "source", cfg.Source, "addr", cfg.Web.Addr)
	if err := run(ctx, cfg, f, logger); err != nil {
		logger.Error("vibewave stopped", "error", err)
		closer.Close()
		os.Exit(1)
	}
	logger.Info("goodbye")
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "vibewave.toml", "Path to the TOML config file")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.StringVar(&f.source, "source", "", "Frame source: camera (classifier or face box only, no landmarks) or feed (landmarks) (overrides config)")
	flag.IntVar(&f.device, "device", -1, "Camera device index (overrides config)")
	flag.StringVar(&f.feedURL, "feed-url", "", "Landmark feed websocket URL (overrides config)")
	flag.IntVar(&f.port, "port", 0, "HTTP port (overrides config)")
	flag.BoolVar(&f.capture, "capture", false, "Start the periodic capture cycle on launch")
	flag.Parse()
	return f
}

func applyFlags(cfg *config.Config, f flags) {
	if f.debug {
		cfg.Log.Level = "debug"
		cfg.Web.AccessLog = true
	}
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.device >= 0 {
		cfg.Camera.Device = f.device
	}
	if f.feedURL != "" {
		cfg.Feed.URL = f.feedURL
	}
	if f.port > 0 {
		cfg.Web.Addr = fmt.Sprintf(":%d", f.port)
	}
}

func run(ctx context.Context, cfg config.Config, f flags, logger *slog.Logger) error {
	engine, err := aggregator.NewEngine(cfg.Aggregator, logger)
	if err != nil {
		return err
	}
	// The engine outlives ctx so the session can reset it on the way out.
	engineCtx, stopEngine := context.WithCancel(context.Background())
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		engine.Run(engineCtx)
	}()
	defer func() {
		stopEngine()
		<-engineDone
	}()

	opts := []inference.Option{
		inference.WithLogger(logger),
		inference.WithClassifyTimeout(cfg.Classifier.Timeout),
	}

	det, err := detection.NewYuNet(cfg.Detector, logger)
	if err != nil {
		logger.Warn("face detector unavailable, continuing without face boxes", "error", err)
	} else {
		defer det.Close()
		opts = append(opts, inference.WithDetector(det))
	}

	if cfg.Classifier.Enabled {
		cls, err := newClassifier(ctx, cfg.Classifier, logger)
		if err != nil {
			logger.Warn("classifier unavailable, using landmarks only", "error", err)
		} else {
			opts = append(opts, inference.WithClassifier(cls))
		}
	}
	analyzer := inference.NewAnalyzer(opts...)

	if cfg.Source != config.SourceFeed && !cfg.Classifier.Enabled {
		logger.Warn("camera source without a classifier: frames carry no landmarks and resolve to face-box Neutral")
	}

	var (
		source session.FrameSource
		cams   *camera.Manager
	)
	switch cfg.Source {
	case config.SourceFeed:
		fd, err := feed.New(cfg.Feed, logger)
		if err != nil {
			return err
		}
		source = fd
	default:
		cam, err := camera.Open(cfg.Camera, logger)
		if err != nil {
			return err
		}
		defer cam.Close()
		cams = camera.NewManager(cfg.Camera)
		cams.OnConfigChange = cam.Apply
		source = cam
	}

	sess, err := session.New(cfg.Session, source, analyzer, engine, logger)
	if err != nil {
		return err
	}

	server := web.NewServer(cfg.Web, engine, cams, logger)
	server.StartAsync(ctx)

	if _, err := os.Stat(f.config); err == nil {
		go func() {
			err := config.Watch(ctx, f.config, func(next config.Config) {
				if err := engine.SetConfig(ctx, next.Aggregator); err != nil {
					logger.Warn("apply reloaded config", "error", err)
				}
			})
			if err != nil {
				logger.Warn("config watch stopped", "error", err)
			}
		}()
	}

	if err := sess.Start(ctx); err != nil {
		return err
	}
	if f.capture {
		if err := engine.StartCapture(ctx); err != nil {
			logger.Warn("start capture", "error", err)
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-sess.Done():
		logger.Warn("frame source ended")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sess.Stop(shutdownCtx); err != nil {
		logger.Warn("stop session", "error", err)
	}
	stopEngine()
	<-engineDone
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("stop server", "error", err)
	}
	return sess.Err()
}

// newClassifier builds the Gemini classifier. When both an API key and
// Application Default Credentials are configured, ADC backs up the key.
func newClassifier(ctx context.Context, cfg classifier.Config, logger *slog.Logger) (classifier.Classifier, error) {
	var members []classifier.Classifier

	if cfg.APIKey != "" {
		keyed := cfg
		keyed.UseADC = false
		g, err := classifier.NewGemini(ctx, keyed, logger)
		if err != nil {
			return nil, err
		}
		members = append(members, g)
	}
	if cfg.UseADC {
		adc := cfg
		adc.APIKey = ""
		g, err := classifier.NewGemini(ctx, adc, logger)
		if err != nil {
			logger.Warn("application default credentials unavailable", "error", err)
		} else {
			members = append(members, g)
		}
	}

	if len(members) == 1 {
		return members[0], nil
	}
	return classifier.NewChain(logger, members...)
}
