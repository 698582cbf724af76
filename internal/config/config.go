// Package config loads the vibewave configuration from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/teslashibe/go-vibewave/internal/log"
	"github.com/teslashibe/go-vibewave/pkg/aggregator"
	"github.com/teslashibe/go-vibewave/pkg/camera"
	"github.com/teslashibe/go-vibewave/pkg/classifier"
	"github.com/teslashibe/go-vibewave/pkg/detection"
	"github.com/teslashibe/go-vibewave/pkg/feed"
	"github.com/teslashibe/go-vibewave/pkg/session"
	"github.com/teslashibe/go-vibewave/pkg/web"
)

// Frame sources.
const (
	SourceCamera = "camera"
	SourceFeed   = "feed"
)

var (
	// ErrInvalid is returned when the merged config fails validation.
	ErrInvalid = errors.New("config: invalid")

	// ErrUnknownKeys is returned when the file sets keys no field reads.
	ErrUnknownKeys = errors.New("config: unknown keys")
)

// Config holds all vibewave configuration.
type Config struct {
	// Source selects where frames come from: "camera" or "feed".
	Source string `toml:"source" validate:"oneof=camera feed"`

	Aggregator aggregator.Config `toml:"aggregator"`
	Session    session.Config    `toml:"session"`
	Camera     camera.Config     `toml:"camera"`
	Detector   detection.Config  `toml:"detector"`
	Classifier classifier.Config `toml:"classifier"`
	Feed       feed.Config       `toml:"feed"`
	Web        web.Config        `toml:"web"`
	Log        log.Config        `toml:"log"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Source:     SourceCamera,
		Aggregator: aggregator.DefaultConfig(),
		Session:    session.DefaultConfig(),
		Camera:     camera.DefaultConfig(),
		Detector:   detection.DefaultConfig(),
		Classifier: classifier.DefaultConfig(),
		Feed:       feed.DefaultConfig(),
		Web:        web.DefaultConfig(),
		Log:        log.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks every section.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Load decodes path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error; an empty path
// skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return cfg, fmt.Errorf("%w in %s: %v", ErrUnknownKeys, path, undecoded)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from VIBEWAVE_* variables. An API key from
// GEMINI_API_KEY or GOOGLE_API_KEY fills an unset key and enables the
// classifier.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("VIBEWAVE_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("VIBEWAVE_ADDR"); v != "" {
		cfg.Web.Addr = v
	}
	if v := os.Getenv("VIBEWAVE_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("VIBEWAVE_DETECTOR_MODEL"); v != "" {
		cfg.Detector.ModelPath = v
	}
	if v := os.Getenv("VIBEWAVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VIBEWAVE_LOG_FILE"); v != "" {
		cfg.Log.File.Path = v
	}

	if v := os.Getenv("VIBEWAVE_CAMERA_DEVICE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VIBEWAVE_CAMERA_DEVICE: %w", err)
		}
		cfg.Camera.Device = n
	}
	if v := os.Getenv("VIBEWAVE_CAPTURE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("VIBEWAVE_CAPTURE_INTERVAL: %w", err)
		}
		cfg.Aggregator.CaptureInterval = d
	}
	if v := os.Getenv("VIBEWAVE_CONFIDENCE_FLOOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("VIBEWAVE_CONFIDENCE_FLOOR: %w", err)
		}
		cfg.Aggregator.ConfidenceFloor = f
	}

	if cfg.Classifier.APIKey == "" {
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if key := os.Getenv(name); key != "" {
				cfg.Classifier.APIKey = key
				cfg.Classifier.Enabled = true
				break
			}
		}
	}
	return nil
}
