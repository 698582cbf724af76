// Package aggregator turns a stream of per-frame mood predictions into the
// live, capture and scan views.
//
// Three plain state machines (Smoother, CaptureCycle, Scan) hold the
// aggregation rules. Engine owns all three on a single goroutine and
// publishes immutable State snapshots.
package aggregator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Bounds on the capture interval.
const (
	MinCaptureInterval = 5 * time.Second
	MaxCaptureInterval = 10 * time.Second
)

// HistorySize is the number of captures retained.
const HistorySize = 10

// Config holds the tunable aggregation parameters.
type Config struct {
	// SmoothingHorizon is how far back the live view looks.
	SmoothingHorizon time.Duration `toml:"smoothing_horizon" json:"smoothing_horizon" validate:"gte=150ms,lte=250ms"`

	// ConfidenceFloor is the minimum confidence a prediction needs to vote.
	ConfidenceFloor float64 `toml:"confidence_floor" json:"confidence_floor" validate:"gte=0.1,lte=0.5"`

	// CaptureInterval is the time between periodic captures.
	CaptureInterval time.Duration `toml:"capture_interval" json:"capture_interval" validate:"gte=5s,lte=10s"`

	// ScanDuration is used when a scan is started without a duration.
	ScanDuration time.Duration `toml:"scan_duration" json:"scan_duration" validate:"gte=1s,lte=60s"`

	// TickInterval is the countdown step for capture and scan.
	TickInterval time.Duration `toml:"tick_interval" json:"tick_interval" validate:"gt=0"`

	// QueueSize bounds the prediction channel; predictions beyond it are dropped.
	QueueSize int `toml:"queue_size" json:"queue_size" validate:"gte=1"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SmoothingHorizon: 200 * time.Millisecond,
		ConfidenceFloor:  0.25,
		CaptureInterval:  5 * time.Second,
		ScanDuration:     10 * time.Second,
		TickInterval:     time.Second,
		QueueSize:        256,
	}
}

var validate = validator.New()

// Validate checks the config against its bounds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ClampInterval bounds a capture interval to [MinCaptureInterval, MaxCaptureInterval].
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d < MinCaptureInterval:
		return MinCaptureInterval
	case d > MaxCaptureInterval:
		return MaxCaptureInterval
	}
	return d
}

// ticks converts a duration to whole countdown steps, at least one.
func ticks(d time.Duration) int {
	n := int(d / time.Second)
	if n < 1 {
		return 1
	}
	return n
}
