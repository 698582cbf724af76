package inference

import (
	"log/slog"
	"time"

	"github.com/teslashibe/go-vibewave/pkg/classifier"
	"github.com/teslashibe/go-vibewave/pkg/detection"
)

// Config holds the optional backends an Analyzer consults.
type Config struct {
	Classifier classifier.Classifier
	Landmarks  LandmarkSource
	Detector   detection.Detector

	// ClassifyTimeout bounds a single classifier call. Zero means no bound
	// beyond the caller's context.
	ClassifyTimeout time.Duration

	Logger *slog.Logger
}

// Option is a functional option for configuring an Analyzer.
type Option func(*Config)

// WithClassifier sets the external classifier.
func WithClassifier(c classifier.Classifier) Option {
	return func(cfg *Config) { cfg.Classifier = c }
}

// WithLandmarkSource sets a landmark extractor for frames that arrive
// without landmarks.
func WithLandmarkSource(s LandmarkSource) Option {
	return func(cfg *Config) { cfg.Landmarks = s }
}

// WithDetector sets the face box detector.
func WithDetector(d detection.Detector) Option {
	return func(cfg *Config) { cfg.Detector = d }
}

// WithClassifyTimeout bounds each classifier call.
func WithClassifyTimeout(d time.Duration) Option {
	return func(cfg *Config) { cfg.ClassifyTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) { cfg.Logger = l }
}
