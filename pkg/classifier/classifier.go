// Package classifier wraps external image classifiers that label a face
// with a mood word.
//
// A classifier's output takes precedence over landmark geometry; the label is
// mapped to a mood with mood.FromLabel.
package classifier

import (
	"context"
	"time"
)

// Label is a classifier's verdict for one frame.
type Label struct {
	Name       string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier labels a JPEG frame.
type Classifier interface {
	// Classify returns the label for the face in the frame.
	Classify(ctx context.Context, jpeg []byte) (Label, error)

	// Name identifies the backend in logs.
	Name() string
}

// Config configures the Gemini classifier.
type Config struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`

	// UseADC uses Application Default Credentials when no API key is set.
	UseADC bool `toml:"use_adc"`

	Model     string        `toml:"model" validate:"required_if=Enabled true"`
	Timeout   time.Duration `toml:"timeout" validate:"gte=0"`
	MaxTokens int64         `toml:"max_tokens" validate:"gte=0"`

	// Endpoint overrides the API base URL.
	Endpoint string `toml:"endpoint"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:     "gemini-2.0-flash",
		Timeout:   10 * time.Second,
		MaxTokens: 64,
	}
}
