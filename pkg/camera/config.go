// Package camera captures webcam frames as JPEG for mood analysis.
package camera

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds webcam capture parameters. They can be changed at runtime
// through a Manager.
type Config struct {
	Device    int  `toml:"device" json:"device" validate:"gte=0"`
	Width     int  `toml:"width" json:"width" validate:"gte=160,lte=3840"`
	Height    int  `toml:"height" json:"height" validate:"gte=120,lte=2160"`
	Framerate int  `toml:"framerate" json:"framerate" validate:"gte=1,lte=120"`
	Quality   int  `toml:"quality" json:"quality" validate:"gte=1,lte=100"` // JPEG quality
	Mirror    bool `toml:"mirror" json:"mirror"`                          // flip horizontally like a front camera preview
}

// DefaultConfig returns a 640x480 front-camera configuration. Landmark
// geometry does not benefit from more pixels than this.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     640,
		Height:    480,
		Framerate: 30,
		Quality:   80,
		Mirror:    true,
	}
}

var validate = validator.New()

// Validate checks if the config values are within valid ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("camera: invalid config: %w", err)
	}
	return nil
}
