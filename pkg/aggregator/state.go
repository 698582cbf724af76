package aggregator

import (
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// State is an immutable snapshot of every aggregation view.
type State struct {
	// Current is the single published mood: the capture result while
	// capturing, the live view otherwise.
	Current mood.Estimate `json:"current"`

	Live    LiveView    `json:"live"`
	Capture CaptureView `json:"capture"`
	Scan    ScanView    `json:"scan"`

	// Config is the aggregation config in effect.
	Config Config `json:"config"`

	// Dropped counts predictions rejected because the queue was full.
	Dropped uint64 `json:"dropped"`

	UpdatedAt time.Time `json:"updated_at"`
}

// LiveView is the smoothed short-horizon mood.
type LiveView struct {
	Active     bool      `json:"active"`
	Mood       mood.Mood `json:"mood"`
	Confidence float64   `json:"confidence"`
	Samples    int       `json:"samples"`
}

// Estimate returns the live mood and confidence.
func (v LiveView) Estimate() mood.Estimate {
	return mood.Estimate{Mood: v.Mood, Confidence: v.Confidence}
}

// CaptureView is the periodic capture surface.
type CaptureView struct {
	Running  bool            `json:"running"`
	Interval time.Duration   `json:"interval"`
	NextIn   int             `json:"next_in"`
	Pending  int             `json:"pending"`
	Last     *mood.Captured  `json:"last,omitempty"`
	History  []mood.Captured `json:"history"`
}

// ScanView is the timed scan surface.
type ScanView struct {
	ID        uuid.UUID      `json:"id"`
	State     ScanState      `json:"state"`
	Duration  int            `json:"duration"`
	Remaining int            `json:"remaining"`
	Samples   int            `json:"samples"`
	Result    *mood.Estimate `json:"result,omitempty"`
}
