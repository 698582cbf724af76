package aggregator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// ScanState is the lifecycle of a timed scan.
type ScanState int

// Scan states.
const (
	ScanIdle ScanState = iota
	ScanScanning
	ScanFinished
)

var scanStateNames = [...]string{"idle", "scanning", "finished"}

// String returns the lowercase state name.
func (s ScanState) String() string {
	if s < 0 || int(s) >= len(scanStateNames) {
		return "unknown"
	}
	return scanStateNames[s]
}

// MarshalText encodes the state by name.
func (s ScanState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *ScanState) UnmarshalText(b []byte) error {
	for i, name := range scanStateNames {
		if name == string(b) {
			*s = ScanState(i)
			return nil
		}
	}
	return fmt.Errorf("aggregator: unknown scan state %q", b)
}

// Scan accumulates every prediction over a fixed countdown and reports one
// verdict at the end. Not safe for concurrent use.
type Scan struct {
	state     ScanState
	id        uuid.UUID
	duration  int
	remaining int
	floor     float64

	preds  []mood.Prediction
	result *mood.Estimate
}

// NewScan creates an idle scan with the given vote floor.
func NewScan(floor float64) *Scan {
	return &Scan{floor: floor}
}

// State returns the lifecycle state.
func (s *Scan) State() ScanState { return s.state }

// ID identifies the current or last scan. Zero before the first start.
func (s *Scan) ID() uuid.UUID { return s.id }

// Duration returns the countdown length of the current or last scan.
func (s *Scan) Duration() int { return s.duration }

// Remaining returns the ticks left on the countdown.
func (s *Scan) Remaining() int { return s.remaining }

// Samples returns how many predictions the running scan has seen.
func (s *Scan) Samples() int { return len(s.preds) }

// Result returns the verdict of the last finished scan.
func (s *Scan) Result() (mood.Estimate, bool) {
	if s.result == nil {
		return mood.Estimate{}, false
	}
	return *s.result, true
}

// SetFloor changes the vote floor for future finalization.
func (s *Scan) SetFloor(floor float64) { s.floor = floor }

// Start begins a scan of n ticks, clearing any previous result. It returns
// false and changes nothing if a scan is already running.
func (s *Scan) Start(n int, id uuid.UUID) bool {
	if s.state == ScanScanning {
		return false
	}
	if n < 1 {
		n = 1
	}
	s.state = ScanScanning
	s.id = id
	s.duration = n
	s.remaining = n
	s.preds = nil
	s.result = nil
	return true
}

// Add records a prediction. Ignored unless scanning.
func (s *Scan) Add(p mood.Prediction) {
	if s.state != ScanScanning {
		return
	}
	s.preds = append(s.preds, p)
}

// Tick advances the countdown. When it reaches zero the scan finalizes and
// the verdict is returned with ok set.
func (s *Scan) Tick() (result mood.Estimate, ok bool) {
	if s.state != ScanScanning {
		return mood.Estimate{}, false
	}
	s.remaining = max(0, s.remaining-1)
	if s.remaining > 0 {
		return mood.Estimate{}, false
	}
	return s.finish(), true
}

// Cancel discards a running scan without a result. It reports whether a
// scan was cancelled; calling it in any other state is a no-op.
func (s *Scan) Cancel() bool {
	if s.state != ScanScanning {
		return false
	}
	s.state = ScanIdle
	s.remaining = 0
	s.preds = nil
	return true
}

func (s *Scan) finish() mood.Estimate {
	res := verdict(s.preds, s.floor)
	s.state = ScanFinished
	s.result = &res
	s.preds = nil
	return res
}

// verdict sums confidence per mood over predictions at or above floor and
// divides the winner's sum by the total number of predictions. With no vote
// above the floor the last prediction is returned verbatim; with none at all
// the verdict is Neutral at zero confidence.
func verdict(preds []mood.Prediction, floor float64) mood.Estimate {
	if len(preds) == 0 {
		return mood.Estimate{Mood: mood.Neutral, Confidence: 0}
	}

	scores := mood.Scores{}
	for _, p := range preds {
		if p.Confidence >= floor {
			scores[p.Mood] += p.Confidence
		}
	}

	if best, sum, ok := scores.Best(); ok {
		return mood.Estimate{Mood: best, Confidence: mood.Clamp(sum / float64(len(preds)))}
	}
	return preds[len(preds)-1].Estimate()
}
