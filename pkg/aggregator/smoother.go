package aggregator

import (
	"time"

	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// Smoother keeps a short rolling buffer of predictions and votes over it.
// Not safe for concurrent use.
type Smoother struct {
	horizon time.Duration
	floor   float64
	buf     []mood.Prediction

	// newest is the latest timestamp seen since the last Reset.
	newest time.Time
}

// NewSmoother creates a smoother with the given horizon and vote floor.
func NewSmoother(horizon time.Duration, floor float64) *Smoother {
	return &Smoother{horizon: horizon, floor: floor}
}

// Push appends p and evicts every entry older than the horizon measured
// from the newest timestamp seen, so a late arrival carrying an old stamp
// cannot keep stale entries alive.
func (s *Smoother) Push(p mood.Prediction) {
	if p.Timestamp.After(s.newest) {
		s.newest = p.Timestamp
	}
	s.buf = append(s.buf, p)

	kept := s.buf[:0]
	for _, e := range s.buf {
		if s.newest.Sub(e.Timestamp) <= s.horizon {
			kept = append(kept, e)
		}
	}
	clear(s.buf[len(kept):])
	s.buf = kept
}

// Estimate votes over the buffer. Entries at or above the floor contribute
// their confidence to their mood; the winner's confidence is its sum divided
// by the buffer length. When nothing meets the floor the newest entry is
// returned verbatim. ok is false for an empty buffer.
func (s *Smoother) Estimate() (est mood.Estimate, ok bool) {
	if len(s.buf) == 0 {
		return mood.Estimate{}, false
	}

	scores := mood.Scores{}
	for _, p := range s.buf {
		if p.Confidence >= s.floor {
			scores[p.Mood] += p.Confidence
		}
	}

	if best, sum, found := scores.Best(); found {
		return mood.Estimate{Mood: best, Confidence: mood.Clamp(sum / float64(len(s.buf)))}, true
	}
	return s.buf[len(s.buf)-1].Estimate(), true
}

// Len returns the number of buffered predictions.
func (s *Smoother) Len() int { return len(s.buf) }

// Buffer returns a copy of the buffered predictions.
func (s *Smoother) Buffer() []mood.Prediction {
	return append([]mood.Prediction(nil), s.buf...)
}

// SetFloor changes the vote floor.
func (s *Smoother) SetFloor(floor float64) { s.floor = floor }

// SetHorizon changes the horizon. Existing entries are evicted on the next Push.
func (s *Smoother) SetHorizon(horizon time.Duration) { s.horizon = horizon }

// Reset empties the buffer.
func (s *Smoother) Reset() {
	s.buf = nil
	s.newest = time.Time{}
}
