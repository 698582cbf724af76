package aggregator

import (
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// CaptureCycle takes a snapshot of the dominant mood every interval.
// Not safe for concurrent use.
type CaptureCycle struct {
	interval  time.Duration
	remaining int
	running   bool

	pending []mood.Prediction
	history []mood.Captured
	last    *mood.Captured

	newID func() uuid.UUID
}

// NewCaptureCycle creates a stopped cycle. The interval is clamped to
// [MinCaptureInterval, MaxCaptureInterval].
func NewCaptureCycle(interval time.Duration) *CaptureCycle {
	interval = ClampInterval(interval)
	return &CaptureCycle{
		interval:  interval,
		remaining: ticks(interval),
		newID:     uuid.New,
	}
}

// Running reports whether the cycle is started.
func (c *CaptureCycle) Running() bool { return c.running }

// Interval returns the clamped capture interval.
func (c *CaptureCycle) Interval() time.Duration { return c.interval }

// NextIn returns the ticks left until the next capture.
func (c *CaptureCycle) NextIn() int { return c.remaining }

// Pending returns how many predictions wait for the next capture.
func (c *CaptureCycle) Pending() int { return len(c.pending) }

// Last returns the most recent capture, if any.
func (c *CaptureCycle) Last() (mood.Captured, bool) {
	if c.last == nil {
		return mood.Captured{}, false
	}
	return *c.last, true
}

// History returns a copy of the retained captures, oldest first.
func (c *CaptureCycle) History() []mood.Captured {
	return append([]mood.Captured(nil), c.history...)
}

// SetInterval changes the interval. A countdown longer than the new interval
// is shortened to it.
func (c *CaptureCycle) SetInterval(d time.Duration) {
	c.interval = ClampInterval(d)
	if n := ticks(c.interval); c.remaining > n || !c.running {
		c.remaining = n
	}
}

// Start resets the countdown and captures immediately. current is what an
// empty interval repeats. Starting a running cycle restarts it.
func (c *CaptureCycle) Start(now time.Time, current mood.Estimate) mood.Captured {
	c.running = true
	c.remaining = ticks(c.interval)
	return c.capture(now, current)
}

// Stop halts the cycle and resets the countdown. Pending predictions are
// discarded; history is kept.
func (c *CaptureCycle) Stop() {
	c.running = false
	c.remaining = ticks(c.interval)
	c.pending = nil
}

// Add records a prediction for the next capture. Ignored while stopped.
func (c *CaptureCycle) Add(p mood.Prediction) {
	if !c.running {
		return
	}
	c.pending = append(c.pending, p)
}

// Tick advances the countdown by one step. When it reaches zero a capture is
// taken and returned with ok set.
func (c *CaptureCycle) Tick(now time.Time, current mood.Estimate) (captured mood.Captured, ok bool) {
	if !c.running {
		return mood.Captured{}, false
	}
	c.remaining--
	if c.remaining > 0 {
		return mood.Captured{}, false
	}
	c.remaining = ticks(c.interval)
	return c.capture(now, current), true
}

func (c *CaptureCycle) capture(now time.Time, current mood.Estimate) mood.Captured {
	est := dominant(c.pending, current)

	captured := mood.Captured{
		ID:         c.newID(),
		Mood:       est.Mood,
		Confidence: est.Confidence,
		Timestamp:  now,
		Changed:    c.last == nil || c.last.Mood != est.Mood,
	}

	c.history = append(c.history, captured)
	if len(c.history) > HistorySize {
		c.history = append(c.history[:0:0], c.history[len(c.history)-HistorySize:]...)
	}
	c.last = &captured
	c.pending = nil
	return captured
}

// dominant picks the mood with the highest mean confidence. An empty set
// repeats current; a set whose means are all zero yields Neutral.
func dominant(preds []mood.Prediction, current mood.Estimate) mood.Estimate {
	if len(preds) == 0 {
		return current
	}

	sums := mood.Scores{}
	counts := make(map[mood.Mood]int)
	for _, p := range preds {
		sums[p.Mood] += p.Confidence
		counts[p.Mood]++
	}

	// Neutral holds unless some mood's mean is strictly above zero. Among
	// positive means the lowest ordinal wins a tie.
	best, mean := mood.Neutral, 0.0
	for _, m := range mood.All() {
		n := counts[m]
		if n == 0 {
			continue
		}
		if v := sums[m] / float64(n); v > mean {
			best, mean = m, v
		}
	}
	return mood.Estimate{Mood: best, Confidence: mood.Clamp(mean)}
}
