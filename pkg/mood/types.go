// Package mood defines the discrete emotional states VibeWave classifies faces into,
// together with the value types that flow between inference and aggregation.
package mood

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mood is one of the five emotional classification labels.
//
// The ordinal order matters: when two moods score equally, the one with the
// lower ordinal wins.
type Mood int

const (
	Happy Mood = iota
	Calm
	Sad
	Angry
	Neutral
)

// Count is the number of moods.
const Count = 5

var names = [Count]string{"Happy", "Calm", "Sad", "Angry", "Neutral"}

// All returns every mood in ordinal order.
func All() []Mood {
	return []Mood{Happy, Calm, Sad, Angry, Neutral}
}

// Valid reports whether m is one of the defined moods.
func (m Mood) Valid() bool {
	return m >= Happy && m <= Neutral
}

// String returns the display name of the mood.
func (m Mood) String() string {
	if !m.Valid() {
		return "Unknown"
	}
	return names[m]
}

// ParseMood converts a mood name (case-insensitive) back into a Mood.
func ParseMood(s string) (Mood, error) {
	for i, n := range names {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Mood(i), nil
		}
	}
	return Neutral, fmt.Errorf("%w: %q", ErrUnknownMood, s)
}

// MarshalJSON encodes the mood as its name.
func (m Mood) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mood name.
func (m *Mood) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMood(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Estimate is a mood with the confidence it was reported at.
type Estimate struct {
	Mood       Mood    `json:"mood"`
	Confidence float64 `json:"confidence"`
}

// Prediction is a single timestamped estimate for one analyzed frame.
type Prediction struct {
	Mood       Mood      `json:"mood"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewPrediction builds a prediction with the confidence clamped to [0,1].
func NewPrediction(m Mood, confidence float64, at time.Time) Prediction {
	if !m.Valid() {
		m = Neutral
	}
	return Prediction{Mood: m, Confidence: Clamp(confidence), Timestamp: at}
}

// Estimate drops the timestamp.
func (p Prediction) Estimate() Estimate {
	return Estimate{Mood: p.Mood, Confidence: p.Confidence}
}

// Captured is one periodic capture snapshot.
type Captured struct {
	ID         uuid.UUID `json:"id"`
	Mood       Mood      `json:"mood"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`

	// Changed is true when Mood differs from the previous capture.
	Changed bool `json:"changed"`
}
