package mood

import "math"

// Clamp restricts a confidence value to [0,1]. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Scores holds one score per mood. A mood that produced no signal is absent.
type Scores map[Mood]float64

// Best returns the mood with the highest score. Ties go to the lowest ordinal,
// so the result never depends on map iteration order. ok is false when s is empty.
func (s Scores) Best() (best Mood, score float64, ok bool) {
	for _, m := range All() {
		v, present := s[m]
		if !present {
			continue
		}
		if !ok || v > score {
			best, score, ok = m, v, true
		}
	}
	return best, score, ok
}
