package face

import "math"

// indicator describes one mood channel of a region: how many tests must
// pass and the score range used when they do.
type indicator struct {
	required int
	low      float64 // returned when too few tests pass
	high     float64 // upper clamp for the measured score
}

// score counts the passing tests. When at least required pass, value is
// clamped into [low, high]; otherwise low is returned.
func (ind indicator) score(value float64, tests ...bool) float64 {
	passed := 0
	for _, ok := range tests {
		if ok {
			passed++
		}
	}
	if passed < ind.required || math.IsNaN(value) {
		return ind.low
	}
	return math.Max(ind.low, math.Min(ind.high, value))
}
