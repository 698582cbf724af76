package face

import "math"

const (
	minNosePoints   = 2
	minSymmetry     = 0.3
	defaultSymmetry = 0.5

	// symmetryBoost is the largest relative boost a perfectly centered face gets.
	symmetryBoost = 0.2
)

// Symmetry scores how well centered the nose tip is in the frame, in
// [0.3, 1]. Too few nose points return 0.5.
func Symmetry(nose Region) float64 {
	if len(nose) < minNosePoints {
		return defaultSymmetry
	}
	tip := nose[len(nose)-1]
	return math.Max(minSymmetry, math.Min(1, 1-math.Abs(tip.X-0.5)*2))
}

// SymmetryMultiplier converts a symmetry score into a score multiplier.
func SymmetryMultiplier(symmetry float64) float64 {
	return 1 + symmetry*symmetryBoost
}
