package face

import (
	"math"

	"github.com/teslashibe/go-vibewave/pkg/geometry"
)

// Mouth thresholds.
const (
	minOuterLipPoints = 12
	minInnerLipPoints = 6

	smileCurve      = 0.025
	smileHeight     = 0.018
	smileUpperCurve = 0.015
	smileWidth      = 0.15

	frownCurve      = -0.018
	frownHeight     = 0.012
	frownUpperCurve = -0.01
	frownWidth      = 0.12

	neutralCurve      = 0.012
	neutralHeight     = 0.02
	neutralUpperCurve = 0.008
)

var (
	smileIndicator = indicator{required: 3, low: 0.1, high: 0.95}
	frownIndicator = indicator{required: 2, low: 0.1, high: 0.85}
)

// MouthScores are the mouth's sub-scores.
type MouthScores struct {
	Smile   float64
	Frown   float64
	Neutral float64
}

// MouthFeatures are the raw mouth measurements.
type MouthFeatures struct {
	Width      float64
	Height     float64
	Curve      float64 // top lip center relative to the corners; positive is upward
	UpperCurve float64 // upper lip relative to the corners
}

// MeasureMouth extracts mouth measurements. ok is false when there are not
// enough points.
func MeasureMouth(outer, inner Region) (MouthFeatures, bool) {
	if len(outer) < minOuterLipPoints || len(inner) < minInnerLipPoints {
		return MouthFeatures{}, false
	}

	leftCorner := outer[0]
	rightCorner := outer[6]
	topCenter := outer[3]
	bottomCenter := outer[9]
	cornerY := (leftCorner.Y + rightCorner.Y) / 2
	upperY := geometry.MeanY([]geometry.Point{outer[2], outer[4]})

	return MouthFeatures{
		Width:      math.Abs(rightCorner.X - leftCorner.X),
		Height:     math.Abs(bottomCenter.Y - topCenter.Y),
		Curve:      topCenter.Y - cornerY,
		UpperCurve: upperY - cornerY,
	}, true
}

// AnalyzeMouth scores smile (Happy), frown (Sad) and a relaxed closed mouth
// (Neutral). Too few points return {0.1, 0.1, 0.5}.
func AnalyzeMouth(outer, inner Region) MouthScores {
	f, ok := MeasureMouth(outer, inner)
	if !ok {
		return MouthScores{Smile: 0.1, Frown: 0.1, Neutral: 0.5}
	}

	smile := smileIndicator.score(0.6+f.Curve*15+f.UpperCurve*8,
		f.Curve > smileCurve,
		f.Height > smileHeight,
		f.UpperCurve > smileUpperCurve,
		f.Width > smileWidth,
	)

	frown := frownIndicator.score(0.5+math.Abs(f.Curve*12),
		f.Curve < frownCurve,
		f.Height < frownHeight,
		f.UpperCurve < frownUpperCurve,
		f.Width < frownWidth,
	)

	neutral := 0.2
	if math.Abs(f.Curve) < neutralCurve && f.Height < neutralHeight && math.Abs(f.UpperCurve) < neutralUpperCurve {
		neutral = 0.75
	}

	return MouthScores{Smile: smile, Frown: frown, Neutral: neutral}
}
