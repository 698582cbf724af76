package face

import (
	"math"

	"github.com/teslashibe/go-vibewave/pkg/geometry"
)

// Eyebrow thresholds.
const (
	minEyebrowPoints = 4

	loweredY        = 0.36
	loweredAngle    = -0.06
	loweredAsym     = 0.02
	loweredEachSide = -0.05

	raisedY        = 0.44
	raisedAngle    = 0.02
	raisedAsym     = 0.01
	raisedEachSide = 0.42

	highY        = 0.49
	highAngle    = 0.04
	highAsym     = 0.015
	highEachSide = 0.47
)

var (
	loweredIndicator = indicator{required: 3, low: 0.1, high: 0.9}
	raisedIndicator  = indicator{required: 2, low: 0.1, high: 0.8}
	highIndicator    = indicator{required: 3, low: 0.1, high: 0.88}
)

// EyebrowScores are the eyebrows' sub-scores.
type EyebrowScores struct {
	Angry     float64
	Sad       float64
	Surprised float64 // folded into Happy
}

// EyebrowFeatures are the raw eyebrow measurements.
type EyebrowFeatures struct {
	LeftY, RightY         float64
	LeftAngle, RightAngle float64
}

// Y is the average vertical position of both brows.
func (f EyebrowFeatures) Y() float64 { return (f.LeftY + f.RightY) / 2 }

// Angle is the average brow angle.
func (f EyebrowFeatures) Angle() float64 { return (f.LeftAngle + f.RightAngle) / 2 }

// Asymmetry is the height difference between the brows.
func (f EyebrowFeatures) Asymmetry() float64 { return math.Abs(f.LeftY - f.RightY) }

// MeasureEyebrows extracts eyebrow measurements. ok is false when either
// brow has too few points.
func MeasureEyebrows(left, right Region) (EyebrowFeatures, bool) {
	if len(left) < minEyebrowPoints || len(right) < minEyebrowPoints {
		return EyebrowFeatures{}, false
	}
	return EyebrowFeatures{
		LeftY:      geometry.MeanY(left),
		RightY:     geometry.MeanY(right),
		LeftAngle:  geometry.SpanAngle(left),
		RightAngle: geometry.SpanAngle(right),
	}, true
}

// AnalyzeEyebrows scores lowered brows (Angry), raised inner brows (Sad) and
// high symmetric brows (surprise). Too few points return {0.1, 0.1, 0.1}.
func AnalyzeEyebrows(left, right Region) EyebrowScores {
	f, ok := MeasureEyebrows(left, right)
	if !ok {
		return EyebrowScores{Angry: 0.1, Sad: 0.1, Surprised: 0.1}
	}
	y, angle, asym := f.Y(), f.Angle(), f.Asymmetry()

	angry := loweredIndicator.score(0.6+(loweredY-y)*4+math.Abs(angle)*2,
		y < loweredY,
		angle < loweredAngle,
		asym < loweredAsym,
		f.LeftAngle < loweredEachSide && f.RightAngle < loweredEachSide,
	)

	sad := raisedIndicator.score(0.5+(y-raisedY)*3,
		y > raisedY,
		angle > raisedAngle,
		asym > raisedAsym,
		f.LeftY > raisedEachSide && f.RightY > raisedEachSide,
	)

	surprised := highIndicator.score(0.4+(y-highY)*5+angle*3,
		y > highY,
		angle > highAngle,
		asym < highAsym,
		f.LeftY > highEachSide && f.RightY > highEachSide,
	)

	return EyebrowScores{Angry: angry, Sad: sad, Surprised: surprised}
}
