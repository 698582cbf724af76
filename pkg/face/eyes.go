package face

import (
	"github.com/teslashibe/go-vibewave/pkg/geometry"
	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// Eye thresholds.
const (
	minEyePoints = 6

	// assumedPupilArea stands in for a measured pupil area; detectors rarely
	// outline the pupil, so dilation is driven by eye size alone.
	assumedPupilArea = 0.01

	calmHeight    = 0.038
	calmWidth     = 0.075
	calmDilation  = 0.52
	calmCentering = 0.6
	calmAspect    = 0.4

	squintHeight   = 0.028
	squintWidth    = 0.058
	squintDilation = 0.48
	squintAspect   = 0.35
	squintRef      = 0.032

	brightHeight    = 0.042
	brightDilation  = 0.58
	brightCentering = 0.65
	brightWidth     = 0.08
)

var (
	calmIndicator   = indicator{required: 3, low: 0.15, high: 0.96}
	squintIndicator = indicator{required: 2, low: 0.1, high: 0.88}
	brightIndicator = indicator{required: 3, low: 0.18, high: 0.92}
)

// EyeScores are the eyes' sub-scores.
type EyeScores struct {
	Calm   float64
	Angry  float64
	Bright float64 // folded into Happy
}

// EyeFeatures are the raw eye measurements averaged over both eyes.
type EyeFeatures struct {
	Height    float64
	Width     float64
	Dilation  float64 // pupil-to-eye area ratio, 0.5 without pupils
	Centering float64 // 1 is a pupil exactly at the eye centroid, 0.5 without pupils
}

// Aspect returns height/width, 0 for a zero-width eye.
func (f EyeFeatures) Aspect() float64 {
	if f.Width == 0 {
		return 0
	}
	return f.Height / f.Width
}

// MeasureEyes extracts eye measurements. Pupils are optional. ok is false
// when either eye has too few points.
func MeasureEyes(leftEye, rightEye, leftPupil, rightPupil Region) (EyeFeatures, bool) {
	if len(leftEye) < minEyePoints || len(rightEye) < minEyePoints {
		return EyeFeatures{}, false
	}

	f := EyeFeatures{
		Height:    (geometry.EyeHeight(leftEye) + geometry.EyeHeight(rightEye)) / 2,
		Width:     (geometry.EyeWidth(leftEye) + geometry.EyeWidth(rightEye)) / 2,
		Dilation:  0.5,
		Centering: 0.5,
	}

	if leftPupil.Available() && rightPupil.Available() {
		f.Dilation = pupilDilation(leftEye, rightEye)
		f.Centering = pupilCentering(leftEye, rightEye, leftPupil, rightPupil)
	}
	return f, true
}

func pupilDilation(leftEye, rightEye Region) float64 {
	eyeArea := (geometry.BoxArea(leftEye) + geometry.BoxArea(rightEye)) / 2
	if eyeArea <= 0 {
		return 1
	}
	return mood.Clamp(assumedPupilArea / eyeArea * 10)
}

func pupilCentering(leftEye, rightEye, leftPupil, rightPupil Region) float64 {
	left := 1 - geometry.Distance(geometry.Centroid(leftPupil), geometry.Centroid(leftEye))
	right := 1 - geometry.Distance(geometry.Centroid(rightPupil), geometry.Centroid(rightEye))
	return mood.Clamp((left + right) / 2)
}

// AnalyzeEyes scores relaxed open eyes (Calm), squinting (Angry) and wide
// bright eyes (Happy). Too few points return {0.2, 0.1, 0.1}.
func AnalyzeEyes(leftEye, rightEye, leftPupil, rightPupil Region) EyeScores {
	f, ok := MeasureEyes(leftEye, rightEye, leftPupil, rightPupil)
	if !ok {
		return EyeScores{Calm: 0.2, Angry: 0.1, Bright: 0.1}
	}
	aspect := f.Aspect()

	calm := calmIndicator.score(0.65+f.Height*8+f.Centering*0.2,
		f.Height > calmHeight,
		f.Width > calmWidth,
		f.Dilation > calmDilation,
		f.Centering > calmCentering,
		aspect > calmAspect,
	)

	angry := squintIndicator.score(0.55+(squintRef-f.Height)*15,
		f.Height < squintHeight,
		f.Width < squintWidth,
		f.Dilation < squintDilation,
		aspect < squintAspect,
	)

	bright := brightIndicator.score(0.5+f.Height*5+f.Dilation*0.5+f.Centering*0.3,
		f.Height > brightHeight,
		f.Dilation > brightDilation,
		f.Centering > brightCentering,
		f.Width > brightWidth,
	)

	return EyeScores{Calm: calm, Angry: angry, Bright: bright}
}
