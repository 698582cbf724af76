// Package detection finds face bounding boxes in camera frames.
//
// A box alone carries no expression signal; inference uses it only to tell
// "a face is there" apart from "nothing is there".
package detection

import "math"

// Detection is one detected face.
type Detection struct {
	X, Y       float64 // top-left corner (0-1 normalized)
	W, H       float64 // width and height (0-1 normalized)
	Confidence float64 // detector score (0-1)
}

// Center returns the center point of the detection.
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box.
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Quality scores how usable the face is for expression analysis, in [0,1]:
// the mean of a size term (larger faces score higher, saturating at a quarter
// of the frame) and a position term (centered faces score higher, floored at 0.3).
func (d Detection) Quality() float64 {
	size := math.Min(1, d.Area()*4)

	cx, cy := d.Center()
	offset := math.Hypot(cx-0.5, cy-0.5)
	position := math.Max(0.3, 1-offset*2)

	q := (size + position) / 2
	return math.Max(0, math.Min(1, q))
}

// Detector is the interface for face detection backends.
type Detector interface {
	// Detect finds faces in a JPEG image.
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  `toml:"model_path"`
	ConfidenceThresh float64 `toml:"confidence_thresh" validate:"gt=0,lte=1"`
	NMSThresh        float64 `toml:"nms_thresh" validate:"gt=0,lte=1"`
	InputWidth       int     `toml:"input_width" validate:"gt=0"`
	InputHeight      int     `toml:"input_height" validate:"gt=0"`
}

// DefaultConfig returns production defaults for YuNet.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.3,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// SelectBest picks the face to analyze from multiple detections.
// Priority: confidence * 0.7 + relative area * 0.3.
func SelectBest(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}
	if len(dets) == 1 {
		return &dets[0]
	}

	maxArea := 0.0
	for _, d := range dets {
		if d.Area() > maxArea {
			maxArea = d.Area()
		}
	}

	bestScore := -1.0
	var best *Detection
	for i := range dets {
		areaScore := 0.0
		if maxArea > 0 {
			areaScore = dets[i].Area() / maxArea
		}
		score := dets[i].Confidence*0.7 + areaScore*0.3
		if score > bestScore {
			bestScore = score
			best = &dets[i]
		}
	}
	return best
}
