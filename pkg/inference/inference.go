// Package inference turns one frame into a mood estimate.
//
// An Analyzer walks a fixed fallback order: an external classifier's label,
// then landmark geometry, then a bare face box, then nothing. Stage failures
// are logged and fall through; Analyze never returns an error.
package inference

import (
	"context"
	"time"

	"github.com/teslashibe/go-vibewave/pkg/face"
	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// Source names the stage that produced a Result.
type Source string

// Result sources, in fallback order.
const (
	SourceClassifier Source = "classifier"
	SourceLandmarks  Source = "landmarks"
	SourceFaceBox    Source = "face_box"
	SourceNone       Source = "none"
)

// FaceBoxWeight scales face quality into the confidence reported when only a
// face box is known.
const FaceBoxWeight = 0.2

// Frame is one unit of input.
type Frame struct {
	// Image is an encoded JPEG. Optional when Landmarks is set.
	Image []byte

	// Landmarks supplied by an upstream detector. Optional.
	Landmarks *face.Landmarks

	// CapturedAt is when the source produced the frame.
	CapturedAt time.Time
}

// Result is the outcome of analyzing one frame.
type Result struct {
	Mood       mood.Mood `json:"mood"`
	Confidence float64   `json:"confidence"`
	Source     Source    `json:"source"`
}

// Estimate drops the source.
func (r Result) Estimate() mood.Estimate {
	return mood.Estimate{Mood: r.Mood, Confidence: r.Confidence}
}

// LandmarkSource extracts landmarks from an image.
type LandmarkSource interface {
	Landmarks(ctx context.Context, jpeg []byte) (*face.Landmarks, error)
}

// LandmarkSourceFunc adapts a function to LandmarkSource.
type LandmarkSourceFunc func(ctx context.Context, jpeg []byte) (*face.Landmarks, error)

// Landmarks implements LandmarkSource.
func (f LandmarkSourceFunc) Landmarks(ctx context.Context, jpeg []byte) (*face.Landmarks, error) {
	return f(ctx, jpeg)
}
