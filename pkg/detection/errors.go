package detection

import "errors"

var (
	// ErrModelNotFound is returned when the detector model file is missing.
	ErrModelNotFound = errors.New("detection: model file not found")

	// ErrEmptyImage is returned when a frame decodes to an empty image.
	ErrEmptyImage = errors.New("detection: empty image")

	// ErrClosed is returned when detecting on a closed detector.
	ErrClosed = errors.New("detection: detector closed")
)
