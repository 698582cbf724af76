package mood

import "errors"

// ErrUnknownMood is returned when a mood name cannot be parsed.
var ErrUnknownMood = errors.New("mood: unknown mood")
