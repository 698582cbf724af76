package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials is returned when neither an API key nor default credentials are available.
	ErrNoCredentials = errors.New("classifier: no credentials")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("classifier: empty response")

	// ErrNoClassifiers is returned when a chain is built without members.
	ErrNoClassifiers = errors.New("classifier: no classifiers")
)

// ParseError reports a model reply that could not be read as a label.
type ParseError struct {
	Raw string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("classifier: parse reply %q: %v", truncate(e.Raw, 80), e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
