package aggregator

import "errors"

var (
	// ErrInvalidConfig is returned when a config fails validation.
	ErrInvalidConfig = errors.New("aggregator: invalid config")

	// ErrEngineStopped is returned by control methods once Run has exited.
	ErrEngineStopped = errors.New("aggregator: engine stopped")

	// ErrScanInProgress is returned when starting a scan while one is running.
	ErrScanInProgress = errors.New("aggregator: scan already in progress")
)
