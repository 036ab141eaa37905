package quiz

import "errors"

var (
	// ErrSourceUnavailable is returned when the question provider fails or sends a
	// payload that cannot be turned into questions.
	ErrSourceUnavailable = errors.New("question source unavailable")

	// ErrInitializationFailed wraps source failures during Initialize and Reset.
	ErrInitializationFailed = errors.New("quiz initialization failed")

	// ErrInitializing is returned when a load is already in flight.
	ErrInitializing = errors.New("quiz is already initializing")
)
