package monitor

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when a live session (running or
	// still draining) exists for the camera id.
	ErrAlreadyRunning = errors.New("camera is already being monitored")

	// ErrNotFound is returned by Stop when no session exists for the camera id.
	ErrNotFound = errors.New("no monitoring process found for camera")

	// ErrCaptureExhausted terminates a session after too many consecutive
	// failed frame reads.
	ErrCaptureExhausted = errors.New("camera capture exhausted retry budget")
)
