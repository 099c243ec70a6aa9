package camera

import (
	"errors"
	"fmt"
)

// ErrSourceClosed is returned by Read after Close.
var ErrSourceClosed = errors.New("camera source closed")

// CaptureError wraps a failed frame read. Individual capture errors are
// transient; the session gives up only after a run of consecutive failures.
type CaptureError struct {
	CameraID int
	Err      error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("camera %d: capture failed: %v", e.CameraID, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// FrameSource produces an infinite, non-restartable sequence of frames from
// one physical camera. Implementations are not safe for concurrent Read.
type FrameSource interface {
	// Read blocks until the next frame is available.
	Read() (*Frame, error)

	// FrameRate returns the source's native frame rate in frames per second.
	FrameRate() int

	// Bounds returns the frame dimensions.
	Bounds() (width, height int)

	// Close releases the underlying device. Read returns ErrSourceClosed
	// afterwards.
	Close() error
}

// Opener opens a FrameSource for a camera id. The registry and the preview
// broadcaster both go through an Opener so tests can substitute fakes.
type Opener func(cameraID int) (FrameSource, error)
