// Package stream serves live frames to viewers. Monitored cameras are read
// from the frame bus so any number of viewers can watch without touching the
// capture loop; unmonitored cameras get an exclusive short-lived preview
// capture instead.
package stream

import (
	"context"
	"errors"
	"time"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
	"github.com/RyanLangman/CM3070-FinalProject/internal/monitor"
	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
)

// ErrNotMonitored is returned when a viewer asks for a camera with no frame
// bus entry; the caller should close the viewer connection rather than
// retry.
var ErrNotMonitored = errors.New("camera is not being monitored")

// SendFunc delivers one encoded frame to a single viewer. A non-nil error
// terminates the viewer loop.
type SendFunc func(payload []byte) error

// LivenessFunc reports whether a capture session exists for a camera, in any
// lifecycle state. Covers the startup window before the first frame reaches
// the bus.
type LivenessFunc func(cameraID int) bool

// Config holds broadcaster settings.
type Config struct {
	// PollInterval between frame bus reads per viewer.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// Width frames are resized to before transport; height keeps aspect.
	Width int `mapstructure:"width"`
	// JPEGQuality for transport encoding.
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

// Broadcaster fans live frames out to viewers.
type Broadcaster struct {
	bus  *monitor.FrameBus
	open camera.Opener
	live LivenessFunc
	cfg  Config
}

// NewBroadcaster creates a broadcaster over the given frame bus. open is
// used only for preview mode; live may be nil, in which case bus presence
// alone decides monitored status.
func NewBroadcaster(bus *monitor.FrameBus, open camera.Opener, live LivenessFunc, cfg Config) *Broadcaster {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 50 * time.Millisecond
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 75
	}
	return &Broadcaster{bus: bus, open: open, live: live, cfg: cfg}
}

// Monitored reports whether the camera is owned by a capture session. A
// session that has not published its first frame yet still counts; opening
// a preview capture against it would race the session for the device.
func (b *Broadcaster) Monitored(cameraID int) bool {
	if _, ok := b.bus.Latest(cameraID); ok {
		return true
	}
	return b.live != nil && b.live(cameraID)
}

// ServeMonitored streams a monitored camera's latest frames to one viewer
// until the context is cancelled, send fails, or the camera stops being
// monitored. Each viewer runs its own loop over the shared bus entry, so
// viewers cannot slow each other down or affect capture cadence.
func (b *Broadcaster) ServeMonitored(ctx context.Context, cameraID int, send SendFunc) error {
	if !b.Monitored(cameraID) {
		return ErrNotMonitored
	}

	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	delivered := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		frame, ok := b.bus.Latest(cameraID)
		if !ok {
			// Before the first frame the session may still be starting up;
			// keep waiting while it is alive. After that, a missing entry
			// means monitoring stopped and the viewer must terminate.
			if !delivered && b.live != nil && b.live(cameraID) {
				continue
			}
			return ErrNotMonitored
		}
		delivered = true

		payload, err := EncodeFrame(frame, b.cfg.Width, b.cfg.JPEGQuality)
		if err != nil {
			pkglog.L().Warn().Err(err).Int(pkglog.FieldCameraID, cameraID).Msg("failed to encode stream frame")
			continue
		}
		if err := send(payload); err != nil {
			return err
		}
	}
}

// ServePreview owns a direct capture loop for one viewer of an unmonitored
// camera. The device is opened for this viewer alone and released as soon
// as the viewer goes away.
func (b *Broadcaster) ServePreview(ctx context.Context, cameraID int, send SendFunc) error {
	source, err := b.open(cameraID)
	if err != nil {
		return err
	}
	defer source.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := source.Read()
		if err != nil {
			return err
		}

		payload, err := EncodeFrame(frame, b.cfg.Width, b.cfg.JPEGQuality)
		if err != nil {
			pkglog.L().Warn().Err(err).Int(pkglog.FieldCameraID, cameraID).Msg("failed to encode preview frame")
			continue
		}
		if err := send(payload); err != nil {
			return err
		}
	}
}

// Snapshot returns the latest frame of every monitored camera, transport
// encoded. Used by the all-cameras preview endpoint.
func (b *Broadcaster) Snapshot() map[int]string {
	out := make(map[int]string)
	for id, frame := range b.bus.Snapshot() {
		payload, err := EncodeFrame(frame, b.cfg.Width, b.cfg.JPEGQuality)
		if err != nil {
			pkglog.L().Warn().Err(err).Int(pkglog.FieldCameraID, id).Msg("failed to encode snapshot frame")
			continue
		}
		out[id] = string(payload)
	}
	return out
}
