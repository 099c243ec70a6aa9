package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
	"github.com/RyanLangman/CM3070-FinalProject/internal/settings"
	"github.com/RyanLangman/CM3070-FinalProject/internal/vision"
	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
)

// SettingsProvider yields the current settings snapshot. Sessions read one
// snapshot per loop iteration; changes apply on the next iteration.
type SettingsProvider interface {
	Current() settings.Settings
}

// SnapshotSaver persists the raw/annotated frame pair of an intrusion.
type SnapshotSaver interface {
	SaveIntrusion(raw, labeled *camera.Frame, ts time.Time) (labeledPath, unlabeledPath string, err error)
}

// Notifier dispatches an intrusion alert carrying a JPEG snapshot.
// Best-effort: failures are logged by the session, never propagated.
type Notifier interface {
	Send(ctx context.Context, image []byte) error
}

// EventRecorder appends an intrusion to the persistent event log.
type EventRecorder interface {
	RecordIntrusion(ctx context.Context, cameraID int, label string, confidence float64, labeledPath, unlabeledPath string) error
}

// Deps are the collaborators a session drives. All are shared across
// sessions except the notification gate, which each session owns.
type Deps struct {
	Bus       *FrameBus
	Writer    *SegmentWriter
	Vision    vision.Pipeline
	Settings  SettingsProvider
	Snapshots SnapshotSaver
	Notifier  Notifier
	Events    EventRecorder

	// FailureThreshold is the number of consecutive failed reads after
	// which the session drains with ErrCaptureExhausted.
	FailureThreshold int
	// JPEGQuality for notification snapshots.
	JPEGQuality int
}

// Session is the per-camera capture loop and its lifecycle state. It owns
// the frame source exclusively; all shared state goes through the frame bus
// and the segment writer queue.
type Session struct {
	cameraID int
	source   camera.FrameSource
	deps     Deps
	gate     *NotificationGate
	log      zerolog.Logger

	mu    sync.Mutex
	state SessionState

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// pending counts batches handed to the writer but not yet flushed.
	pending sync.WaitGroup

	onStopped func()
}

func newSession(cameraID int, source camera.FrameSource, deps Deps, onStopped func()) *Session {
	if deps.FailureThreshold <= 0 {
		deps.FailureThreshold = 30
	}
	if deps.JPEGQuality <= 0 {
		deps.JPEGQuality = 85
	}
	return &Session{
		cameraID:  cameraID,
		source:    source,
		deps:      deps,
		gate:      NewNotificationGate(),
		log:       pkglog.L().With().Int(pkglog.FieldCameraID, cameraID).Logger(),
		state:     SessionStarting,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		onStopped: onStopped,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.log.Debug().Str(pkglog.FieldSession, st.String()).Msg("session state changed")
}

// Stop signals the capture loop to drain. Idempotent; returns immediately.
// The loop observes the signal within one frame-read interval.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed once the session has reached Stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// run is the capture loop. It must be the only goroutine touching source
// and the current batch.
func (s *Session) run() {
	defer close(s.done)

	snap := s.deps.Settings.Current()
	batch := NewSegmentBatch(s.cameraID, s.source.FrameRate(), snap.RecordingSegmentSeconds)

	failures := 0
	for {
		select {
		case <-s.stop:
			s.drain(batch, nil)
			return
		default:
		}

		frame, err := s.source.Read()
		if err != nil {
			if errors.Is(err, camera.ErrSourceClosed) {
				s.drain(batch, err)
				return
			}
			failures++
			s.log.Warn().Err(err).Int("consecutive", failures).Msg("failed to capture frame")
			if failures >= s.deps.FailureThreshold {
				s.drain(batch, ErrCaptureExhausted)
				return
			}
			continue
		}
		failures = 0

		if s.State() == SessionStarting {
			s.setState(SessionRunning)
		}

		snap = s.deps.Settings.Current()

		// The raw frame is what gets recorded; detection and enhancement
		// output is only used for live preview and notifications.
		display := frame

		if snap.FacialRecognitionEnabled {
			res, err := s.deps.Vision.Detect(frame)
			if err != nil {
				s.log.Warn().Err(err).Msg("face detection failed")
			} else {
				display = res.Annotated
				if res.Recognition != nil && res.Recognition.Intruder {
					s.handleIntrusion(frame, res, snap)
				}
			}
		}

		if snap.NightVisionEnabled {
			display = s.deps.Vision.Enhance(display)
		}

		s.deps.Bus.Publish(s.cameraID, display)

		if batch.Append(frame) {
			s.handoff(batch)
			batch = NewSegmentBatch(s.cameraID, s.source.FrameRate(), snap.RecordingSegmentSeconds)
		}
	}
}

// handoff transfers batch ownership to the segment writer.
func (s *Session) handoff(batch *SegmentBatch) {
	s.pending.Add(1)
	batch.done = func() { s.pending.Done() }
	s.deps.Writer.Enqueue(batch)
}

// drain flushes the partial batch, releases the camera, removes the frame
// bus entry and waits for this session's queued segments before the session
// disappears from the registry.
func (s *Session) drain(batch *SegmentBatch, cause error) {
	s.setState(SessionDraining)
	if cause != nil {
		s.log.Warn().Err(cause).Msg("session draining after capture failure")
	}

	if batch.Len() > 0 {
		s.handoff(batch)
	}

	if err := s.source.Close(); err != nil {
		s.log.Warn().Err(err).Msg("failed to release camera")
	}
	s.deps.Bus.Remove(s.cameraID)

	s.pending.Wait()
	s.setState(SessionStopped)
	if s.onStopped != nil {
		s.onStopped()
	}
	s.log.Info().Msg("session stopped")
}

// handleIntrusion persists the snapshot pair, records the event and fires
// the notifier, all gated by the cooldown. Dispatch happens off the capture
// loop so a slow SMTP server cannot stall capture.
func (s *Session) handleIntrusion(raw *camera.Frame, res vision.Result, snap settings.Settings) {
	if !s.gate.Allow(time.Now(), snap.Cooldown()) {
		return
	}

	rec := *res.Recognition
	rawCopy := raw.Clone()
	labeled := res.Annotated
	if labeled == raw {
		labeled = rawCopy
	}

	s.log.Info().Str("label", rec.Label).Float64("confidence", rec.Confidence).Msg("intruder detected")

	go func() {
		ctx := context.Background()

		labeledPath, unlabeledPath := "", ""
		if s.deps.Snapshots != nil {
			var err error
			labeledPath, unlabeledPath, err = s.deps.Snapshots.SaveIntrusion(rawCopy, labeled, rawCopy.Timestamp)
			if err != nil {
				s.log.Error().Err(err).Msg("failed to save intrusion snapshots")
			}
		}

		if s.deps.Events != nil {
			if err := s.deps.Events.RecordIntrusion(ctx, s.cameraID, rec.Label, rec.Confidence, labeledPath, unlabeledPath); err != nil {
				s.log.Error().Err(err).Msg("failed to record intrusion event")
			}
		}

		if s.deps.Notifier != nil {
			img, err := labeled.EncodeJPEG(s.deps.JPEGQuality)
			if err != nil {
				s.log.Error().Err(err).Msg("failed to encode notification snapshot")
				return
			}
			if err := s.deps.Notifier.Send(ctx, img); err != nil {
				s.log.Error().Err(err).Msg("failed to send intrusion notification")
			}
		}
	}()
}
