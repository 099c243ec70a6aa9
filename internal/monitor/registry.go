package monitor

import (
	"sync"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
)

// SessionRegistry is the only place sessions are created, started and
// stopped. Its lock guards table membership only; each session's internal
// state is privately owned. An entry stays in the table until its session
// reaches Stopped, so a Start racing a Draining session fails with
// ErrAlreadyRunning instead of racing the teardown.
type SessionRegistry struct {
	open camera.Opener
	deps Deps

	mu       sync.Mutex
	sessions map[int]*Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(open camera.Opener, deps Deps) *SessionRegistry {
	return &SessionRegistry{
		open:     open,
		deps:     deps,
		sessions: make(map[int]*Session),
	}
}

// Start opens the camera and launches its capture loop. Returns
// ErrAlreadyRunning while a session for the id is live in any state,
// including Draining.
func (r *SessionRegistry) Start(cameraID int) error {
	r.mu.Lock()
	if _, exists := r.sessions[cameraID]; exists {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	// Reserve the id before the (slow) device open so concurrent Start
	// calls cannot race two sessions for one camera.
	r.sessions[cameraID] = nil
	r.mu.Unlock()

	source, err := r.open(cameraID)
	if err != nil {
		r.remove(cameraID)
		return err
	}

	sess := newSession(cameraID, source, r.deps, func() { r.remove(cameraID) })

	r.mu.Lock()
	r.sessions[cameraID] = sess
	r.mu.Unlock()

	go sess.run()
	pkglog.L().Info().Int(pkglog.FieldCameraID, cameraID).Msg("monitoring started")
	return nil
}

// Stop signals the session for cameraID to drain. Returns ErrNotFound when
// no session exists. The id is released for reuse only once the drain
// completes.
func (r *SessionRegistry) Stop(cameraID int) error {
	r.mu.Lock()
	sess, exists := r.sessions[cameraID]
	r.mu.Unlock()

	if !exists || sess == nil {
		return ErrNotFound
	}
	sess.Stop()
	pkglog.L().Info().Int(pkglog.FieldCameraID, cameraID).Msg("monitoring stop requested")
	return nil
}

// State returns the lifecycle state of the session for cameraID.
func (r *SessionRegistry) State(cameraID int) (SessionState, bool) {
	r.mu.Lock()
	sess, exists := r.sessions[cameraID]
	r.mu.Unlock()

	if !exists || sess == nil {
		return 0, false
	}
	return sess.State(), true
}

// States returns a snapshot of all live sessions.
func (r *SessionRegistry) States() map[int]SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int]SessionState, len(r.sessions))
	for id, sess := range r.sessions {
		if sess != nil {
			out[id] = sess.State()
		}
	}
	return out
}

// StopAll drains every session and blocks until they have stopped.
func (r *SessionRegistry) StopAll() {
	r.mu.Lock()
	var live []*Session
	for _, sess := range r.sessions {
		if sess != nil {
			live = append(live, sess)
		}
	}
	r.mu.Unlock()

	for _, sess := range live {
		sess.Stop()
	}
	for _, sess := range live {
		<-sess.Done()
	}
}

// session returns the live session for an id, for tests.
func (r *SessionRegistry) session(cameraID int) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[cameraID]
}

func (r *SessionRegistry) remove(cameraID int) {
	r.mu.Lock()
	delete(r.sessions, cameraID)
	r.mu.Unlock()
}
