package monitor

// SessionState is the lifecycle state of one camera session. A camera id
// with no session at all is implicitly idle; the registry only holds live
// entries.
type SessionState int

const (
	// SessionStarting indicates the session exists but has not read its
	// first frame yet.
	SessionStarting SessionState = iota
	// SessionRunning indicates the capture loop is producing frames.
	SessionRunning
	// SessionDraining indicates the session is flushing its final segment
	// and releasing resources.
	SessionDraining
	// SessionStopped indicates the session has fully terminated.
	SessionStopped
)

// String returns the string representation of SessionState.
func (s SessionState) String() string {
	switch s {
	case SessionStarting:
		return "starting"
	case SessionRunning:
		return "running"
	case SessionDraining:
		return "draining"
	case SessionStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
