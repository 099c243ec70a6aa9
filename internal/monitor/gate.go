package monitor

import (
	"sync"
	"time"
)

// NotificationGate throttles intrusion notifications. The very first
// detection always fires; after that a notification is allowed only once the
// cooldown has elapsed since the last one. Each camera session owns its own
// gate so an alert on one camera cannot mask intrusions on another.
type NotificationGate struct {
	mu        sync.Mutex
	lastFired time.Time
}

// NewNotificationGate creates a gate that allows its first call.
func NewNotificationGate() *NotificationGate {
	return &NotificationGate{}
}

// Allow reports whether a notification may fire at now with the given
// cooldown, recording now as the last-fired time when it does. The cooldown
// is supplied per call because it comes from the mutable settings snapshot.
func (g *NotificationGate) Allow(now time.Time, cooldown time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lastFired.IsZero() && now.Sub(g.lastFired) < cooldown {
		return false
	}
	g.lastFired = now
	return true
}
