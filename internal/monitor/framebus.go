package monitor

import (
	"sync"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
)

// FrameBus holds the single most recent frame per monitored camera. The
// capture loop is the only writer for its camera; any number of viewer loops
// read concurrently. Absence of an entry means the camera is not monitored
// and readers must treat that as terminal, not retry forever.
type FrameBus struct {
	mu    sync.RWMutex
	slots map[int]*slot
}

type slot struct {
	mu    sync.RWMutex
	frame *camera.Frame
}

// NewFrameBus creates an empty bus.
func NewFrameBus() *FrameBus {
	return &FrameBus{slots: make(map[int]*slot)}
}

// Publish overwrites the latest frame for a camera, creating the slot on
// first publish. The frame must not be mutated after publishing.
func (b *FrameBus) Publish(cameraID int, f *camera.Frame) {
	b.mu.Lock()
	s, ok := b.slots[cameraID]
	if !ok {
		s = &slot{}
		b.slots[cameraID] = s
	}
	b.mu.Unlock()

	s.mu.Lock()
	s.frame = f
	s.mu.Unlock()
}

// Latest returns the most recently published frame for a camera. The second
// return is false when the camera has no slot (not monitored).
func (b *FrameBus) Latest(cameraID int) (*camera.Frame, bool) {
	b.mu.RLock()
	s, ok := b.slots[cameraID]
	b.mu.RUnlock()
	if !ok {
		return nil, false
	}

	s.mu.RLock()
	f := s.frame
	s.mu.RUnlock()
	if f == nil {
		return nil, false
	}
	return f, true
}

// Remove drops a camera's slot. Called by the session on drain.
func (b *FrameBus) Remove(cameraID int) {
	b.mu.Lock()
	delete(b.slots, cameraID)
	b.mu.Unlock()
}

// Snapshot returns the latest frame of every monitored camera.
func (b *FrameBus) Snapshot() map[int]*camera.Frame {
	b.mu.RLock()
	slots := make(map[int]*slot, len(b.slots))
	for id, s := range b.slots {
		slots[id] = s
	}
	b.mu.RUnlock()

	out := make(map[int]*camera.Frame, len(slots))
	for id, s := range slots {
		s.mu.RLock()
		if s.frame != nil {
			out[id] = s.frame
		}
		s.mu.RUnlock()
	}
	return out
}
