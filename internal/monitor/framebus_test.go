package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
)

func testFrame(w, h int) *camera.Frame {
	return camera.NewFrame(w, h, time.Now())
}

func TestFrameBusLatestWins(t *testing.T) {
	bus := NewFrameBus()

	_, ok := bus.Latest(0)
	assert.False(t, ok, "empty bus should have no frame")

	first := testFrame(4, 4)
	second := testFrame(4, 4)
	bus.Publish(0, first)
	bus.Publish(0, second)

	got, ok := bus.Latest(0)
	require.True(t, ok)
	assert.Same(t, second, got, "latest publish should supersede earlier ones")
}

func TestFrameBusRemove(t *testing.T) {
	bus := NewFrameBus()
	bus.Publish(1, testFrame(4, 4))

	_, ok := bus.Latest(1)
	require.True(t, ok)

	bus.Remove(1)
	_, ok = bus.Latest(1)
	assert.False(t, ok, "removed camera must read as not monitored")
}

func TestFrameBusSnapshot(t *testing.T) {
	bus := NewFrameBus()
	bus.Publish(0, testFrame(4, 4))
	bus.Publish(2, testFrame(4, 4))

	snap := bus.Snapshot()
	assert.Len(t, snap, 2)
	assert.Contains(t, snap, 0)
	assert.Contains(t, snap, 2)
}

func TestFrameBusConcurrentReaders(t *testing.T) {
	bus := NewFrameBus()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			bus.Publish(0, testFrame(2, 2))
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				bus.Latest(0)
				bus.Snapshot()
			}
		}()
	}

	<-done
	wg.Wait()
}
