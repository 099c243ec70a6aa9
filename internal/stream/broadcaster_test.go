package stream

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
	"github.com/RyanLangman/CM3070-FinalProject/internal/monitor"
)

func testBroadcaster(bus *monitor.FrameBus) *Broadcaster {
	return NewBroadcaster(bus, nil, nil, Config{PollInterval: time.Millisecond, Width: 32, JPEGQuality: 75})
}

func TestEncodeFrameIsBase64JPEG(t *testing.T) {
	f := camera.NewFrame(64, 48, time.Now())

	payload, err := EncodeFrame(f, 32, 75)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(string(payload))
	require.NoError(t, err, "payload must be valid base64")
	require.Greater(t, len(raw), 2)
	assert.Equal(t, []byte{0xff, 0xd8}, raw[:2], "decoded payload must be a JPEG")
}

func TestEncodeFrameKeepsSmallFrames(t *testing.T) {
	f := camera.NewFrame(16, 16, time.Now())
	_, err := EncodeFrame(f, 640, 75)
	assert.NoError(t, err, "frames narrower than the target width pass through un-resized")
}

func TestMonitored(t *testing.T) {
	bus := monitor.NewFrameBus()
	b := testBroadcaster(bus)

	assert.False(t, b.Monitored(0))
	bus.Publish(0, camera.NewFrame(8, 8, time.Now()))
	assert.True(t, b.Monitored(0))
}

func TestServeMonitoredDeliversFrames(t *testing.T) {
	bus := monitor.NewFrameBus()
	bus.Publish(0, camera.NewFrame(8, 8, time.Now()))
	b := testBroadcaster(bus)

	ctx, cancel := context.WithCancel(context.Background())
	delivered := 0
	err := b.ServeMonitored(ctx, 0, func(payload []byte) error {
		assert.NotEmpty(t, payload)
		delivered++
		if delivered == 3 {
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, delivered, 3)
}

func TestMonitoredCoversStartupWindow(t *testing.T) {
	bus := monitor.NewFrameBus()
	liveIDs := map[int]bool{0: true}
	b := NewBroadcaster(bus, nil, func(id int) bool { return liveIDs[id] }, Config{PollInterval: time.Millisecond})

	// Session exists but has not published its first frame yet; the camera
	// must not be offered an exclusive preview capture.
	assert.True(t, b.Monitored(0))
	assert.False(t, b.Monitored(1))
}

func TestServeMonitoredWaitsForFirstFrame(t *testing.T) {
	bus := monitor.NewFrameBus()
	b := NewBroadcaster(bus, nil, func(int) bool { return true }, Config{PollInterval: time.Millisecond})

	go func() {
		time.Sleep(20 * time.Millisecond)
		bus.Publish(0, camera.NewFrame(8, 8, time.Now()))
	}()

	ctx, cancel := context.WithCancel(context.Background())
	delivered := 0
	err := b.ServeMonitored(ctx, 0, func([]byte) error {
		delivered++
		cancel()
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, delivered, "viewer should wait out the startup window and get the first frame")
}

func TestServeMonitoredUnknownCamera(t *testing.T) {
	b := testBroadcaster(monitor.NewFrameBus())
	err := b.ServeMonitored(context.Background(), 7, func([]byte) error { return nil })
	assert.ErrorIs(t, err, ErrNotMonitored)
}

func TestServeMonitoredEndsWhenMonitoringStops(t *testing.T) {
	bus := monitor.NewFrameBus()
	bus.Publish(0, camera.NewFrame(8, 8, time.Now()))
	b := testBroadcaster(bus)

	err := b.ServeMonitored(context.Background(), 0, func([]byte) error {
		// Session drained between sends.
		bus.Remove(0)
		return nil
	})
	assert.ErrorIs(t, err, ErrNotMonitored, "viewers must terminate instead of retrying forever")
}

func TestServeMonitoredStopsOnSendError(t *testing.T) {
	bus := monitor.NewFrameBus()
	bus.Publish(0, camera.NewFrame(8, 8, time.Now()))
	b := testBroadcaster(bus)

	wantErr := context.DeadlineExceeded
	err := b.ServeMonitored(context.Background(), 0, func([]byte) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestSnapshot(t *testing.T) {
	bus := monitor.NewFrameBus()
	bus.Publish(0, camera.NewFrame(8, 8, time.Now()))
	bus.Publish(3, camera.NewFrame(8, 8, time.Now()))
	b := testBroadcaster(bus)

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	for id, payload := range snap {
		_, err := base64.StdEncoding.DecodeString(payload)
		assert.NoError(t, err, "camera %d payload must be base64", id)
	}
}
