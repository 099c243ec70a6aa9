package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGateFirstDetectionAlwaysFires(t *testing.T) {
	gate := NewNotificationGate()
	assert.True(t, gate.Allow(time.Now(), 5*time.Minute))
}

func TestGateBlocksWithinCooldown(t *testing.T) {
	gate := NewNotificationGate()
	base := time.Now()
	cooldown := 5 * time.Minute

	assert.True(t, gate.Allow(base, cooldown))
	assert.False(t, gate.Allow(base.Add(time.Second), cooldown))
	assert.False(t, gate.Allow(base.Add(cooldown-time.Millisecond), cooldown))
	assert.True(t, gate.Allow(base.Add(cooldown), cooldown))
}

func TestGateSuppressedCallDoesNotResetTimer(t *testing.T) {
	gate := NewNotificationGate()
	base := time.Now()
	cooldown := time.Minute

	assert.True(t, gate.Allow(base, cooldown))
	// A burst of suppressed detections must not push the window forward.
	for i := 1; i < 50; i++ {
		assert.False(t, gate.Allow(base.Add(time.Duration(i)*time.Second), cooldown))
	}
	assert.True(t, gate.Allow(base.Add(cooldown), cooldown))
}

func TestGateUsesCooldownFromCall(t *testing.T) {
	gate := NewNotificationGate()
	base := time.Now()

	assert.True(t, gate.Allow(base, 5*time.Minute))
	// Cooldown shrank via a settings change; the shorter window applies.
	assert.True(t, gate.Allow(base.Add(2*time.Second), time.Second))
}
