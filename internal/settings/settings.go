// Package settings persists the user-tunable monitoring flags as a single
// flat JSON file. Sessions read a snapshot once per loop iteration, so a
// change takes effect on the next frame rather than retroactively.
package settings

import "time"

// Settings is the immutable snapshot consumed by camera sessions.
type Settings struct {
	NightVisionEnabled          bool `json:"NightVisionEnabled"`
	FacialRecognitionEnabled    bool `json:"FacialRecognitionEnabled"`
	NotificationCooldownSeconds int  `json:"NotificationCooldownSeconds"`
	RecordingSegmentSeconds     int  `json:"RecordingSegmentSeconds"`
}

// Default returns the settings written on first run.
func Default() Settings {
	return Settings{
		NightVisionEnabled:          true,
		FacialRecognitionEnabled:    true,
		NotificationCooldownSeconds: 300,
		RecordingSegmentSeconds:     60,
	}
}

// Cooldown returns the notification cooldown as a duration.
func (s Settings) Cooldown() time.Duration {
	return time.Duration(s.NotificationCooldownSeconds) * time.Second
}

// normalize clamps nonsensical values back to defaults.
func (s Settings) normalize() Settings {
	if s.NotificationCooldownSeconds <= 0 {
		s.NotificationCooldownSeconds = Default().NotificationCooldownSeconds
	}
	if s.RecordingSegmentSeconds <= 0 {
		s.RecordingSegmentSeconds = Default().RecordingSegmentSeconds
	}
	return s
}
