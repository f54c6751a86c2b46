// Package platform declares the device capabilities the workout engine
// consumes (notifications, vibration, audio) and provides terminal-backed
// implementations of them.
package platform

import (
	"errors"
	"time"
)

// Permission is the user's answer to the notification permission prompt.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps a stored preference value to a Permission.
// Unknown values read as PermissionDefault.
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// Notifier shows system-level notifications.
type Notifier interface {
	Permission() Permission
	RequestPermission() Permission
	Notify(title, body string) error
}

// Vibrator triggers a haptic pattern of alternating on/off durations.
type Vibrator interface {
	Vibrate(pattern []time.Duration) error
}

// Tone is a single oscillator note.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Gap       time.Duration
}

// ErrAudioLocked is returned by Audio.Play before Unlock was called from a
// user interaction.
var ErrAudioLocked = errors.New("audio output is locked until a user interaction")

// Audio synthesizes short tone sequences. Playback only works after Unlock
// has been called from inside a user-interaction handler.
type Audio interface {
	Unlock() error
	Unlocked() bool
	Play(tones []Tone) error
}
