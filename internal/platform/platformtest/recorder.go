// Package platformtest provides recording fakes for the platform
// capabilities.
package platformtest

import (
	"sync"
	"time"

	"github.com/five82/spotter/internal/platform"
)

// Notifier records notifications.
type Notifier struct {
	mu     sync.Mutex
	Perm   platform.Permission
	Titles []string
	Bodies []string
}

// Permission implements platform.Notifier.
func (n *Notifier) Permission() platform.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Perm == "" {
		return platform.PermissionDefault
	}
	return n.Perm
}

// RequestPermission implements platform.Notifier.
func (n *Notifier) RequestPermission() platform.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Perm = platform.PermissionGranted
	return n.Perm
}

// Notify implements platform.Notifier.
func (n *Notifier) Notify(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Titles = append(n.Titles, title)
	n.Bodies = append(n.Bodies, body)
	return nil
}

// Count returns how many notifications were shown.
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Titles)
}

// Vibrator records vibration patterns.
type Vibrator struct {
	mu       sync.Mutex
	Patterns [][]time.Duration
}

// Vibrate implements platform.Vibrator.
func (v *Vibrator) Vibrate(pattern []time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Patterns = append(v.Patterns, pattern)
	return nil
}

// Count returns how many patterns were triggered.
func (v *Vibrator) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.Patterns)
}

// Audio records played sequences. It starts locked, like the real thing.
type Audio struct {
	mu        sync.Mutex
	unlocked  bool
	Sequences [][]platform.Tone
	Unlocks   int
}

// Unlock implements platform.Audio.
func (a *Audio) Unlock() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unlocked = true
	a.Unlocks++
	return nil
}

// Unlocked implements platform.Audio.
func (a *Audio) Unlocked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unlocked
}

// Play implements platform.Audio.
func (a *Audio) Play(tones []platform.Tone) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.unlocked {
		return platform.ErrAudioLocked
	}
	a.Sequences = append(a.Sequences, tones)
	return nil
}

// Count returns how many sequences were played.
func (a *Audio) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Sequences)
}
