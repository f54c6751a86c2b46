package platform

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notification is a message queued for display by the UI.
type Notification struct {
	Title string
	Body  string
	At    time.Time
}

// Inbox is a Notifier for terminal sessions. Notifications are buffered
// until the UI drains them and renders a toast.
type Inbox struct {
	mu           sync.Mutex
	permission   Permission
	pending      []Notification
	onPermission func(Permission)
	limit        int
}

const defaultInboxLimit = 32

// NewInbox returns an Inbox starting with the given permission. onPermission
// is called after RequestPermission so the answer can be persisted.
func NewInbox(permission Permission, onPermission func(Permission)) *Inbox {
	return &Inbox{
		permission:   permission,
		onPermission: onPermission,
		limit:        defaultInboxLimit,
	}
}

// Permission implements Notifier.
func (i *Inbox) Permission() Permission {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.permission
}

// RequestPermission implements Notifier. In a terminal the explicit key
// press that triggers the request is the consent, unless the user denied
// it earlier.
func (i *Inbox) RequestPermission() Permission {
	i.mu.Lock()
	if i.permission == PermissionDefault {
		i.permission = PermissionGranted
	}
	p := i.permission
	cb := i.onPermission
	i.mu.Unlock()

	if cb != nil {
		cb(p)
	}
	return p
}

// Notify implements Notifier.
func (i *Inbox) Notify(title, body string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pending = append(i.pending, Notification{Title: title, Body: body, At: time.Now()})
	if over := len(i.pending) - i.limit; over > 0 {
		i.pending = i.pending[over:]
	}
	return nil
}

// Drain returns and clears the pending notifications.
func (i *Inbox) Drain() []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.pending
	i.pending = nil
	return out
}

// Bell plays tone sequences as terminal bell characters, one per tone,
// spaced by each tone's duration and gap.
type Bell struct {
	mu       sync.Mutex
	out      io.Writer
	unlocked bool
	after    func(time.Duration, func())
}

// NewBell writes bells to out.
func NewBell(out io.Writer) *Bell {
	return &Bell{
		out: out,
		after: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// Unlock implements Audio.
func (b *Bell) Unlock() error {
	b.mu.Lock()
	b.unlocked = true
	b.mu.Unlock()
	return nil
}

// Unlocked implements Audio.
func (b *Bell) Unlocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unlocked
}

// Play implements Audio.
func (b *Bell) Play(tones []Tone) error {
	if !b.Unlocked() {
		return ErrAudioLocked
	}
	var offset time.Duration
	for _, tone := range tones {
		if offset == 0 {
			b.ring()
		} else {
			b.after(offset, b.ring)
		}
		offset += tone.Duration + tone.Gap
	}
	return nil
}

func (b *Bell) ring() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = b.out.Write([]byte{'\a'})
}

// LogVibrator records vibration requests. Terminals have no haptics, so the
// pattern only shows up in the log.
type LogVibrator struct {
	logger *zap.Logger
}

// NewLogVibrator returns a Vibrator that logs through logger.
func NewLogVibrator(logger *zap.Logger) *LogVibrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogVibrator{logger: logger}
}

// Vibrate implements Vibrator.
func (v *LogVibrator) Vibrate(pattern []time.Duration) error {
	v.logger.Debug("vibrate", zap.Durations("pattern", pattern))
	return nil
}
