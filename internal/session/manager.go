// Package session tracks whether a workout is in progress, when it started,
// and the draft being edited, mirroring all of it to the durable store.
package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/spotter/internal/clock"
	"github.com/five82/spotter/internal/kv"
	"github.com/five82/spotter/internal/remote"
)

// Kind is the value of the active workout marker.
type Kind string

const (
	// KindDraft marks a draft being assembled.
	KindDraft Kind = "draft"
	// KindActive marks a workout loaded from a template and running.
	KindActive Kind = "active"
)

const elapsedInterval = time.Second

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	ActiveWorkoutID Kind
	StartedAt       time.Time
	ElapsedSeconds  int
	HasDraft        bool
}

// Active reports whether a workout is in progress.
func (s Snapshot) Active() bool { return s.ActiveWorkoutID != "" }

type storedID struct {
	ActiveWorkoutID *string `json:"activeWorkoutId"`
}

type storedStart struct {
	StartedAt *int64 `json:"startedAt"`
}

type storedDraft struct {
	DraftPayload *remote.Workout `json:"draftPayload"`
}

// Options configure a Manager.
type Options struct {
	Clock  clock.Clock
	Store  kv.Store
	Logger *zap.Logger
	// OnChange receives a snapshot on every state change and once per
	// elapsed second while a session is active.
	OnChange func(Snapshot)
}

// Manager owns the session lifecycle.
type Manager struct {
	mu       sync.Mutex
	clock    clock.Clock
	store    kv.Store
	logger   *zap.Logger
	onChange func(Snapshot)

	kind      Kind
	startedAt time.Time
	draft     *remote.Workout
	lastShown int

	ticker   clock.Ticker
	tickDone chan struct{}
}

// New builds a Manager and restores any session persisted by a previous
// process.
func New(opts Options) *Manager {
	m := &Manager{
		clock:    opts.Clock,
		store:    opts.Store,
		logger:   opts.Logger,
		onChange: opts.OnChange,
	}
	if m.clock == nil {
		m.clock = clock.Real()
	}
	if m.store == nil {
		m.store = kv.NewMemory()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	m.restore()
	return m
}

// Start marks a session active. The start time is only set when none is
// recorded, so re-entering a running session keeps its clock. A draft
// marker may be upgraded to active; never the reverse.
func (m *Manager) Start(kind Kind) {
	if kind != KindDraft {
		kind = KindActive
	}

	m.mu.Lock()
	m.startLocked(kind)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(snap)
}

// SaveDraft stores the draft. The first save containing a block starts a
// draft session.
func (m *Manager) SaveDraft(w remote.Workout) {
	m.mu.Lock()
	dup := w.Clone()
	m.draft = &dup
	m.writeJSON(kv.KeyDraft, storedDraft{DraftPayload: &dup})
	if m.kind == "" && len(w.Blocks) > 0 {
		m.startLocked(KindDraft)
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(snap)
}

// Draft returns a copy of the current draft.
func (m *Manager) Draft() (remote.Workout, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return remote.Workout{}, false
	}
	return m.draft.Clone(), true
}

// Discard ends the session and forgets the draft. It cannot be undone.
func (m *Manager) Discard() {
	m.mu.Lock()
	wasActive := m.kind != "" || m.draft != nil
	m.stopTickerLocked()
	m.kind = ""
	m.startedAt = time.Time{}
	m.draft = nil
	m.lastShown = 0
	m.deleteKeys(kv.KeyActiveWorkoutID, kv.KeyStartedAt, kv.KeyDraft)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if wasActive {
		m.logger.Info("session discarded")
		m.emit(snap)
	}
}

// Active reports whether a workout is in progress.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind != ""
}

// ElapsedSeconds is derived from the wall clock on every call.
func (m *Manager) ElapsedSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsedLocked()
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Tick publishes the elapsed time when it moved to a new second.
func (m *Manager) Tick() {
	m.mu.Lock()
	if m.kind == "" {
		m.mu.Unlock()
		return
	}
	snap := m.snapshotLocked()
	changed := snap.ElapsedSeconds != m.lastShown
	m.lastShown = snap.ElapsedSeconds
	m.mu.Unlock()

	if changed {
		m.emit(snap)
	}
}

// OnVisible republishes the elapsed time immediately after the host comes
// back to the foreground, when periodic ticks may have been suspended.
func (m *Manager) OnVisible() {
	m.mu.Lock()
	if m.kind == "" {
		m.mu.Unlock()
		return
	}
	snap := m.snapshotLocked()
	m.lastShown = snap.ElapsedSeconds
	m.mu.Unlock()

	m.emit(snap)
}

// Close stops the elapsed ticker. Persisted state is kept.
func (m *Manager) Close() {
	m.mu.Lock()
	m.stopTickerLocked()
	m.mu.Unlock()
}

func (m *Manager) startLocked(kind Kind) {
	if m.kind != KindActive {
		m.kind = kind
	}
	m.writeJSON(kv.KeyActiveWorkoutID, storedID{ActiveWorkoutID: ptr(string(m.kind))})
	if m.startedAt.IsZero() {
		m.startedAt = m.clock.Now()
		m.writeJSON(kv.KeyStartedAt, storedStart{StartedAt: ptr(m.startedAt.UnixMilli())})
		m.logger.Info("session started", zap.String("kind", string(m.kind)))
	}
	if m.ticker == nil {
		m.startTickerLocked()
	}
}

func (m *Manager) restore() {
	var id storedID
	idOK := m.readJSON(kv.KeyActiveWorkoutID, &id)
	var start storedStart
	startOK := m.readJSON(kv.KeyStartedAt, &start)

	hasID := idOK && id.ActiveWorkoutID != nil && *id.ActiveWorkoutID != ""
	hasStart := startOK && start.StartedAt != nil && *start.StartedAt > 0

	switch {
	case hasID && hasStart:
		m.kind = Kind(*id.ActiveWorkoutID)
		if m.kind != KindDraft {
			m.kind = KindActive
		}
		m.startedAt = time.UnixMilli(*start.StartedAt)
	case hasID || hasStart:
		m.logger.Warn("discarding inconsistent session state",
			zap.Bool("has_active_workout_id", hasID), zap.Bool("has_started_at", hasStart))
		m.deleteKeys(kv.KeyActiveWorkoutID, kv.KeyStartedAt)
	}

	var draft storedDraft
	if m.readJSON(kv.KeyDraft, &draft) && draft.DraftPayload != nil {
		m.draft = draft.DraftPayload
	}

	if m.kind != "" {
		m.mu.Lock()
		m.lastShown = m.elapsedLocked()
		m.startTickerLocked()
		m.mu.Unlock()
		m.logger.Info("session restored",
			zap.String("kind", string(m.kind)), zap.Time("started_at", m.startedAt))
	}
}

// readJSON reports whether key held a decodable value. Malformed values
// are logged and deleted so they cannot poison later reads.
func (m *Manager) readJSON(key string, dest any) bool {
	raw, err := m.store.Get(key)
	if errors.Is(err, kv.ErrNotFound) {
		return false
	}
	if err != nil {
		m.logger.Warn("read session state", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		m.logger.Warn("discarding malformed session state", zap.String("key", key), zap.Error(err))
		m.deleteKeys(key)
		return false
	}
	return true
}

func (m *Manager) writeJSON(key string, v any) {
	raw, err := json.Marshal(v)
	if err == nil {
		err = m.store.Set(key, raw)
	}
	if err != nil {
		m.logger.Warn("persist session state", zap.String("key", key), zap.Error(err))
	}
}

func (m *Manager) deleteKeys(keys ...string) {
	for _, key := range keys {
		if err := m.store.Delete(key); err != nil {
			m.logger.Warn("clear session state", zap.String("key", key), zap.Error(err))
		}
	}
}

func (m *Manager) elapsedLocked() int {
	if m.startedAt.IsZero() {
		return 0
	}
	d := m.clock.Now().Sub(m.startedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		ActiveWorkoutID: m.kind,
		StartedAt:       m.startedAt,
		ElapsedSeconds:  m.elapsedLocked(),
		HasDraft:        m.draft != nil,
	}
}

func (m *Manager) startTickerLocked() {
	t := m.clock.NewTicker(elapsedInterval)
	done := make(chan struct{})
	m.ticker = t
	m.tickDone = done
	go func() {
		for {
			select {
			case <-done:
				return
			case <-t.C():
				m.Tick()
			}
		}
	}()
}

func (m *Manager) stopTickerLocked() {
	if m.ticker == nil {
		return
	}
	m.ticker.Stop()
	close(m.tickDone)
	m.ticker = nil
	m.tickDone = nil
}

func (m *Manager) emit(s Snapshot) {
	if m.onChange != nil {
		m.onChange(s)
	}
}

func ptr[T any](v T) *T { return &v }
