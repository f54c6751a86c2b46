package resttimer

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/spotter/internal/clock"
	"github.com/five82/spotter/internal/kv"
	"github.com/five82/spotter/internal/platform"
)

// State is the engine's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	// Expired is reported once through OnChange when the countdown reaches
	// zero; the engine is Idle again immediately afterwards.
	Expired
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Expired:
		return "expired"
	default:
		return "idle"
	}
}

// DefaultInterval is the tick period. It only affects display smoothness;
// the remaining time is always derived from EndTime.
const DefaultInterval = 250 * time.Millisecond

// Presets are the rest durations, in seconds, offered as quick picks.
var Presets = []int{30, 60, 90, 120, 180}

var (
	chime = []platform.Tone{
		{Frequency: 880, Duration: 150 * time.Millisecond, Gap: 60 * time.Millisecond},
		{Frequency: 880, Duration: 150 * time.Millisecond, Gap: 60 * time.Millisecond},
		{Frequency: 1320, Duration: 300 * time.Millisecond},
	}
	vibrationPattern = []time.Duration{
		200 * time.Millisecond, 100 * time.Millisecond,
		200 * time.Millisecond, 100 * time.Millisecond,
		400 * time.Millisecond,
	}
)

// Snapshot is a point-in-time view of the timer.
type Snapshot struct {
	State        State
	EndTime      time.Time
	TotalSeconds int
	TimeLeft     int
}

// Active reports whether a countdown is running.
func (s Snapshot) Active() bool { return s.State == Running }

// Progress returns the remaining fraction of the countdown in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.TotalSeconds <= 0 {
		return 0
	}
	p := float64(s.TimeLeft) / float64(s.TotalSeconds)
	return math.Max(0, math.Min(1, p))
}

// persisted is the serialized shape under kv.KeyRestTimer.
type persisted struct {
	EndTime   int64 `json:"endTime"`
	TotalTime int   `json:"totalTime"`
	IsActive  bool  `json:"isActive"`
}

// Options configure an Engine.
type Options struct {
	Clock    clock.Clock
	Store    kv.Store
	Logger   *zap.Logger
	Audio    platform.Audio
	Vibrator platform.Vibrator
	Notifier platform.Notifier
	Interval time.Duration

	DisableSound     bool
	DisableVibration bool

	// OnChange receives every state transition and every change of the
	// whole-second TimeLeft. It is called without engine locks held.
	OnChange func(Snapshot)
}

// Engine is the single rest countdown shared by every exercise.
type Engine struct {
	mu       sync.Mutex
	opts     Options
	clock    clock.Clock
	store    kv.Store
	logger   *zap.Logger
	interval time.Duration

	state    State
	endTime  time.Time
	total    int
	timeLeft int

	ticker   clock.Ticker
	tickDone chan struct{}
}

// New builds an Engine and recovers any countdown persisted by a previous
// process.
func New(opts Options) *Engine {
	e := &Engine{
		opts:     opts,
		clock:    opts.Clock,
		store:    opts.Store,
		logger:   opts.Logger,
		interval: opts.Interval,
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	if e.store == nil {
		e.store = kv.NewMemory()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.interval <= 0 {
		e.interval = DefaultInterval
	}
	e.restore()
	return e
}

// Start begins a countdown of seconds, replacing any running one.
// Non-positive durations are ignored.
func (e *Engine) Start(seconds int) {
	if seconds <= 0 {
		return
	}

	e.mu.Lock()
	e.stopTickerLocked()
	e.endTime = e.clock.Now().Add(time.Duration(seconds) * time.Second)
	e.total = seconds
	e.timeLeft = seconds
	e.state = Running
	e.persistLocked()
	e.startTickerLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Debug("rest timer started", zap.Int("seconds", seconds))
	e.emit(snap)
}

// Stop cancels the countdown. Calling it while idle does nothing.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state != Running && e.ticker == nil {
		e.mu.Unlock()
		return
	}
	e.resetLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snap)
}

// AddTime shifts the end of a running countdown by delta seconds (negative
// values shorten it). TotalSeconds moves by the same amount so Progress
// stays meaningful.
func (e *Engine) AddTime(delta int) {
	e.mu.Lock()
	if e.state != Running || delta == 0 {
		e.mu.Unlock()
		return
	}
	e.endTime = e.endTime.Add(time.Duration(delta) * time.Second)
	e.total += delta
	if e.total < 0 {
		e.total = 0
	}
	if remaining := secondsUntil(e.endTime, e.clock.Now()); remaining > 0 {
		e.timeLeft = remaining
		e.persistLocked()
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.emit(snap)
		return
	}
	e.mu.Unlock()

	// Shortened past zero: expire through the same path as a tick.
	e.recompute()
}

// Tick recomputes the remaining time from the wall clock and fires expiry
// when it reaches zero. The internal ticker calls it; hosts may too.
func (e *Engine) Tick() {
	e.recompute()
}

// OnVisible must be called when the host regains foreground visibility.
// Periodic ticks may have been suspended while hidden.
func (e *Engine) OnVisible() {
	e.recompute()
}

// UnlockAudio enables chime playback. Call it from the user interaction
// that starts or adjusts the timer.
func (e *Engine) UnlockAudio() {
	if e.opts.Audio == nil || e.opts.Audio.Unlocked() {
		return
	}
	if err := e.opts.Audio.Unlock(); err != nil {
		e.logger.Warn("unlock audio", zap.Error(err))
	}
}

// Snapshot returns the current state with TimeLeft computed from the wall
// clock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.snapshotLocked()
	if snap.State == Running {
		left := secondsUntil(e.endTime, e.clock.Now())
		if left < 0 {
			left = 0
		}
		snap.TimeLeft = left
	}
	return snap
}

// Close stops the ticker but keeps the persisted countdown so the next
// process can resume it.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopTickerLocked()
	e.mu.Unlock()
}

func (e *Engine) recompute() {
	e.mu.Lock()
	if e.state != Running {
		e.mu.Unlock()
		return
	}
	remaining := secondsUntil(e.endTime, e.clock.Now())
	if remaining > 0 {
		changed := remaining != e.timeLeft
		e.timeLeft = remaining
		snap := e.snapshotLocked()
		e.mu.Unlock()
		if changed {
			e.emit(snap)
		}
		return
	}

	expired := e.snapshotLocked()
	expired.State = Expired
	expired.TimeLeft = 0
	e.resetLocked()
	idle := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("rest timer expired", zap.Int("total_seconds", expired.TotalSeconds))
	e.fireExpiry(true)
	e.emit(expired)
	e.emit(idle)
}

func (e *Engine) restore() {
	raw, err := e.store.Get(kv.KeyRestTimer)
	if errors.Is(err, kv.ErrNotFound) {
		return
	}
	if err != nil {
		e.logger.Warn("read rest timer state", zap.Error(err))
		return
	}

	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil || (p.IsActive && p.EndTime <= 0) {
		e.logger.Warn("discarding malformed rest timer state",
			zap.String("key", kv.KeyRestTimer), zap.Error(err))
		e.clearPersisted()
		return
	}
	if !p.IsActive {
		e.clearPersisted()
		return
	}

	end := time.UnixMilli(p.EndTime)
	remaining := secondsUntil(end, e.clock.Now())
	if remaining <= 0 {
		// The countdown ran out while nothing was loaded. Audio needs an
		// interaction-unlocked context that no longer exists.
		e.clearPersisted()
		e.logger.Info("rest timer expired while unloaded", zap.Time("end_time", end))
		e.fireExpiry(false)
		return
	}

	e.mu.Lock()
	e.state = Running
	e.endTime = end
	e.total = p.TotalTime
	e.timeLeft = remaining
	e.startTickerLocked()
	e.mu.Unlock()

	e.logger.Info("rest timer resumed", zap.Int("time_left", remaining))
}

func (e *Engine) fireExpiry(live bool) {
	recordExpiry(live)
	if live && !e.opts.DisableSound && e.opts.Audio != nil {
		if err := e.opts.Audio.Play(chime); err != nil {
			e.logger.Debug("chime skipped", zap.Error(err))
		}
	}
	if !e.opts.DisableVibration && e.opts.Vibrator != nil {
		if err := e.opts.Vibrator.Vibrate(vibrationPattern); err != nil {
			e.logger.Debug("vibrate failed", zap.Error(err))
		}
	}
	if n := e.opts.Notifier; n != nil && n.Permission() == platform.PermissionGranted {
		if err := n.Notify("Rest complete", "Time for your next set."); err != nil {
			e.logger.Warn("notify failed", zap.Error(err))
		}
	}
}

func (e *Engine) resetLocked() {
	e.stopTickerLocked()
	e.state = Idle
	e.endTime = time.Time{}
	e.total = 0
	e.timeLeft = 0
	e.clearPersisted()
}

func (e *Engine) startTickerLocked() {
	t := e.clock.NewTicker(e.interval)
	done := make(chan struct{})
	e.ticker = t
	e.tickDone = done
	go func() {
		for {
			select {
			case <-done:
				return
			case <-t.C():
				e.Tick()
			}
		}
	}()
}

func (e *Engine) stopTickerLocked() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	close(e.tickDone)
	e.ticker = nil
	e.tickDone = nil
}

func (e *Engine) persistLocked() {
	raw, err := json.Marshal(persisted{
		EndTime:   e.endTime.UnixMilli(),
		TotalTime: e.total,
		IsActive:  true,
	})
	if err == nil {
		err = e.store.Set(kv.KeyRestTimer, raw)
	}
	if err != nil {
		e.logger.Warn("persist rest timer", zap.Error(err))
	}
}

func (e *Engine) clearPersisted() {
	if err := e.store.Delete(kv.KeyRestTimer); err != nil {
		e.logger.Warn("clear rest timer", zap.Error(err))
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State:        e.state,
		EndTime:      e.endTime,
		TotalSeconds: e.total,
		TimeLeft:     e.timeLeft,
	}
}

func (e *Engine) emit(s Snapshot) {
	if e.opts.OnChange != nil {
		e.opts.OnChange(s)
	}
}

// secondsUntil rounds up so a countdown shows its full length until a whole
// second has elapsed.
func secondsUntil(end, now time.Time) int {
	ms := end.Sub(now).Milliseconds()
	return int(math.Ceil(float64(ms) / 1000))
}
