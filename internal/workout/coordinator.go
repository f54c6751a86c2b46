// Package workout is the top-level coordinator the UI and CLI talk to. It
// ties the session, the rest timer and the offline queue together for the
// operations that span more than one of them: loading a routine, logging
// sets, finishing, discarding and logging out.
package workout

import (
	"context"
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/five82/spotter/internal/clock"
	"github.com/five82/spotter/internal/queue"
	"github.com/five82/spotter/internal/remote"
	"github.com/five82/spotter/internal/resttimer"
	"github.com/five82/spotter/internal/session"
	"github.com/five82/spotter/internal/state"
)

var (
	// ErrNoSession is returned when an operation needs a workout in progress.
	ErrNoSession = errors.New("no workout in progress")
	// ErrNoPendingSet is returned when every set of the draft is done.
	ErrNoPendingSet = errors.New("all sets completed")
)

const defaultRestSeconds = 90

// Outcome says where a finished workout went.
type Outcome int

const (
	// Saved means the remote service confirmed the workout.
	Saved Outcome = iota
	// Queued means the workout is stored offline and will sync later.
	Queued
)

// Result describes a finished workout.
type Result struct {
	Outcome    Outcome
	WorkoutID  string
	MutationID string
	Workout    remote.Workout
}

// Message is the line shown to the user after Finish.
func (r Result) Message() string {
	if r.Outcome == Queued {
		return "Saved offline, will sync automatically"
	}
	return "Workout saved"
}

// Connectivity exposes the latest reachability verdict and accepts failures
// observed outside the prober.
type Connectivity interface {
	Snapshot() state.Snapshot
	MarkUnreachable(err error) bool
}

// Syncer is the part of the sync coordinator logout needs.
type Syncer interface {
	Cancel()
}

// Options configure a Coordinator.
type Options struct {
	Session      *session.Manager
	Timer        *resttimer.Engine
	Queue        *queue.Queue
	Saver        remote.WorkoutSaver
	Connectivity Connectivity
	Syncer       Syncer
	Clock        clock.Clock
	Logger       *zap.Logger
	UserID       string
	RestSeconds  int
}

// Coordinator implements the cross-cutting workout operations.
type Coordinator struct {
	session *session.Manager
	timer   *resttimer.Engine
	queue   *queue.Queue
	saver   remote.WorkoutSaver
	conn    Connectivity
	syncer  Syncer
	clock   clock.Clock
	logger  *zap.Logger
	userID  string
	rest    int
}

// New returns a Coordinator.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		session: opts.Session,
		timer:   opts.Timer,
		queue:   opts.Queue,
		saver:   opts.Saver,
		conn:    opts.Connectivity,
		syncer:  opts.Syncer,
		clock:   opts.Clock,
		logger:  opts.Logger,
		userID:  opts.UserID,
		rest:    opts.RestSeconds,
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.rest <= 0 {
		c.rest = defaultRestSeconds
	}
	return c
}

// RestSeconds is the rest used when a set does not prescribe one.
func (c *Coordinator) RestSeconds() int { return c.rest }

// LoadTemplate makes w the current draft and starts an active session. A
// session that is already running keeps its start time.
func (c *Coordinator) LoadTemplate(w remote.Workout) {
	draft := w.Clone()
	draft.ID = ""
	draft.Status = remote.StatusInProgress
	if draft.UserID == "" {
		draft.UserID = c.userID
	}
	c.session.Start(session.KindActive)
	c.session.SaveDraft(draft)
	c.logger.Info("template loaded", zap.String("name", draft.Name), zap.Int("blocks", len(draft.Blocks)))
}

// LoadTemplateFile reads a TOML routine and loads it.
func (c *Coordinator) LoadTemplateFile(path string) (remote.Workout, error) {
	w, err := ReadTemplate(path)
	if err != nil {
		return remote.Workout{}, err
	}
	c.LoadTemplate(w)
	return w, nil
}

// ReadTemplate parses a TOML routine file.
func ReadTemplate(path string) (remote.Workout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return remote.Workout{}, fmt.Errorf("read template: %w", err)
	}
	var w remote.Workout
	if err := toml.Unmarshal(data, &w); err != nil {
		return remote.Workout{}, fmt.Errorf("parse template: %w", err)
	}
	if len(w.Blocks) == 0 {
		return remote.Workout{}, fmt.Errorf("template %s has no blocks", path)
	}
	return w, nil
}

// AddBlock appends a block to the draft. Adding the first block starts a
// draft session.
func (c *Coordinator) AddBlock(b remote.Block) {
	draft, ok := c.session.Draft()
	if !ok {
		draft = remote.Workout{UserID: c.userID, Status: remote.StatusInProgress}
	}
	draft.Blocks = append(draft.Blocks, b)
	c.session.SaveDraft(draft)
}

// CompleteNextSet marks the first incomplete set done and starts the rest
// timer with that set's rest, or the configured default.
func (c *Coordinator) CompleteNextSet() (remote.Set, error) {
	draft, ok := c.session.Draft()
	if !ok || !c.session.Active() {
		return remote.Set{}, ErrNoSession
	}
	for bi := range draft.Blocks {
		for ei := range draft.Blocks[bi].Exercises {
			sets := draft.Blocks[bi].Exercises[ei].Sets
			for si := range sets {
				if sets[si].Completed {
					continue
				}
				sets[si].Completed = true
				c.session.SaveDraft(draft)
				rest := sets[si].RestSeconds
				if rest <= 0 {
					rest = c.rest
				}
				c.timer.Start(rest)
				return sets[si], nil
			}
		}
	}
	return remote.Set{}, ErrNoPendingSet
}

// Finish submits the workout. When the service is unreachable the workout is
// queued and the session still ends; the user never loses it. Any other
// remote failure is returned and the session is kept.
func (c *Coordinator) Finish(ctx context.Context) (Result, error) {
	draft, ok := c.session.Draft()
	if !ok || !c.session.Active() {
		return Result{}, ErrNoSession
	}

	w := draft.Clone()
	w.ID = ""
	w.DurationSeconds = c.session.ElapsedSeconds()
	w.Status = remote.StatusCompleted
	if w.Date == "" {
		w.Date = c.clock.Now().Format("2006-01-02")
	}
	if w.UserID == "" {
		w.UserID = c.userID
	}

	if c.offline() {
		return c.enqueue(w)
	}

	id, err := c.saver.PersistWorkout(ctx, w)
	if err != nil {
		if remote.IsUnreachable(err) {
			c.logger.Info("workout service unreachable, queueing", zap.Error(err))
			if c.conn != nil {
				// The next successful probe then reports a reconnect and drains.
				c.conn.MarkUnreachable(err)
			}
			return c.enqueue(w)
		}
		return Result{}, fmt.Errorf("save workout: %w", err)
	}

	c.end()
	c.logger.Info("workout saved", zap.String("workout_id", id), zap.Int("duration_seconds", w.DurationSeconds))
	return Result{Outcome: Saved, WorkoutID: id, Workout: w}, nil
}

func (c *Coordinator) enqueue(w remote.Workout) (Result, error) {
	id, err := c.queue.Enqueue(queue.TypePersistWorkout, w)
	if err != nil {
		return Result{}, fmt.Errorf("queue workout: %w", err)
	}
	c.end()
	return Result{Outcome: Queued, MutationID: id, Workout: w}, nil
}

func (c *Coordinator) offline() bool {
	return c.conn != nil && c.conn.Snapshot().IsOffline()
}

func (c *Coordinator) end() {
	c.timer.Stop()
	c.session.Discard()
}

// Discard abandons the workout in progress.
func (c *Coordinator) Discard() {
	c.end()
}

// Logout clears every piece of persisted workout state for the user,
// including writes that were never synced.
func (c *Coordinator) Logout() error {
	if c.syncer != nil {
		c.syncer.Cancel()
	}
	c.end()
	if err := c.queue.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.logger.Info("logged out, local workout state cleared")
	return nil
}

// OnVisible recomputes the session clock and the rest countdown after the
// host returns to the foreground.
func (c *Coordinator) OnVisible() {
	c.session.OnVisible()
	c.timer.OnVisible()
}
