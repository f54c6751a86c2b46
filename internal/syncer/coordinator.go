// Package syncer replays the offline mutation queue against the remote
// service when connectivity returns.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/five82/spotter/internal/queue"
)

// ErrNoExecutor is recorded for a mutation whose type has no registered
// executor. The entry stays queued.
var ErrNoExecutor = errors.New("no executor registered for mutation type")

// Executor performs one remote operation from a queued payload.
type Executor func(ctx context.Context, payload json.RawMessage) error

// Queue is the subset of *queue.Queue the coordinator drives.
type Queue interface {
	List() []queue.Mutation
	Remove(id string) error
	MarkAttempt(id string) error
}

// Summary aggregates one drain pass.
type Summary struct {
	Attempted int
	Succeeded int
	Remaining int
	Skipped   bool
}

// Failed is the number of entries that were attempted and kept.
func (s Summary) Failed() int { return s.Attempted - s.Succeeded }

// Message renders the summary as a single user-facing line.
func (s Summary) Message() string {
	switch {
	case s.Attempted == 0:
		return "Nothing to sync"
	case s.Remaining == 0:
		return fmt.Sprintf("Synced %d offline %s", s.Succeeded, plural(s.Succeeded, "workout", "workouts"))
	default:
		return fmt.Sprintf("Synced %d of %d offline workouts, %d will retry", s.Succeeded, s.Attempted, s.Remaining)
	}
}

// Reporter receives one summary per non-empty drain pass.
type Reporter func(Summary)

// Coordinator drains the queue sequentially, one pass at a time.
type Coordinator struct {
	queue    Queue
	logger   *zap.Logger
	reporter Reporter

	mu        sync.RWMutex
	executors map[queue.Type]Executor

	draining atomic.Bool

	passMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a Coordinator over q. reporter may be nil.
func New(q Queue, logger *zap.Logger, reporter Reporter) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		queue:     q,
		logger:    logger,
		reporter:  reporter,
		executors: make(map[queue.Type]Executor),
	}
}

// Register binds the executor for a mutation type.
func (c *Coordinator) Register(t queue.Type, exec Executor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.executors[t] = exec
}

func (c *Coordinator) executor(t queue.Type) (Executor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exec, ok := c.executors[t]
	return exec, ok
}

// Draining reports whether a pass is in flight.
func (c *Coordinator) Draining() bool {
	return c.draining.Load()
}

// Drain replays every queued mutation in insertion order. Successful entries
// are removed; failed ones are kept and the pass moves on. A call made while
// another pass is running returns immediately with Skipped set.
func (c *Coordinator) Drain(ctx context.Context) Summary {
	if !c.draining.CompareAndSwap(false, true) {
		drainCounter.WithLabelValues("skipped").Inc()
		return Summary{Skipped: true}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.passMu.Lock()
	c.cancel, c.done = cancel, done
	c.passMu.Unlock()
	defer func() {
		c.passMu.Lock()
		c.cancel, c.done = nil, nil
		c.passMu.Unlock()
		cancel()
		c.draining.Store(false)
		close(done)
	}()

	items := c.queue.List()
	if len(items) == 0 {
		queueDepthGauge.Set(0)
		return Summary{}
	}

	var sum Summary
	for _, m := range items {
		if ctx.Err() != nil {
			break
		}
		sum.Attempted++
		if err := c.replay(ctx, m); err != nil {
			if ctx.Err() != nil {
				// Interrupted, not rejected.
				sum.Attempted--
				break
			}
			recordReplay(string(m.Type), false)
			c.logger.Warn("replay failed, keeping mutation",
				zap.String("mutation_id", m.ID),
				zap.String("type", string(m.Type)),
				zap.Int("retry_count", m.RetryCount+1),
				zap.Error(err))
			if markErr := c.queue.MarkAttempt(m.ID); markErr != nil {
				c.logger.Warn("record replay attempt", zap.String("mutation_id", m.ID), zap.Error(markErr))
			}
			continue
		}
		recordReplay(string(m.Type), true)
		if err := c.queue.Remove(m.ID); err != nil {
			// Confirmed remotely but still queued; it will be sent again.
			c.logger.Error("remove replayed mutation", zap.String("mutation_id", m.ID), zap.Error(err))
			continue
		}
		sum.Succeeded++
	}
	sum.Remaining = len(c.queue.List())
	queueDepthGauge.Set(float64(sum.Remaining))
	if ctx.Err() != nil {
		drainCounter.WithLabelValues("cancelled").Inc()
		c.logger.Info("drain pass cancelled",
			zap.Int("succeeded", sum.Succeeded),
			zap.Int("remaining", sum.Remaining))
		return sum
	}
	drainCounter.WithLabelValues("completed").Inc()

	c.logger.Info("drain pass finished",
		zap.Int("attempted", sum.Attempted),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("remaining", sum.Remaining))
	if c.reporter != nil {
		c.reporter(sum)
	}
	return sum
}

func (c *Coordinator) replay(ctx context.Context, m queue.Mutation) (err error) {
	exec, ok := c.executor(m.Type)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoExecutor, m.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	return exec(ctx, m.Payload)
}

// Cancel aborts the pass in flight, if any, and waits for it to return. The
// mutation being replayed stays queued without a recorded attempt.
func (c *Coordinator) Cancel() {
	c.passMu.Lock()
	cancel, done := c.cancel, c.done
	c.passMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Watch drains each time online delivers true. Publishers only send
// transitions, so every true is a reconnect, including one that follows an
// offline verdict the watcher never saw. It returns when ctx is cancelled or
// online is closed.
func (c *Coordinator) Watch(ctx context.Context, online <-chan bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case up, ok := <-online:
			if !ok {
				return
			}
			if up {
				c.logger.Info("connectivity restored, draining offline queue")
				c.Drain(ctx)
			}
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
