// Package queue is the durable list of remote writes that have not been
// confirmed yet. The store is the only copy: every call reads it, so a
// crash between enqueue and sync never loses a completed workout.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/spotter/internal/clock"
	"github.com/five82/spotter/internal/kv"
)

// Type names the remote operation a mutation replays.
type Type string

// TypePersistWorkout stores a completed workout.
const TypePersistWorkout Type = "persist_workout"

// ErrNotFound is returned when an id is not in the queue.
var ErrNotFound = errors.New("queued mutation not found")

// Mutation is one pending remote write.
type Mutation struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"createdAt"`
	RetryCount int             `json:"retryCount"`
}

type stored struct {
	Items []Mutation `json:"items"`
}

// Queue persists mutations under kv.KeyOfflineQueue.
type Queue struct {
	mu     sync.Mutex
	store  kv.Store
	clock  clock.Clock
	logger *zap.Logger
	newID  func() string
}

// New returns a Queue over store.
func New(store kv.Store, clk clock.Clock, logger *zap.Logger) *Queue {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		store:  store,
		clock:  clk,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

// Enqueue appends a mutation and returns its id. The payload is encoded as
// JSON. An error means the write is not durable and the caller still owns it.
func (q *Queue) Enqueue(t Type, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.load()
	m := Mutation{
		ID:        q.newID(),
		Type:      t,
		Payload:   raw,
		CreatedAt: q.clock.Now().UTC(),
	}
	items = append(items, m)
	if err := q.save(items); err != nil {
		return "", err
	}
	q.logger.Info("mutation queued", zap.String("mutation_id", m.ID), zap.String("type", string(t)))
	return m.ID, nil
}

// List returns pending mutations in insertion order.
func (q *Queue) List() []Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Len returns the number of pending mutations.
func (q *Queue) Len() int {
	return len(q.List())
}

// Remove deletes the mutation with id.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.load()
	for i, m := range items {
		if m.ID == id {
			items = append(items[:i], items[i+1:]...)
			return q.save(items)
		}
	}
	return ErrNotFound
}

// MarkAttempt increments the retry counter of id.
func (q *Queue) MarkAttempt(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.load()
	for i := range items {
		if items[i].ID == id {
			items[i].RetryCount++
			return q.save(items)
		}
	}
	return ErrNotFound
}

// Clear drops every pending mutation.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.store.Delete(kv.KeyOfflineQueue); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

func (q *Queue) load() []Mutation {
	raw, err := q.store.Get(kv.KeyOfflineQueue)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		q.logger.Warn("read queue", zap.Error(err))
		return nil
	}
	var s stored
	if err := json.Unmarshal(raw, &s); err != nil {
		q.logger.Warn("discarding malformed queue state",
			zap.String("key", kv.KeyOfflineQueue), zap.Error(err))
		return nil
	}
	return s.Items
}

func (q *Queue) save(items []Mutation) error {
	if len(items) == 0 {
		if err := q.store.Delete(kv.KeyOfflineQueue); err != nil {
			return fmt.Errorf("persist queue: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(stored{Items: items})
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}
	if err := q.store.Set(kv.KeyOfflineQueue, raw); err != nil {
		return fmt.Errorf("persist queue: %w", err)
	}
	return nil
}
