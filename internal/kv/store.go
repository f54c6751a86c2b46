// Package kv provides the durable key-value store that the session engine
// serializes its state into so that a restart resumes where it left off.
package kv

import "errors"

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Well-known keys. These must stay stable across releases; changing one
// orphans the state a previous build persisted.
const (
	KeyActiveWorkoutID = "session.active_workout_id"
	KeyStartedAt       = "session.started_at"
	KeyDraft           = "session.draft"
	KeyRestTimer       = "rest_timer"
	KeyOfflineQueue    = "offline_queue"
)

// Store is a synchronous, process-local key-value store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
