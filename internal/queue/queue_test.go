package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/spotter/internal/clock/clocktest"
	"github.com/five82/spotter/internal/kv"
)

var epoch = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type payload struct {
	Name string `json:"name"`
}

func TestEnqueue_AssignsIDAndTimestamp(t *testing.T) {
	clk := clocktest.New(epoch)
	q := New(kv.NewMemory(), clk, nil)

	id, err := q.Enqueue(TypePersistWorkout, payload{Name: "Upper A"})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	items := q.List()
	require.Len(t, items, 1)
	require.Equal(t, id, items[0].ID)
	require.Equal(t, TypePersistWorkout, items[0].Type)
	require.Equal(t, epoch, items[0].CreatedAt)
	require.Zero(t, items[0].RetryCount)
	require.JSONEq(t, `{"name":"Upper A"}`, string(items[0].Payload))
}

func TestQueue_DurableAcrossReload(t *testing.T) {
	store, err := kv.Open(filepath.Join(t.TempDir(), "spotter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clk := clocktest.New(epoch)
	q := New(store, clk, nil)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := q.Enqueue(TypePersistWorkout, payload{Name: fmt.Sprintf("w%d", i)})
		require.NoError(t, err)
		ids = append(ids, id)
		clk.Advance(time.Second)
	}

	reloaded := New(store, clk, nil)
	items := reloaded.List()
	require.Len(t, items, 3)
	for i, m := range items {
		require.Equal(t, ids[i], m.ID)
		var p payload
		require.NoError(t, json.Unmarshal(m.Payload, &p))
		require.Equal(t, fmt.Sprintf("w%d", i), p.Name)
	}
}

func TestRemove_PreservesOrder(t *testing.T) {
	q := New(kv.NewMemory(), clocktest.New(epoch), nil)
	a, _ := q.Enqueue(TypePersistWorkout, payload{Name: "a"})
	b, _ := q.Enqueue(TypePersistWorkout, payload{Name: "b"})
	c, _ := q.Enqueue(TypePersistWorkout, payload{Name: "c"})

	require.NoError(t, q.Remove(b))

	items := q.List()
	require.Len(t, items, 2)
	require.Equal(t, a, items[0].ID)
	require.Equal(t, c, items[1].ID)
	require.True(t, errors.Is(q.Remove(b), ErrNotFound))
}

func TestRemove_LastItemDeletesKey(t *testing.T) {
	store := kv.NewMemory()
	q := New(store, clocktest.New(epoch), nil)
	id, _ := q.Enqueue(TypePersistWorkout, payload{})

	require.NoError(t, q.Remove(id))

	_, err := store.Get(kv.KeyOfflineQueue)
	require.True(t, errors.Is(err, kv.ErrNotFound))
	require.Zero(t, q.Len())
}

func TestMarkAttempt(t *testing.T) {
	q := New(kv.NewMemory(), clocktest.New(epoch), nil)
	id, _ := q.Enqueue(TypePersistWorkout, payload{})

	require.NoError(t, q.MarkAttempt(id))
	require.NoError(t, q.MarkAttempt(id))
	require.Equal(t, 2, q.List()[0].RetryCount)
	require.True(t, errors.Is(q.MarkAttempt("nope"), ErrNotFound))
}

func TestClear(t *testing.T) {
	q := New(kv.NewMemory(), clocktest.New(epoch), nil)
	_, _ = q.Enqueue(TypePersistWorkout, payload{})
	_, _ = q.Enqueue(TypePersistWorkout, payload{})

	require.NoError(t, q.Clear())
	require.Empty(t, q.List())
	require.NoError(t, q.Clear())
}

func TestMalformedQueueReadsAsEmpty(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(kv.KeyOfflineQueue, []byte("][")))
	core, logs := observer.New(zapcore.WarnLevel)

	q := New(store, clocktest.New(epoch), zap.New(core))

	require.Empty(t, q.List())
	require.Equal(t, 1, logs.FilterMessage("discarding malformed queue state").Len())
}

type brokenStore struct{ *kv.Memory }

func (brokenStore) Set(string, []byte) error { return errors.New("read-only filesystem") }

func TestEnqueue_PersistFailureIsReported(t *testing.T) {
	q := New(brokenStore{kv.NewMemory()}, clocktest.New(epoch), nil)

	_, err := q.Enqueue(TypePersistWorkout, payload{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "persist queue")
}

func TestEnqueue_UnencodablePayload(t *testing.T) {
	q := New(kv.NewMemory(), clocktest.New(epoch), nil)

	_, err := q.Enqueue(TypePersistWorkout, make(chan int))
	require.Error(t, err)
	require.Empty(t, q.List())
}
