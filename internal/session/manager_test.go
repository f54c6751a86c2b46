package session

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/spotter/internal/clock/clocktest"
	"github.com/five82/spotter/internal/kv"
	"github.com/five82/spotter/internal/remote"
)

var epoch = time.Date(2026, 10, 15, 7, 30, 0, 0, time.UTC)

func newManager(t *testing.T, clk *clocktest.Fake, store kv.Store, onChange func(Snapshot)) *Manager {
	t.Helper()
	m := New(Options{Clock: clk, Store: store, OnChange: onChange})
	t.Cleanup(m.Close)
	return m
}

func sampleDraft() remote.Workout {
	return remote.Workout{
		Name: "Lower B",
		Blocks: []remote.Block{{
			Name: "A",
			Exercises: []remote.Exercise{{
				ExerciseID: "squat",
				Name:       "Back Squat",
				Sets:       []remote.Set{{Weight: 100, Reps: 5, RestSeconds: 180}},
			}},
		}},
	}
}

func TestStart_SetsStartedAtOnce(t *testing.T) {
	clk := clocktest.New(epoch)
	store := kv.NewMemory()
	m := newManager(t, clk, store, nil)

	m.Start(KindDraft)
	require.True(t, m.Active())
	require.Equal(t, epoch, m.Snapshot().StartedAt)

	clk.Advance(5 * time.Minute)
	m.Start(KindActive)

	snap := m.Snapshot()
	require.Equal(t, KindActive, snap.ActiveWorkoutID)
	require.Equal(t, epoch, snap.StartedAt, "re-entering must not reset the clock")
	require.Equal(t, 300, snap.ElapsedSeconds)
	require.Equal(t, 1, clk.ActiveTickers())

	raw, err := store.Get(kv.KeyStartedAt)
	require.NoError(t, err)
	require.JSONEq(t, `{"startedAt":`+strconv.FormatInt(epoch.UnixMilli(), 10)+`}`, string(raw))
	raw, err = store.Get(kv.KeyActiveWorkoutID)
	require.NoError(t, err)
	require.JSONEq(t, `{"activeWorkoutId":"active"}`, string(raw))
}

func TestStart_ActiveIsNotDowngraded(t *testing.T) {
	m := newManager(t, clocktest.New(epoch), kv.NewMemory(), nil)

	m.Start(KindActive)
	m.Start(KindDraft)

	require.Equal(t, KindActive, m.Snapshot().ActiveWorkoutID)
}

func TestElapsed_SurvivesBackgrounding(t *testing.T) {
	clk := clocktest.New(epoch)
	var published []Snapshot
	m := newManager(t, clk, kv.NewMemory(), func(s Snapshot) { published = append(published, s) })

	m.Start(KindActive)
	clk.Advance(20 * time.Second)
	m.Tick()
	require.Equal(t, 20, published[len(published)-1].ElapsedSeconds)

	// Backgrounded: the ticker is suspended, the wall clock is not.
	clk.Advance(45 * time.Second)
	m.OnVisible()

	require.Equal(t, 65, m.ElapsedSeconds())
	require.Equal(t, 65, published[len(published)-1].ElapsedSeconds)
}

func TestTick_OnlyPublishesNewSeconds(t *testing.T) {
	clk := clocktest.New(epoch)
	count := 0
	m := newManager(t, clk, kv.NewMemory(), func(Snapshot) { count++ })

	m.Start(KindActive)
	afterStart := count

	clk.Advance(400 * time.Millisecond)
	m.Tick()
	require.Equal(t, afterStart, count)

	clk.Advance(700 * time.Millisecond)
	m.Tick()
	require.Equal(t, afterStart+1, count)
}

func TestRestore_AfterReload(t *testing.T) {
	clk := clocktest.New(epoch)
	store := kv.NewMemory()

	first := New(Options{Clock: clk, Store: store})
	first.Start(KindActive)
	first.SaveDraft(sampleDraft())
	first.Close()

	clk.Advance(10 * time.Second)
	second := newManager(t, clk, store, nil)

	snap := second.Snapshot()
	require.True(t, snap.Active())
	require.Equal(t, KindActive, snap.ActiveWorkoutID)
	require.Equal(t, epoch.UnixMilli(), snap.StartedAt.UnixMilli())
	require.Equal(t, 10, snap.ElapsedSeconds)
	require.True(t, snap.HasDraft)

	draft, ok := second.Draft()
	require.True(t, ok)
	require.Equal(t, sampleDraft(), draft)
	require.Equal(t, 1, clk.ActiveTickers())
}

func TestSaveDraft_StartsSessionOnFirstBlock(t *testing.T) {
	clk := clocktest.New(epoch)
	m := newManager(t, clk, kv.NewMemory(), nil)

	m.SaveDraft(remote.Workout{Name: "empty"})
	require.False(t, m.Active())
	require.True(t, m.Snapshot().HasDraft)

	clk.Advance(time.Minute)
	m.SaveDraft(sampleDraft())
	require.Equal(t, KindDraft, m.Snapshot().ActiveWorkoutID)
	require.Equal(t, epoch.Add(time.Minute), m.Snapshot().StartedAt)

	clk.Advance(time.Minute)
	m.SaveDraft(sampleDraft())
	require.Equal(t, epoch.Add(time.Minute), m.Snapshot().StartedAt, "draft saves never reset the start time")
}

func TestDraft_ReturnsCopy(t *testing.T) {
	m := newManager(t, clocktest.New(epoch), kv.NewMemory(), nil)
	m.SaveDraft(sampleDraft())

	d, _ := m.Draft()
	d.Blocks[0].Exercises[0].Sets[0].Completed = true

	again, _ := m.Draft()
	require.False(t, again.Blocks[0].Exercises[0].Sets[0].Completed)
}

func TestDiscard_ClearsEverythingAndIsIdempotent(t *testing.T) {
	clk := clocktest.New(epoch)
	store := kv.NewMemory()
	count := 0
	m := newManager(t, clk, store, func(Snapshot) { count++ })

	m.Start(KindActive)
	m.SaveDraft(sampleDraft())
	m.Discard()
	afterFirst := count
	m.Discard()

	require.Equal(t, afterFirst, count)
	require.False(t, m.Active())
	require.Equal(t, Snapshot{}, m.Snapshot())
	_, ok := m.Draft()
	require.False(t, ok)
	require.Zero(t, clk.ActiveTickers())
	require.Empty(t, store.Keys())
}

func TestRestore_MalformedDataIsNoSession(t *testing.T) {
	tests := []struct {
		name string
		data map[string]string
		msg  string
	}{
		{
			name: "unparseable start time",
			data: map[string]string{
				kv.KeyActiveWorkoutID: `{"activeWorkoutId":"active"}`,
				kv.KeyStartedAt:       `{"startedAt":"yesterday"}`,
			},
			msg: "discarding malformed session state",
		},
		{
			name: "marker without start time",
			data: map[string]string{
				kv.KeyActiveWorkoutID: `{"activeWorkoutId":"draft"}`,
			},
			msg: "discarding inconsistent session state",
		},
		{
			name: "start time without marker",
			data: map[string]string{
				kv.KeyActiveWorkoutID: `{"activeWorkoutId":null}`,
				kv.KeyStartedAt:       `{"startedAt":1700000000000}`,
			},
			msg: "discarding inconsistent session state",
		},
		{
			name: "garbage draft",
			data: map[string]string{
				kv.KeyDraft: `<<<`,
			},
			msg: "discarding malformed session state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kv.NewMemory()
			for k, v := range tt.data {
				require.NoError(t, store.Set(k, []byte(v)))
			}
			core, logs := observer.New(zapcore.WarnLevel)

			var m *Manager
			require.NotPanics(t, func() {
				m = New(Options{Clock: clocktest.New(epoch), Store: store, Logger: zap.New(core)})
			})
			t.Cleanup(m.Close)

			require.False(t, m.Active())
			require.False(t, m.Snapshot().HasDraft)
			require.GreaterOrEqual(t, logs.FilterMessage(tt.msg).Len(), 1)
			for _, key := range []string{kv.KeyActiveWorkoutID, kv.KeyStartedAt} {
				_, err := store.Get(key)
				require.True(t, errors.Is(err, kv.ErrNotFound), "key %s should be cleared", key)
			}
		})
	}
}

type failingStore struct{ *kv.Memory }

func (failingStore) Set(string, []byte) error { return errors.New("disk full") }

func TestPersistFailure_DegradesToMemory(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := failingStore{Memory: kv.NewMemory()}
	m := New(Options{Clock: clocktest.New(epoch), Store: store, Logger: zap.New(core)})
	t.Cleanup(m.Close)

	require.NotPanics(t, func() {
		m.Start(KindActive)
		m.SaveDraft(sampleDraft())
	})
	require.True(t, m.Active())
	require.True(t, m.Snapshot().HasDraft)
	require.GreaterOrEqual(t, logs.FilterMessage("persist session state").Len(), 2)
}
