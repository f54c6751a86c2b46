package kv

import (
	"errors"
	"path/filepath"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "nested", "spotter.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": db,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}

			if err := s.Set(KeyRestTimer, []byte(`{"a":1}`)); err != nil {
				t.Fatalf("Set returned error: %v", err)
			}
			if err := s.Set(KeyRestTimer, []byte(`{"a":2}`)); err != nil {
				t.Fatalf("Set (overwrite) returned error: %v", err)
			}
			got, err := s.Get(KeyRestTimer)
			if err != nil {
				t.Fatalf("Get returned error: %v", err)
			}
			if string(got) != `{"a":2}` {
				t.Fatalf("Get = %q, want %q", got, `{"a":2}`)
			}

			if err := s.Delete(KeyRestTimer); err != nil {
				t.Fatalf("Delete returned error: %v", err)
			}
			if err := s.Delete(KeyRestTimer); err != nil {
				t.Fatalf("second Delete returned error: %v", err)
			}
			if _, err := s.Get(KeyRestTimer); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get after delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spotter.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := db.Set(KeyOfflineQueue, []byte(`{"items":[]}`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(KeyOfflineQueue)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(got) != `{"items":[]}` {
		t.Fatalf("Get = %q, want persisted value", got)
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	src := []byte("abc")
	if err := m.Set("k", src); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	src[0] = 'z'

	got, _ := m.Get("k")
	if string(got) != "abc" {
		t.Fatalf("Get = %q, want abc (Set must copy)", got)
	}
	got[0] = 'y'
	again, _ := m.Get("k")
	if string(again) != "abc" {
		t.Fatalf("Get = %q, want abc (Get must copy)", again)
	}
}
