package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultAPIURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultAPIURL)
	}

	u, err = parseBaseURL("example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:1234" {
		t.Fatalf("url = %q, want http://example.com:1234", u.String())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_PersistWorkout(t *testing.T) {
	t.Parallel()

	var got Workout
	var gotMethod, gotContentType, gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/workouts" {
			http.NotFound(w, r)
			return
		}
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "w-42"})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	workout := Workout{
		UserID: "u-1",
		Name:   "Upper A",
		Date:   "2026-10-15",
		Status: StatusCompleted,
		Blocks: []Block{{
			Name: "A",
			Exercises: []Exercise{{
				ExerciseID: "bench",
				Name:       "Bench Press",
				Sets:       []Set{{Weight: 80, Reps: 5, RPE: 8, RestSeconds: 120, Tempo: "31X1", Completed: true}},
			}},
		}},
	}
	id, err := c.PersistWorkout(ctx, workout)
	if err != nil {
		t.Fatalf("PersistWorkout returned error: %v", err)
	}
	if id != "w-42" {
		t.Fatalf("id = %q, want w-42", id)
	}
	if gotMethod != http.MethodPost || gotContentType != "application/json" {
		t.Fatalf("request = %s %q, want POST application/json", gotMethod, gotContentType)
	}
	if !strings.HasPrefix(gotUserAgent, "spotter/") {
		t.Fatalf("User-Agent = %q, want spotter/*", gotUserAgent)
	}
	if got.Name != "Upper A" || len(got.Blocks) != 1 || got.Blocks[0].Exercises[0].Sets[0].Tempo != "31X1" {
		t.Fatalf("server decoded %#v, want the submitted workout", got)
	}
}

func TestClient_StatusAndDecodeErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/workouts":
			http.Error(w, "conflict", http.StatusConflict)
		case "/api/health":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.PersistWorkout(context.Background(), Workout{Name: "x"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusConflict {
		t.Fatalf("PersistWorkout error = %v, want StatusError 409", err)
	}
	if IsUnreachable(err) {
		t.Fatalf("IsUnreachable(%v) = true, want false for an HTTP answer", err)
	}

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestClient_MissingIDIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.PersistWorkout(context.Background(), Workout{}); err == nil {
		t.Fatalf("PersistWorkout returned nil error, want missing id error")
	}
}

func TestClient_TransportFailureIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(url)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	err = c.Ping(context.Background())
	if !IsUnreachable(err) {
		t.Fatalf("Ping error = %v, want ErrUnreachable", err)
	}
}

func TestWorkout_SetCountsAndClone(t *testing.T) {
	w := Workout{Blocks: []Block{
		{Exercises: []Exercise{{Sets: []Set{{Completed: true}, {}}}}},
		{Exercises: []Exercise{{Sets: []Set{{}}}, {Sets: []Set{{Completed: true}}}}},
	}}
	done, total := w.SetCounts()
	if done != 2 || total != 4 {
		t.Fatalf("SetCounts = %d/%d, want 2/4", done, total)
	}

	dup := w.Clone()
	dup.Blocks[0].Exercises[0].Sets[1].Completed = true
	if w.Blocks[0].Exercises[0].Sets[1].Completed {
		t.Fatalf("Clone shares set storage with the original")
	}
}
