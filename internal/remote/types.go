package remote

import "encoding/json"

// Workout statuses accepted by the workout service.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Workout is the payload of the "persist completed workout" operation. The
// same structure doubles as the client-side draft while a session is live.
type Workout struct {
	ID              string  `json:"id,omitempty" toml:"-"`
	UserID          string  `json:"userId" toml:"user_id"`
	Name            string  `json:"name" toml:"name"`
	Date            string  `json:"date" toml:"date"`
	DurationSeconds int     `json:"durationSeconds" toml:"-"`
	Status          string  `json:"status" toml:"-"`
	Blocks          []Block `json:"blocks" toml:"blocks"`
}

// Block groups exercises performed together (a superset, a circuit, or a
// single straight-set exercise).
type Block struct {
	Name      string     `json:"name" toml:"name"`
	Exercises []Exercise `json:"exercises" toml:"exercises"`
}

// Exercise is one movement within a block.
type Exercise struct {
	ExerciseID string `json:"exerciseId" toml:"exercise_id"`
	Name       string `json:"name" toml:"name"`
	Sets       []Set  `json:"sets" toml:"sets"`
}

// Set is a single prescribed or performed set.
type Set struct {
	Weight      float64 `json:"weight" toml:"weight"`
	Reps        int     `json:"reps" toml:"reps"`
	RPE         float64 `json:"rpe,omitempty" toml:"rpe"`
	RestSeconds int     `json:"restSeconds" toml:"rest_seconds"`
	Tempo       string  `json:"tempo,omitempty" toml:"tempo"`
	Completed   bool    `json:"completed" toml:"completed"`
}

// SetCounts returns the number of completed sets and the total.
func (w Workout) SetCounts() (done, total int) {
	for _, b := range w.Blocks {
		for _, e := range b.Exercises {
			for _, s := range e.Sets {
				total++
				if s.Completed {
					done++
				}
			}
		}
	}
	return done, total
}

// Clone returns a deep copy so callers can mutate a draft without touching
// the stored one.
func (w Workout) Clone() Workout {
	dup := w
	if w.Blocks == nil {
		return dup
	}
	dup.Blocks = make([]Block, len(w.Blocks))
	for i, b := range w.Blocks {
		nb := b
		if b.Exercises != nil {
			nb.Exercises = make([]Exercise, len(b.Exercises))
			for j, e := range b.Exercises {
				ne := e
				if e.Sets != nil {
					ne.Sets = make([]Set, len(e.Sets))
					copy(ne.Sets, e.Sets)
				}
				nb.Exercises[j] = ne
			}
		}
		dup.Blocks[i] = nb
	}
	return dup
}

// persistResponse mirrors the body returned by POST /api/workouts.
type persistResponse struct {
	ID string `json:"id"`
}

// DecodeWorkout parses a queued persist payload.
func DecodeWorkout(payload json.RawMessage) (Workout, error) {
	var w Workout
	err := json.Unmarshal(payload, &w)
	return w, err
}
