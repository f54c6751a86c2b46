// Package resttimer implements the rest countdown used between sets.
//
// There is exactly one Engine per process. It moves between three states:
//
//	Idle ──Start──▶ Running ──(time left reaches 0)──▶ Expired ──▶ Idle
//	                   │
//	                   └──Stop──▶ Idle
//
// The remaining time is never decremented. Every tick, and every call to
// OnVisible, recomputes it as ceil((EndTime-now)/1s), so a countdown stays
// correct when ticks are delayed or suspended (terminal in the background,
// laptop asleep, process restarted).
//
// Every state change is written to the durable store under
// kv.KeyRestTimer as {endTime, totalTime, isActive}. A new Engine reads it
// back: a countdown still in the future resumes, one already in the past is
// cleared and fires its vibration and notification but not the chime, which
// requires audio unlocked by a user interaction in the current process.
//
// Expiry fires its effects exactly once. The tick goroutine and OnVisible
// race for the Running→Idle transition under the engine mutex; only the
// winner fires.
package resttimer
