// Package clocktest provides a manually advanced clock for tests.
package clocktest

import (
	"sync"
	"time"

	"github.com/five82/spotter/internal/clock"
)

// Fake is a Clock whose time only moves when Advance or Set is called.
// Its tickers never fire on their own; tests drive the engines' tick
// handlers directly and use ActiveTickers to check cleanup.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*Ticker
}

var _ clock.Clock = (*Fake)(nil)

// New returns a Fake positioned at start.
func New(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now implements clock.Clock.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set jumps the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// NewTicker implements clock.Clock.
func (f *Fake) NewTicker(d time.Duration) clock.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &Ticker{Interval: d, ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

// ActiveTickers counts tickers that have been created and not stopped.
func (f *Fake) ActiveTickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.Stopped() {
			n++
		}
	}
	return n
}

// Ticker is the fake ticker handed out by Fake.
type Ticker struct {
	Interval time.Duration

	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

// C implements clock.Ticker. The channel never receives.
func (t *Ticker) C() <-chan time.Time { return t.ch }

// Stop implements clock.Ticker.
func (t *Ticker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Stopped reports whether Stop was called.
func (t *Ticker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
