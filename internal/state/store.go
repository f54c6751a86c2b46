package state

import (
	"fmt"
	"sync"
	"time"
)

// offlineThreshold is the number of consecutive probe failures after which
// the remote service is considered unreachable.
const offlineThreshold = 2

// Snapshot represents the latest connectivity data available to the UI.
type Snapshot struct {
	HasProbe            bool
	LastProbe           time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive probe failures
	LastSync            time.Time
	LastSyncMessage     string
}

// IsOffline returns true when the remote has been unreachable for multiple probes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= offlineThreshold
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Update records one probe outcome. It reports whether the online/offline
// state flipped as a result.
func (s *Store) Update(err error) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasOffline := s.snapshot.IsOffline()
	s.snapshot.HasProbe = true
	s.snapshot.LastProbe = s.clock()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
	} else {
		s.snapshot.LastError = nil
		s.snapshot.ConsecutiveFailures = 0
	}
	return wasOffline != s.snapshot.IsOffline()
}

// MarkUnreachable records a failed call made outside the prober. The store
// goes offline immediately, so the next successful probe reports a
// reconnect. It reports whether the online/offline state flipped.
func (s *Store) MarkUnreachable(err error) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasOffline := s.snapshot.IsOffline()
	s.snapshot.LastError = err
	if s.snapshot.ConsecutiveFailures < offlineThreshold {
		s.snapshot.ConsecutiveFailures = offlineThreshold
	}
	return wasOffline != s.snapshot.IsOffline()
}

// RecordSync stores the outcome line of the latest drain pass.
func (s *Store) RecordSync(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastSync = s.clock()
	s.snapshot.LastSyncMessage = message
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
