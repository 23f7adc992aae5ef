package store

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSaveDelay is how long the Saver waits for further changes.
const DefaultSaveDelay = 500 * time.Millisecond

// Saver coalesces rapid changes into one write. The latest scheduled
// snapshot wins.
type Saver struct {
	store *Store
	delay time.Duration
	log   zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *AppState
	err     error
}

// NewSaver creates a debounced saver.
func NewSaver(st *Store, delay time.Duration, log zerolog.Logger) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Saver{store: st, delay: delay, log: log}
}

// Schedule snapshots state and (re)starts the delay.
func (s *Saver) Schedule(state *AppState) {
	snap := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = snap
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *Saver) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked()
}

// writeLocked saves the pending snapshot. Callers hold mu.
func (s *Saver) writeLocked() {
	if s.pending == nil {
		return
	}
	snap := s.pending
	s.pending = nil
	if err := s.store.Save(snap); err != nil {
		s.log.Error().Err(err).Str("dir", s.store.Dir()).Msg("saving state")
		s.err = err
		return
	}
	s.log.Debug().Int("transactions", len(snap.Transactions)).Msg("state saved")
}

// Flush writes any pending snapshot now and returns the last save error.
func (s *Saver) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.writeLocked()
	err := s.err
	s.err = nil
	return err
}

// Close flushes pending changes.
func (s *Saver) Close() error {
	return s.Flush()
}
