package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/codeGROOVE-dev/worldtz/pkg/selection"
)

// DefaultTTL is how long an idle visitor's state is kept.
const DefaultTTL = 12 * time.Hour

// Seeder produces the initial state for a visitor seen for the first time.
type Seeder func(id string) *State

// Store maps visitor ids to their State. Entries expire after a period
// without access; an expired visitor starts over from the Seeder.
type Store struct {
	cache  *otter.Cache[string, *State]
	seed   Seeder
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a Store. A zero ttl uses DefaultTTL.
func NewStore(ttl time.Duration, seed Seeder, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if seed == nil {
		seed = func(string) *State { return NewState(&selection.Selection{}, "") }
	}
	return &Store{
		cache: otter.Must(&otter.Options[string, *State]{
			MaximumSize:      100_000,
			InitialCapacity:  1_000,
			ExpiryCalculator: otter.ExpiryAccessing[string, *State](ttl),
		}),
		seed:   seed,
		logger: logger,
	}
}

// Get returns the state for id, creating it on first use.
func (s *Store) Get(id string) *State {
	return s.GetWith(id, s.seed)
}

// GetWith is Get with a seeder for this call only, for callers that know more
// about a new visitor than the store does.
func (s *Store) GetWith(id string, seed Seeder) *State {
	if st, ok := s.cache.GetIfPresent(id); ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.cache.GetIfPresent(id); ok {
		return st
	}
	st := seed(id)
	s.cache.Set(id, st)
	s.logger.Debug("session created", "visitor", id, "selected", len(st.Snapshot().Selected))
	return st
}

// Reset replaces the state for id with a freshly seeded one. The language of
// a previous state carries over; the selection and time format start over.
func (s *Store) Reset(id string, seed Seeder) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := seed(id)
	if prev, ok := s.cache.GetIfPresent(id); ok {
		st.SetLanguage(prev.Snapshot().Language)
	}
	s.cache.Set(id, st)
	s.logger.Debug("session reset", "visitor", id, "selected", len(st.Snapshot().Selected))
	return st
}

// Lookup returns the state for id without creating it.
func (s *Store) Lookup(id string) (*State, bool) {
	return s.cache.GetIfPresent(id)
}

// Forget drops the state for id.
func (s *Store) Forget(id string) {
	s.cache.Invalidate(id)
}

// Len returns the approximate number of live sessions.
func (s *Store) Len() int {
	return s.cache.EstimatedSize()
}
