// Package session holds per-visitor UI state and the named actions that
// mutate it.
package session

import (
	"sync"

	"github.com/codeGROOVE-dev/worldtz/pkg/i18n"
	"github.com/codeGROOVE-dev/worldtz/pkg/selection"
)

// Snapshot is a point-in-time copy of a State.
type Snapshot struct {
	Selected  []selection.Entry `json:"selected"`
	Format24h bool              `json:"format24h"`
	Language  string            `json:"language"`
}

// State is one visitor's selection, time format and language. All methods are
// safe for concurrent use.
type State struct {
	selection *selection.Selection
	language  string
	format24h bool
	mu        sync.Mutex
}

// NewState creates a State seeded with the given selection and language.
func NewState(sel *selection.Selection, lang string) *State {
	if sel == nil {
		sel = &selection.Selection{}
	}
	if !i18n.IsSupported(lang) {
		lang = i18n.English
	}
	return &State{selection: sel, language: lang}
}

// Add appends an entry unless its timezone is already selected.
func (s *State) Add(e selection.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Add(e)
}

// AddPair appends both halves of a conversion pair.
func (s *State) AddPair(from, to selection.Entry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.AddPair(from, to)
}

// Remove deletes the entry with id.
func (s *State) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Remove(id)
}

// Clear empties the selection.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
}

// SetFormat switches between 12-hour and 24-hour display.
func (s *State) SetFormat(use24h bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.format24h = use24h
}

// SetLanguage changes the UI language. Unsupported codes are rejected.
func (s *State) SetLanguage(lang string) bool {
	if !i18n.IsSupported(lang) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	return true
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Selected:  s.selection.Entries(),
		Format24h: s.format24h,
		Language:  s.language,
	}
}
