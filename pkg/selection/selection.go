// Package selection keeps the ordered list of zones a visitor is watching.
package selection

import (
	"slices"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/timezone"
)

// Entry is one selected zone. ID is the list key; Timezone is the IANA
// identifier. The two differ for entries added as part of a pair.
type Entry struct {
	ID       string `json:"id"`
	Timezone string `json:"timezone"`
	Name     string `json:"name"`
	Flag     string `json:"flag"`
}

// Selection is an ordered list of entries. Insertion order is display order.
// The zero value is an empty selection. It is not safe for concurrent use.
type Selection struct {
	entries []Entry
}

// Initial returns the selection a fresh visitor starts with: the popular city
// for the guessed local zone, or nothing if the guess is not in the catalog.
func Initial(guessZone string) *Selection {
	s := &Selection{}
	if c, ok := catalog.ByTimezone(guessZone); ok {
		s.entries = append(s.entries, FromCity(c))
	}
	return s
}

// Add appends e unless an entry for the same timezone is already present.
// It reports whether the entry was added.
func (s *Selection) Add(e Entry) bool {
	if s.Contains(e.Timezone) {
		return false
	}
	s.entries = append(s.entries, e)
	return true
}

// AddPair appends both halves of a conversion pair, from then to. Unlike Add
// it does not check for an existing timezone, but an entry whose ID is
// already present is not added twice.
func (s *Selection) AddPair(from, to Entry) int {
	added := 0
	for _, e := range []Entry{from, to} {
		if s.index(e.ID) >= 0 {
			continue
		}
		s.entries = append(s.entries, e)
		added++
	}
	return added
}

// Remove deletes the entry with the given id.
func (s *Selection) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.entries = nil
}

// Entries returns a copy of the entries in display order.
func (s *Selection) Entries() []Entry {
	return slices.Clone(s.entries)
}

// Len returns the number of entries.
func (s *Selection) Len() int {
	return len(s.entries)
}

// Contains reports whether an entry for zone is present.
func (s *Selection) Contains(zone string) bool {
	return slices.ContainsFunc(s.entries, func(e Entry) bool { return e.Timezone == zone })
}

// Clone returns an independent copy.
func (s *Selection) Clone() *Selection {
	return &Selection{entries: slices.Clone(s.entries)}
}

func (s *Selection) index(id string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

// FromCity builds the entry added by the popular city grid.
func FromCity(c catalog.PopularCity) Entry {
	return Entry{ID: c.ID, Timezone: c.Timezone, Name: c.Name, Flag: c.Flag}
}

// FromInfo builds the entry added by picking a zone from search results.
func FromInfo(info timezone.Info) Entry {
	return Entry{ID: info.ID, Timezone: info.ID, Name: info.City, Flag: catalog.DefaultFlag}
}

// PairEntries builds the two entries added by a popular conversion pair.
func PairEntries(p catalog.Pair) (from, to Entry) {
	from = Entry{
		ID:       p.FromTZ + "-from",
		Timezone: p.FromTZ,
		Name:     p.From + " (" + p.FromTZ + ")",
		Flag:     catalog.Flag(p.FromTZ),
	}
	to = Entry{
		ID:       p.ToTZ + "-to",
		Timezone: p.ToTZ,
		Name:     p.To + " (" + p.ToTZ + ")",
		Flag:     catalog.Flag(p.ToTZ),
	}
	return from, to
}
