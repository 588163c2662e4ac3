package view

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/timezone"
)

// Search limits for the combined city and zone search box.
const (
	MinQueryLength = 2
	MaxZoneResults = 10
)

// Result kinds.
const (
	KindCity     = "city"
	KindTimezone = "timezone"
)

// SearchResult is one row of the search drop-down.
type SearchResult struct {
	Kind     string `json:"type"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Country  string `json:"country"`
	Flag     string `json:"flag"`
	Offset   string `json:"offset,omitempty"`
}

// Search returns matching popular cities first, then up to MaxZoneResults
// zones. Queries shorter than MinQueryLength return nothing.
func (b *Builder) Search(query string, now time.Time, t Translate) []SearchResult {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}

	var out []SearchResult
	for _, c := range catalog.SearchPopular(q) {
		out = append(out, SearchResult{
			Kind:     KindCity,
			ID:       c.ID,
			Name:     t("cities."+c.Name, c.Name),
			Timezone: c.Timezone,
			Country:  c.Country,
			Flag:     c.Flag,
		})
	}

	zones := b.zones.Search(q, now)
	if len(zones) > MaxZoneResults {
		zones = zones[:MaxZoneResults]
	}
	for _, z := range zones {
		out = append(out, fromInfo(z))
	}
	return out
}

func fromInfo(z timezone.Info) SearchResult {
	return SearchResult{
		Kind:     KindTimezone,
		ID:       z.ID,
		Name:     z.City,
		Timezone: z.ID,
		Country:  z.Country,
		Flag:     catalog.DefaultFlag,
		Offset:   z.Offset,
	}
}
