// Package timezone enumerates IANA zones and describes them at a given instant.
package timezone

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/codeGROOVE-dev/worldtz/pkg/tzconvert"
)

// MaxSearchResults caps the number of zones returned by Search.
const MaxSearchResults = 20

// ErrUnknownZone is returned for identifiers the zone database does not know.
var ErrUnknownZone = errors.New("unknown timezone")

// Info describes a zone as of one instant. Offsets change with DST, so an
// Info is only valid for the instant it was computed at.
type Info struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Offset       string `json:"offset"`
	Abbreviation string `json:"abbreviation"`
}

// Service answers zone queries. Loaded locations are memoised; derived
// offsets never are.
type Service struct {
	locations *otter.Cache[string, *time.Location]
	names     func() []string
	logger    *slog.Logger
}

// New creates a Service over the process-wide zone list.
func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		locations: otter.Must(&otter.Options[string, *time.Location]{
			MaximumSize:     2048,
			InitialCapacity: 64,
		}),
		names:  Names,
		logger: logger,
	}
}

// Load returns the location for an IANA identifier. Fixed offsets written
// as "UTC+8" or "GMT-03:30" load as fixed zones of that name.
func (s *Service) Load(zone string) (*time.Location, error) {
	if loc, ok := s.locations.GetIfPresent(zone); ok {
		return loc, nil
	}
	// LoadLocation("") and LoadLocation("Local") are valid but not IANA names.
	if zone == "" || zone == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		minutes, ok := tzconvert.ParseTimezoneOffset(zone, time.Time{})
		if !ok {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnknownZone, zone, err)
		}
		loc = time.FixedZone(zone, minutes*60)
	}
	s.locations.Set(zone, loc)
	return loc, nil
}

// Describe computes the display metadata for zone at now.
func (s *Service) Describe(zone string, now time.Time) (Info, error) {
	loc, err := s.Load(zone)
	if err != nil {
		return Info{}, err
	}
	return describe(zone, now.In(loc)), nil
}

func describe(zone string, local time.Time) Info {
	return Info{
		ID:           zone,
		Name:         zone,
		City:         CityOf(zone),
		Country:      CountryOf(zone),
		Offset:       tzconvert.ShortOffset(local),
		Abbreviation: tzconvert.Abbreviation(local),
	}
}

// ListAll describes every known zone at now, in enumeration order.
func (s *Service) ListAll(now time.Time) []Info {
	all := s.names()
	out := make([]Info, 0, len(all))
	for _, zone := range all {
		info, err := s.Describe(zone, now)
		if err != nil {
			s.logger.Debug("skipping zone", "zone", zone, "error", err)
			continue
		}
		out = append(out, info)
	}
	return out
}

// Search returns up to MaxSearchResults zones whose identifier, city or
// country contains query, ignoring case. Order follows enumeration order.
func (s *Service) Search(query string, now time.Time) []Info {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []Info
	for _, zone := range s.names() {
		city, country := CityOf(zone), CountryOf(zone)
		if !strings.Contains(strings.ToLower(zone), q) &&
			!strings.Contains(strings.ToLower(city), q) &&
			!strings.Contains(strings.ToLower(country), q) {
			continue
		}
		info, err := s.Describe(zone, now)
		if err != nil {
			continue
		}
		out = append(out, info)
		if len(out) == MaxSearchResults {
			break
		}
	}
	return out
}

// CityOf guesses a city from the last segment of a zone identifier,
// e.g. "America/Argentina/Buenos_Aires" gives "Buenos Aires".
func CityOf(zone string) string {
	city := zone
	if i := strings.LastIndexByte(zone, '/'); i >= 0 {
		city = zone[i+1:]
	}
	return strings.ReplaceAll(city, "_", " ")
}

// CountryOf returns the first segment of a zone identifier. For most zones
// this is a continent or ocean rather than a country.
func CountryOf(zone string) string {
	country, _, _ := strings.Cut(zone, "/")
	return country
}
