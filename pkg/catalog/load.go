package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog is returned when a city file fails validation.
var ErrInvalidCatalog = errors.New("invalid city catalog")

type cityFile struct {
	Cities []PopularCity `yaml:"cities"`
}

// Load replaces the popular city table with the cities listed in a YAML file.
// It must be called at startup, before the table is read concurrently.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading city file: %w", err)
	}
	cities, err := parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	popular = cities
	return nil
}

func parse(data []byte) ([]PopularCity, error) {
	var f cityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if len(f.Cities) == 0 {
		return nil, fmt.Errorf("%w: no cities", ErrInvalidCatalog)
	}

	seen := make(map[string]bool, len(f.Cities))
	for i, c := range f.Cities {
		if c.ID == "" || c.Name == "" || c.Timezone == "" {
			return nil, fmt.Errorf("%w: city %d needs id, name and timezone", ErrInvalidCatalog, i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, c.ID)
		}
		seen[c.ID] = true
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return nil, fmt.Errorf("%w: city %q: %w", ErrInvalidCatalog, c.ID, err)
		}
		if c.Flag == "" {
			f.Cities[i].Flag = DefaultFlag
		}
	}
	return f.Cities, nil
}
