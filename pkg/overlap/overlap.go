// Package overlap renders a 24-hour strip per zone showing where working
// hours fall relative to a reference zone, for finding meeting times.
package overlap

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/worldtz/pkg/tzconvert"
)

// Row is one zone's hours over the reference day. Index i is the hour that
// starts at i:00 in the reference zone.
type Row struct {
	Label   string
	Zone    string
	Hours   [24]int
	Working [24]bool
}

// Loader resolves zone names to locations.
type Loader interface {
	Load(zone string) (*time.Location, error)
}

// Build computes a row per zone for the reference day containing day.
// Zones that fail to load are returned as errors and skipped.
func Build(loader Loader, labels, zones []string, ref *time.Location, day time.Time) ([]Row, error) {
	d := day.In(ref)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, ref)

	rows := make([]Row, 0, len(zones))
	var bad []string
	for i, zone := range zones {
		loc, err := loader.Load(zone)
		if err != nil {
			bad = append(bad, zone)
			continue
		}
		row := Row{Label: zone, Zone: zone}
		if i < len(labels) && labels[i] != "" {
			row.Label = labels[i]
		}
		for h := range 24 {
			// Adding hours keeps DST-transition days at 24 absolute hours.
			local := start.Add(time.Duration(h) * time.Hour).In(loc)
			row.Hours[h] = local.Hour()
			row.Working[h] = tzconvert.IsWorkingHours(local)
		}
		rows = append(rows, row)
	}
	if len(bad) > 0 {
		return rows, fmt.Errorf("unknown zones: %s", strings.Join(bad, ", "))
	}
	return rows, nil
}

// Common returns the reference hours at which every row is within working
// hours.
func Common(rows []Row) []int {
	if len(rows) == 0 {
		return nil
	}
	var out []int
	for h := range 24 {
		all := true
		for i := range rows {
			if !rows[i].Working[h] {
				all = false
				break
			}
		}
		if all {
			out = append(out, h)
		}
	}
	return out
}

// Render draws the strip. now marks the current reference hour; pass -1 to
// omit the marker.
func Render(rows []Row, now int) string {
	var out strings.Builder

	width := 0
	for i := range rows {
		width = max(width, len([]rune(rows[i].Label)))
	}

	out.WriteString("🕘 Working hours overlap\n")
	out.WriteString(strings.Repeat("─", width+2+24*3) + "\n")

	working := color.New(color.FgGreen)
	off := color.New(color.FgHiBlack)
	marker := color.New(color.FgYellow, color.Bold)
	common := Common(rows)
	shared := make(map[int]bool, len(common))
	for _, h := range common {
		shared[h] = true
	}

	for i := range rows {
		r := &rows[i]
		fmt.Fprintf(&out, "%-*s  ", width, r.Label)
		for h := range 24 {
			cell := fmt.Sprintf("%02d ", r.Hours[h])
			switch {
			case h == now:
				out.WriteString(marker.Sprint(cell))
			case r.Working[h]:
				out.WriteString(working.Sprint(cell))
			default:
				out.WriteString(off.Sprint(cell))
			}
		}
		out.WriteString("\n")
	}

	fmt.Fprintf(&out, "%-*s  ", width, "")
	for h := range 24 {
		if shared[h] {
			out.WriteString(working.Sprint("▲  "))
		} else {
			out.WriteString("   ")
		}
	}
	out.WriteString("\n")

	if len(common) == 0 {
		out.WriteString("No shared working hours\n")
	} else {
		fmt.Fprintf(&out, "Shared working hours: %s\n", spans(common))
	}
	return out.String()
}

// spans collapses sorted hours into ranges, e.g. [9 10 11 14] gives
// "09:00-12:00, 14:00-15:00".
func spans(hours []int) string {
	var parts []string
	for i := 0; i < len(hours); {
		j := i
		for j+1 < len(hours) && hours[j+1] == hours[j]+1 {
			j++
		}
		parts = append(parts, fmt.Sprintf("%02d:00-%02d:00", hours[i], (hours[j]+1)%24))
		i = j + 1
	}
	return strings.Join(parts, ", ")
}
