// Package tzconvert re-projects instants into zones and formats the results.
// Instants are never shifted: every function here works on the absolute time
// and only changes how its wall-clock fields are read.
package tzconvert

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateTime is returned when a user-entered date-time cannot be parsed.
var ErrInvalidDateTime = errors.New("invalid date-time")

// Working hours are [WorkStart, WorkEnd) in local time.
const (
	WorkStart = 9
	WorkEnd   = 18
)

// Convert re-expresses t in loc. The absolute instant is unchanged.
func Convert(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// OffsetMinutes returns the UTC offset of t's zone in minutes east of UTC.
func OffsetMinutes(t time.Time) int {
	_, secs := t.Zone()
	return secs / 60
}

// Offset formats t's UTC offset as UTC±HH:MM.
// Example: UTC+08:00, UTC-05:00, UTC+05:45.
func Offset(t time.Time) string {
	return "UTC" + ShortOffset(t)
}

// ShortOffset formats t's UTC offset as ±HH:MM.
func ShortOffset(t time.Time) string {
	return formatMinutes(OffsetMinutes(t))
}

func formatMinutes(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// OffsetOf loads zone and formats its offset at t.
func OffsetOf(zone string, t time.Time) (string, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("loading zone %q: %w", zone, err)
	}
	return Offset(t.In(loc)), nil
}

// Abbreviation returns the zone abbreviation in effect at t (e.g. "JST").
// Zones that only have a numeric name such as "+08" yield "".
func Abbreviation(t time.Time) string {
	name, _ := t.Zone()
	if name == "" || name[0] == '+' || name[0] == '-' {
		return ""
	}
	return name
}

// IsWorkingHours reports whether t's local hour is within working hours.
func IsWorkingHours(t time.Time) bool {
	h := t.Hour()
	return h >= WorkStart && h < WorkEnd
}

// HourDifference returns how many hours zone b is ahead of zone a at t.
// The result is fractional for zones with 30 or 45 minute offsets.
func HourDifference(a, b *time.Location, t time.Time) float64 {
	return float64(OffsetMinutes(t.In(b))-OffsetMinutes(t.In(a))) / 60
}

// DayDifference returns the number of calendar days between the local dates
// of a and b (b minus a). Both are read in their own zones.
func DayDifference(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// DayBadge renders a day difference as "+1", "-1" or "".
func DayBadge(days int) string {
	switch {
	case days > 0:
		return "+1"
	case days < 0:
		return "-1"
	default:
		return ""
	}
}

// Format renders the time of day, 24-hour or 12-hour with AM/PM.
func Format(t time.Time, use24h bool) string {
	if use24h {
		return t.Format("15:04:05")
	}
	return t.Format("3:04:05 PM")
}

// FormatDateTime renders the card date line, e.g. "Jan 02, 2024 3:04 PM".
func FormatDateTime(t time.Time, use24h bool) string {
	if use24h {
		return t.Format("Jan 02, 2006 15:04")
	}
	return t.Format("Jan 02, 2006 3:04 PM")
}

// FormatResult renders a converter result, e.g. "2023/12/31 23:00".
func FormatResult(t time.Time, use24h bool) string {
	if use24h {
		return t.Format("2006/1/2 15:04")
	}
	return t.Format("2006/1/2 3:04 PM")
}

// FormatShort renders hours and minutes only.
func FormatShort(t time.Time, use24h bool) string {
	if use24h {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// InputLayout is the layout of an HTML datetime-local value.
const InputLayout = "2006-01-02T15:04"

var inputLayouts = []string{
	InputLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseLocal reads input as a wall-clock time in loc.
func ParseLocal(input string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrInvalidDateTime)
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, input)
}

// DiffFromLocal returns how many minutes target's zone is ahead of local's
// zone at t.
func DiffFromLocal(local, target *time.Location, t time.Time) int {
	return OffsetMinutes(t.In(target)) - OffsetMinutes(t.In(local))
}

// FormatDiff renders a minute difference as "+8h", "-5:30h" or "" when zero.
func FormatDiff(minutes int) string {
	if minutes == 0 {
		return ""
	}
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%s%dh", sign, minutes/60)
	}
	return fmt.Sprintf("%s%d:%02dh", sign, minutes/60, minutes%60)
}

// ParseTimezoneOffset returns the offset in minutes east of UTC described by
// timezone at t. It accepts "UTC", "UTC+8", "UTC-05:30" and IANA names.
// Invalid input returns 0 and false.
func ParseTimezoneOffset(timezone string, t time.Time) (int, bool) {
	if strings.HasPrefix(timezone, "UTC") || strings.HasPrefix(timezone, "GMT") {
		rest := timezone[3:]
		if rest == "" {
			return 0, true
		}

		sign := 1
		switch rest[0] {
		case '-':
			sign = -1
			rest = rest[1:]
		case '+':
			rest = rest[1:]
		default:
			return 0, false
		}

		hoursPart, minutesPart, hasMinutes := strings.Cut(rest, ":")
		hours, ok := parseDigits(hoursPart)
		if !ok || hours > 14 {
			return 0, false
		}
		minutes := 0
		if hasMinutes {
			minutes, ok = parseDigits(minutesPart)
			if !ok || minutes >= 60 {
				return 0, false
			}
		}
		return sign * (hours*60 + minutes), true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return 0, false
	}
	return OffsetMinutes(t.In(loc)), true
}

func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 2 {
		return 0, false
	}
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	return n, true
}
