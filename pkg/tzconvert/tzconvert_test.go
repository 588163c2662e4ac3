package tzconvert

import (
	"errors"
	"math"
	"regexp"
	"testing"
	"time"
)

func mustLoad(t *testing.T, zone string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(zone)
	if err != nil {
		t.Fatalf("loading %s: %v", zone, err)
	}
	return loc
}

var winter = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

func TestOffset(t *testing.T) {
	tests := []struct {
		zone string
		at   time.Time
		want string
	}{
		{"Asia/Shanghai", winter, "UTC+08:00"},
		{"America/New_York", winter, "UTC-05:00"},
		{"America/New_York", time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC), "UTC-04:00"},
		{"Asia/Kolkata", winter, "UTC+05:30"},
		{"Asia/Kathmandu", winter, "UTC+05:45"},
		{"America/St_Johns", winter, "UTC-03:30"},
		{"UTC", winter, "UTC+00:00"},
		{"Pacific/Kiritimati", winter, "UTC+14:00"},
	}
	for _, tt := range tests {
		t.Run(tt.zone+"@"+tt.at.Format("Jan"), func(t *testing.T) {
			got := Offset(tt.at.In(mustLoad(t, tt.zone)))
			if got != tt.want {
				t.Errorf("Offset = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOffsetPattern(t *testing.T) {
	pattern := regexp.MustCompile(`^UTC[+-]\d{2}:\d{2}$`)
	zones := []string{"UTC", "Asia/Tokyo", "America/Los_Angeles", "Pacific/Chatham", "Etc/GMT+12", "Australia/Eucla"}
	instants := []time.Time{
		winter,
		time.Date(2024, time.March, 10, 7, 0, 0, 0, time.UTC),
		time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2038, time.June, 30, 23, 59, 59, 0, time.UTC),
	}
	for _, z := range zones {
		loc := mustLoad(t, z)
		for _, at := range instants {
			if got := Offset(at.In(loc)); !pattern.MatchString(got) {
				t.Errorf("Offset(%s, %v) = %q does not match pattern", z, at, got)
			}
		}
	}
}

func TestOffsetOf(t *testing.T) {
	got, err := OffsetOf("Asia/Tokyo", winter)
	if err != nil || got != "UTC+09:00" {
		t.Errorf("OffsetOf(Asia/Tokyo) = %q, %v", got, err)
	}
	if _, err := OffsetOf("Nowhere/Land", winter); err == nil {
		t.Error("OffsetOf(Nowhere/Land) should fail")
	}
}

func TestAbbreviation(t *testing.T) {
	tests := []struct {
		zone string
		want string
	}{
		{"America/New_York", "EST"},
		{"Asia/Tokyo", "JST"},
		{"UTC", "UTC"},
		{"Asia/Dubai", ""}, // numeric "+04"
		{"America/Sao_Paulo", ""},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			if got := Abbreviation(winter.In(mustLoad(t, tt.zone))); got != tt.want {
				t.Errorf("Abbreviation = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsWorkingHours(t *testing.T) {
	tests := []struct {
		name string
		hour int
		min  int
		want bool
	}{
		{"nine sharp", 9, 0, true},
		{"just before nine", 8, 59, false},
		{"afternoon", 17, 59, true},
		{"six sharp", 18, 0, false},
		{"midnight", 0, 0, false},
	}
	loc := mustLoad(t, "Europe/Berlin")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2024, time.May, 2, tt.hour, tt.min, 0, 0, loc)
			if got := IsWorkingHours(at); got != tt.want {
				t.Errorf("IsWorkingHours(%v) = %v, want %v", at, got, tt.want)
			}
		})
	}
}

func TestHourDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Asia/Shanghai", "America/New_York", -13},
		{"America/New_York", "Asia/Shanghai", 13},
		{"UTC", "Asia/Kolkata", 5.5},
		{"UTC", "Asia/Kathmandu", 5.75},
		{"Europe/London", "Europe/London", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			got := HourDifference(mustLoad(t, tt.a), mustLoad(t, tt.b), winter)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HourDifference = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHourDifferenceSelfIsZero(t *testing.T) {
	for _, z := range []string{"UTC", "Asia/Tokyo", "America/St_Johns", "Pacific/Chatham"} {
		loc := mustLoad(t, z)
		for _, at := range []time.Time{winter, winter.AddDate(0, 6, 0)} {
			if got := HourDifference(loc, loc, at); got != 0 {
				t.Errorf("HourDifference(%s, %s) = %v", z, z, got)
			}
		}
	}
}

func TestDayDifference(t *testing.T) {
	tokyo := mustLoad(t, "Asia/Tokyo")
	la := mustLoad(t, "America/Los_Angeles")
	tests := []struct {
		name string
		at   time.Time
		a, b *time.Location
		want int
	}{
		{"same day", winter, time.UTC, tokyo, 0},
		{"tokyo ahead", time.Date(2024, time.January, 15, 20, 0, 0, 0, time.UTC), time.UTC, tokyo, 1},
		{"la behind", time.Date(2024, time.January, 15, 2, 0, 0, 0, time.UTC), time.UTC, la, -1},
		// A day-of-month subtraction would give 1-31 = -30 here.
		{"across month end", time.Date(2024, time.January, 31, 20, 0, 0, 0, time.UTC), time.UTC, tokyo, 1},
		{"across year end", time.Date(2023, time.December, 31, 20, 0, 0, 0, time.UTC), time.UTC, tokyo, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DayDifference(tt.at.In(tt.a), tt.at.In(tt.b))
			if got != tt.want {
				t.Errorf("DayDifference = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDayBadge(t *testing.T) {
	if DayBadge(1) != "+1" || DayBadge(-1) != "-1" || DayBadge(0) != "" {
		t.Errorf("DayBadge values: %q %q %q", DayBadge(1), DayBadge(-1), DayBadge(0))
	}
}

func TestFormat(t *testing.T) {
	at := time.Date(2024, time.March, 5, 14, 30, 7, 0, time.UTC)
	tests := []struct {
		name   string
		fn     func(time.Time, bool) string
		use24h bool
		want   string
	}{
		{"time 24h", Format, true, "14:30:07"},
		{"time 12h", Format, false, "2:30:07 PM"},
		{"datetime 24h", FormatDateTime, true, "Mar 05, 2024 14:30"},
		{"datetime 12h", FormatDateTime, false, "Mar 05, 2024 2:30 PM"},
		{"result 24h", FormatResult, true, "2024/3/5 14:30"},
		{"result 12h", FormatResult, false, "2024/3/5 2:30 PM"},
		{"short 12h", FormatShort, false, "2:30 PM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(at, tt.use24h); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
	if got := Format(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC), false); got != "12:05:00 AM" {
		t.Errorf("midnight 12h = %q", got)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	shanghai := mustLoad(t, "Asia/Shanghai")
	ny := mustLoad(t, "America/New_York")

	src, err := ParseLocal("2024-01-01T12:00", shanghai)
	if err != nil {
		t.Fatalf("ParseLocal: %v", err)
	}
	got := Convert(src, ny)
	if !got.Equal(src) {
		t.Errorf("Convert changed the instant: %v vs %v", got, src)
	}
	if got.Format(InputLayout) != "2023-12-31T23:00" {
		t.Errorf("New York wall clock = %s, want 2023-12-31T23:00", got.Format(InputLayout))
	}
	back := Convert(got, shanghai)
	if back.Format(InputLayout) != "2024-01-01T12:00" {
		t.Errorf("round trip wall clock = %s", back.Format(InputLayout))
	}
}

func TestParseLocal(t *testing.T) {
	loc := mustLoad(t, "Asia/Tokyo")
	for _, in := range []string{"2024-02-29T08:15", "2024-02-29T08:15:00", "2024-02-29 08:15", " 2024-02-29T08:15 "} {
		got, err := ParseLocal(in, loc)
		if err != nil {
			t.Errorf("ParseLocal(%q): %v", in, err)
			continue
		}
		if got.Hour() != 8 || got.Minute() != 15 || got.Location() != loc {
			t.Errorf("ParseLocal(%q) = %v", in, got)
		}
	}
	for _, in := range []string{"", "tomorrow", "2024-13-01T00:00", "2024-02-30T10:00"} {
		if _, err := ParseLocal(in, loc); !errors.Is(err, ErrInvalidDateTime) {
			t.Errorf("ParseLocal(%q) error = %v, want ErrInvalidDateTime", in, err)
		}
	}
}

func TestFormatDiff(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, ""},
		{480, "+8h"},
		{-300, "-5h"},
		{330, "+5:30h"},
		{-570, "-9:30h"},
		{45, "+0:45h"},
	}
	for _, tt := range tests {
		if got := FormatDiff(tt.minutes); got != tt.want {
			t.Errorf("FormatDiff(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
	if got := DiffFromLocal(mustLoad(t, "Europe/London"), mustLoad(t, "Asia/Kolkata"), winter); got != 330 {
		t.Errorf("DiffFromLocal = %d, want 330", got)
	}
}

func TestParseTimezoneOffset(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"UTC", 0, true},
		{"UTC+8", 480, true},
		{"UTC-4", -240, true},
		{"UTC+05:30", 330, true},
		{"GMT-03:30", -210, true},
		{"America/New_York", -300, true},
		{"Pacific/Auckland", 780, true},
		{"UTC+15", 0, false},
		{"UTC+5:75", 0, false},
		{"UTCX", 0, false},
		{"Invalid/Zone", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimezoneOffset(tt.in, winter)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseTimezoneOffset(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
