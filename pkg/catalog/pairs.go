package catalog

// Pair is a popular source/target conversion shortcut, e.g. "UTC-CST".
type Pair struct {
	Label  string `json:"label"`
	From   string `json:"from"`
	To     string `json:"to"`
	FromTZ string `json:"from_tz"`
	ToTZ   string `json:"to_tz"`
}

var pairs = []Pair{
	{Label: "UTC-CST", From: "UTC", To: "CST", FromTZ: "UTC", ToTZ: "Asia/Shanghai"},
	{Label: "UTC-EST", From: "UTC", To: "EST", FromTZ: "UTC", ToTZ: "America/New_York"},
	{Label: "UTC-PST", From: "UTC", To: "PST", FromTZ: "UTC", ToTZ: "America/Los_Angeles"},
	{Label: "UTC-JST", From: "UTC", To: "JST", FromTZ: "UTC", ToTZ: "Asia/Tokyo"},
	{Label: "UTC-GMT", From: "UTC", To: "GMT", FromTZ: "UTC", ToTZ: "Europe/London"},
	{Label: "EST-CST", From: "EST", To: "CST", FromTZ: "America/New_York", ToTZ: "Asia/Shanghai"},
	{Label: "PST-CST", From: "PST", To: "CST", FromTZ: "America/Los_Angeles", ToTZ: "Asia/Shanghai"},
	{Label: "GMT-CST", From: "GMT", To: "CST", FromTZ: "Europe/London", ToTZ: "Asia/Shanghai"},
	{Label: "JST-EST", From: "JST", To: "EST", FromTZ: "Asia/Tokyo", ToTZ: "America/New_York"},
	{Label: "CET-EST", From: "CET", To: "EST", FromTZ: "Europe/Paris", ToTZ: "America/New_York"},
	{Label: "AEST-PST", From: "AEST", To: "PST", FromTZ: "Australia/Sydney", ToTZ: "America/Los_Angeles"},
	{Label: "MSK-EST", From: "MSK", To: "EST", FromTZ: "Europe/Moscow", ToTZ: "America/New_York"},
}

// Pairs returns the popular conversion pairs in display order.
func Pairs() []Pair {
	out := make([]Pair, len(pairs))
	copy(out, pairs)
	return out
}

// PairByLabel finds a pair by its label, e.g. "JST-EST".
func PairByLabel(label string) (Pair, bool) {
	for _, p := range pairs {
		if p.Label == label {
			return p, true
		}
	}
	return Pair{}, false
}

var zoneFlags = map[string]string{
	"UTC":                 "🌍",
	"America/New_York":    "🇺🇸",
	"America/Los_Angeles": "🇺🇸",
	"America/Chicago":     "🇺🇸",
	"Asia/Shanghai":       "🇨🇳",
	"Asia/Tokyo":          "🇯🇵",
	"Europe/London":       "🇬🇧",
	"Europe/Paris":        "🇫🇷",
	"Europe/Berlin":       "🇩🇪",
	"Europe/Moscow":       "🇷🇺",
	"Australia/Sydney":    "🇦🇺",
	"Asia/Dubai":          "🇦🇪",
	"Asia/Singapore":      "🇸🇬",
}

// Flag returns the flag for a zone, falling back to a generic globe.
func Flag(zone string) string {
	if f, ok := zoneFlags[zone]; ok {
		return f
	}
	return "🌐"
}

// QuickTarget is one cell of the converter's quick target grid.
type QuickTarget struct {
	Code     string `json:"code"`
	Timezone string `json:"timezone"`
}

var quickTargets = []QuickTarget{
	{Code: "UTC", Timezone: "UTC"},
	{Code: "EST", Timezone: "America/New_York"},
	{Code: "PST", Timezone: "America/Los_Angeles"},
	{Code: "JST", Timezone: "Asia/Tokyo"},
	{Code: "GMT", Timezone: "Europe/London"},
	{Code: "CST", Timezone: "Asia/Shanghai"},
}

// QuickTargets returns the quick target grid shown under the converter.
func QuickTargets() []QuickTarget {
	out := make([]QuickTarget, len(quickTargets))
	copy(out, quickTargets)
	return out
}
