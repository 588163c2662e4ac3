// Package catalog holds the fixed city and zone tables that seed the quick-add
// grid, the manual converter and the popular conversion pairs.
package catalog

import (
	"strings"
)

// DefaultFlag is shown for zones that have no flag of their own.
const DefaultFlag = "🌍"

// PopularCity is a quick-add city.
type PopularCity struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Timezone string `json:"timezone" yaml:"timezone"`
	Country  string `json:"country" yaml:"country"`
	Flag     string `json:"flag" yaml:"flag"`
}

// popular is ordered; the order is the display order of the quick-add grid.
var popular = []PopularCity{
	{ID: "nyc", Name: "New York", Timezone: "America/New_York", Country: "United States", Flag: "🇺🇸"},
	{ID: "london", Name: "London", Timezone: "Europe/London", Country: "United Kingdom", Flag: "🇬🇧"},
	{ID: "tokyo", Name: "Tokyo", Timezone: "Asia/Tokyo", Country: "Japan", Flag: "🇯🇵"},
	{ID: "sydney", Name: "Sydney", Timezone: "Australia/Sydney", Country: "Australia", Flag: "🇦🇺"},
	{ID: "paris", Name: "Paris", Timezone: "Europe/Paris", Country: "France", Flag: "🇫🇷"},
	{ID: "berlin", Name: "Berlin", Timezone: "Europe/Berlin", Country: "Germany", Flag: "🇩🇪"},
	{ID: "moscow", Name: "Moscow", Timezone: "Europe/Moscow", Country: "Russia", Flag: "🇷🇺"},
	{ID: "dubai", Name: "Dubai", Timezone: "Asia/Dubai", Country: "UAE", Flag: "🇦🇪"},
	{ID: "singapore", Name: "Singapore", Timezone: "Asia/Singapore", Country: "Singapore", Flag: "🇸🇬"},
	{ID: "hongkong", Name: "Hong Kong", Timezone: "Asia/Hong_Kong", Country: "Hong Kong", Flag: "🇭🇰"},
	{ID: "shanghai", Name: "Shanghai", Timezone: "Asia/Shanghai", Country: "China", Flag: "🇨🇳"},
	{ID: "beijing", Name: "Beijing", Timezone: "Asia/Shanghai", Country: "China", Flag: "🇨🇳"},
	{ID: "la", Name: "Los Angeles", Timezone: "America/Los_Angeles", Country: "United States", Flag: "🇺🇸"},
	{ID: "chicago", Name: "Chicago", Timezone: "America/Chicago", Country: "United States", Flag: "🇺🇸"},
	{ID: "toronto", Name: "Toronto", Timezone: "America/Toronto", Country: "Canada", Flag: "🇨🇦"},
}

// Popular returns a copy of the popular city table in display order.
func Popular() []PopularCity {
	out := make([]PopularCity, len(popular))
	copy(out, popular)
	return out
}

// SearchPopular returns the popular cities whose name or country contains the
// query, ignoring case. An empty query matches nothing.
func SearchPopular(query string) []PopularCity {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []PopularCity
	for _, c := range popular {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Country), q) {
			out = append(out, c)
		}
	}
	return out
}

// Lookup finds a popular city by id.
func Lookup(id string) (PopularCity, bool) {
	for _, c := range popular {
		if c.ID == id {
			return c, true
		}
	}
	return PopularCity{}, false
}

// ByTimezone returns the first popular city in the given zone.
func ByTimezone(zone string) (PopularCity, bool) {
	for _, c := range popular {
		if c.Timezone == zone {
			return c, true
		}
	}
	return PopularCity{}, false
}

var converterZones = []string{
	"Asia/Shanghai",
	"America/New_York",
	"Europe/London",
	"Asia/Tokyo",
	"Australia/Sydney",
	"America/Los_Angeles",
	"Europe/Paris",
	"Asia/Dubai",
	"UTC",
}

// ConverterZones lists the zones offered by the source and target drop-downs.
func ConverterZones() []string {
	out := make([]string, len(converterZones))
	copy(out, converterZones)
	return out
}

var zoneIcons = map[string]string{
	"Asia/Shanghai":       "🌏",
	"America/New_York":    "🗽",
	"Europe/London":       "🇬🇧",
	"Asia/Tokyo":          "🗾",
	"Australia/Sydney":    "🇦🇺",
	"America/Los_Angeles": "🌴",
	"Europe/Paris":        "🗼",
	"Asia/Dubai":          "🏜️",
	"UTC":                 "🌍",
}

// ZoneIcon is the glyph shown next to a converter drop-down.
func ZoneIcon(zone string) string {
	if icon, ok := zoneIcons[zone]; ok {
		return icon
	}
	return "🌐"
}
