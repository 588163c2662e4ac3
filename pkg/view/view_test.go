package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/converter"
	"github.com/codeGROOVE-dev/worldtz/pkg/i18n"
	"github.com/codeGROOVE-dev/worldtz/pkg/selection"
	"github.com/codeGROOVE-dev/worldtz/pkg/session"
	"github.com/codeGROOVE-dev/worldtz/pkg/timezone"
)

func fallbackOnly(_, fallback string) string { return fallback }

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	tr, err := i18n.New(nil)
	require.NoError(t, err)
	zones := timezone.New(nil)
	return NewBuilder(zones, converter.New(zones), tr)
}

func tokyo(t *testing.T) selection.Entry {
	t.Helper()
	c, ok := catalog.Lookup("tokyo")
	require.True(t, ok)
	return selection.FromCity(c)
}

func TestCardsWorkingHours(t *testing.T) {
	b := newBuilder(t)
	now := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)

	cards := b.Cards([]selection.Entry{tokyo(t)}, time.UTC, now, true, fallbackOnly)
	require.Len(t, cards, 1)
	c := cards[0]
	assert.Equal(t, "Tokyo", c.Name)
	assert.Equal(t, "JST", c.Abbreviation)
	assert.Equal(t, "UTC+09:00", c.Offset)
	assert.Equal(t, "09:30:00", c.Time)
	assert.Equal(t, "Jan 01, 2024 09:30", c.DateTime)
	assert.Empty(t, c.DayBadge)
	assert.True(t, c.Working)
	assert.Equal(t, "Working hours", c.WorkingLabel)
	assert.Equal(t, "+9h from your time", c.Diff)
}

func TestCardsNextDayOffHours(t *testing.T) {
	b := newBuilder(t)
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	cards := b.Cards([]selection.Entry{tokyo(t)}, time.UTC, now, false, fallbackOnly)
	require.Len(t, cards, 1)
	assert.Equal(t, "+1", cards[0].DayBadge)
	assert.False(t, cards[0].Working)
	assert.Equal(t, "Off hours", cards[0].WorkingLabel)
	assert.Equal(t, "5:00:00 AM", cards[0].Time)
}

func TestCardsSameZoneAndUnknownZone(t *testing.T) {
	b := newBuilder(t)
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	entries := []selection.Entry{tokyo(t), {ID: "bogus", Timezone: "Nowhere/Land", Name: "Bogus"}}
	cards := b.Cards(entries, loc, time.Now(), true, fallbackOnly)
	require.Len(t, cards, 1)
	assert.Equal(t, "Same time zone", cards[0].Diff)
}

func TestCardsTranslated(t *testing.T) {
	b := newBuilder(t)
	cards := b.Cards([]selection.Entry{tokyo(t)}, time.UTC, time.Now(), true, b.Translator(i18n.SimplifiedChinese))
	require.Len(t, cards, 1)
	assert.Equal(t, "东京", cards[0].Name)
	assert.Equal(t, "日本标准时间（东京）", cards[0].ZoneLabel)
}

func TestSummary(t *testing.T) {
	res := converter.Result{DiffHours: -13}
	assert.Equal(t, "Earlier than Asia/Shanghai 13 hours", Summary(res, "Asia/Shanghai", fallbackOnly))

	res = converter.Result{DiffHours: 5.5, Later: true}
	assert.Equal(t, "Later than UTC 5.5 hours", Summary(res, "UTC", fallbackOnly))

	assert.Equal(t, "Same time zone", Summary(converter.Result{}, "UTC", fallbackOnly))
}

func TestZoneShortName(t *testing.T) {
	assert.Equal(t, "China Standard Time", zoneShortName("China Standard Time (Shanghai)"))
	assert.Equal(t, "中国标准时间", zoneShortName("中国标准时间（上海）"))
	assert.Equal(t, "UTC", zoneShortName("UTC"))
}

func TestSearch(t *testing.T) {
	b := newBuilder(t)
	now := time.Now()

	assert.Nil(t, b.Search("t", now, fallbackOnly))
	assert.Nil(t, b.Search("   ", now, fallbackOnly))

	got := b.Search("tokyo", now, fallbackOnly)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, KindCity, got[0].Kind)
	assert.Equal(t, "tokyo", got[0].ID)
	assert.Equal(t, KindTimezone, got[1].Kind)
	assert.Equal(t, "Asia/Tokyo", got[1].Timezone)

	zones := 0
	for _, r := range b.Search("america", now, fallbackOnly) {
		if r.Kind == KindTimezone {
			zones++
		}
	}
	assert.Equal(t, MaxZoneResults, zones)
}

func TestPage(t *testing.T) {
	b := newBuilder(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := session.Snapshot{Selected: []selection.Entry{tokyo(t)}, Format24h: true, Language: i18n.English}

	page, err := b.Page(snap, time.UTC, converter.Request{Source: "UTC", Input: "2024-06-01T12:00", Target: "Asia/Tokyo"}, now)
	require.NoError(t, err)
	assert.False(t, page.Empty)
	assert.Len(t, page.Cards, 1)
	require.NotNil(t, page.Converter.Result)
	assert.Equal(t, "2024/6/1 21:00", page.Converter.Result.Display)
	assert.Len(t, page.Converter.Zones, len(catalog.ConverterZones()))
	assert.Len(t, page.Converter.Pairs, len(catalog.Pairs()))

	var selected int
	for _, c := range page.Popular {
		if c.Selected {
			selected++
		}
	}
	assert.Equal(t, 1, selected)

	empty, err := b.Page(session.Snapshot{Language: i18n.English}, time.UTC, converter.Request{Source: "UTC", Input: "nope", Target: "UTC"}, now)
	require.Error(t, err)
	assert.True(t, empty.Empty)
	assert.Nil(t, empty.Converter.Result)
	assert.Len(t, empty.Converter.Quick, 6)
}

func TestJoinPrefix(t *testing.T) {
	assert.Equal(t, "Later than UTC", joinPrefix("Later than ", "UTC"))
	assert.Equal(t, "Later than UTC", joinPrefix("Later than", "UTC"))
	assert.Equal(t, "比中国标准时间", joinPrefix("比", "中国标准时间"))
	assert.Equal(t, "UTC", joinPrefix("", "UTC"))
}
