// Package view builds the models the page template and the clock feed render.
package view

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/converter"
	"github.com/codeGROOVE-dev/worldtz/pkg/i18n"
	"github.com/codeGROOVE-dev/worldtz/pkg/selection"
	"github.com/codeGROOVE-dev/worldtz/pkg/session"
	"github.com/codeGROOVE-dev/worldtz/pkg/timezone"
	"github.com/codeGROOVE-dev/worldtz/pkg/tzconvert"
)

// Translate looks up a UI string with a fallback.
type Translate func(id, fallback string) string

// Card is one selected zone as displayed.
type Card struct {
	ID           string `json:"id"`
	Timezone     string `json:"timezone"`
	Flag         string `json:"flag"`
	Name         string `json:"name"`
	ZoneLabel    string `json:"zone_label"`
	Abbreviation string `json:"abbreviation"`
	Offset       string `json:"offset"`
	Time         string `json:"time"`
	DateTime     string `json:"datetime"`
	DayBadge     string `json:"day_badge,omitempty"`
	WorkingLabel string `json:"working_label"`
	Diff         string `json:"diff"`
	Working      bool   `json:"working"`
}

// Header is the page title block with the visitor's local time.
type Header struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	CurrentTime string `json:"current_time"`
	Zone        string `json:"zone"`
	Offset      string `json:"offset"`
}

// Clock is one frame of the live clock feed.
type Clock struct {
	Header Header `json:"header"`
	Cards  []Card `json:"cards"`
}

// ZoneOption is an entry of the converter's zone drop-downs.
type ZoneOption struct {
	ID    string `json:"id"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// City is a popular city with its translated name.
type City struct {
	catalog.PopularCity

	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ConverterModel is the state of the four-step converter.
type ConverterModel struct {
	Request converter.Request     `json:"request"`
	Result  *converter.Result     `json:"result,omitempty"`
	Summary string                `json:"summary,omitempty"`
	Zones   []ZoneOption          `json:"zones"`
	Quick   []converter.QuickTime `json:"quick"`
	Pairs   []catalog.Pair        `json:"pairs"`
}

// Page is everything the home template renders.
type Page struct {
	T         Translate
	Language  string
	Languages []i18n.Option
	Header    Header
	Converter ConverterModel
	Popular   []City
	Cards     []Card
	Format24h bool
	Empty     bool
}

// Builder assembles view models.
type Builder struct {
	zones     *timezone.Service
	converter *converter.Converter
	tr        *i18n.Translator
}

// NewBuilder creates a Builder.
func NewBuilder(zones *timezone.Service, conv *converter.Converter, tr *i18n.Translator) *Builder {
	return &Builder{zones: zones, converter: conv, tr: tr}
}

// Translator returns the string lookup for lang.
func (b *Builder) Translator(lang string) Translate {
	return b.tr.Func(lang)
}

// Header describes the visitor's local time.
func (b *Builder) Header(local *time.Location, now time.Time, use24h bool, t Translate) Header {
	at := now.In(local)
	return Header{
		Title:       t("title", "World Time Converter"),
		Subtitle:    t("subtitle", ""),
		CurrentTime: tzconvert.FormatDateTime(at, use24h),
		Zone:        local.String(),
		Offset:      tzconvert.Offset(at),
	}
}

// Cards renders the selection at now. Entries whose zone cannot be loaded are
// skipped.
func (b *Builder) Cards(entries []selection.Entry, local *time.Location, now time.Time, use24h bool, t Translate) []Card {
	cards := make([]Card, 0, len(entries))
	here := now.In(local)
	for _, e := range entries {
		loc, err := b.zones.Load(e.Timezone)
		if err != nil {
			continue
		}
		at := tzconvert.Convert(now, loc)

		working := tzconvert.IsWorkingHours(at)
		workingLabel := t("offHours", "Off hours")
		if working {
			workingLabel = t("workingHours", "Working hours")
		}

		diff := t("sameTimeZone", "Same time zone")
		if minutes := tzconvert.DiffFromLocal(local, loc, now); minutes != 0 {
			diff = tzconvert.FormatDiff(minutes) + " " + t("fromYourTime", "from your time")
		}

		cards = append(cards, Card{
			ID:           e.ID,
			Timezone:     e.Timezone,
			Flag:         e.Flag,
			Name:         t("cities."+e.Name, e.Name),
			ZoneLabel:    t("timezones."+e.Timezone, e.Timezone),
			Abbreviation: tzconvert.Abbreviation(at),
			Offset:       tzconvert.Offset(at),
			Time:         tzconvert.Format(at, use24h),
			DateTime:     tzconvert.FormatDateTime(at, use24h),
			DayBadge:     tzconvert.DayBadge(tzconvert.DayDifference(here, at)),
			Working:      working,
			WorkingLabel: workingLabel,
			Diff:         diff,
		})
	}
	return cards
}

// Clock renders one frame of the live feed for a visitor.
func (b *Builder) Clock(snap session.Snapshot, local *time.Location, now time.Time) Clock {
	t := b.Translator(snap.Language)
	return Clock{
		Header: b.Header(local, now, snap.Format24h, t),
		Cards:  b.Cards(snap.Selected, local, now, snap.Format24h, t),
	}
}

// Converter computes the converter panel for req. A request that cannot be
// converted yields a model without a result.
func (b *Builder) Converter(req converter.Request, use24h bool, now time.Time, t Translate) (ConverterModel, error) {
	m := ConverterModel{
		Request: req,
		Zones:   b.ZoneOptions(t),
		Quick:   b.converter.Quick(req, use24h, now),
		Pairs:   catalog.Pairs(),
	}
	res, err := b.converter.Convert(req, use24h)
	if err != nil {
		return m, err
	}
	m.Result = &res
	m.Summary = Summary(res, req.Source, t)
	return m, nil
}

// ZoneOptions lists the converter drop-down zones with translated labels.
func (b *Builder) ZoneOptions(t Translate) []ZoneOption {
	zones := catalog.ConverterZones()
	out := make([]ZoneOption, 0, len(zones))
	for _, z := range zones {
		out = append(out, ZoneOption{ID: z, Icon: catalog.ZoneIcon(z), Label: t("timezones."+z, z)})
	}
	return out
}

// Summary describes how far the result is ahead of or behind the source,
// e.g. "Later than Eastern Time 13 hours".
func Summary(res converter.Result, source string, t Translate) string {
	if res.DiffHours == 0 {
		return t("sameTimeZone", "Same time zone")
	}
	prefix := t("stepByStep.earlierThan", "Earlier than ")
	if res.Later {
		prefix = t("stepByStep.laterThan", "Later than ")
	}
	name := zoneShortName(t("timezones."+source, source))
	hours := res.DiffHours
	if hours < 0 {
		hours = -hours
	}
	return joinPrefix(prefix, name) + " " + strconv.FormatFloat(hours, 'f', -1, 64) + " " + t("stepByStep.hours", "hours")
}

// joinPrefix separates a Latin prefix from the name with a space. CJK
// prefixes such as "比" attach directly.
func joinPrefix(prefix, name string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return name
	}
	if r, _ := utf8.DecodeLastRuneInString(prefix); r < utf8.RuneSelf {
		return prefix + " " + name
	}
	return prefix + name
}

// zoneShortName drops the parenthesised city from a zone label.
func zoneShortName(label string) string {
	for _, sep := range []string{"（", " ("} {
		if i := strings.Index(label, sep); i > 0 {
			return label[:i]
		}
	}
	return label
}

// Popular lists the popular cities, flagging those already selected.
func (b *Builder) Popular(snap session.Snapshot, t Translate) []City {
	cities := catalog.Popular()
	selected := make(map[string]bool, len(snap.Selected))
	for _, e := range snap.Selected {
		selected[e.Timezone] = true
	}
	out := make([]City, 0, len(cities))
	for _, c := range cities {
		out = append(out, City{PopularCity: c, Label: t("cities."+c.Name, c.Name), Selected: selected[c.Timezone]})
	}
	return out
}

// Page assembles the full page. A converter error leaves the result empty and
// is returned so the caller can log it.
func (b *Builder) Page(snap session.Snapshot, local *time.Location, req converter.Request, now time.Time) (Page, error) {
	t := b.Translator(snap.Language)
	conv, err := b.Converter(req, snap.Format24h, now, t)
	cards := b.Cards(snap.Selected, local, now, snap.Format24h, t)
	return Page{
		T:         t,
		Language:  snap.Language,
		Languages: i18n.Supported,
		Header:    b.Header(local, now, snap.Format24h, t),
		Converter: conv,
		Popular:   b.Popular(snap, t),
		Cards:     cards,
		Format24h: snap.Format24h,
		Empty:     len(snap.Selected) == 0,
	}, err
}
