package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/worldtz/pkg/converter"
	"github.com/codeGROOVE-dev/worldtz/pkg/i18n"
	"github.com/codeGROOVE-dev/worldtz/pkg/timezone"
	"github.com/codeGROOVE-dev/worldtz/pkg/tzconvert"
	"github.com/codeGROOVE-dev/worldtz/pkg/view"
)

func newTestApp(t *testing.T, language string) (*app, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	logger := slog.New(slog.DiscardHandler)
	tr, err := i18n.New(logger)
	if err != nil {
		t.Fatalf("i18n.New() error = %v", err)
	}
	zones := timezone.New(logger)
	conv := converter.New(zones)
	views := view.NewBuilder(zones, conv, tr)

	var out bytes.Buffer
	return &app{
		out:       &out,
		zones:     zones,
		converter: conv,
		views:     views,
		t:         views.Translator(language),
		local:     time.UTC,
		use24h:    true,
		now:       func() time.Time { return time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC) },
		logger:    logger,
	}, &out
}

func TestResolve(t *testing.T) {
	a, _ := newTestApp(t, i18n.English)
	tests := []struct {
		arg    string
		wantID string
		wantTZ string
	}{
		{arg: "tokyo", wantID: "tokyo", wantTZ: "Asia/Tokyo"},
		{arg: "TOKYO", wantID: "tokyo", wantTZ: "Asia/Tokyo"},
		{arg: "Hong Kong", wantID: "hongkong", wantTZ: "Asia/Hong_Kong"},
		{arg: "Europe/Lisbon", wantID: "Europe/Lisbon", wantTZ: "Europe/Lisbon"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			e, err := a.resolve(tt.arg)
			if err != nil {
				t.Fatalf("resolve(%q) error = %v", tt.arg, err)
			}
			if e.ID != tt.wantID || e.Timezone != tt.wantTZ {
				t.Errorf("resolve(%q) = %+v, want id %q zone %q", tt.arg, e, tt.wantID, tt.wantTZ)
			}
		})
	}

	if _, err := a.resolve("Atlantis"); !errors.Is(err, errUnknownZone) {
		t.Errorf("resolve(Atlantis) error = %v, want errUnknownZone", err)
	}
}

func TestNow(t *testing.T) {
	a, out := newTestApp(t, i18n.English)
	if err := a.run(context.Background(), "now", []string{"tokyo", "Asia/Tokyo", "london"}); err != nil {
		t.Fatalf("now error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"World Time Converter", "Tokyo", "13:00:00", "JST", "London", "04:00:00", "Same time zone", "+9h from your time"} {
		if !strings.Contains(got, want) {
			t.Errorf("now output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "Asia/Tokyo") != 1 {
		t.Errorf("duplicate zone not dropped:\n%s", got)
	}
}

func TestNowDefaultsToPopular(t *testing.T) {
	a, out := newTestApp(t, i18n.SimplifiedChinese)
	if err := a.run(context.Background(), "now", nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "东京") {
		t.Errorf("now output not translated:\n%s", out.String())
	}
	// Beijing shares Shanghai's zone and is dropped.
	if strings.Contains(out.String(), "北京") {
		t.Errorf("Beijing should be deduplicated against Shanghai:\n%s", out.String())
	}
}

func TestSearch(t *testing.T) {
	a, out := newTestApp(t, i18n.English)
	if err := a.run(context.Background(), "search", []string{"tokyo"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "city") || !strings.Contains(out.String(), "+09:00") {
		t.Errorf("search output:\n%s", out.String())
	}

	out.Reset()
	if err := a.run(context.Background(), "search", []string{"zz"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No results found") {
		t.Errorf("search output:\n%s", out.String())
	}

	if err := a.run(context.Background(), "search", nil); !errors.Is(err, errUsage) {
		t.Errorf("search without query error = %v", err)
	}
}

func TestConvert(t *testing.T) {
	a, out := newTestApp(t, i18n.English)
	err := a.run(context.Background(), "convert", []string{"-from", "shanghai", "-to", "America/New_York", "-at", "2024-01-01T12:00"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"2023/12/31 23:00", "EST", "Earlier than China Standard Time 13 hours", "JST"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("convert output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := a.run(context.Background(), "convert", []string{"-pair", "utc-jst", "-at", "2024-01-01T00:00"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2024/1/1 09:00") {
		t.Errorf("pair convert output:\n%s", out.String())
	}

	err = a.run(context.Background(), "convert", []string{"-at", "soon"})
	if !errors.Is(err, tzconvert.ErrInvalidDateTime) {
		t.Errorf("convert bad input error = %v", err)
	}
	if err := a.run(context.Background(), "convert", []string{"-pair", "XYZ"}); err == nil {
		t.Error("convert with unknown pair succeeded")
	}
}

func TestOverlapAndCities(t *testing.T) {
	a, out := newTestApp(t, i18n.English)
	if err := a.run(context.Background(), "overlap", []string{"london", "nyc"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Shared working hours: 14:00-18:00") {
		t.Errorf("overlap output:\n%s", out.String())
	}

	out.Reset()
	if err := a.run(context.Background(), "cities", nil); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"nyc", "toronto", "MSK-EST"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("cities output missing %q", want)
		}
	}
}

func TestOverlapFixedOffset(t *testing.T) {
	a, out := newTestApp(t, i18n.English)
	if err := a.run(context.Background(), "overlap", []string{"UTC+8", "tokyo"}); err != nil {
		t.Fatalf("overlap UTC+8 tokyo: %v", err)
	}
	if !strings.Contains(out.String(), "Shared working hours: 01:00-09:00") {
		t.Errorf("overlap output:\n%s", out.String())
	}
}

func TestWatchStopsWithContext(t *testing.T) {
	a, out := newTestApp(t, i18n.English)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.run(ctx, "watch", []string{"tokyo"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Press Ctrl+C to exit") {
		t.Errorf("watch output:\n%s", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	a, _ := newTestApp(t, i18n.English)
	if err := a.run(context.Background(), "dance", nil); !errors.Is(err, errUsage) {
		t.Errorf("run(dance) error = %v, want errUsage", err)
	}
}

func TestPosixLocale(t *testing.T) {
	tests := map[string]string{
		"zh_CN.UTF-8": "zh-CN",
		"zh_TW":       "zh-TW",
		"en_US.UTF-8": "en-US",
		"de_DE@euro":  "de-DE",
		"C":           "",
		"":            "",
		"POSIX":       "",
	}
	for in, want := range tests {
		if got := posixLocale(in); got != want {
			t.Errorf("posixLocale(%q) = %q, want %q", in, got, want)
		}
	}
	if got := i18n.Detect("", posixLocale("zh_TW.UTF-8")); got != i18n.TraditionalChinese {
		t.Errorf("Detect from LANG = %q", got)
	}
}
