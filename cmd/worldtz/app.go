package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/converter"
	"github.com/codeGROOVE-dev/worldtz/pkg/overlap"
	"github.com/codeGROOVE-dev/worldtz/pkg/selection"
	"github.com/codeGROOVE-dev/worldtz/pkg/ticker"
	"github.com/codeGROOVE-dev/worldtz/pkg/timezone"
	"github.com/codeGROOVE-dev/worldtz/pkg/view"
)

const (
	clearScreen = "\033[2J"
	cursorHome  = "\033[H"
)

var (
	errUsage       = errors.New("usage")
	errUnknownZone = errors.New("not a city or timezone")
)

type app struct {
	out       io.Writer
	zones     *timezone.Service
	converter *converter.Converter
	views     *view.Builder
	t         view.Translate
	local     *time.Location
	now       func() time.Time
	logger    *slog.Logger
	use24h    bool
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "now":
		return a.cmdNow(args)
	case "watch":
		return a.cmdWatch(ctx, args)
	case "search":
		return a.cmdSearch(args)
	case "convert":
		return a.cmdConvert(args)
	case "overlap":
		return a.cmdOverlap(args)
	case "cities":
		return a.cmdCities()
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// resolve maps an argument to a selection entry: a popular city id or name,
// or an IANA zone.
func (a *app) resolve(arg string) (selection.Entry, error) {
	if c, ok := catalog.Lookup(strings.ToLower(arg)); ok {
		return selection.FromCity(c), nil
	}
	for _, c := range catalog.SearchPopular(arg) {
		if strings.EqualFold(c.Name, arg) {
			return selection.FromCity(c), nil
		}
	}
	info, err := a.zones.Describe(arg, a.now())
	if err != nil {
		return selection.Entry{}, fmt.Errorf("%w: %q", errUnknownZone, arg)
	}
	return selection.FromInfo(info), nil
}

// entries resolves args into a selection, falling back to the popular cities.
// Duplicate zones are dropped the same way the page drops them.
func (a *app) entries(args []string) ([]selection.Entry, error) {
	sel := &selection.Selection{}
	if len(args) == 0 {
		for _, c := range catalog.Popular() {
			sel.Add(selection.FromCity(c))
		}
		return sel.Entries(), nil
	}
	for _, arg := range args {
		e, err := a.resolve(arg)
		if err != nil {
			return nil, err
		}
		if !sel.Add(e) {
			a.logger.Debug("skipping duplicate zone", "arg", arg, "zone", e.Timezone)
		}
	}
	return sel.Entries(), nil
}

func (a *app) cmdNow(args []string) error {
	entries, err := a.entries(args)
	if err != nil {
		return err
	}
	a.renderClock(a.out, entries, a.now())
	return nil
}

func (a *app) renderClock(w io.Writer, entries []selection.Entry, now time.Time) {
	header := a.views.Header(a.local, now, a.use24h, a.t)
	bold := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintf(w, "%s %s\n", bold.Sprintf("🌍 %s", header.Title),
		dim.Sprintf("(%s %s %s)", a.t("currentTime", "Current time"), header.CurrentTime, header.Offset))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", a.t("timezoneLabel", "Timezone"), "", "", "", ""})
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	working := color.New(color.FgGreen)
	off := color.New(color.FgHiBlack)
	for _, c := range a.views.Cards(entries, a.local, now, a.use24h, a.t) {
		status := off.Sprint(c.WorkingLabel)
		if c.Working {
			status = working.Sprint(c.WorkingLabel)
		}
		clock := color.New(color.Bold).Sprint(c.Time)
		if c.DayBadge != "" {
			clock += color.New(color.FgYellow).Sprintf(" %s", c.DayBadge)
		}
		table.Append([]string{
			c.Flag + " " + c.Name,
			c.Timezone,
			clock,
			c.Abbreviation + " " + c.Offset,
			status,
			c.Diff,
		})
	}
	table.Render()
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	entries, err := a.entries(args)
	if err != nil {
		return err
	}

	tick := ticker.New(time.Second, func(_ context.Context, now time.Time) {
		var buf strings.Builder
		buf.WriteString(clearScreen + cursorHome)
		a.renderClock(&buf, entries, now)
		buf.WriteString(color.New(color.FgHiBlack).Sprint("Press Ctrl+C to exit") + "\n")
		fmt.Fprint(a.out, buf.String())
	})
	tick.Start(ctx)
	<-ctx.Done()
	tick.Stop()

	fmt.Fprint(a.out, clearScreen+cursorHome)
	return nil
}

func (a *app) cmdSearch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: search <query>", errUsage)
	}
	query := strings.Join(args, " ")
	results := a.views.Search(query, a.now(), a.t)
	if len(results) == 0 {
		fmt.Fprintln(a.out, a.t("noResults", "No results found"))
		return nil
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Type", "Name", "Timezone", "Country", "Offset"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range results {
		offset := r.Offset
		if offset == "" {
			if loc, err := a.zones.Load(r.Timezone); err == nil {
				offset = a.now().In(loc).Format("-07:00")
			}
		}
		table.Append([]string{r.Kind, r.Flag + " " + r.Name, r.Timezone, r.Country, offset})
	}
	table.Render()
	return nil
}

func (a *app) cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(a.out)
	def := a.converter.DefaultRequest(a.now())
	from := fs.String("from", def.Source, "Source zone or city")
	to := fs.String("to", def.Target, "Target zone or city")
	at := fs.String("at", def.Input, "Wall-clock time in the source zone, e.g. 2024-01-01T12:00")
	pair := fs.String("pair", "", "Popular pair label, e.g. UTC-CST (overrides -from and -to)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	req := converter.Request{Input: *at}
	if *pair != "" {
		p, ok := catalog.PairByLabel(strings.ToUpper(*pair))
		if !ok {
			return fmt.Errorf("unknown pair %q", *pair)
		}
		req.Source, req.Target = p.FromTZ, p.ToTZ
	} else {
		src, err := a.resolve(*from)
		if err != nil {
			return err
		}
		dst, err := a.resolve(*to)
		if err != nil {
			return err
		}
		req.Source, req.Target = src.Timezone, dst.Timezone
	}

	m, err := a.views.Converter(req, a.use24h, a.now(), a.t)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	fmt.Fprintf(a.out, "%s %s → %s %s\n",
		catalog.ZoneIcon(req.Source), req.Source, catalog.ZoneIcon(req.Target), req.Target)
	fmt.Fprintf(a.out, "%s %s\n", bold.Sprint(m.Result.Display), m.Result.Abbreviation)
	fmt.Fprintln(a.out, color.New(color.FgHiBlack).Sprint(m.Summary))
	fmt.Fprintln(a.out)

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{a.t("stepByStep.popularTimezones", "Popular timezones"), ""})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, q := range m.Quick {
		table.Append([]string{q.Code, q.Display})
	}
	table.Render()
	return nil
}

func (a *app) cmdOverlap(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: overlap <zone|city> ...", errUsage)
	}
	entries, err := a.entries(args)
	if err != nil {
		return err
	}
	labels := make([]string, 0, len(entries))
	zones := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Flag+" "+a.t("cities."+e.Name, e.Name))
		zones = append(zones, e.Timezone)
	}

	now := a.now()
	rows, err := overlap.Build(a.zones, labels, zones, a.local, now)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, overlap.Render(rows, now.In(a.local).Hour()))
	return nil
}

func (a *app) cmdCities() error {
	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"ID", a.t("popular", "Popular Cities"), "Timezone", "Country"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, c := range catalog.Popular() {
		table.Append([]string{c.ID, c.Flag + " " + a.t("cities."+c.Name, c.Name), c.Timezone, c.Country})
	}
	table.Render()
	fmt.Fprintln(a.out)

	pairs := tablewriter.NewWriter(a.out)
	pairs.SetHeader([]string{a.t("stepByStep.popularPairs", "Popular conversions"), "From", "To"})
	pairs.SetBorder(false)
	pairs.SetAlignment(tablewriter.ALIGN_LEFT)
	pairs.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, p := range catalog.Pairs() {
		pairs.Append([]string{p.Label, catalog.Flag(p.FromTZ) + " " + p.FromTZ, catalog.Flag(p.ToTZ) + " " + p.ToTZ})
	}
	pairs.Render()
	return nil
}
