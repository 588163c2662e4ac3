// Package main implements the worldtz CLI: world clock, zone search and time
// conversion in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/converter"
	"github.com/codeGROOVE-dev/worldtz/pkg/i18n"
	"github.com/codeGROOVE-dev/worldtz/pkg/timezone"
	"github.com/codeGROOVE-dev/worldtz/pkg/view"
)

var (
	lang       = flag.String("lang", "", "UI language: en, zh, zh-TW (or set WORLDTZ_LANG)")
	use24h     = flag.Bool("24h", false, "Use 24-hour time (or set WORLDTZ_24H=1)")
	localZone  = flag.String("local", "", "Zone treated as local time (or set TZ)")
	citiesFile = flag.String("cities", "", "YAML file replacing the popular city list (or set CITIES_FILE)")
	noColor    = flag.Bool("no-color", false, "Disable colored output")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Show version")
)

const usage = `Usage: %s [flags] <command> [args]

Commands:
  now [zone|city ...]          Show the current time in each zone (default: popular cities)
  watch [zone|city ...]        Live clock, refreshed every second
  search <query>               Find popular cities and IANA zones
  convert [flags]              Convert a wall-clock time between zones
  overlap <zone|city> ...      Show where working hours overlap today
  cities                       List popular cities and conversion pairs

Flags:
`

func main() {
	envErr := godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println("worldtz CLI v1.0.0")
		return
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("Failed to read .env", "error", envErr)
	}

	if *lang == "" {
		*lang = os.Getenv("WORLDTZ_LANG")
	}
	if !*use24h {
		if v, err := strconv.ParseBool(os.Getenv("WORLDTZ_24H")); err == nil {
			*use24h = v
		}
	}
	if *citiesFile == "" {
		*citiesFile = os.Getenv("CITIES_FILE")
	}
	if *noColor {
		color.NoColor = true
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *citiesFile != "" {
		if err := catalog.Load(*citiesFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	a, err := newApp(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newApp(logger *slog.Logger) (*app, error) {
	tr, err := i18n.New(logger)
	if err != nil {
		return nil, err
	}
	zones := timezone.New(logger)

	local := time.Local
	if *localZone != "" {
		loc, err := zones.Load(*localZone)
		if err != nil {
			return nil, err
		}
		local = loc
	}

	language := i18n.Detect(*lang, posixLocale(os.Getenv("LANG")))
	conv := converter.New(zones)
	views := view.NewBuilder(zones, conv, tr)
	return &app{
		out:       os.Stdout,
		zones:     zones,
		converter: conv,
		views:     views,
		t:         views.Translator(language),
		local:     local,
		use24h:    *use24h,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// posixLocale turns a POSIX locale such as "zh_CN.UTF-8" into a language tag.
func posixLocale(v string) string {
	v, _, _ = strings.Cut(v, ".")
	v, _, _ = strings.Cut(v, "@")
	if v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}
