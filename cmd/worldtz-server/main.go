// Package main implements the worldtz web server: a world clock and time
// converter page with a JSON API and a live clock feed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/i18n"
	"github.com/codeGROOVE-dev/worldtz/pkg/prefs"
	"github.com/codeGROOVE-dev/worldtz/pkg/session"
)

const serverVersion = "worldtz server v1.0.0"

var (
	port       = flag.String("port", "", "Port for web server (or set PORT, default 8080)")
	prefsDB    = flag.String("prefs-db", "", "Language preference database (or set PREFS_DB); empty keeps preferences in memory")
	citiesFile = flag.String("cities", "", "YAML file replacing the popular city list (or set CITIES_FILE)")
	sessionTTL = flag.Duration("session-ttl", 0, "How long idle visitor state is kept (or set SESSION_TTL)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Show version")
)

func main() {
	envErr := godotenv.Load()
	flag.Parse()

	if *version {
		fmt.Println(serverVersion)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("Failed to read .env", "error", envErr)
	}

	if *port == "" {
		*port = os.Getenv("PORT")
		if *port == "" {
			*port = "8080"
		}
	}
	if *prefsDB == "" {
		*prefsDB = os.Getenv("PREFS_DB")
	}
	if *citiesFile == "" {
		*citiesFile = os.Getenv("CITIES_FILE")
	}
	if *sessionTTL == 0 {
		if v := os.Getenv("SESSION_TTL"); v != "" {
			ttl, err := time.ParseDuration(v)
			if err != nil {
				logger.Error("Invalid SESSION_TTL", "value", v, "error", err)
				os.Exit(2)
			}
			*sessionTTL = ttl
		}
	}
	if *sessionTTL == 0 {
		*sessionTTL = session.DefaultTTL
	}

	logger.Info("Server configuration",
		"port", *port,
		"verbose", *verbose,
		"prefs_db", *prefsDB,
		"cities_file", *citiesFile,
		"session_ttl", sessionTTL.String())

	if *citiesFile != "" {
		if err := catalog.Load(*citiesFile); err != nil {
			logger.Error("Failed to load city list", "path", *citiesFile, "error", err)
			os.Exit(1)
		}
		logger.Info("Loaded city list", "path", *citiesFile, "cities", len(catalog.Popular()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store prefs.Store = prefs.NewMemory()
	if *prefsDB != "" {
		db, err := prefs.Open(ctx, *prefsDB, logger)
		if err != nil {
			logger.Error("Failed to open preference database", "path", *prefsDB, "error", err)
			os.Exit(1)
		}
		store = db
	}

	translator, err := i18n.New(logger)
	if err != nil {
		logger.Error("Failed to load translations", "error", err)
		os.Exit(1)
	}

	// Clock feeds are hijacked connections that http.Server.Shutdown does not
	// track; they end with this context.
	feedCtx, stopFeeds := context.WithCancel(context.Background())
	defer stopFeeds()

	s, err := newServer(feedCtx, config{
		prefs:      store,
		translator: translator,
		sessionTTL: *sessionTTL,
		logger:     logger,
	})
	if err != nil {
		logger.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", *port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var result *multierror.Error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("http shutdown: %w", err))
	}
	stopFeeds()
	if err := store.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing preferences: %w", err))
	}
	if err := result.ErrorOrNil(); err != nil {
		logger.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
