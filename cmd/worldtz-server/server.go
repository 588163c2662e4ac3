package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter/v2"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/converter"
	"github.com/codeGROOVE-dev/worldtz/pkg/httpcache"
	"github.com/codeGROOVE-dev/worldtz/pkg/i18n"
	"github.com/codeGROOVE-dev/worldtz/pkg/prefs"
	"github.com/codeGROOVE-dev/worldtz/pkg/selection"
	"github.com/codeGROOVE-dev/worldtz/pkg/session"
	"github.com/codeGROOVE-dev/worldtz/pkg/timezone"
	"github.com/codeGROOVE-dev/worldtz/pkg/view"
)

//go:embed templates/home.html
var homeTemplate string

//go:embed static/*
var staticFiles embed.FS

// Cookies set on visitors.
const (
	visitorCookie = "worldtz_id"
	zoneCookie    = "worldtz_tz"
)

type config struct {
	prefs      prefs.Store
	translator *i18n.Translator
	now        func() time.Time
	logger     *slog.Logger
	sessionTTL time.Duration
	rateLimit  int
}

type server struct {
	feedCtx   context.Context
	zones     *timezone.Service
	converter *converter.Converter
	views     *view.Builder
	sessions  *session.Store
	responses *httpcache.Cache
	prefs     prefs.Store
	limiter   *rateLimiter
	home      *template.Template
	now       func() time.Time
	logger    *slog.Logger
}

func newServer(feedCtx context.Context, cfg config) (*server, error) {
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.rateLimit <= 0 {
		cfg.rateLimit = 120
	}
	if cfg.prefs == nil {
		cfg.prefs = prefs.NewMemory()
	}
	if cfg.translator == nil {
		tr, err := i18n.New(cfg.logger)
		if err != nil {
			return nil, err
		}
		cfg.translator = tr
	}

	home, err := template.New("home").Parse(homeTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing home template: %w", err)
	}

	zones := timezone.New(cfg.logger)
	conv := converter.New(zones)
	return &server{
		feedCtx:   feedCtx,
		zones:     zones,
		converter: conv,
		views:     view.NewBuilder(zones, conv, cfg.translator),
		sessions:  session.NewStore(cfg.sessionTTL, nil, cfg.logger),
		responses: httpcache.New(2*time.Minute, 1024, cfg.logger),
		prefs:     cfg.prefs,
		limiter:   newRateLimiter(cfg.rateLimit, time.Minute),
		home:      home,
		now:       cfg.now,
		logger:    cfg.logger,
	}, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /static/", http.FileServer(http.FS(staticFiles)))

	mux.HandleFunc("GET /api/v1/cities", s.handleCities)
	mux.HandleFunc("GET /api/v1/pairs", s.handlePairs)
	mux.HandleFunc("GET /api/v1/timezones", s.handleTimezones)
	mux.HandleFunc("GET /api/v1/search", s.handleSearch)
	mux.HandleFunc("POST /api/v1/convert", s.handleConvert)

	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("POST /api/v1/selection", s.handleAdd)
	mux.HandleFunc("POST /api/v1/selection/pair", s.handleAddPair)
	mux.HandleFunc("DELETE /api/v1/selection", s.handleClear)
	mux.HandleFunc("DELETE /api/v1/selection/{id...}", s.handleRemove)
	mux.HandleFunc("PUT /api/v1/settings", s.handleSettings)

	mux.HandleFunc("GET /ws/clock", s.handleClock)

	antiCSRF := http.NewCrossOriginProtection()
	return s.wrap(antiCSRF.Handler(mux))
}

// rateLimiter allows limit requests per client IP within a sliding window.
// An IP idle for a whole window has nothing left to count and expires.
type rateLimiter struct {
	requests *otter.Cache[string, []time.Time]
	limit    int
	window   time.Duration
	mu       sync.Mutex
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		requests: otter.Must(&otter.Options[string, []time.Time]{
			MaximumSize:      100_000,
			InitialCapacity:  256,
			ExpiryCalculator: otter.ExpiryWriting[string, []time.Time](window),
		}),
		limit:  limit,
		window: window,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	seen, _ := rl.requests.GetIfPresent(ip)
	var valid []time.Time
	for _, t := range seen {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests.Set(ip, valid)
		return false
	}

	rl.requests.Set(ip, append(valid, now))
	return true
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}

func (s *server) wrap(handler http.Handler) http.Handler {
	csp := cspPolicy()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("PANIC: Request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"user_agent", r.Header.Get("User-Agent"),
					"stack", string(buf))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=(), bluetooth=()")
		w.Header().Set("Content-Security-Policy", csp)

		switch {
		case strings.HasPrefix(r.URL.Path, "/api/"):
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
			if !s.limiter.allow(clientIP(r)) {
				s.logger.Warn("Rate limit exceeded",
					"request_id", requestID,
					"client_ip", clientIP(r),
					"path", r.URL.Path)
				s.writeError(w, requestID, http.StatusTooManyRequests, "Rate limit exceeded",
					"Too many requests from this address. Please slow down.", "RATE_LIMIT")
				return
			}
		case strings.HasPrefix(r.URL.Path, "/static/"):
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}

		handler.ServeHTTP(w, r)

		s.logger.Debug("Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP(r),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (s *server) writeError(w http.ResponseWriter, requestID string, status int, msg, details, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: msg, Details: details, Code: code}); err != nil {
		s.logger.Error("Failed to encode error response",
			"request_id", requestID,
			"encode_error", err)
	}
}

func (s *server) writeJSON(w http.ResponseWriter, requestID string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response",
			"request_id", requestID,
			"error", err)
	}
}

// visitor returns the visitor id from the cookie, issuing a new one when it is
// missing or malformed.
func (s *server) visitor(w http.ResponseWriter, r *http.Request) string {
	if id, ok := visitorFromCookie(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func visitorFromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(visitorCookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// localZone is the visitor's zone as reported by the page script, or the
// server's zone before the script has run.
func (s *server) localZone(r *http.Request) *time.Location {
	if loc, ok := s.reportedZone(r); ok {
		return loc
	}
	return time.Local
}

func (s *server) reportedZone(r *http.Request) (*time.Location, bool) {
	name := r.URL.Query().Get("tz")
	if name == "" {
		if c, err := r.Cookie(zoneCookie); err == nil {
			name = c.Value
		}
	}
	if name == "" {
		return nil, false
	}
	loc, err := s.zones.Load(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// seeder builds a new visitor's state from the saved language, the browser's
// languages and the reported zone.
func (s *server) seeder(w http.ResponseWriter, r *http.Request) session.Seeder {
	return func(id string) *session.State {
		saved, err := s.prefs.Language(id)
		if err != nil {
			s.logger.Warn("Failed to read language preference",
				"request_id", w.Header().Get("X-Request-ID"),
				"visitor", id,
				"error", err)
		}
		guess := ""
		if loc, ok := s.reportedZone(r); ok {
			guess = loc.String()
		}
		lang := i18n.Detect(saved, r.Header.Get("Accept-Language"))
		return session.NewState(selection.Initial(guess), lang)
	}
}

// state returns the visitor's session, creating it on first use.
func (s *server) state(w http.ResponseWriter, r *http.Request) (string, *session.State) {
	id := s.visitor(w, r)
	return id, s.sessions.GetWith(id, s.seeder(w, r))
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	requestID := w.Header().Get("X-Request-ID")
	var st *session.State
	if _, ok := s.reportedZone(r); ok {
		// Every page load starts from the detected zone; only the language
		// outlives it. The time format rides along in ?format= on reloads.
		st = s.sessions.Reset(s.visitor(w, r), s.seeder(w, r))
	} else {
		// The page script reports the zone and reloads; until then render a
		// state that is not kept, so the initial selection uses the real zone.
		id := s.visitor(w, r)
		st = s.seeder(w, r)(id)
		if kept, ok := s.sessions.Lookup(id); ok {
			st.SetLanguage(kept.Snapshot().Language)
		}
	}
	st.SetFormat(r.URL.Query().Get("format") == "24")
	snap := st.Snapshot()
	now := s.now()

	q := r.URL.Query()
	req := s.converter.DefaultRequest(now)
	if v := q.Get("source"); v != "" {
		req.Source = v
	}
	if v := q.Get("target"); v != "" {
		req.Target = v
	}
	if v := q.Get("at"); v != "" {
		req.Input = v
	}

	page, err := s.views.Page(snap, s.localZone(r), req, now)
	if err != nil {
		s.logger.Warn("Conversion failed",
			"request_id", requestID,
			"source", req.Source,
			"target", req.Target,
			"input", req.Input,
			"error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.home.Execute(w, page); err != nil {
		s.logger.Error("Template execution failed",
			"request_id", requestID,
			"error", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, w.Header().Get("X-Request-ID"), map[string]any{
		"status":           "ok",
		"sessions":         s.sessions.Len(),
		"cached_responses": s.responses.Len(),
	})
}

func (s *server) handleCities(w http.ResponseWriter, r *http.Request) {
	_, st := s.state(w, r)
	snap := st.Snapshot()
	s.writeJSON(w, w.Header().Get("X-Request-ID"), s.views.Popular(snap, s.views.Translator(snap.Language)))
}

func (s *server) handlePairs(w http.ResponseWriter, r *http.Request) {
	err := s.responses.Serve(w, r, httpcache.Key("pairs"), func() ([]byte, error) {
		return json.Marshal(catalog.Pairs())
	})
	if err != nil {
		s.logger.Error("Failed to serve pairs",
			"request_id", w.Header().Get("X-Request-ID"),
			"error", err)
	}
}

func (s *server) handleTimezones(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	// Offsets only change on minute boundaries, so a response is reusable
	// within its minute.
	key := httpcache.Key("timezones", strings.ToLower(q), now.UTC().Truncate(time.Minute).Format(time.RFC3339))
	err := s.responses.Serve(w, r, key, func() ([]byte, error) {
		var zones []timezone.Info
		if q == "" {
			zones = s.zones.ListAll(now)
		} else {
			zones = s.zones.Search(q, now)
		}
		if zones == nil {
			zones = []timezone.Info{}
		}
		return json.Marshal(zones)
	})
	if err != nil {
		s.logger.Error("Failed to serve timezones",
			"request_id", w.Header().Get("X-Request-ID"),
			"query", q,
			"error", err)
	}
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	_, st := s.state(w, r)
	results := s.views.Search(r.URL.Query().Get("q"), s.now(), s.views.Translator(st.Snapshot().Language))
	if results == nil {
		results = []view.SearchResult{}
	}
	s.writeJSON(w, w.Header().Get("X-Request-ID"), results)
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	requestID := w.Header().Get("X-Request-ID")
	var req converter.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, "Invalid request", err.Error(), "BAD_REQUEST")
		return
	}

	_, st := s.state(w, r)
	snap := st.Snapshot()
	m, err := s.views.Converter(req, snap.Format24h, s.now(), s.views.Translator(snap.Language))
	if err != nil {
		// Bad input is only logged; the response carries no result.
		s.logger.Warn("Conversion failed",
			"request_id", requestID,
			"source", req.Source,
			"target", req.Target,
			"input", req.Input,
			"error", err)
	}
	s.writeJSON(w, requestID, m)
}

type stateResponse struct {
	State session.Snapshot `json:"state"`
	Clock view.Clock       `json:"clock"`
	Added int              `json:"added"`
}

func (s *server) respondState(w http.ResponseWriter, r *http.Request, st *session.State, added int) {
	snap := st.Snapshot()
	s.writeJSON(w, w.Header().Get("X-Request-ID"), stateResponse{
		State: snap,
		Clock: s.views.Clock(snap, s.localZone(r), s.now()),
		Added: added,
	})
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	_, st := s.state(w, r)
	s.respondState(w, r, st, 0)
}

func (s *server) handleAdd(w http.ResponseWriter, r *http.Request) {
	requestID := w.Header().Get("X-Request-ID")
	var req struct {
		City string `json:"city"`
		Zone string `json:"zone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, "Invalid request", err.Error(), "BAD_REQUEST")
		return
	}

	var entry selection.Entry
	switch {
	case req.City != "":
		c, ok := catalog.Lookup(req.City)
		if !ok {
			s.writeError(w, requestID, http.StatusNotFound, "Unknown city",
				fmt.Sprintf("No popular city has the id %q.", req.City), "UNKNOWN_CITY")
			return
		}
		entry = selection.FromCity(c)
	case req.Zone != "":
		info, err := s.zones.Describe(req.Zone, s.now())
		if err != nil {
			s.writeError(w, requestID, http.StatusNotFound, "Unknown timezone", err.Error(), "UNKNOWN_TIMEZONE")
			return
		}
		entry = selection.FromInfo(info)
	default:
		s.writeError(w, requestID, http.StatusBadRequest, "Invalid request", "Either city or zone is required.", "BAD_REQUEST")
		return
	}

	_, st := s.state(w, r)
	added := 0
	if st.Add(entry) {
		added = 1
	}
	s.respondState(w, r, st, added)
}

func (s *server) handleAddPair(w http.ResponseWriter, r *http.Request) {
	requestID := w.Header().Get("X-Request-ID")
	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, "Invalid request", err.Error(), "BAD_REQUEST")
		return
	}
	p, ok := catalog.PairByLabel(req.Label)
	if !ok {
		s.writeError(w, requestID, http.StatusNotFound, "Unknown pair",
			fmt.Sprintf("No conversion pair is labelled %q.", req.Label), "UNKNOWN_PAIR")
		return
	}

	_, st := s.state(w, r)
	from, to := selection.PairEntries(p)
	s.respondState(w, r, st, st.AddPair(from, to))
}

func (s *server) handleRemove(w http.ResponseWriter, r *http.Request) {
	_, st := s.state(w, r)
	id := r.PathValue("id")
	if !st.Remove(id) {
		s.writeError(w, w.Header().Get("X-Request-ID"), http.StatusNotFound, "Not selected",
			fmt.Sprintf("Nothing with the id %q is selected.", id), "NOT_SELECTED")
		return
	}
	s.respondState(w, r, st, 0)
}

func (s *server) handleClear(w http.ResponseWriter, r *http.Request) {
	_, st := s.state(w, r)
	st.Clear()
	s.respondState(w, r, st, 0)
}

func (s *server) handleSettings(w http.ResponseWriter, r *http.Request) {
	requestID := w.Header().Get("X-Request-ID")
	var req struct {
		Format24h *bool   `json:"format24h"`
		Language  *string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, "Invalid request", err.Error(), "BAD_REQUEST")
		return
	}

	id, st := s.state(w, r)
	if req.Language != nil {
		if !st.SetLanguage(*req.Language) {
			s.writeError(w, requestID, http.StatusBadRequest, "Unsupported language",
				fmt.Sprintf("%q is not one of the supported languages.", *req.Language), "UNSUPPORTED_LANGUAGE")
			return
		}
		if err := s.prefs.SetLanguage(id, *req.Language); err != nil {
			// The session keeps the choice until the next page load.
			level := slog.LevelError
			if errors.Is(err, prefs.ErrClosed) {
				level = slog.LevelWarn
			}
			s.logger.Log(r.Context(), level, "Failed to save language preference",
				"request_id", requestID,
				"visitor", id,
				"error", err)
		}
	}
	if req.Format24h != nil {
		st.SetFormat(*req.Format24h)
	}
	s.respondState(w, r, st, 0)
}
