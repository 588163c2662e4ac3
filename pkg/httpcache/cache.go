// Package httpcache keeps encoded API responses in memory for a short time
// and answers conditional requests for them.
package httpcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"
)

// Entry is a cached response body and its validator.
type Entry struct {
	ETag string
	Data []byte
}

// Cache maps request keys to encoded response bodies. Entries expire a fixed
// time after they were written.
type Cache struct {
	cache  *otter.Cache[string, Entry]
	logger *slog.Logger
}

// New creates a Cache holding at most size entries for ttl each.
func New(ttl time.Duration, size int, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		cache: otter.Must(&otter.Options[string, Entry]{
			MaximumSize:      size,
			InitialCapacity:  min(size, 64),
			ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
		}),
		logger: logger,
	}
}

// Key derives a cache key from request parts, e.g. path and query.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the entry stored under key.
func (c *Cache) Get(key string) (Entry, bool) {
	return c.cache.GetIfPresent(key)
}

// Set stores data under key and returns the entry with its ETag.
func (c *Cache) Set(key string, data []byte) Entry {
	sum := sha256.Sum256(data)
	e := Entry{ETag: `"` + hex.EncodeToString(sum[:8]) + `"`, Data: data}
	c.cache.Set(key, e)
	c.logger.Debug("cache set", "key", key[:min(12, len(key))], "size", len(data))
	return e
}

// Len returns the approximate number of entries.
func (c *Cache) Len() int {
	return c.cache.EstimatedSize()
}

// Serve writes the JSON body cached under key, calling build on a miss. A
// request whose If-None-Match matches the entry gets 304 Not Modified.
func (c *Cache) Serve(w http.ResponseWriter, r *http.Request, key string, build func() ([]byte, error)) error {
	e, found := c.Get(key)
	state := "memory-hit"
	if !found {
		data, err := build()
		if err != nil {
			return fmt.Errorf("building response: %w", err)
		}
		e = c.Set(key, data)
		state = "miss"
	}

	w.Header().Set("ETag", e.ETag)
	w.Header().Set("X-Cache", state)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, e.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(e.Data); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
