// Package prefs persists a visitor's UI language between visits.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	bolt "go.etcd.io/bbolt"
)

const bucketVersion = "1"

// ErrClosed is returned after Close.
var ErrClosed = errors.New("preference store closed")

// Store reads and writes language preferences keyed by visitor id.
type Store interface {
	Language(id string) (string, error)
	SetLanguage(id, lang string) error
	Close() error
}

// DB is a bbolt-backed Store.
type DB struct {
	db     *bolt.DB
	logger *slog.Logger
	path   string
}

// Open opens (or creates) the preference database at path. Another process
// holding the file lock is retried for a few seconds before giving up.
func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var db *bolt.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
			if err != nil && !errors.Is(err, bolt.ErrTimeout) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("preference database locked, retrying",
				"path", path,
				"attempt", n+1,
				"error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("opening preference database %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketVersion))
		return err
	}); err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.Debug("closing preference database", "error", cerr)
		}
		return nil, fmt.Errorf("creating bucket %s: %w", bucketVersion, err)
	}

	logger.Info("preference database opened", "path", path)
	return &DB{db: db, logger: logger, path: path}, nil
}

// Language returns the saved language for id, or "" if none was saved.
func (d *DB) Language(id string) (string, error) {
	var lang string
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketVersion))
		if v := b.Get([]byte(id)); v != nil {
			lang = string(v)
		}
		return nil
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return "", ErrClosed
	}
	if err != nil {
		return "", fmt.Errorf("reading language for %s: %w", id, err)
	}
	return lang, nil
}

// SetLanguage saves lang for id.
func (d *DB) SetLanguage(id, lang string) error {
	err := d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVersion)).Put([]byte(id), []byte(lang))
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	if err != nil {
		return fmt.Errorf("saving language for %s: %w", id, err)
	}
	return nil
}

// Close closes the database.
func (d *DB) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("closing preference database %s: %w", d.path, err)
	}
	return nil
}

// Memory is an in-process Store used when no database path is configured.
type Memory struct {
	langs  map[string]string
	mu     sync.RWMutex
	closed bool
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{langs: make(map[string]string)}
}

// Language returns the saved language for id.
func (m *Memory) Language(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrClosed
	}
	return m.langs[id], nil
}

// SetLanguage saves lang for id.
func (m *Memory) SetLanguage(id, lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.langs[id] = lang
	return nil
}

// Close marks the store closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
