// Package localstore persists the device-local copy of the set list and its
// sync bookkeeping in a small SQLite key/value table.
package localstore

import (
	"alcyxob/sets-tracker/internal/domain"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Storage keys. They match the keys the web client uses in browser storage.
const (
	KeySets           = "sets-tracker:v1"
	KeyDeviceID       = "sets-tracker:device-id"
	KeyPendingSync    = "sets-tracker:pending-sync"
	KeyPendingDeletes = "sets-tracker:pending-deletes"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store is a key/value file. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path. ":memory:" gives a
// private in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// One connection: SQLite has a single writer and each :memory: connection is its own database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

func (s *Store) remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

// getJSON decodes key into out. Missing or corrupt values leave out untouched.
func (s *Store) getJSON(ctx context.Context, key string, out any) error {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("WARN: Ignoring corrupt local value for %s: %v", key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.set(ctx, key, string(raw))
}

// LoadSets returns the cached set list; empty when nothing is stored.
func (s *Store) LoadSets(ctx context.Context) ([]domain.LoggedSet, error) {
	var sets []domain.LoggedSet
	if err := s.getJSON(ctx, KeySets, &sets); err != nil {
		return nil, err
	}
	if sets == nil {
		sets = []domain.LoggedSet{}
	}
	return sets, nil
}

// SaveSets replaces the cached set list.
func (s *Store) SaveSets(ctx context.Context, sets []domain.LoggedSet) error {
	if sets == nil {
		sets = []domain.LoggedSet{}
	}
	return s.setJSON(ctx, KeySets, sets)
}

// LoadPendingSync reports whether unacknowledged local writes exist.
func (s *Store) LoadPendingSync(ctx context.Context) (bool, error) {
	raw, ok, err := s.get(ctx, KeyPendingSync)
	if err != nil || !ok {
		return false, err
	}
	return raw == "true", nil
}

// SavePendingSync sets or clears the pending flag. Cleared means absent.
func (s *Store) SavePendingSync(ctx context.Context, pending bool) error {
	if !pending {
		return s.remove(ctx, KeyPendingSync)
	}
	return s.set(ctx, KeyPendingSync, "true")
}

// LoadPendingDeletes returns ids deleted locally but not yet confirmed by the server.
func (s *Store) LoadPendingDeletes(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.getJSON(ctx, KeyPendingDeletes, &ids); err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

// SavePendingDeletes replaces the pending delete list. An empty list removes the key.
func (s *Store) SavePendingDeletes(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return s.remove(ctx, KeyPendingDeletes)
	}
	return s.setJSON(ctx, KeyPendingDeletes, ids)
}

// DeviceID returns this device's id, generating and persisting one on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	id, ok, err := s.get(ctx, KeyDeviceID)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.set(ctx, KeyDeviceID, id); err != nil {
		return "", err
	}
	log.Printf("INFO: Generated device id %s", id)
	return id, nil
}
