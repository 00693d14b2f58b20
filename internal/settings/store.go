// Package settings is the persistent mod settings store: registered keys
// with bounds, clamped writes, change listeners and named presets.
// Backed by SQLite.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/settings/migrations"
)

var (
	// ErrUnknownKey is returned for keys that were never registered.
	ErrUnknownKey = errors.New("unknown setting")
	// ErrUnknownPreset is returned when a preset has no stored values.
	ErrUnknownPreset = errors.New("unknown preset")
)

// Listener is notified after a value changes.
type Listener func(key config.Key, old, new int)

// Setting is the effective state of a registered key.
type Setting struct {
	config.Spec
	Default    int
	Value      int
	Overridden bool
}

type entry struct {
	spec     config.Spec
	def      int
	value    int
	override bool
}

type settingRow struct {
	Key   string `db:"key"`
	Value int    `db:"value"`
}

// Store keeps registered settings in memory and persists overrides.
// Thread-safe. Listeners run outside the lock on the calling goroutine.
type Store struct {
	conn *sqlx.DB
	now  func() time.Time

	mu        sync.RWMutex
	entries   map[config.Key]*entry
	order     []config.Key
	stored    map[config.Key]int // persisted rows, applied on Register
	listeners map[config.Key][]Listener
	any       []Listener
}

// Open opens or creates the settings database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := migrate(ctx, conn.DB); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate settings db: %w", err)
	}

	s := &Store{
		conn:      conn,
		now:       time.Now,
		entries:   make(map[config.Key]*entry),
		stored:    make(map[config.Key]int),
		listeners: make(map[config.Key][]Listener),
	}
	if err := s.load(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) error {
	var rows []settingRow
	if err := s.conn.SelectContext(ctx, &rows, `SELECT key, value FROM mod_settings`); err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	for _, r := range rows {
		s.stored[config.Key(r.Key)] = r.Value
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Register adds a key with its default. A persisted value is applied,
// clamped to the spec bounds. Registering twice updates spec and default.
func (s *Store) Register(spec config.Spec, def int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[spec.Key]
	if !ok {
		e = &entry{}
		s.entries[spec.Key] = e
		s.order = append(s.order, spec.Key)
	}
	e.spec = spec
	e.def = spec.Clamp(def)
	e.value = e.def
	e.override = false
	if v, ok := s.stored[spec.Key]; ok {
		e.value = spec.Clamp(v)
		e.override = true
	}
}

// RegisterDefaults registers every known key with defaults taken from enc.
func (s *Store) RegisterDefaults(enc config.Encounters) {
	for _, spec := range config.Specs() {
		def, _ := enc.Int(spec.Key)
		s.Register(spec, def)
	}
}

// Get returns the effective value of key.
func (s *Store) Get(key config.Key) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	return e.value, true
}

// Int implements config.Provider. Only user overrides are reported so that
// keys the user never touched fall through to the next provider.
func (s *Store) Int(key config.Key) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !e.override {
		return 0, false
	}
	return e.value, true
}

// Bool implements config.Provider. Stored value 1 means true.
func (s *Store) Bool(key config.Key) (bool, bool) {
	v, ok := s.Int(key)
	return v == 1, ok
}

// Set clamps and persists a value and notifies listeners when it changed.
// Returns the stored value.
func (s *Store) Set(ctx context.Context, key config.Key, value int) (int, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.RUnlock()
		return 0, fmt.Errorf("set %s: %w", key, ErrUnknownKey)
	}
	clamped := e.spec.Clamp(value)
	s.mu.RUnlock()

	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO mod_settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(key), clamped, s.now().Unix(),
	); err != nil {
		return 0, fmt.Errorf("persisting %s: %w", key, err)
	}

	s.apply(key, clamped, true)
	return clamped, nil
}

// SetBool stores a bool key as 0/1.
func (s *Store) SetBool(ctx context.Context, key config.Key, value bool) error {
	v := 0
	if value {
		v = 1
	}
	_, err := s.Set(ctx, key, v)
	return err
}

// Reset removes the override and restores the default.
func (s *Store) Reset(ctx context.Context, key config.Key) error {
	s.mu.RLock()
	e, ok := s.entries[key]
	var def int
	if ok {
		def = e.def
	}
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("reset %s: %w", key, ErrUnknownKey)
	}

	if _, err := s.conn.ExecContext(ctx, `DELETE FROM mod_settings WHERE key = ?`, string(key)); err != nil {
		return fmt.Errorf("resetting %s: %w", key, err)
	}

	s.apply(key, def, false)
	return nil
}

func (s *Store) apply(key config.Key, value int, override bool) {
	s.mu.Lock()
	e := s.entries[key]
	old := e.value
	e.value = value
	e.override = override
	if override {
		s.stored[key] = value
	} else {
		delete(s.stored, key)
	}
	listeners := append(slices.Clone(s.listeners[key]), s.any...)
	s.mu.Unlock()

	if old == value {
		return
	}
	slog.Debug("setting changed", "key", key, "old", old, "new", value)
	for _, fn := range listeners {
		notify(fn, key, old, value)
	}
}

func notify(fn Listener, key config.Key, old, value int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("settings listener panicked", "key", key, "panic", r)
		}
	}()
	fn(key, old, value)
}

// OnChange registers fn for changes of key.
func (s *Store) OnChange(key config.Key, fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[key] = append(s.listeners[key], fn)
}

// OnAnyChange registers fn for changes of every key.
func (s *Store) OnAnyChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.any = append(s.any, fn)
}

// All returns registered settings in registration order.
func (s *Store) All() []Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Setting, 0, len(s.order))
	for _, k := range s.order {
		e := s.entries[k]
		out = append(out, Setting{Spec: e.spec, Default: e.def, Value: e.value, Overridden: e.override})
	}
	return out
}
