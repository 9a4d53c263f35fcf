package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/tempo/internal/datekey"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		category       TEXT NOT NULL DEFAULT '',
		priority       INTEGER NOT NULL DEFAULT 3,
		deadline       TEXT NOT NULL DEFAULT '',
		estimated_time REAL NOT NULL DEFAULT 0,
		completed      INTEGER NOT NULL DEFAULT 0,
		completed_at   TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_completed_at ON tasks(completed_at);

	CREATE TABLE IF NOT EXISTS events (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_time);

	CREATE TABLE IF NOT EXISTS habits (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		estimated_time REAL NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS habit_completions (
		habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
		date_key TEXT NOT NULL,
		done     INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (habit_id, date_key)
	);

	CREATE TABLE IF NOT EXISTS objectives (
		id    TEXT PRIMARY KEY,
		title TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS key_results (
		id             TEXT PRIMARY KEY,
		objective_id   TEXT NOT NULL REFERENCES objectives(id) ON DELETE CASCADE,
		title          TEXT NOT NULL DEFAULT '',
		estimated_time REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS kr_history (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		key_result_id TEXT NOT NULL REFERENCES key_results(id) ON DELETE CASCADE,
		date_key      TEXT NOT NULL,
		increment     REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_kr_history_kr ON kr_history(key_result_id);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('daily_goal',  '480'),
		('granularity', 'week'),
		('domain',      'all');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/tempo/tempo.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tempo", "tempo.db"), nil
}

// newID returns id unchanged unless it is empty.
func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func validDateKey(key string) error {
	if _, err := time.Parse(datekey.Layout, key); err != nil {
		return fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to ErrNotFound, naming what was looked up.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", what, id, err)
}

// mustAffect returns ErrNotFound when a write touched no rows.
func mustAffect(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
