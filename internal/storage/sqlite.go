package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Storage on a SQLite database.
type SQLiteStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Ensure SQLiteStorage implements Storage
var _ Storage = (*SQLiteStorage)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	name_fold TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS acts (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	title TEXT,
	sequence INTEGER NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	UNIQUE (game_id, sequence)
);

CREATE TABLE IF NOT EXISTS scenes (
	id TEXT PRIMARY KEY,
	act_id TEXT NOT NULL REFERENCES acts(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	title_fold TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	sequence INTEGER NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	UNIQUE (act_id, sequence)
);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	scene_id TEXT NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
	description TEXT NOT NULL,
	source TEXT NOT NULL,
	interpretation_id TEXT,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dice_rolls (
	id TEXT PRIMARY KEY,
	scene_id TEXT NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
	notation TEXT NOT NULL,
	results_json TEXT NOT NULL,
	modifier INTEGER NOT NULL,
	total INTEGER NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS interpretation_sets (
	id TEXT PRIMARY KEY,
	scene_id TEXT NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
	context TEXT NOT NULL,
	oracle_results TEXT NOT NULL,
	retry_attempt INTEGER NOT NULL DEFAULT 0,
	is_current INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS interpretations (
	id TEXT PRIMARY KEY,
	set_id TEXT NOT NULL REFERENCES interpretation_sets(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	is_selected INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_acts_game ON acts(game_id);
CREATE INDEX IF NOT EXISTS idx_scenes_act ON scenes(act_id);
CREATE INDEX IF NOT EXISTS idx_events_scene ON events(scene_id);
CREATE INDEX IF NOT EXISTS idx_dice_rolls_scene ON dice_rolls(scene_id);
CREATE INDEX IF NOT EXISTS idx_sets_scene ON interpretation_sets(scene_id);
CREATE INDEX IF NOT EXISTS idx_interps_set ON interpretations(set_id);
`

// NewSQLiteStorage opens (or creates) the database at path and applies
// the schema. Use ":memory:" for an ephemeral store in tests.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The transactional flag flips rely on single-writer semantics;
	// more than one connection would reintroduce write races.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close sqlite database", "error", err)
		return err
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Timestamps are stored as UTC unix milliseconds.

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
