// Package journal persists session timestamps and an audit trail of
// contributor operations in a local SQLite database.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nymedit/internal/journal/migrations"
	"nymedit/internal/record"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements record.Journal using SQLite.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens (or creates) the journal database at path and
// applies any pending migrations. path can be ":memory:" for an in-memory
// journal.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	if err := migrations.Check(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("verifying journal schema: %w", err)
	}

	return &SQLiteJournal{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the journal relies on. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// Each pooled connection to :memory: would get its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// SQLite defaults foreign keys to OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

func (j *SQLiteJournal) insertOperation(username, operation string, kind *record.Kind, at time.Time) error {
	var k any
	if kind != nil {
		k = string(*kind)
	}
	_, err := j.db.Exec(
		"INSERT INTO operations (id, username, operation, kind, at) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), username, operation, k, at,
	)
	if err != nil {
		return fmt.Errorf("recording %s operation: %w", operation, err)
	}
	return nil
}

// RecordLogin appends a login row.
func (j *SQLiteJournal) RecordLogin(username string, at time.Time) error {
	return j.insertOperation(username, "login", nil, at)
}

// RecordWrite appends a write row and advances the user's last-write
// timestamp for the kind.
func (j *SQLiteJournal) RecordWrite(username string, kind record.Kind, at time.Time) error {
	if err := j.insertOperation(username, "write", &kind, at); err != nil {
		return err
	}
	_, err := j.db.Exec(
		`INSERT INTO kind_writes (username, kind, last_written_at) VALUES (?, ?, ?)
		 ON CONFLICT(username, kind) DO UPDATE SET last_written_at = excluded.last_written_at`,
		username, string(kind), at,
	)
	if err != nil {
		return fmt.Errorf("updating last write: %w", err)
	}
	return nil
}

// RecordPublish appends a publish row.
func (j *SQLiteJournal) RecordPublish(username string, at time.Time) error {
	return j.insertOperation(username, "publish", nil, at)
}

// LastWrite returns the user's last successful write of the given kind, or
// the zero time if there has been none.
func (j *SQLiteJournal) LastWrite(username string, kind record.Kind) (time.Time, error) {
	var at time.Time
	err := j.db.QueryRow(
		"SELECT last_written_at FROM kind_writes WHERE username = ? AND kind = ?",
		username, string(kind),
	).Scan(&at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("reading last write: %w", err)
	}
	return at, nil
}

// Close closes the journal database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
