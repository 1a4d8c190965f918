// Package store owns the warehouse schema and all statement execution
// against it. One fact table (songplays) references five dimensions
// (songs, artists, users, time, levels).
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

const currentSchemaVersion = 1

// Store represents the target warehouse database
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite warehouse at the given path, applies
// the schema and seeds the level enumeration
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer; the pipeline is the only
	// writer for the database's lifetime anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate applies the schema and seed data
func (s *Store) migrate() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}

	if version >= currentSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version < 1 {
		if _, err := tx.Exec(schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
		// Level enumeration is static seed data, inserted exactly once
		// per database, never derived from input files
		if _, err := tx.Exec(seedLevels); err != nil {
			return fmt.Errorf("failed to seed levels: %w", err)
		}
		if err := s.setSchemaVersion(tx, 1); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Store) getSchemaVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}

	if exists == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion records a schema version in a transaction
func (s *Store) setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// Transaction executes a function within a transaction. The pipeline
// uses one transaction per input file so commit granularity is per file.
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Song is one row of the songs dimension
type Song struct {
	SongID   string
	Title    string
	ArtistID string
	Year     int
	Duration float64
}

// Artist is one row of the artists dimension. Coordinates are nil when
// the source record carried JSON nulls.
type Artist struct {
	ArtistID  string
	Name      string
	Location  string
	Latitude  *float64
	Longitude *float64
}

// User is one row of the users dimension. Level is mutable: a user can
// move between free and paid across sessions.
type User struct {
	UserID    string
	FirstName string
	LastName  string
	Gender    string
	Level     string
}

// TimeBucket is one row of the time dimension, keyed by epoch seconds
type TimeBucket struct {
	StartTime int64
	Hour      int
	Day       int
	Week      int
	Month     int
	Year      int
	Weekday   int
}

// Songplay is one row of the fact table. SongID/ArtistID are nil when
// resolution against the song dimension missed.
type Songplay struct {
	StartTime int64
	UserID    string
	Level     string
	SongID    *string
	ArtistID  *string
	SessionID int64
	Location  string
	UserAgent string
}

// SongMatch is the zero-or-one result of resolving a play event against
// the song and artist dimensions
type SongMatch struct {
	SongID   string
	ArtistID string
}
