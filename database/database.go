package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
)

// ErrNoResult is returned when an operation targets a row that does not
// exist, e.g. configuring a topic that has never been observed.
var ErrNoResult = errors.New("no matching row")

// ErrStoreUnavailable wraps driver failures. An evaluation that hits it made
// no partial writes and its triggering event is safe to redeliver.
var ErrStoreUnavailable = errors.New("store unavailable")

// Store provides access to the moderation tables: ads, warnings, topics and
// bans. All methods are safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite database at dbPath, creating the file, the
// schema and the supporting indexes if needed.
func Open(dbPath string) (*Store, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Ping the database to verify the connection.
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("Successfully connected to the database at", dbPath)

	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS ads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			thread_id INTEGER NOT NULL,
			text TEXT DEFAULT '',
			photo_id TEXT DEFAULT '',
			timestamp INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS warnings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			ad_key TEXT NOT NULL,
			warning_count INTEGER NOT NULL,
			last_warning INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS topics (
			thread_id INTEGER PRIMARY KEY,
			enabled INTEGER DEFAULT 1,
			block_days INTEGER DEFAULT 5,
			warnings_limit INTEGER DEFAULT 3,
			ad_frequency_days INTEGER DEFAULT 5
		);`,
		`CREATE TABLE IF NOT EXISTS bans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			first_name TEXT DEFAULT '',
			banned_until INTEGER NOT NULL,
			reason TEXT DEFAULT 'Not specified'
		);`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return err
		}
	}

	// Indexes for the window-scoped lookups on the hot path.
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_ads_user_timestamp ON ads(user_id, timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_warnings_user_key ON warnings(user_id, ad_key);",
		"CREATE INDEX IF NOT EXISTS idx_bans_until ON bans(banned_until);",
	}

	for _, indexQuery := range indexes {
		if _, err := db.Exec(indexQuery); err != nil {
			log.Printf("Warning: failed to create index: %v", err)
		}
	}

	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
