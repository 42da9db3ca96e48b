package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id                 TEXT PRIMARY KEY,
	file_name          TEXT NOT NULL,
	file_path          TEXT NOT NULL,
	file_hash          TEXT NOT NULL,
	file_size          INTEGER NOT NULL DEFAULT 0,
	audio_duration     REAL NOT NULL DEFAULT 0,
	model_used         TEXT NOT NULL,
	language           TEXT NOT NULL DEFAULT '',
	transcription      TEXT NOT NULL DEFAULT '',
	confidence         REAL NOT NULL DEFAULT 0,
	processing_time_ms INTEGER NOT NULL DEFAULT 0,
	from_cache         INTEGER NOT NULL DEFAULT 0,
	has_error          INTEGER NOT NULL DEFAULT 0,
	error_message      TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_file_hash ON transcriptions(file_hash);
CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at);
`

// Open opens (creating if needed) the database file at dbPath and applies
// the schema.
func Open(dbPath string) (*SQLiteDB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLiteDB(db), nil
}

// uriPath escapes the characters SQLite treats specially inside a file: URI.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func dsn(dbPath string) string {
	return "file:" + uriPath.Replace(dbPath) + "?cache=shared&mode=rwc&_busy_timeout=5000"
}

// InitSchema creates the transcriptions table and its indexes.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}
