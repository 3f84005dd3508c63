package prefs

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmtab/internal/logging"
)

// SQLite implements Store on a single-table SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and if needed creates) the preferences database.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
		CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get implements Store. Read errors are logged and reported as a miss,
// the same as a missing key.
func (s *SQLite) Get(key Key) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM prefs WHERE key = ?", string(key)).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.L().Warn("read preference", zap.String("key", string(key)), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Set implements Store.
func (s *SQLite) Set(key Key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, string(key), value)
	return err
}
