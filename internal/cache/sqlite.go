package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a sqlite database in the run scratch
// directory. SQLite gives atomic per-key writes visible to every process
// sharing the scratch dir.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens the cache database under scratchDir.
func Open(scratchDir string) (*SQLiteStore, error) {
	path := filepath.Join(scratchDir, "results.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	// SQLite is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS results (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the payload stored for key.
func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow("SELECT value FROM results WHERE key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return payload, true, nil
}

// Set writes payload for key. An existing entry is left untouched so the
// first computation of a key stands for the remainder of the run.
func (s *SQLiteStore) Set(key string, payload []byte) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO results (key, value) VALUES (?, ?)", key, payload)
	if err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
