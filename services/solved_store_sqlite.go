// File: services/solved_store_sqlite.go
package services

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"ctf-catalog/logger"
	"ctf-catalog/models"
	_ "modernc.org/sqlite"
)

const solvedSchema = `
CREATE TABLE IF NOT EXISTS solved_challenges (
	owner      TEXT NOT NULL,
	record_key TEXT NOT NULL,
	solved     INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (owner, record_key)
)`

// SQLiteSolvedStore keeps records in a local SQLite file.
type SQLiteSolvedStore struct {
	db     *sql.DB
	prefix string
}

// NewSQLiteSolvedStore opens (creating if needed) the database at path.
func NewSQLiteSolvedStore(ctx context.Context, path, prefix string) (*SQLiteSolvedStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer keeps SQLite from returning SQLITE_BUSY under concurrent pages
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, solvedSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create solved schema: %w", err)
	}
	logger.Info.Printf("[NewSQLiteSolvedStore] using %s", path)
	return &SQLiteSolvedStore{db: db, prefix: prefix}, nil
}

func (s *SQLiteSolvedStore) MarkSolved(ctx context.Context, owner string, key models.ChallengeKey) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO solved_challenges (owner, record_key, solved) VALUES (?, ?, 1)`,
		owner, StorageKey(s.prefix, key))
	if err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}

func (s *SQLiteSolvedStore) IsSolved(ctx context.Context, owner string, key models.ChallengeKey) (bool, error) {
	var solved int
	err := s.db.QueryRowContext(ctx,
		`SELECT solved FROM solved_challenges WHERE owner = ? AND record_key = ?`,
		owner, StorageKey(s.prefix, key)).Scan(&solved)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read solved: %w", err)
	}
	return solved == 1, nil
}

func (s *SQLiteSolvedStore) Close() error {
	return s.db.Close()
}
