package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

var _ domain.PantryStore = (*SQLitePantry)(nil)

// SQLitePantry persists pantries in a local SQLite file. The CLI uses it
// when no database URL is configured.
type SQLitePantry struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenSQLitePantry opens (creating if needed) the pantry database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLitePantry(path string, log *logger.Logger) (*SQLitePantry, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating pantry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening pantry database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS pantry_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, name)
	);
	CREATE INDEX IF NOT EXISTS idx_pantry_user ON pantry_items(user_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating pantry table: %w", err)
	}

	log.Debug("sqlite pantry ready at %s", path)
	return &SQLitePantry{db: db, log: log}, nil
}

// Close closes the database.
func (p *SQLitePantry) Close() error {
	return p.db.Close()
}

// Items returns the user's pantry in insertion order.
func (p *SQLitePantry) Items(ctx context.Context, userID string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT name FROM pantry_items WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying pantry: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning pantry row: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Add inserts name unless it already exists. It reports whether a row was
// added.
func (p *SQLitePantry) Add(ctx context.Context, userID, name string) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO pantry_items (user_id, name) VALUES (?, ?)`, userID, name)
	if err != nil {
		return false, fmt.Errorf("adding pantry item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adding pantry item: %w", err)
	}
	return n > 0, nil
}

// Remove deletes name from the user's pantry.
func (p *SQLitePantry) Remove(ctx context.Context, userID, name string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM pantry_items WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return fmt.Errorf("removing pantry item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing pantry item: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
