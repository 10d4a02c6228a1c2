package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/simmr/internal/domain"
)

var _ domain.PantryStore = (*PantryRepository)(nil)

// PantryRepository stores pantry items, one row per user and name.
type PantryRepository struct {
	db *pgxpool.Pool
}

// NewPantryRepository wraps a pool.
func NewPantryRepository(db *pgxpool.Pool) *PantryRepository {
	return &PantryRepository{db: db}
}

// Items returns the user's pantry in insertion order.
func (r *PantryRepository) Items(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name FROM pantry_items WHERE user_id = $1 ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying pantry: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Add inserts name unless present and reports whether a row was added.
func (r *PantryRepository) Add(ctx context.Context, userID, name string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO pantry_items (user_id, name) VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO NOTHING
	`, userID, name)
	if err != nil {
		return false, fmt.Errorf("adding pantry item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Remove deletes name from the user's pantry.
func (r *PantryRepository) Remove(ctx context.Context, userID, name string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM pantry_items WHERE user_id = $1 AND name = $2
	`, userID, name)
	if err != nil {
		return fmt.Errorf("removing pantry item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
