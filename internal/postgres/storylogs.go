package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/simmr/internal/domain"
)

var _ domain.StoryLogStore = (*StoryLogRepository)(nil)

// StoryLogRepository stores finished-dish logs.
type StoryLogRepository struct {
	db *pgxpool.Pool
}

// NewStoryLogRepository wraps a pool.
func NewStoryLogRepository(db *pgxpool.Pool) *StoryLogRepository {
	return &StoryLogRepository{db: db}
}

// Insert stores a story log.
func (r *StoryLogRepository) Insert(ctx context.Context, l *domain.StoryLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO story_logs (id, recipe_id, user_id, story_summary, dish_image_url, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID, l.RecipeID, l.UserID, l.StorySummary, l.DishImageURL, l.Date)
	return mapErr(err)
}

// ListByUser returns the user's logs, newest first.
func (r *StoryLogRepository) ListByUser(ctx context.Context, userID string) ([]domain.StoryLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, recipe_id, user_id, story_summary, dish_image_url, date
		FROM story_logs
		WHERE user_id = $1
		ORDER BY date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing story logs: %w", err)
	}
	defer rows.Close()

	var out []domain.StoryLog
	for rows.Next() {
		var l domain.StoryLog
		if err := rows.Scan(&l.ID, &l.RecipeID, &l.UserID, &l.StorySummary, &l.DishImageURL, &l.Date); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
