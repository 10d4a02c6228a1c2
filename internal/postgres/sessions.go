package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/simmr/internal/domain"
)

var _ domain.SessionStore = (*SessionRepository)(nil)

// SessionRepository stores cook-along sessions. Step states are kept as
// JSONB.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository wraps a pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save inserts or overwrites a session.
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	if s == nil || s.ID == "" {
		return domain.ErrInvalidInput
	}
	states, err := json.Marshal(s.StepStates)
	if err != nil {
		return fmt.Errorf("encoding step states: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO cook_sessions (id, user_id, recipe_id, recipe_title, tone, current_step, step_states, status, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			step_states = EXCLUDED.step_states,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`, s.ID, s.UserID, s.RecipeID, s.RecipeTitle, string(s.Tone), s.CurrentStepIndex, states, int(s.Status), s.StartedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	return nil
}

const sessionColumns = `id, user_id, recipe_id, recipe_title, tone, current_step, step_states, status, started_at, updated_at`

// Load returns a session by ID.
func (r *SessionRepository) Load(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM cook_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cook_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive returns active and paused sessions.
func (r *SessionRepository) ListActive(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sessionColumns+` FROM cook_sessions
		WHERE status IN ($1, $2)
		ORDER BY updated_at DESC
	`, int(domain.SessionActive), int(domain.SessionPaused))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	var tone string
	var status int
	var states []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.RecipeID, &s.RecipeTitle, &tone, &s.CurrentStepIndex, &states, &status, &s.StartedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Tone = domain.StoryTone(tone)
	s.Status = domain.SessionStatus(status)
	s.StepStates = make(map[int]*domain.StepState)
	if len(states) > 0 {
		if err := json.Unmarshal(states, &s.StepStates); err != nil {
			return nil, fmt.Errorf("decoding step states for %s: %w", s.ID, err)
		}
	}
	return &s, nil
}
