package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/simmr/internal/domain"
)

var _ domain.GroupStore = (*GroupRepository)(nil)

// GroupRepository stores group cooking sessions and their invites.
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository wraps a pool.
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateSession inserts the session and its invites in one transaction.
func (r *GroupRepository) CreateSession(ctx context.Context, s *domain.GroupSession, invites []domain.Invite) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	friends := s.InvitedFriends
	if friends == nil {
		friends = []string{}
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO cooking_sessions (id, creator_id, invited_friends, location, recipe_id, session_date, story_theme)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.CreatorID, friends, s.Location, s.RecipeID, s.SessionDate, string(s.StoryTheme)); err != nil {
		return mapErr(err)
	}

	batch := &pgx.Batch{}
	for _, inv := range invites {
		batch.Queue(`
			INSERT INTO session_invites (session_id, user_id, status) VALUES ($1, $2, $3)
		`, inv.SessionID, inv.UserID, string(inv.Status))
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return mapErr(err)
		}
	}

	return tx.Commit(ctx)
}

const groupColumns = `id, creator_id, invited_friends, location, recipe_id, session_date, story_theme`

// GetSession returns a group session by ID.
func (r *GroupRepository) GetSession(ctx context.Context, id string) (*domain.GroupSession, error) {
	row := r.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM cooking_sessions WHERE id = $1`, id)
	gs, err := scanGroup(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return gs, nil
}

// SessionsFor returns sessions the user created or was invited to,
// soonest first.
func (r *GroupRepository) SessionsFor(ctx context.Context, userID string) ([]domain.GroupSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+groupColumns+`
		FROM cooking_sessions
		WHERE creator_id = $1 OR $1 = ANY(invited_friends)
		ORDER BY session_date, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing group sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.GroupSession
	for rows.Next() {
		gs, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *gs)
	}
	return out, rows.Err()
}

// InvitesFor returns every invite addressed to the user.
func (r *GroupRepository) InvitesFor(ctx context.Context, userID string) ([]domain.Invite, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, user_id, status, responded_at
		FROM session_invites
		WHERE user_id = $1
		ORDER BY session_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing invites: %w", err)
	}
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		var inv domain.Invite
		var status string
		var responded *time.Time
		if err := rows.Scan(&inv.SessionID, &inv.UserID, &status, &responded); err != nil {
			return nil, err
		}
		inv.Status = domain.InviteStatus(status)
		if responded != nil {
			inv.RespondedAt = *responded
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// UpdateInvite records an RSVP.
func (r *GroupRepository) UpdateInvite(ctx context.Context, inv domain.Invite) error {
	var responded *time.Time
	if !inv.RespondedAt.IsZero() {
		responded = &inv.RespondedAt
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE session_invites SET status = $3, responded_at = $4
		WHERE session_id = $1 AND user_id = $2
	`, inv.SessionID, inv.UserID, string(inv.Status), responded)
	if err != nil {
		return fmt.Errorf("updating invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanGroup(row pgx.Row) (*domain.GroupSession, error) {
	var gs domain.GroupSession
	var theme string
	if err := row.Scan(&gs.ID, &gs.CreatorID, &gs.InvitedFriends, &gs.Location, &gs.RecipeID, &gs.SessionDate, &theme); err != nil {
		return nil, err
	}
	gs.StoryTheme = domain.StoryTone(theme)
	return &gs, nil
}
