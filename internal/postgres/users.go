package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/simmr/internal/domain"
)

var _ domain.UserStore = (*UserRepository)(nil)

// UserRepository stores accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository wraps a pool.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. A taken email yields ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	contacts := u.Contacts
	if contacts == nil {
		contacts = []string{}
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, role, contacts, settings)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
		RETURNING created_at
	`, u.ID, u.Email, u.DisplayName, u.PasswordHash, u.Role, contacts, settings).Scan(&u.CreatedAt)
	return mapErr(err)
}

// ByEmail looks a user up by email, case-insensitively.
func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, `WHERE email = lower($1)`, email)
}

// ByID looks a user up by ID.
func (r *UserRepository) ByID(ctx context.Context, id string) (*domain.User, error) {
	return r.one(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) one(ctx context.Context, where string, arg string) (*domain.User, error) {
	var u domain.User
	var settings []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, role, contacts, settings, created_at
		FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Role, &u.Contacts, &settings, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &u.Settings); err != nil {
			return nil, fmt.Errorf("decoding settings for %s: %w", u.ID, err)
		}
	}
	return &u, nil
}
