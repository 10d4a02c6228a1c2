package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// Service registers and signs in users.
type Service struct {
	users  domain.UserStore
	tokens *Tokens
	log    *logger.Logger
}

// NewService creates an auth service.
func NewService(users domain.UserStore, tokens *Tokens, log *logger.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: log}
}

// Tokens returns the signer used by the service.
func (s *Service) Tokens() *Tokens { return s.tokens }

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)

	if email == "" || password == "" {
		return nil, fmt.Errorf("missing required fields: %w", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email %q: %w", email, domain.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("password shorter than %d characters: %w", MinPasswordLength, domain.ErrInvalidInput)
	}

	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.log.Info("registered user %s", user.ID)
	return user, nil
}

// Login checks credentials and returns a signed session.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		s.log.Debug("login failed for %s: %v", email, err)
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Debug("login failed for %s: bad password", email)
		return nil, domain.ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &domain.AuthSession{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

// Profile validates a token and loads the account behind it.
func (s *Service) Profile(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	return s.users.ByID(ctx, claims.UserID)
}

// User loads an account by ID.
func (s *Service) User(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return u, nil
}
