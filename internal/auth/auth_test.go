package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
	"github.com/hammamikhairi/simmr/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupService(t *testing.T) (*Service, *storage.MemoryUsers) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	tokens, err := NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	users := storage.NewMemoryUsers(log)
	return NewService(users, tokens, log), users
}

// ── Tokens ───────────────────────────────────────────────────────

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("s3cret", 0)
	require.NoError(t, err)

	signed, exp, err := tokens.Issue("u1", "a@b.c", domain.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), exp, time.Minute)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestTokensReject(t *testing.T) {
	tokens, _ := NewTokens("s3cret", time.Hour)
	other, _ := NewTokens("different", time.Hour)

	signed, _, err := other.Issue("u1", "", domain.RoleUser)
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "wrong secret")

	_, err = tokens.Validate("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "garbage")

	expired, _ := NewTokens("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("u1", "", domain.RoleUser)
	require.NoError(t, err)
	_, err = tokens.Validate(old)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "expired")

	_, _, err = tokens.Issue("", "", "")
	assert.Error(t, err)

	_, err = NewTokens("", time.Hour)
	assert.Error(t, err)
}

// ── Service ──────────────────────────────────────────────────────

func TestRegisterHashesPassword(t *testing.T) {
	svc, users := setupService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Cook@Example.com ", "Password@123", "")
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", u.Email)
	assert.Equal(t, "cook", u.DisplayName)
	assert.Equal(t, domain.RoleUser, u.Role)

	stored, err := users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Password@123", stored.PasswordHash)
}

func TestRegisterRejects(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.co", "secret1", "A")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"duplicate", "A@B.co", "secret1", domain.ErrAlreadyExists},
		{"empty email", "", "secret1", domain.ErrInvalidInput},
		{"empty password", "x@y.z", "", domain.ErrInvalidInput},
		{"bad email", "nope", "secret1", domain.ErrInvalidInput},
		{"short password", "x@y.z", "123", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoginAndProfile(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "cook@example.com", "simmer-on", "Cook")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "cook@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ghost@example.com", "simmer-on")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "COOK@example.com", "simmer-on")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.False(t, sess.Expired(time.Now()))

	profile, err := svc.Profile(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "Cook", profile.DisplayName)
}

// ── Session file ─────────────────────────────────────────────────

func TestSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".simmr", "session.json")

	_, err := LoadSession(path)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in := &domain.AuthSession{UserID: "u1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second)}
	require.NoError(t, SaveSession(path, in))

	out, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))

	require.NoError(t, RemoveSession(path))
	require.NoError(t, RemoveSession(path))
}

// ── Holder ───────────────────────────────────────────────────────

// next reads one state or fails after a second.
func next(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state")
	}
	return State{}
}

func TestHolderBroadcastsAndLoadsProfile(t *testing.T) {
	release := make(chan struct{})
	loader := func(ctx context.Context, s *domain.AuthSession) (*domain.User, error) {
		<-release
		return &domain.User{ID: s.UserID, DisplayName: "Cook"}, nil
	}
	h := NewHolder(logger.New(logger.LevelOff, nil), WithProfileLoader(loader))
	defer h.Close()

	ch, cancel := h.Subscribe()
	defer cancel()

	initial := next(t, ch)
	assert.False(t, initial.LoggedIn)

	h.Set(&domain.AuthSession{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
	loading := next(t, ch)
	assert.True(t, loading.LoggedIn)
	assert.True(t, loading.Loading)
	assert.Nil(t, loading.Profile)

	close(release)
	loaded := next(t, ch)
	assert.False(t, loaded.Loading)
	require.NotNil(t, loaded.Profile)
	assert.Equal(t, "Cook", loaded.Profile.DisplayName)

	h.Clear()
	cleared := next(t, ch)
	assert.False(t, cleared.LoggedIn)
	assert.Nil(t, cleared.Session)
}

func TestHolderRestore(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHolder(logger.New(logger.LevelOff, nil), WithClock(func() time.Time { return now }))
	defer h.Close()

	assert.False(t, h.Restore(nil))
	assert.False(t, h.Restore(&domain.AuthSession{UserID: "u1", ExpiresAt: now.Add(-time.Second)}))
	assert.False(t, h.Get().LoggedIn)

	assert.True(t, h.Restore(&domain.AuthSession{UserID: "u1", ExpiresAt: now.Add(time.Hour)}))
	st := h.Get()
	assert.True(t, st.LoggedIn)
	assert.False(t, st.Loading, "no loader configured")
}

func TestHolderStaleProfileIgnored(t *testing.T) {
	first := &domain.AuthSession{UserID: "first"}
	release := make(chan struct{})
	loader := func(ctx context.Context, s *domain.AuthSession) (*domain.User, error) {
		if s == first {
			<-release
		}
		return &domain.User{ID: s.UserID}, nil
	}
	h := NewHolder(logger.New(logger.LevelOff, nil), WithProfileLoader(loader))
	defer h.Close()

	h.Set(first)
	h.Clear()
	close(release)

	h.Close()
	assert.Nil(t, h.Get().Profile)
	assert.False(t, h.Get().LoggedIn)
}

func TestHolderCloseClosesSubscribers(t *testing.T) {
	h := NewHolder(logger.New(logger.LevelOff, nil))
	ch, cancel := h.Subscribe()
	<-ch

	h.Close()
	_, ok := <-ch
	assert.False(t, ok)

	cancel()
	h.Close()

	late, _ := h.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestHolderLoaderErrorStillClearsLoading(t *testing.T) {
	h := NewHolder(logger.New(logger.LevelOff, nil), WithProfileLoader(
		func(ctx context.Context, s *domain.AuthSession) (*domain.User, error) {
			return nil, errors.New("offline")
		}))
	defer h.Close()

	ch, cancel := h.Subscribe()
	defer cancel()
	next(t, ch)

	h.Set(&domain.AuthSession{UserID: "u1"})
	var st State
	for st = next(t, ch); st.Loading; st = next(t, ch) {
	}
	assert.True(t, st.LoggedIn)
	assert.Nil(t, st.Profile)
}
