package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// testPool connects to SIMMR_TEST_DATABASE_URL or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("SIMMR_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SIMMR_TEST_DATABASE_URL not set, skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, dsn, PoolOptions{MaxConns: 4}, logger.New(logger.LevelOff, nil))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "", PoolOptions{}, logger.New(logger.LevelOff, nil))
	assert.Error(t, err)
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	other := errors.New("boom")
	assert.Equal(t, other, mapErr(other))
}

func TestRecipeRepository(t *testing.T) {
	pool := testPool(t)
	repo := NewRecipeRepository(pool)
	ctx := context.Background()

	id := "test-" + uuid.NewString()
	rec := &domain.Recipe{
		ID:          id,
		Title:       "Test Soup",
		Ingredients: domain.RawEntries("Carrots:2", "Salt"),
		Category:    domain.CategoryBrowse,
		StoryTone:   domain.ToneCozy,
		Steps:       []domain.Step{{Order: 1, Instruction: "Simmer."}},
	}
	require.NoError(t, repo.Upsert(ctx, rec))
	assert.Equal(t, 1, rec.Version)

	rec.Title = "Better Soup"
	require.NoError(t, repo.Upsert(ctx, rec))
	assert.Equal(t, 2, rec.Version)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Better Soup", got.Title)
	assert.Equal(t, []string{"Carrots:2", "Salt"}, got.IngredientLines())
	require.Len(t, got.Steps, 1)

	found, err := repo.Search(ctx, "carrots")
	require.NoError(t, err)
	assert.NotEmpty(t, found)

	_, err = repo.Get(ctx, "missing-"+id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPantryRepository(t *testing.T) {
	pool := testPool(t)
	repo := NewPantryRepository(pool)
	ctx := context.Background()
	user := "u-" + uuid.NewString()

	added, err := repo.Add(ctx, user, "Eggs")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, user, "Eggs")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = repo.Add(ctx, user, "Milk")
	require.NoError(t, err)

	items, err := repo.Items(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"Eggs", "Milk"}, items)

	require.NoError(t, repo.Remove(ctx, user, "Eggs"))
	assert.ErrorIs(t, repo.Remove(ctx, user, "Eggs"), domain.ErrNotFound)
}

func TestUserRepository(t *testing.T) {
	pool := testPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("Cook-%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "hash",
		Role:         domain.RoleUser,
	}
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: uuid.NewString(), Email: u.Email, PasswordHash: "x", Role: domain.RoleUser}), domain.ErrAlreadyExists)

	got, err := repo.ByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.ByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGroupAndSessionRepositories(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	groups := NewGroupRepository(pool)
	gid := uuid.NewString()
	friend := "f-" + uuid.NewString()
	gs := &domain.GroupSession{
		ID:             gid,
		CreatorID:      "host-" + gid,
		InvitedFriends: []string{friend},
		SessionDate:    time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second),
		StoryTheme:     domain.ToneMystery,
	}
	require.NoError(t, groups.CreateSession(ctx, gs, []domain.Invite{{SessionID: gid, UserID: friend, Status: domain.InvitePending}}))

	sessions, err := groups.SessionsFor(ctx, friend)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	inv := domain.Invite{SessionID: gid, UserID: friend, Status: domain.InviteAccepted, RespondedAt: time.Now().UTC()}
	require.NoError(t, groups.UpdateInvite(ctx, inv))
	invites, err := groups.InvitesFor(ctx, friend)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, domain.InviteAccepted, invites[0].Status)

	cook := NewSessionRepository(pool)
	s := &domain.Session{
		ID:         uuid.NewString(),
		RecipeID:   "creamy-chicken-pasta",
		Status:     domain.SessionActive,
		StepStates: map[int]*domain.StepState{0: {Status: domain.StepDone}},
		StartedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, cook.Save(ctx, s))
	loaded, err := cook.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepDone, loaded.StepStates[0].Status)
	require.NoError(t, cook.Delete(ctx, s.ID))
	assert.ErrorIs(t, cook.Delete(ctx, s.ID), domain.ErrNotFound)
}
