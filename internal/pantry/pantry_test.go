package pantry

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/ledger"
	"github.com/hammamikhairi/simmr/internal/logger"
	"github.com/hammamikhairi/simmr/internal/storage"
)

func setupService(t *testing.T, opts ...ledger.Option) *Service {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	return NewService(storage.NewMemoryPantry(log), ledger.New(opts...), log)
}

func TestInitSeedsOnce(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	seeded, err := svc.Init(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, seeded)

	items, err := svc.Items(ctx, "u1")
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultPantry, items); diff != "" {
		t.Fatalf("default pantry mismatch (-want +got):\n%s", diff)
	}

	seeded, err = svc.Init(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestAddRemove(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "u1", "  Olive Oil ")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Add(ctx, "u1", "Olive Oil")
	require.NoError(t, err)
	assert.False(t, added, "duplicate is a no-op")

	_, err = svc.Add(ctx, "u1", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	items, _ := svc.Items(ctx, "u1")
	assert.Equal(t, []string{"Olive Oil"}, items)

	require.NoError(t, svc.Remove(ctx, "u1", "Olive Oil "))
	assert.ErrorIs(t, svc.Remove(ctx, "u1", "Olive Oil"), domain.ErrNotFound)
}

func TestAvailable(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	all, err := svc.Available(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 35)
	assert.Equal(t, CommonIngredients, all)

	for _, n := range []string{"Chicken", "Beans", "Salt", "Truffle"} {
		_, err := svc.Add(ctx, "u1", n)
		require.NoError(t, err)
	}
	left, err := svc.Available(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, left, 32)
	assert.NotContains(t, left, "Chicken")
	assert.Equal(t, "Beef", left[0])
	assert.Equal(t, "Canned Tomatoes", left[len(left)-1])
}

func TestReadiness(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	for _, n := range []string{"Pasta", "Chicken", "Butter"} {
		_, _ = svc.Add(ctx, "u1", n)
	}

	recipe := &domain.Recipe{
		ID: "r",
		Ingredients: []domain.IngredientEntry{
			domain.RawEntry("Pasta: 8 oz"),
			domain.RawEntry("chicken:2"),
			domain.StructuredEntry("Butter", "1 tbsp"),
			domain.RawEntry("Cream:1 cup"),
		},
	}

	rep, err := svc.Readiness(ctx, "u1", recipe)
	require.NoError(t, err)
	assert.Equal(t, ledger.Readiness{Total: 4, Have: 2, Percent: 50}, rep.Readiness)

	want := []ledger.Line{
		{Name: "Pasta", Amount: "8 oz", Have: true},
		{Name: "chicken", Amount: "2", Have: false},
		{Name: "Butter", Amount: "1 tbsp", Have: true},
		{Name: "Cream", Amount: "1 cup", Have: false},
	}
	if diff := cmp.Diff(want, rep.Lines); diff != "" {
		t.Fatalf("breakdown mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, rep.Missing, 2)
	assert.Equal(t, "chicken", rep.Missing[0].Name)
}

func TestReadinessFoldPolicy(t *testing.T) {
	svc := setupService(t, ledger.WithPolicy(ledger.PolicyFold))
	ctx := context.Background()
	_, _ = svc.Add(ctx, "u1", "Chicken")

	recipe := &domain.Recipe{Ingredients: domain.RawEntries("chicken:2", "Salt")}
	rep, err := svc.Readiness(ctx, "u1", recipe)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Readiness.Have)
	assert.Equal(t, 50, rep.Readiness.Percent)
}
