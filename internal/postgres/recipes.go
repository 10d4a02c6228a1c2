package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/simmr/internal/domain"
)

var (
	_ domain.RecipeSource = (*RecipeRepository)(nil)
	_ domain.RecipeWriter = (*RecipeRepository)(nil)
)

// RecipeRepository stores recipes. Ingredients are kept as "name:amount"
// lines, the same shape the ledger parses.
type RecipeRepository struct {
	db *pgxpool.Pool
}

// NewRecipeRepository wraps a pool.
func NewRecipeRepository(db *pgxpool.Pool) *RecipeRepository {
	return &RecipeRepository{db: db}
}

const recipeColumns = `
	id, title, ingredients, instructions, category, difficulty, restriction,
	kid_friendly, num_servings, cook_time_minutes, story_tone, image_url,
	steps, version, created_at`

// List returns every recipe ordered by title.
func (r *RecipeRepository) List(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := r.db.Query(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	return collectRecipes(rows)
}

// Get returns a recipe by ID.
func (r *RecipeRepository) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	row := r.db.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
	rec, err := scanRecipe(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return rec, nil
}

// Search matches the query against title, category, restriction and
// ingredient lines, case-insensitively.
func (r *RecipeRepository) Search(ctx context.Context, query string) ([]domain.Recipe, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE title ILIKE $1
		   OR category ILIKE $1
		   OR restriction ILIKE $1
		   OR array_to_string(ingredients, ' ') ILIKE $1
		ORDER BY title
	`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("searching recipes: %w", err)
	}
	return collectRecipes(rows)
}

// Upsert inserts a recipe or replaces it, bumping the stored version.
func (r *RecipeRepository) Upsert(ctx context.Context, rec *domain.Recipe) error {
	if rec.ID == "" {
		return domain.ErrInvalidInput
	}
	steps, err := json.Marshal(rec.Steps)
	if err != nil {
		return fmt.Errorf("encoding steps: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO recipes (
			id, title, ingredients, instructions, category, difficulty, restriction,
			kid_friendly, num_servings, cook_time_minutes, story_tone, image_url, steps
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			ingredients = EXCLUDED.ingredients,
			instructions = EXCLUDED.instructions,
			category = EXCLUDED.category,
			difficulty = EXCLUDED.difficulty,
			restriction = EXCLUDED.restriction,
			kid_friendly = EXCLUDED.kid_friendly,
			num_servings = EXCLUDED.num_servings,
			cook_time_minutes = EXCLUDED.cook_time_minutes,
			story_tone = EXCLUDED.story_tone,
			image_url = EXCLUDED.image_url,
			steps = EXCLUDED.steps,
			version = recipes.version + 1
		RETURNING version, created_at
	`,
		rec.ID, rec.Title, rec.IngredientLines(), rec.Instructions, string(rec.Category),
		string(rec.Difficulty), string(rec.Restriction), rec.KidFriendly, rec.NumServings,
		rec.CookTimeMinutes, string(rec.StoryTone), rec.ImageURL, steps,
	).Scan(&rec.Version, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting recipe %s: %w", rec.ID, err)
	}
	return nil
}

func collectRecipes(rows pgx.Rows) ([]domain.Recipe, error) {
	defer rows.Close()

	var out []domain.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanRecipe(row pgx.Row) (*domain.Recipe, error) {
	var rec domain.Recipe
	var lines []string
	var category, difficulty, restriction, tone string
	var steps []byte
	if err := row.Scan(
		&rec.ID, &rec.Title, &lines, &rec.Instructions, &category, &difficulty, &restriction,
		&rec.KidFriendly, &rec.NumServings, &rec.CookTimeMinutes, &tone, &rec.ImageURL,
		&steps, &rec.Version, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.Ingredients = domain.RawEntries(lines...)
	rec.Category = domain.Category(category)
	rec.Difficulty = domain.Difficulty(difficulty)
	rec.Restriction = domain.Restriction(restriction)
	rec.StoryTone = domain.StoryTone(tone)
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &rec.Steps); err != nil {
			return nil, fmt.Errorf("decoding steps for %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
