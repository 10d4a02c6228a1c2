package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hammamikhairi/simmr/internal/auth"
	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/ledger"
	"github.com/hammamikhairi/simmr/internal/objectstore"
	"github.com/hammamikhairi/simmr/internal/pantry"
	"github.com/hammamikhairi/simmr/internal/postgres"
	"github.com/hammamikhairi/simmr/internal/recipe"
	"github.com/hammamikhairi/simmr/internal/storage"
	"github.com/hammamikhairi/simmr/internal/story"
)

// recipeStore is a recipe source that accepts upserts.
type recipeStore interface {
	domain.RecipeSource
	domain.RecipeWriter
}

// backend bundles the stores a command runs against: Postgres when a
// database URL is configured, memory otherwise.
type backend struct {
	recipes   recipeStore
	sessions  domain.SessionStore
	users     domain.UserStore
	pantry    domain.PantryStore
	storyLogs domain.StoryLogStore
	groups    domain.GroupStore
	durable   bool

	closers []func()
}

// openBackend connects the stores. localPantry selects the SQLite pantry
// file when no database is configured, so CLI pantry edits survive.
func openBackend(ctx context.Context, localPantry bool) (*backend, error) {
	b := &backend{}

	if url := cfg.Database.URL; url != "" {
		db, err := postgres.Connect(ctx, url, postgres.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
		}, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		b.recipes = postgres.NewRecipeRepository(db)
		b.sessions = postgres.NewSessionRepository(db)
		b.users = postgres.NewUserRepository(db)
		b.pantry = postgres.NewPantryRepository(db)
		b.storyLogs = postgres.NewStoryLogRepository(db)
		b.groups = postgres.NewGroupRepository(db)
		b.durable = true
	} else {
		log.Info("no database configured, using in-memory stores")
		b.recipes = recipe.NewEmptySource(log)
		b.sessions = storage.NewMemoryStore(log)
		b.users = storage.NewMemoryUsers(log)
		b.pantry = storage.NewMemoryPantry(log)
		b.storyLogs = storage.NewMemoryStoryLogs(log)
		b.groups = storage.NewMemoryGroups(log)

		if localPantry {
			p, err := storage.OpenSQLitePantry(cfg.Pantry.Path, log)
			if err != nil {
				b.Close()
				return nil, err
			}
			b.closers = append(b.closers, func() { p.Close() })
			b.pantry = p
		}
	}

	if err := seedRecipes(ctx, b.recipes, cfg.Recipes.SeedFile); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// Close releases every connection the backend opened.
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// seedRecipes loads the seed file when one is set. Without one, an empty
// store gets the built-in catalogue.
func seedRecipes(ctx context.Context, store recipeStore, seedFile string) error {
	var recipes []domain.Recipe
	if seedFile != "" {
		var err error
		if recipes, err = recipe.LoadFile(seedFile); err != nil {
			return err
		}
	} else {
		existing, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("listing recipes: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
		recipes = recipe.Catalogue()
	}

	for i := range recipes {
		if err := store.Upsert(ctx, &recipes[i]); err != nil {
			return fmt.Errorf("seeding %s: %w", recipes[i].ID, err)
		}
	}
	log.Debug("seeded %d recipes", len(recipes))
	return nil
}

func (b *backend) pantryService() (*pantry.Service, error) {
	policy, err := cfg.MatchPolicy()
	if err != nil {
		return nil, err
	}
	return pantry.NewService(b.pantry, ledger.New(ledger.WithPolicy(policy)), log), nil
}

func (b *backend) authService() (*auth.Service, error) {
	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	return auth.NewService(b.users, tokens, log), nil
}

// imageStore returns the R2 bucket when an endpoint is configured.
func imageStore(ctx context.Context) (domain.ImageStore, error) {
	s := cfg.Storage
	if s.Endpoint == "" {
		log.Info("no object storage configured, keeping dish photos in memory")
		return objectstore.NewMemoryStore(s.PublicBaseURL), nil
	}
	return objectstore.NewR2Store(ctx, objectstore.R2Options{
		Endpoint:      s.Endpoint,
		AccessKey:     s.AccessKey,
		SecretKey:     s.SecretKey,
		Bucket:        s.Bucket,
		PublicBaseURL: s.PublicBaseURL,
	}, log)
}

// narrator picks the story backend from config. Remote narrators fall
// back to the canned templates when they fail.
func narrator(ctx context.Context) domain.Narrator {
	canned := story.NewCannedNarrator()
	sc := cfg.Story

	switch sc.Provider {
	case "gemini":
		g, err := story.NewGeminiNarrator(ctx, sc.GeminiAPIKey, sc.GeminiModel, log)
		if err != nil {
			log.Warn("gemini narrator unavailable, using canned stories: %v", err)
			return canned
		}
		return story.Fallback(g, canned, log)
	case "chat":
		if sc.ChatEndpoint == "" || sc.ChatKey == "" {
			log.Warn("chat narrator needs GPT_CHAT_ENDPOINT and GPT_CHAT_KEY, using canned stories")
			return canned
		}
		return story.Fallback(story.NewChatNarrator(sc.ChatEndpoint, sc.ChatKey, log), canned, log)
	}
	return canned
}

// ── Local identity ───────────────────────────────────────────────

// localUserID is used for pantry and cooking when nobody is signed in.
const localUserID = "local"

func sessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".simmr", "session.json")
}

// currentUserID returns the signed-in user, or localUserID.
func currentUserID() string {
	s, err := auth.LoadSession(sessionPath())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return localUserID
	case err != nil:
		log.Warn("reading saved session: %v", err)
		return localUserID
	}
	if s.UserID == "" || s.Expired(time.Now()) {
		return localUserID
	}
	return s.UserID
}
