package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/ledger"
	"github.com/hammamikhairi/simmr/internal/pantry"
	"github.com/hammamikhairi/simmr/internal/recipe"
)

type categoryView struct {
	Name  domain.Category `json:"name"`
	Title string          `json:"title"`
}

// recipeView is a recipe plus how ready the caller is to cook it.
type recipeView struct {
	domain.Recipe
	Readiness ledger.Readiness `json:"readiness"`
}

type recipeDetail struct {
	Recipe    domain.Recipe  `json:"recipe"`
	Readiness *pantry.Report `json:"readiness"`
}

func (s *Server) categories(c *gin.Context) {
	out := make([]categoryView, 0, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		out = append(out, categoryView{Name: cat, Title: cat.Title()})
	}
	c.JSON(http.StatusOK, out)
}

// listRecipes supports ?q=, ?category=, ?kid_friendly=true and
// ?min_servings=N. Filters combine.
func (s *Server) listRecipes(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		recipes []domain.Recipe
		err     error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		recipes, err = s.Recipes.Search(ctx, q)
	} else {
		recipes, err = s.Recipes.List(ctx)
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	if v := c.Query("category"); v != "" {
		cat, ok := domain.ParseCategory(v)
		if !ok {
			badRequest(c, "unknown category "+strconv.Quote(v))
			return
		}
		recipes = ledger.FilterByCategory(recipes, cat)
	}
	if c.Query("kid_friendly") == "true" {
		recipes = ledger.Filter(recipes, ledger.KidFriendly)
	}
	if v := c.Query("min_servings"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(c, "min_servings must be a positive integer")
			return
		}
		recipes = ledger.Filter(recipes, ledger.ServesAtLeast(n))
	}

	views, err := s.withReadiness(ctx, userID(c), recipes)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) withReadiness(ctx context.Context, uid string, recipes []domain.Recipe) ([]recipeView, error) {
	items, err := s.Pantry.Items(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]recipeView, len(recipes))
	for i := range recipes {
		out[i] = recipeView{
			Recipe:    recipes[i],
			Readiness: s.Pantry.ReportFor(&recipes[i], items).Readiness,
		}
	}
	return out, nil
}

func (s *Server) sections(c *gin.Context) {
	recipes, err := s.Recipes.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ledger.Sections(recipes))
}

func (s *Server) getRecipe(c *gin.Context) {
	ctx := c.Request.Context()
	r, err := s.Recipes.Get(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	report, err := s.Pantry.Readiness(ctx, userID(c), r)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeDetail{Recipe: *r, Readiness: report})
}

// reloadRecipes upserts the seed catalogue into the recipe store.
func (s *Server) reloadRecipes(c *gin.Context) {
	if s.Catalogue == nil {
		s.fail(c, domain.ErrNotImplemented)
		return
	}

	recipes := recipe.Catalogue()
	if s.opts.SeedFile != "" {
		var err error
		if recipes, err = recipe.LoadFile(s.opts.SeedFile); err != nil {
			s.fail(c, err)
			return
		}
	}

	for i := range recipes {
		if err := s.Catalogue.Upsert(c.Request.Context(), &recipes[i]); err != nil {
			s.fail(c, err)
			return
		}
	}
	s.log.Info("reloaded %d recipes", len(recipes))
	c.JSON(http.StatusOK, gin.H{"reloaded": len(recipes)})
}
