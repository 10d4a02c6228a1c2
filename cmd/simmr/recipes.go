package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/simmr/internal/display"
	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/ledger"
	"github.com/hammamikhairi/simmr/internal/recipe"
)

var recipesCmd = &cobra.Command{
	Use:     "recipes",
	Aliases: []string{"r"},
	Short:   "Browse the recipe catalogue",
}

var (
	listCategory    string
	listSection     string
	listQuery       string
	listKidFriendly bool
	listMinServings int
)

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes with how ready your pantry is for each",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		be, err := openBackend(ctx, true)
		if err != nil {
			return err
		}
		defer be.Close()

		var recipes []domain.Recipe
		if listQuery != "" {
			recipes, err = be.recipes.Search(ctx, listQuery)
		} else {
			recipes, err = be.recipes.List(ctx)
		}
		if err != nil {
			return err
		}

		if listCategory != "" {
			cat, ok := domain.ParseCategory(listCategory)
			if !ok {
				return fmt.Errorf("unknown category %q", listCategory)
			}
			recipes = ledger.FilterByCategory(recipes, cat)
		}
		if listKidFriendly {
			recipes = ledger.Filter(recipes, ledger.KidFriendly)
		}
		if listMinServings > 0 {
			recipes = ledger.Filter(recipes, ledger.ServesAtLeast(listMinServings))
		}
		if listSection != "" {
			sections := ledger.Sections(recipes)
			switch strings.ToLower(listSection) {
			case "kids":
				recipes = sections.Kids
			case "friends":
				recipes = sections.Friends
			case "recommended":
				recipes = sections.Recommended
			default:
				return fmt.Errorf("unknown section %q (kids, friends, recommended)", listSection)
			}
		}

		svc, err := be.pantryService()
		if err != nil {
			return err
		}
		items, err := svc.Items(ctx, currentUserID())
		if err != nil {
			return err
		}

		rows := make([]display.RecipeRow, len(recipes))
		for i := range recipes {
			rows[i].Recipe = recipes[i]
			if len(items) > 0 {
				r := svc.ReportFor(&recipes[i], items).Readiness
				rows[i].Readiness = &r
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), display.RecipeList(rows))
		return nil
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <recipe-id>",
	Short: "Show a recipe card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		be, err := openBackend(ctx, true)
		if err != nil {
			return err
		}
		defer be.Close()

		r, err := be.recipes.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("recipe %q: %w", args[0], err)
		}
		svc, err := be.pantryService()
		if err != nil {
			return err
		}
		report, err := svc.Readiness(ctx, currentUserID(), r)
		if err != nil {
			return err
		}

		out, err := display.RenderMarkdown(display.RecipeMarkdown(r, report), 80)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var recipesImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Validate a recipe file and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		recipes, err := recipe.LoadFile(args[0])
		if err != nil {
			return err
		}

		be, err := openBackend(ctx, false)
		if err != nil {
			return err
		}
		defer be.Close()

		for i := range recipes {
			if err := be.recipes.Upsert(ctx, &recipes[i]); err != nil {
				return fmt.Errorf("storing %s: %w", recipes[i].ID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (v%d)\n", recipes[i].ID, recipes[i].Version)
		}
		if !be.durable {
			fmt.Fprintf(cmd.OutOrStdout(), "validated %d recipes; set database.url to keep them\n", len(recipes))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d recipes\n", len(recipes))
		return nil
	},
}

func init() {
	f := recipesListCmd.Flags()
	f.StringVarP(&listCategory, "category", "c", "", "only this category (Browse, Friends, Kids, TikTok, Challenge, ThreeBites, Sweets)")
	f.StringVarP(&listSection, "section", "s", "", "browse section: kids, friends or recommended")
	f.StringVarP(&listQuery, "query", "q", "", "search titles, categories and ingredients")
	f.BoolVar(&listKidFriendly, "kid-friendly", false, "only kid friendly recipes")
	f.IntVar(&listMinServings, "min-servings", 0, "only recipes serving at least this many")

	recipesCmd.AddCommand(recipesListCmd, recipesShowCmd, recipesImportCmd)
}
