package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/simmr/internal/display"
	"github.com/hammamikhairi/simmr/internal/pantry"
)

var pantryCmd = &cobra.Command{
	Use:     "pantry",
	Aliases: []string{"p"},
	Short:   "Manage the ingredients you have",
}

// withPantry opens the backend with the local pantry and runs fn.
func withPantry(cmd *cobra.Command, fn func(svc *pantry.Service, userID string) error) error {
	be, err := openBackend(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer be.Close()

	svc, err := be.pantryService()
	if err != nil {
		return err
	}
	return fn(svc, currentUserID())
}

var pantryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show your pantry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPantry(cmd, func(svc *pantry.Service, uid string) error {
			items, err := svc.Items(cmd.Context(), uid)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), display.ItemList(items))
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  run `simmr pantry init` to start with the basics")
			}
			return nil
		})
	},
}

var pantryInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed an empty pantry with common staples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPantry(cmd, func(svc *pantry.Service, uid string) error {
			seeded, err := svc.Init(cmd.Context(), uid)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "pantry already has items, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", strings.Join(pantry.DefaultPantry, ", "))
			return nil
		})
	},
}

var pantryAddCmd = &cobra.Command{
	Use:   "add <ingredient>...",
	Short: "Add ingredients",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPantry(cmd, func(svc *pantry.Service, uid string) error {
			for _, name := range args {
				added, err := svc.Add(cmd.Context(), uid, name)
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "+ %s\n", strings.TrimSpace(name))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s (already there)\n", strings.TrimSpace(name))
				}
			}
			return nil
		})
	},
}

var pantryRemoveCmd = &cobra.Command{
	Use:     "remove <ingredient>",
	Aliases: []string{"rm"},
	Short:   "Remove an ingredient",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPantry(cmd, func(svc *pantry.Service, uid string) error {
			if err := svc.Remove(cmd.Context(), uid, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", strings.TrimSpace(args[0]))
			return nil
		})
	},
}

var pantryAvailableCmd = &cobra.Command{
	Use:   "available",
	Short: "List common ingredients you could add",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPantry(cmd, func(svc *pantry.Service, uid string) error {
			items, err := svc.Available(cmd.Context(), uid)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), display.ItemList(items))
			return nil
		})
	},
}

var readyCmd = &cobra.Command{
	Use:   "ready <recipe-id>",
	Short: "Show how much of a recipe your pantry covers",
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

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n  %s\n\n", r.Title, display.ReadinessBar(report.Readiness, 20))
		if len(report.Missing) > 0 {
			fmt.Fprintln(out, "Still need:")
		}
		fmt.Fprint(out, display.MissingList(report.Missing))
		return nil
	},
}

func init() {
	pantryCmd.AddCommand(pantryListCmd, pantryInitCmd, pantryAddCmd, pantryRemoveCmd, pantryAvailableCmd)
}
