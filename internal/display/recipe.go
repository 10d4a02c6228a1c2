package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/ledger"
	"github.com/hammamikhairi/simmr/internal/pantry"
)

// RecipeMarkdown builds the recipe card shown by `simmr recipes show`.
// report may be nil, in which case ingredients are listed without
// ownership marks.
func RecipeMarkdown(r *domain.Recipe, report *pantry.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s\n\n", r.StoryTone.Emoji(), r.Title)
	fmt.Fprintf(&b, "*%s · %s · serves %s · %d min*\n\n", r.Category.Title(), r.Difficulty, r.NumServings, r.CookTimeMinutes)
	if r.Restriction != "" && r.Restriction != domain.RestrictionNone {
		fmt.Fprintf(&b, "Dietary: **%s**\n\n", r.Restriction)
	}
	if r.KidFriendly {
		b.WriteString("Kid friendly.\n\n")
	}
	if r.Instructions != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Instructions)
	}

	b.WriteString("## Ingredients\n\n")
	if report != nil {
		fmt.Fprintf(&b, "You have **%d of %d** (%d%%).\n\n", report.Readiness.Have, report.Readiness.Total, report.Readiness.Percent)
		for _, l := range report.Lines {
			mark := "[ ]"
			if l.Have {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "- %s %s\n", mark, ingredientText(l.Name, l.Amount))
		}
	} else {
		for _, ing := range ledger.Normalize(r.Ingredients) {
			fmt.Fprintf(&b, "- %s\n", ingredientText(ing.Name, ing.Amount))
		}
	}

	if len(r.Steps) > 0 {
		b.WriteString("\n## Steps\n\n")
		for _, s := range r.Steps {
			fmt.Fprintf(&b, "%d. %s\n", s.Order, s.Instruction)
		}
	}
	return b.String()
}

func ingredientText(name, amount string) string {
	if amount == "" {
		return name
	}
	return name + " (" + amount + ")"
}

// RenderMarkdown renders markdown for the terminal, wrapped at width.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// ReadinessBar draws a fixed-width meter like "█████░░░░░  57% (4/7)".
func ReadinessBar(r ledger.Readiness, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := r.Percent * width / 100
	bar := haveStyle.Render(strings.Repeat("█", filled)) +
		secondaryStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%% (%d/%d)", bar, r.Percent, r.Have, r.Total)
}

// RecipeRow is one line of a recipe listing.
type RecipeRow struct {
	Recipe    domain.Recipe
	Readiness *ledger.Readiness
}

// RecipeList renders recipes one per line: id, title, category and, when
// known, readiness.
func RecipeList(rows []RecipeRow) string {
	if len(rows) == 0 {
		return secondaryStyle.Render("  no recipes") + "\n"
	}

	idW := 0
	for _, row := range rows {
		idW = max(idW, len(row.Recipe.ID))
	}

	var b strings.Builder
	for _, row := range rows {
		r := row.Recipe
		fmt.Fprintf(&b, "  %-*s  %s %s", idW, r.ID, primaryStyle.Render(r.Title), secondaryStyle.Render("["+r.Category.Title()+"]"))
		if row.Readiness != nil {
			b.WriteString("  " + ReadinessBar(*row.Readiness, 10))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// MissingList renders the ingredients still to buy.
func MissingList(missing []ledger.Ingredient) string {
	if len(missing) == 0 {
		return haveStyle.Render("  You have everything.") + "\n"
	}
	var b strings.Builder
	for _, ing := range missing {
		b.WriteString(missStyle.Render("  - "+ingredientText(ing.Name, ing.Amount)) + "\n")
	}
	return b.String()
}

// ItemList renders pantry items, one per line.
func ItemList(items []string) string {
	if len(items) == 0 {
		return secondaryStyle.Render("  (empty)") + "\n"
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString("  • " + primaryStyle.Render(it) + "\n")
	}
	return b.String()
}
