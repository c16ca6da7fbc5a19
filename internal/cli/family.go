package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ArcosphereEntry describes one arcosphere in command output.
type ArcosphereEntry struct {
	Abbr     string `json:"abbr"`
	Name     string `json:"name"`
	Glyph    string `json:"glyph"`
	Polarity string `json:"polarity"`
}

// RecipeEntry describes one recipe in command output.
type RecipeEntry struct {
	Index  int    `json:"index"`
	Recipe string `json:"recipe"`
	Kind   string `json:"kind"`
}

// FamilyResult is the output of the family command.
type FamilyResult struct {
	Name        string            `json:"name"`
	Polarized   bool              `json:"polarized"`
	Arcospheres []ArcosphereEntry `json:"arcospheres"`
	Recipes     []RecipeEntry     `json:"recipes"`
}

func (r FamilyResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Family: %s\n", r.Name)
	fmt.Fprintf(&b, "\nArcospheres (%d):\n", len(r.Arcospheres))
	for _, a := range r.Arcospheres {
		line := fmt.Sprintf("  %s  %s (%s)", a.Abbr, a.Name, a.Glyph)
		if r.Polarized {
			line += " " + a.Polarity
		}
		fmt.Fprintln(&b, line)
	}
	fmt.Fprintf(&b, "\nRecipes (%d):\n", len(r.Recipes))
	for _, rec := range r.Recipes {
		line := fmt.Sprintf("  %2d  %s", rec.Index, rec.Recipe)
		if r.Polarized {
			line += "  " + rec.Kind
		}
		fmt.Fprintln(&b, line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewFamilyCommand creates the family command.
func NewFamilyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "family",
		Short: "Show the arcospheres and recipes in use",
		Long: `Show the active family: its arcospheres, by index, and its recipes.

Without --family (or a family in the config), this is Space Exploration.

Examples:
  arcosphere family
  arcosphere family --family ./polar.cue --format json`,
		Args:          commandArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFamily(rootOpts, cmd)
		},
	}

	return cmd
}

func runFamily(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	env, err := opts.loadEnvironment()
	if err != nil {
		return reportLoadError(f, err)
	}
	family := env.family

	result := FamilyResult{
		Name:      family.Name(),
		Polarized: family.Polarized(),
	}
	for _, a := range family.Tokens() {
		result.Arcospheres = append(result.Arcospheres, ArcosphereEntry{
			Abbr:     string(a.Abbr),
			Name:     a.Name,
			Glyph:    a.Glyph(),
			Polarity: a.Polarity.String(),
		})
	}
	for _, r := range family.Recipes() {
		result.Recipes = append(result.Recipes, RecipeEntry{
			Index:  r.Index,
			Recipe: family.FormatRecipe(r),
			Kind:   r.Kind.String(),
		})
	}

	return f.Success(result)
}
