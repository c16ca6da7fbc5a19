package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/arcosphere/internal/harness"
	"github.com/roach88/arcosphere/internal/planner"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
}

// StageResult describes one stage of a plan.
type StageResult struct {
	Remainder string   `json:"remainder"`
	Input     string   `json:"input"`
	Extracted string   `json:"extracted"`
	Recipes   []string `json:"recipes"`
}

// PlanResult is the output of the plan command.
type PlanResult struct {
	Path   string        `json:"path"`
	Width  int           `json:"width"`
	Stages []StageResult `json:"stages"`
	lines  []string
}

// String renders "[remainder] + [input] + [extracted] | recipes" per stage.
func (r PlanResult) String() string {
	return strings.Join(r.lines, "\n")
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <path>",
		Short: "Describe what flows through every stage of a path",
		Long: `Describe what flows through every stage of a staged path.

Each line reads [remainder] + [input] + [extracted] | recipes: the
arcospheres waiting for a later stage, the ones consumed by this stage, and
the final ones taken out after it. The three always add up to the width of
the path.

Exit codes:
  0 - Plan computed
  1 - Path does not replay
  2 - Command error (path does not parse, unreadable family)

Examples:
  arcosphere plan "EP -> LX + G => PG -> XO | EO -> LG"
  arcosphere plan "EP -> LX + O => EO -> LG | PG -> XO" --format json`,
		Args:          commandArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	return cmd
}

func runPlan(opts *PlanOptions, text string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	env, err := opts.loadEnvironment()
	if err != nil {
		return reportLoadError(f, err)
	}
	family := env.family

	sp, err := family.ParseStagedPath(text)
	if err != nil {
		return f.Fail(ExitCommandError, harness.ErrorCode(err), err.Error(), nil)
	}

	plan, err := planner.New(family).Plan(sp)
	if err != nil {
		var details any
		var pe *planner.PlanningError
		if errors.As(err, &pe) {
			details = map[string]any{
				"stage":     pe.Index,
				"available": family.FormatSet(pe.Available),
				"required":  family.FormatSet(pe.Required),
			}
		}
		return f.Fail(ExitFailure, harness.ErrorCode(err), err.Error(), details)
	}

	result := PlanResult{
		Path:   family.FormatStagedPath(sp),
		Width:  plan.Width(),
		Stages: make([]StageResult, 0, len(plan.Stages)),
		lines:  planLines(family, plan),
	}
	for i, stage := range sp.Stages() {
		sr := StageResult{
			Remainder: family.FormatSet(plan.Stages[i].Remainder),
			Input:     family.FormatSet(stage.Input()),
			Extracted: family.FormatSet(plan.Stages[i].Extracted),
		}
		for _, r := range stage.Recipes {
			sr.Recipes = append(sr.Recipes, family.FormatRecipe(r))
		}
		result.Stages = append(result.Stages, sr)
	}

	return f.Success(result)
}
