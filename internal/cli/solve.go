package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/arcosphere/internal/executor"
	"github.com/roach88/arcosphere/internal/harness"
	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/planner"
	"github.com/roach88/arcosphere/internal/solver"
	"github.com/roach88/arcosphere/internal/store"
	"github.com/roach88/arcosphere/internal/telemetry"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	Plan        bool
	SortStages  bool
	SortRecipes bool
	Database    string
	Workers     int
	Metrics     bool
	Refresh     bool
}

// PathResult is one solution in command output.
type PathResult struct {
	Path    string   `json:"path"`
	Stages  int      `json:"stages"`
	Recipes int      `json:"recipes"`
	Plan    []string `json:"plan,omitempty"`
}

// SolveResult is the output of the solve command.
type SolveResult struct {
	Family  string       `json:"family"`
	Source  string       `json:"source"`
	Target  string       `json:"target"`
	Cached  bool         `json:"cached,omitempty"`
	RunID   string       `json:"run_id,omitempty"`
	Paths   []PathResult `json:"paths"`
	Metrics []string     `json:"metrics,omitempty"`
}

// String renders one path per line, plan lines indented under their path,
// then the metrics.
func (r SolveResult) String() string {
	var lines []string
	for _, p := range r.Paths {
		lines = append(lines, p.Path)
		for _, line := range p.Plan {
			lines = append(lines, "  "+line)
		}
	}
	if len(r.Metrics) > 0 {
		lines = append(lines, "")
		lines = append(lines, r.Metrics...)
	}
	return strings.Join(lines, "\n")
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <source> <target>",
		Short: "Find the shortest paths from source to target",
		Long: `Find the paths converting source into target with the fewest catalysts.

Source and target are written as abbreviations, eg. EP and LX. The smallest
catalyst size with a solution wins; every minimal path of that size is
printed, best first.

With --db, runs are archived and an identical request (same family, sets
and bounds) is answered from the archive.

Exit codes:
  0 - At least one path found
  1 - No path within the configured bounds
  2 - Command error (unknown arcosphere, unreadable family, database error)

Examples:
  arcosphere solve EP LX
  arcosphere solve EP LX --plan
  arcosphere solve EEPP LLXX --sort-recipes --workers 4
  arcosphere solve EP LX --db ./arcosphere.db --format json`,
		Args:          commandArgs(cobra.ExactArgs(2)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Plan, "plan", false, "print the stage plan of every path")
	cmd.Flags().BoolVar(&opts.SortStages, "sort-stages", false, "prefer fewer stages, then fewer recipes")
	cmd.Flags().BoolVar(&opts.SortRecipes, "sort-recipes", false, "prefer fewer recipes, then fewer stages")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite archive of solve runs")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "parallel searches (0 uses every CPU)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print solver metrics")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "solve even if the archive holds an answer")

	return cmd
}

func runSolve(ctx context.Context, opts *SolveOptions, sourceText, targetText string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	env, err := opts.loadEnvironment()
	if err != nil {
		return reportLoadError(f, err)
	}
	family := env.family

	if opts.SortStages && opts.SortRecipes {
		return f.Fail(ExitCommandError, ErrCodeConfig, "--sort-stages and --sort-recipes are mutually exclusive", nil)
	}

	cfg := env.config.Solver
	switch {
	case opts.SortStages:
		cfg.SortBy = solver.SortByStages
	case opts.SortRecipes:
		cfg.SortBy = solver.SortByRecipes
	}

	workers := env.config.Workers
	if cmd.Flags().Changed("workers") {
		workers = opts.Workers
	}
	if workers < 0 {
		return f.Fail(ExitCommandError, ErrCodeConfig, fmt.Sprintf("workers must be non-negative, got %d", workers), nil)
	}

	source, err := family.ParseSet(sourceText)
	if err != nil {
		return f.Fail(ExitCommandError, harness.ErrorCode(err), err.Error(), nil)
	}
	target, err := family.ParseSet(targetText)
	if err != nil {
		return f.Fail(ExitCommandError, harness.ErrorCode(err), err.Error(), nil)
	}

	result := SolveResult{
		Family: family.Name(),
		Source: family.FormatSet(source),
		Target: family.FormatSet(target),
	}

	dbPath := env.config.DB
	if opts.Database != "" {
		dbPath = opts.Database
	}

	var (
		archive *store.Store
		request store.Request
		hash    string
	)
	if dbPath != "" {
		archive, err = store.Open(dbPath)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		defer archive.Close()

		request = store.NewRequest(family, source, target, cfg)
		if hash, err = request.Hash(); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}

		if !opts.Refresh {
			run, ok, err := archive.FindSolved(ctx, hash)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
			}
			if ok {
				env.logger.Debug("answered from archive", "run", run.ID, "request", hash)
				paths, err := parseArchived(family, run)
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
				}
				if result.Paths, err = describePaths(family, paths, opts.Plan); err != nil {
					return f.Fail(ExitFailure, harness.ErrorCode(err), err.Error(), nil)
				}
				result.Cached = true
				result.RunID = run.ID
				return f.Success(result)
			}
		}
	}

	var metrics *telemetry.Metrics
	solverOpts := []solver.Option{
		solver.WithExecutor(executor.New(workers)),
		solver.WithLogger(env.logger),
	}
	if opts.Metrics {
		if metrics, err = telemetry.NewMetrics(); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		solverOpts = append(solverOpts, solver.WithObserver(metrics))
	}

	s, err := solver.New(family, cfg, solverOpts...)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	start := time.Now()
	paths, solveErr := s.Solve(ctx, source, target)
	elapsed := time.Since(start)
	env.logger.Debug("solve finished", "paths", len(paths), "duration", elapsed, "error", solveErr)

	// Interrupted solves are not archived.
	if archive != nil && ctx.Err() == nil {
		run, err := archiveRun(ctx, archive, family, request, hash, paths, solveErr, elapsed)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		result.RunID = run.ID
	}

	if solveErr != nil {
		details := map[string]string{"source": result.Source, "target": result.Target}
		if result.RunID != "" {
			details["run_id"] = result.RunID
		}
		return f.Fail(ExitFailure, harness.ErrorCode(solveErr), solveErr.Error(), details)
	}

	if result.Paths, err = describePaths(family, paths, opts.Plan); err != nil {
		return f.Fail(ExitFailure, harness.ErrorCode(err), err.Error(), nil)
	}

	if metrics != nil {
		samples, err := metrics.Snapshot()
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		for _, sample := range samples {
			result.Metrics = append(result.Metrics, sample.String())
		}
	}

	return f.Success(result)
}

// describePaths renders paths, planning each one if withPlan is set.
func describePaths(family *model.Family, paths []model.StagedPath, withPlan bool) ([]PathResult, error) {
	p := planner.New(family)
	out := make([]PathResult, 0, len(paths))
	for _, sp := range paths {
		pr := PathResult{
			Path:    family.FormatStagedPath(sp),
			Stages:  sp.StageCount(),
			Recipes: sp.RecipeCount(),
		}
		if withPlan {
			plan, err := p.Plan(sp)
			if err != nil {
				return nil, err
			}
			pr.Plan = planLines(family, plan)
		}
		out = append(out, pr)
	}
	return out, nil
}

// planLines splits a formatted plan into one line per stage.
func planLines(family *model.Family, plan *planner.Plan) []string {
	text := strings.TrimSuffix(plan.Format(family), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// parseArchived reads back the paths of an archived run.
func parseArchived(family *model.Family, run store.Run) ([]model.StagedPath, error) {
	paths := make([]model.StagedPath, 0, len(run.Results))
	for _, r := range run.Results {
		sp, err := family.ParseStagedPath(r.Path)
		if err != nil {
			return nil, fmt.Errorf("archived run %s: %w", run.ID, err)
		}
		paths = append(paths, sp)
	}
	return paths, nil
}

// archiveRun records the outcome of a solve.
func archiveRun(ctx context.Context, archive *store.Store, family *model.Family, request store.Request, hash string, paths []model.StagedPath, solveErr error, elapsed time.Duration) (store.Run, error) {
	configJSON, err := request.ConfigJSON()
	if err != nil {
		return store.Run{}, err
	}

	run := store.Run{
		RequestHash: hash,
		Family:      request.Family,
		Source:      request.Source,
		Target:      request.Target,
		Config:      configJSON,
		Status:      store.RunSolved,
		Duration:    elapsed,
	}
	if solveErr != nil {
		run.Status = store.RunFailed
		run.ErrorCode = harness.ErrorCode(solveErr)
		run.ErrorMessage = solveErr.Error()
	}
	for _, sp := range paths {
		run.Results = append(run.Results, store.Result{
			Path:    family.FormatStagedPath(sp),
			Stages:  sp.StageCount(),
			Recipes: sp.RecipeCount(),
		})
	}
	return archive.WriteRun(ctx, run)
}
