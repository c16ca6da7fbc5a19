// Package solver finds the shortest recipe sequences converting a source
// set of arcospheres into a target set.
//
// Solve explores catalyst sets of growing size and, when inversions are
// needed, repetition counts. Each (catalysts, count) pair is an independent
// bidirectional breadth-first search, dispatched through an Executor.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/arcosphere/internal/executor"
	"github.com/roach88/arcosphere/internal/model"
)

// Solver searches paths within a family.
type Solver struct {
	family   *model.Family
	config   Config
	executor executor.Executor
	logger   *slog.Logger
	observer Observer
}

// Option configures a Solver.
type Option func(*Solver)

// WithExecutor sets the executor running the searches.
// Default: executor.Sequential.
func WithExecutor(e executor.Executor) Option {
	return func(s *Solver) {
		if e != nil {
			s.executor = e
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets the progress observer. Default: NopObserver.
func WithObserver(o Observer) Option {
	return func(s *Solver) {
		if o != nil {
			s.observer = o
		}
	}
}

// New creates a solver for family bounded by config.
func New(family *model.Family, config Config, opts ...Option) (*Solver, error) {
	if family == nil {
		return nil, errors.New("solver: family is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}

	s := &Solver{
		family:   family,
		config:   config,
		executor: executor.NewSequential(),
		logger:   slog.Default(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Family returns the family the solver works in.
func (s *Solver) Family() *model.Family { return s.family }

// Config returns the solver bounds.
func (s *Solver) Config() Config { return s.config }

// strategy is the recipe set and the counts a request is explored with.
type strategy struct {
	recipes []model.Recipe
	counts  []int
}

// Solve returns every minimal path from source to target, sorted.
//
// Minimal means fewest stages then fewest recipes, or the reverse under
// SortByRecipes, among all catalyst sets explored. On failure the error is a
// *ResolutionError, unless ctx was cancelled or a search hit a defect.
func (s *Solver) Solve(ctx context.Context, source, target model.Set) ([]model.StagedPath, error) {
	if source.Len() != target.Len() {
		return nil, newResolutionError(ErrCodePreservation, "source has %d arcospheres, target has %d", source.Len(), target.Len())
	}

	base := model.Path{Source: source, Target: target, Count: 1}

	if source == target {
		return []model.StagedPath{{Path: base}}, nil
	}

	if r, err := s.family.FindRecipe(source, target); err == nil {
		base.Recipes = []model.Recipe{r}
		staged, err := model.NewStagedPath(base)
		if err != nil {
			return nil, err
		}
		return []model.StagedPath{staged}, nil
	}

	strat, err := s.strategy(source, target)
	if err != nil {
		return nil, err
	}

	return s.explore(ctx, source, target, strat)
}

// strategy decides between a folding-only search and an inversion search.
func (s *Solver) strategy(source, target model.Set) (strategy, error) {
	delta := s.family.CountNegatives(target) - s.family.CountNegatives(source)

	if delta == 0 {
		if len(s.family.Foldings()) == 0 {
			return strategy{}, newResolutionError(ErrCodeNotWithFoldings, "family %s has no folding recipe", s.family.Name())
		}
		return strategy{recipes: s.family.Foldings(), counts: []int{1}}, nil
	}

	inversion, perApplication, ok := s.inversion(delta)
	if !ok {
		return strategy{}, newResolutionError(ErrCodeNotWithInversions, "no inversion changes negatives by %+d", delta)
	}

	counts := repetitionCounts(abs(perApplication), abs(delta), s.config.MaximumCount, s.config.MaximumInversions)
	if len(counts) == 0 {
		return strategy{}, newResolutionError(ErrCodeOutsideCount,
			"inversion %d changes negatives by %+d, need %+d within count %d and %d inversions",
			inversion.Index, perApplication, delta, s.config.MaximumCount, s.config.MaximumInversions)
	}

	s.logger.Debug("inversion required",
		"recipe", inversion.Index,
		"per_application", perApplication,
		"delta", delta,
		"counts", counts)

	return strategy{recipes: s.family.Recipes(), counts: counts}, nil
}

// inversion returns the first inversion, by index, moving negatives in the
// direction of delta, along with its per-application change.
func (s *Solver) inversion(delta int) (model.Recipe, int, bool) {
	for _, r := range s.family.Inversions() {
		change := s.family.CountNegatives(r.Output) - s.family.CountNegatives(r.Input)
		if (change > 0) == (delta > 0) && change != 0 {
			return r, change, true
		}
	}
	return model.Recipe{}, 0, false
}

// explore runs one batch of searches per catalyst size.
func (s *Solver) explore(ctx context.Context, source, target model.Set, strat strategy) ([]model.StagedPath, error) {
	var (
		results []model.StagedPath
		retry   *ResolutionError
		foundAt = -1
	)

	for size := s.config.MinimumCatalysts; size <= s.config.MaximumCatalysts; size++ {
		if foundAt >= 0 && size > foundAt+s.config.ExtraCatalysts {
			break
		}

		catalysts := catalystSets(s.family.Dimension(), size)
		reports := make([]TaskReport, len(catalysts)*len(strat.counts))
		tasks := make([]executor.Task, 0, len(reports))

		for _, cat := range catalysts {
			for _, count := range strat.counts {
				i := len(tasks)
				reports[i] = TaskReport{Catalysts: cat, Count: count}
				srch := &search{
					recipes:       strat.recipes,
					source:        source,
					target:        target,
					count:         count,
					catalysts:     cat,
					maxHalfRounds: s.config.MaximumRecipes,
				}
				report := &reports[i]
				tasks = append(tasks, func(context.Context) ([]model.StagedPath, error) {
					return s.runSearch(srch, report)
				})
			}
		}

		s.logger.Debug("exploring catalysts", "size", size, "tasks", len(tasks))
		outcomes := s.executor.Execute(ctx, tasks)

		found := 0
		for i, out := range outcomes {
			reports[i].Paths = len(out.Paths)
			reports[i].Err = out.Err
			s.observer.TaskCompleted(reports[i])

			if out.Err != nil {
				var re *ResolutionError
				if errors.As(out.Err, &re) && !re.Definitive() {
					if retry == nil || re.rank() > retry.rank() {
						retry = re
					}
					continue
				}
				return nil, fmt.Errorf("solve %s -> %s: %w",
					s.family.FormatSet(source), s.family.FormatSet(target), out.Err)
			}

			found += len(out.Paths)
			results = append(results, out.Paths...)
		}

		s.observer.SizeExplored(size, len(tasks), found)
		s.logger.Debug("explored catalysts", "size", size, "tasks", len(tasks), "found", found)

		if found > 0 && foundAt < 0 {
			foundAt = size
		}
	}

	if len(results) == 0 {
		return nil, s.exhausted(retry)
	}

	return s.keepMinimal(results), nil
}

// runSearch runs one search and converts its paths to staged paths.
// It only writes into its own report.
func (s *Solver) runSearch(srch *search, report *TaskReport) ([]model.StagedPath, error) {
	started := time.Now()
	paths, stats, err := srch.run()
	report.HalfRounds = stats.halfRounds
	report.States = stats.states
	report.Duration = time.Since(started)
	if err != nil {
		return nil, err
	}

	staged := make([]model.StagedPath, 0, len(paths))
	for _, p := range paths {
		sp, err := model.NewStagedPath(p)
		if err != nil {
			return nil, err
		}
		staged = append(staged, sp)
	}
	return staged, nil
}

// exhausted builds the error returned when no search succeeded.
func (s *Solver) exhausted(retry *ResolutionError) error {
	code := ErrCodeOutsideCatalysts
	if retry != nil {
		code = retry.Code
	}

	switch code {
	case ErrCodeOutsideRecipes:
		return newResolutionError(code, "no path within %d recipes", s.config.MaximumRecipes)
	case ErrCodeOutsideCount:
		return newResolutionError(code, "no path within count %d", s.config.MaximumCount)
	default:
		return newResolutionError(ErrCodeOutsideCatalysts, "no path with %d to %d catalysts",
			s.config.MinimumCatalysts, s.config.MaximumCatalysts)
	}
}

// keepMinimal keeps the shortest paths, deduplicated and sorted.
func (s *Solver) keepMinimal(results []model.StagedPath) []model.StagedPath {
	key := func(sp model.StagedPath) [2]int {
		if s.config.SortBy == SortByRecipes {
			return [2]int{sp.RecipeCount(), sp.StageCount()}
		}
		return [2]int{sp.StageCount(), sp.RecipeCount()}
	}

	best := key(results[0])
	for _, sp := range results[1:] {
		if k := key(sp); k[0] < best[0] || (k[0] == best[0] && k[1] < best[1]) {
			best = k
		}
	}

	kept := make([]model.StagedPath, 0, len(results))
	for _, sp := range results {
		if key(sp) == best {
			kept = append(kept, sp)
		}
	}

	slices.SortFunc(kept, model.StagedPath.Compare)
	return slices.CompactFunc(kept, model.StagedPath.Equal)
}
