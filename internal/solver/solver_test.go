package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcosphere/internal/executor"
	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/space"
	"github.com/roach88/arcosphere/internal/verifier"
)

func newSolver(t *testing.T, f *model.Family, config Config, opts ...Option) *Solver {
	t.Helper()
	s, err := New(f, config, opts...)
	require.NoError(t, err)
	return s
}

func solve(t *testing.T, s *Solver, source, target string) ([]model.StagedPath, error) {
	t.Helper()
	f := s.Family()
	src, err := f.ParseSet(source)
	require.NoError(t, err)
	tgt, err := f.ParseSet(target)
	require.NoError(t, err)
	return s.Solve(context.Background(), src, tgt)
}

func format(f *model.Family, paths []model.StagedPath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = f.FormatStagedPath(p)
	}
	return out
}

func requireVerified(t *testing.T, f *model.Family, paths []model.StagedPath) {
	t.Helper()
	v := verifier.New(f)
	for _, p := range paths {
		require.NoError(t, v.VerifyStaged(p), f.FormatStagedPath(p))
		require.NoError(t, v.VerifyPath(p.Path), f.FormatStagedPath(p))
	}
}

func requireResolution(t *testing.T, err error, code ResolutionErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, HasCode(err, code), "got %v, want %s", err, code)
}

func TestSolveIdentity(t *testing.T) {
	f := space.Exploration()
	paths, err := solve(t, newSolver(t, f, DefaultConfig()), "EL", "EL")
	require.NoError(t, err)

	require.Len(t, paths, 1)
	p := paths[0]
	assert.Equal(t, "EL", f.FormatSet(p.Source))
	assert.Equal(t, "EL", f.FormatSet(p.Target))
	assert.Equal(t, 1, p.Count)
	assert.True(t, p.Catalysts.IsEmpty())
	assert.Empty(t, p.Recipes)
	assert.Equal(t, 0, p.StageCount())
	requireVerified(t, f, paths)
}

func TestSolveSingleRecipe(t *testing.T) {
	f := space.Exploration()
	paths, err := solve(t, newSolver(t, f, DefaultConfig()), "EO", "LG")
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, []string{"EO -> LG => EO -> LG"}, format(f, paths))
	assert.Equal(t, []model.Recipe{f.Recipe(2)}, paths[0].Recipes)
	assert.True(t, paths[0].Catalysts.IsEmpty())
	requireVerified(t, f, paths)
}

func TestSolveWithOneCatalyst(t *testing.T) {
	f := space.Exploration()
	paths, err := solve(t, newSolver(t, f, DefaultConfig()), "EP", "LX")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"EP -> LX + G => PG -> XO | EO -> LG",
		"EP -> LX + O => EO -> LG | PG -> XO",
	}, format(f, paths))
	requireVerified(t, f, paths)
}

func TestSolveIsDeterministic(t *testing.T) {
	f := space.Exploration()

	sequential := newSolver(t, f, DefaultConfig(), WithExecutor(executor.NewSequential()))
	parallel := newSolver(t, f, DefaultConfig(), WithExecutor(executor.NewParallel(4)))

	for _, tc := range [][2]string{{"EP", "LX"}, {"EO", "LG"}, {"EL", "EL"}} {
		first, err := solve(t, sequential, tc[0], tc[1])
		require.NoError(t, err)
		second, err := solve(t, sequential, tc[0], tc[1])
		require.NoError(t, err)
		third, err := solve(t, parallel, tc[0], tc[1])
		require.NoError(t, err)

		assert.Equal(t, format(f, first), format(f, second), "%s -> %s", tc[0], tc[1])
		assert.Equal(t, format(f, first), format(f, third), "%s -> %s", tc[0], tc[1])
		requireVerified(t, f, first)
	}
}

func TestSolveExtraCatalystsFindsSingleStage(t *testing.T) {
	f := space.Exploration()
	config := DefaultConfig()
	config.ExtraCatalysts = 1

	paths, err := solve(t, newSolver(t, f, config), "EP", "LX")
	require.NoError(t, err)

	assert.Equal(t, []string{"EP -> LX + GO => EO -> LG // PG -> XO"}, format(f, paths))
	requireVerified(t, f, paths)
}

func TestSolveSortByRecipes(t *testing.T) {
	f := space.Exploration()
	config := DefaultConfig()
	config.SortBy = SortByRecipes

	paths, err := solve(t, newSolver(t, f, config), "EP", "LX")
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	for _, p := range paths {
		assert.Equal(t, 2, p.RecipeCount())
	}
}

func TestSolvePreservation(t *testing.T) {
	_, err := solve(t, newSolver(t, space.Exploration(), DefaultConfig()), "EP", "L")
	requireResolution(t, err, ErrCodePreservation)
	assert.True(t, IsDefinitive(err))
	assert.False(t, IsRetryable(err))
}

func TestSolveOutsideCatalysts(t *testing.T) {
	config := DefaultConfig()
	config.MaximumCatalysts = 0

	_, err := solve(t, newSolver(t, space.Exploration(), config), "EP", "LX")
	requireResolution(t, err, ErrCodeOutsideCatalysts)
	assert.True(t, IsRetryable(err))
}

func TestSearchCatalystOverflowIsRetryable(t *testing.T) {
	f := space.Exploration()
	srch := &search{
		recipes:       f.Recipes(),
		source:        model.SetOf(space.Epsilon).Scale(255),
		target:        model.SetOf(space.Epsilon).Scale(255),
		count:         1,
		catalysts:     model.SetOf(space.Epsilon),
		maxHalfRounds: 4,
	}

	paths, _, err := srch.run()
	assert.Empty(t, paths)
	requireResolution(t, err, ErrCodeOutsideCatalysts)
}

func TestSolveSkipsOverflowingCatalysts(t *testing.T) {
	f := space.Exploration()
	config := DefaultConfig()
	config.MinimumCatalysts = 1
	config.MaximumCatalysts = 1

	source := model.SetOf(space.Epsilon).Scale(255).Add(model.SetOf(space.Omega))
	target := model.SetOf(space.Epsilon).Scale(254).Add(model.SetOf(space.Lambda, space.Gamma))

	paths, err := newSolver(t, f, config).Solve(context.Background(), source, target)
	require.NoError(t, err)
	require.Len(t, paths, 7)
	for _, p := range paths {
		assert.False(t, p.Catalysts.Contains(space.Epsilon), f.FormatStagedPath(p))
		assert.Equal(t, 1, p.RecipeCount())
	}
	requireVerified(t, f, paths)
}

func TestSolveOutsideRecipes(t *testing.T) {
	config := DefaultConfig()
	config.MaximumCatalysts = 1
	config.MaximumRecipes = 1

	_, err := solve(t, newSolver(t, space.Exploration(), config), "EP", "LX")
	requireResolution(t, err, ErrCodeOutsideRecipes)
	assert.True(t, IsRetryable(err))
}

func TestSolveCancelled(t *testing.T) {
	f := space.Exploration()
	s := newSolver(t, f, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src, _ := f.ParseSet("EP")
	tgt, _ := f.ParseSet("LX")
	_, err := s.Solve(ctx, src, tgt)
	assert.ErrorIs(t, err, context.Canceled)
}

// polarFamily has a single negative and a single positive arcosphere.
func polarFamily(t *testing.T, recipes ...model.RecipeSpec) *model.Family {
	t.Helper()
	f, err := model.NewFamily("polar", []model.Arcosphere{
		{Abbr: 'a', Name: "Anion", Polarity: model.Negative},
		{Abbr: 'c', Name: "Cation", Polarity: model.Positive},
	}, recipes)
	require.NoError(t, err)
	return f
}

func TestSolveInversionRespectsMaximumInversions(t *testing.T) {
	f := polarFamily(t, model.RecipeSpec{Input: "c", Output: "a"})

	_, err := solve(t, newSolver(t, f, DefaultConfig()), "cc", "aa")
	requireResolution(t, err, ErrCodeOutsideCount)
	assert.True(t, IsRetryable(err))

	config := DefaultConfig()
	config.MaximumInversions = 2
	paths, err := solve(t, newSolver(t, f, config), "cc", "aa")
	require.NoError(t, err)

	assert.Equal(t, []string{"cc -> aa => c -> a // c -> a"}, format(f, paths))
	requireVerified(t, f, paths)
}

func TestSolveInversionScalesCount(t *testing.T) {
	f := polarFamily(t, model.RecipeSpec{Input: "cc", Output: "aa"})

	paths, err := solve(t, newSolver(t, f, DefaultConfig()), "c", "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"c -> a x2 => cc -> aa"}, format(f, paths))
	assert.Equal(t, 2, paths[0].Count)
	requireVerified(t, f, paths)

	config := DefaultConfig()
	config.MaximumCount = 1
	_, err = solve(t, newSolver(t, f, config), "c", "a")
	requireResolution(t, err, ErrCodeOutsideCount)
}

func TestSolveNotWithInversions(t *testing.T) {
	f := polarFamily(t, model.RecipeSpec{Input: "a", Output: "c"})

	_, err := solve(t, newSolver(t, f, DefaultConfig()), "c", "a")
	requireResolution(t, err, ErrCodeNotWithInversions)
	assert.True(t, IsDefinitive(err))
}

func TestSolveNotWithFoldings(t *testing.T) {
	f, err := model.NewFamily("lopsided", []model.Arcosphere{
		{Abbr: 'a', Polarity: model.Negative},
		{Abbr: 'b', Polarity: model.Negative},
		{Abbr: 'c', Polarity: model.Positive},
	}, []model.RecipeSpec{{Input: "c", Output: "a"}})
	require.NoError(t, err)

	_, err = solve(t, newSolver(t, f, DefaultConfig()), "a", "b")
	requireResolution(t, err, ErrCodeNotWithFoldings)
	assert.True(t, IsDefinitive(err))
}

type recordingObserver struct {
	tasks []TaskReport
	sizes [][3]int
}

func (r *recordingObserver) TaskCompleted(report TaskReport) {
	r.tasks = append(r.tasks, report)
}

func (r *recordingObserver) SizeExplored(size, tasks, found int) {
	r.sizes = append(r.sizes, [3]int{size, tasks, found})
}

func TestSolveNotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	s := newSolver(t, space.Exploration(), DefaultConfig(), WithObserver(obs))

	_, err := solve(t, s, "EP", "LX")
	require.NoError(t, err)

	require.Len(t, obs.sizes, 2)
	assert.Equal(t, [3]int{0, 1, 0}, obs.sizes[0])
	assert.Equal(t, 1, obs.sizes[1][0])
	assert.Equal(t, 8, obs.sizes[1][1])
	assert.GreaterOrEqual(t, obs.sizes[1][2], 2)
	require.Len(t, obs.tasks, 9)

	found := 0
	for _, report := range obs.tasks {
		assert.Equal(t, 1, report.Count)
		if report.Err == nil {
			found += report.Paths
			assert.Positive(t, report.HalfRounds)
			assert.Positive(t, report.States)
		}
	}
	assert.Equal(t, obs.sizes[1][2], found)
}

func TestNewValidatesConfig(t *testing.T) {
	config := DefaultConfig()
	config.MaximumCatalysts = -1

	_, err := New(space.Exploration(), config)
	assert.Error(t, err)

	_, err = New(nil, DefaultConfig())
	assert.Error(t, err)
}
