package model

import "slices"

// Path converts Count·Source + Catalysts into Count·Target + Catalysts by
// applying Recipes in order.
type Path struct {
	Source    Set
	Target    Set
	Count     int
	Catalysts Set
	Recipes   []Recipe
}

// count returns the repetition factor, treating unset as 1.
func (p Path) count() int {
	if p.Count < 1 {
		return 1
	}
	return p.Count
}

// Start returns the state the recipes are applied to.
func (p Path) Start() Set {
	return p.Source.Scale(p.count()).Add(p.Catalysts)
}

// Goal returns the state the recipes must reach.
func (p Path) Goal() Set {
	return p.Target.Scale(p.count()).Add(p.Catalysts)
}

// Compare orders paths by source, target, count, catalysts, then recipes.
func (p Path) Compare(other Path) int {
	if c := p.Source.Compare(other.Source); c != 0 {
		return c
	}
	if c := p.Target.Compare(other.Target); c != 0 {
		return c
	}
	switch {
	case p.count() < other.count():
		return -1
	case p.count() > other.count():
		return 1
	}
	if c := p.Catalysts.Compare(other.Catalysts); c != 0 {
		return c
	}
	return compareRecipes(p.Recipes, other.Recipes)
}

// Equal reports whether both paths are identical.
func (p Path) Equal(other Path) bool {
	return p.Compare(other) == 0
}

// Stage is a group of recipes which only depend on what was available
// before the stage started.
type Stage struct {
	Recipes []Recipe
}

// Input returns the sum of the inputs of the stage's recipes.
func (s Stage) Input() Set { return SumInputs(s.Recipes) }

// Output returns the sum of the outputs of the stage's recipes.
func (s Stage) Output() Set { return SumOutputs(s.Recipes) }

// StagedPath is a Path whose recipes are partitioned into stages.
//
// Boundaries holds the index in Path.Recipes at which each stage after the
// first starts, in increasing order. A path with recipes and no boundaries
// has a single stage; a path without recipes has none.
type StagedPath struct {
	Path
	Boundaries []int
}

// StageCount returns the number of stages.
func (sp StagedPath) StageCount() int {
	if len(sp.Recipes) == 0 {
		return 0
	}
	return len(sp.Boundaries) + 1
}

// RecipeCount returns the number of recipes, across all stages.
func (sp StagedPath) RecipeCount() int {
	return len(sp.Recipes)
}

// ValidBoundaries reports whether the boundaries split the recipes into
// non-empty stages. Stages panics on paths for which this is false.
func (sp StagedPath) ValidBoundaries() bool {
	previous := 0
	for _, b := range sp.Boundaries {
		if b <= previous || b >= len(sp.Recipes) {
			return false
		}
		previous = b
	}
	return true
}

// Stages splits the recipes according to the boundaries.
func (sp StagedPath) Stages() []Stage {
	if len(sp.Recipes) == 0 {
		return nil
	}
	stages := make([]Stage, 0, len(sp.Boundaries)+1)
	start := 0
	for _, b := range sp.Boundaries {
		stages = append(stages, Stage{Recipes: sp.Recipes[start:b]})
		start = b
	}
	return append(stages, Stage{Recipes: sp.Recipes[start:]})
}

// Compare orders staged paths by path, then by boundaries.
func (sp StagedPath) Compare(other StagedPath) int {
	if c := sp.Path.Compare(other.Path); c != 0 {
		return c
	}
	return slices.Compare(sp.Boundaries, other.Boundaries)
}

// Equal reports whether both staged paths are identical.
func (sp StagedPath) Equal(other StagedPath) bool {
	return sp.Compare(other) == 0
}

// NewStagedPath partitions the recipes of path into stages.
//
// Each recipe, in path order, joins the earliest stage from which its input
// stays available through every later stage, that is the input is a subset
// of entering(t) - input(t) for that stage t and all stages after it. If even
// the last stage does not qualify a new stage is appended. Recipes are then
// sorted by index within their stage.
//
// A StagingError is returned if a recipe's input is never available, which
// means path is not a valid replay.
func NewStagedPath(path Path) (StagedPath, error) {
	type stage struct {
		entering Set
		input    Set
		output   Set
		recipes  []Recipe
	}

	var stages []*stage

	next := func() Set {
		if len(stages) == 0 {
			return path.Start()
		}
		last := stages[len(stages)-1]
		return last.entering.Sub(last.input).Add(last.output)
	}

	for i, r := range path.Recipes {
		at := -1
		for t := len(stages) - 1; t >= 0; t-- {
			free := stages[t].entering.Sub(stages[t].input)
			if !r.Input.IsSubsetOf(free) {
				break
			}
			at = t
		}

		if at < 0 {
			entering := next()
			if !r.Input.IsSubsetOf(entering) {
				return StagedPath{}, &StagingError{Index: i, State: entering, Input: r.Input}
			}
			stages = append(stages, &stage{entering: entering})
			at = len(stages) - 1
		}

		s := stages[at]
		s.input = s.input.Add(r.Input)
		s.output = s.output.Add(r.Output)
		s.recipes = append(s.recipes, r)
		for _, later := range stages[at+1:] {
			later.entering = later.entering.Apply(r.Input, r.Output)
		}
	}

	staged := StagedPath{Path: path}
	staged.Recipes = nil
	for t, s := range stages {
		if t > 0 {
			staged.Boundaries = append(staged.Boundaries, len(staged.Recipes))
		}
		slices.SortStableFunc(s.recipes, Recipe.Compare)
		staged.Recipes = append(staged.Recipes, s.recipes...)
	}
	return staged, nil
}
