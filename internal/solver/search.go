package solver

import (
	"slices"

	"github.com/roach88/arcosphere/internal/model"
)

// step records how a state was first reached. Roots have no recipe.
type step struct {
	recipe model.Recipe
	root   bool
}

// side is one half of the bidirectional search.
type side struct {
	forward  bool
	known    map[model.Set]step
	frontier []model.Set
}

func newSide(root model.Set, forward bool) *side {
	return &side{
		forward:  forward,
		known:    map[model.Set]step{root: {root: true}},
		frontier: []model.Set{root},
	}
}

// advance applies every recipe once to every frontier state, in order, and
// returns the new states already known to the opposite side.
//
// A state is kept only the first time it is reached, so the predecessor of
// each state is the first recipe, by frontier then recipe order, producing it.
func (s *side) advance(recipes []model.Recipe, opposite map[model.Set]step) []model.Set {
	var next []model.Set
	for _, state := range s.frontier {
		for _, r := range recipes {
			from, to := r.Input, r.Output
			if !s.forward {
				from, to = r.Output, r.Input
			}
			if !from.IsSubsetOf(state) {
				continue
			}
			// States past 255 of one arcosphere are not representable.
			out, err := state.Sub(from).CheckedAdd(to)
			if err != nil {
				continue
			}
			if _, seen := s.known[out]; seen {
				continue
			}
			s.known[out] = step{recipe: r}
			next = append(next, out)
		}
	}

	slices.SortFunc(next, model.Set.Compare)
	s.frontier = next

	var meetings []model.Set
	for _, state := range next {
		if _, ok := opposite[state]; ok {
			meetings = append(meetings, state)
		}
	}
	return meetings
}

// search looks for the shortest recipe sequences from
// count·source + catalysts to count·target + catalysts.
type search struct {
	recipes        []model.Recipe
	source, target model.Set
	count          int
	catalysts      model.Set
	maxHalfRounds  int
}

// searchStats describes how much of the state space a search visited.
type searchStats struct {
	halfRounds int
	states     int
}

func (s *search) run() ([]model.Path, searchStats, error) {
	start, err := scaleAdd(s.source, s.count, s.catalysts)
	if err != nil {
		return nil, searchStats{}, newResolutionError(ErrCodeOutsideCatalysts, "catalysts overflow the start: %v", err)
	}
	goal, err := scaleAdd(s.target, s.count, s.catalysts)
	if err != nil {
		return nil, searchStats{}, newResolutionError(ErrCodeOutsideCatalysts, "catalysts overflow the goal: %v", err)
	}

	if start == goal {
		return []model.Path{s.path(nil)}, searchStats{}, nil
	}

	fwd := newSide(start, true)
	bwd := newSide(goal, false)

	var stats searchStats

	for h := 0; h < s.maxHalfRounds; h++ {
		active, opposite := fwd, bwd
		if h%2 == 1 {
			active, opposite = bwd, fwd
		}
		if len(active.frontier) == 0 {
			active, opposite = opposite, active
		}
		if len(active.frontier) == 0 {
			stats.states = len(fwd.known) + len(bwd.known)
			return nil, stats, newResolutionError(ErrCodeOutsideCatalysts, "no path with catalysts")
		}

		stats.halfRounds++
		meetings := active.advance(s.recipes, opposite.known)
		if len(meetings) == 0 {
			continue
		}

		paths := make([]model.Path, 0, len(meetings))
		for _, m := range meetings {
			paths = append(paths, s.path(stitch(m, fwd.known, bwd.known)))
		}
		stats.states = len(fwd.known) + len(bwd.known)
		return paths, stats, nil
	}

	stats.states = len(fwd.known) + len(bwd.known)
	if len(fwd.frontier) == 0 && len(bwd.frontier) == 0 {
		return nil, stats, newResolutionError(ErrCodeOutsideCatalysts, "no path with catalysts")
	}
	return nil, stats, newResolutionError(ErrCodeOutsideRecipes, "no path within %d recipes", s.maxHalfRounds)
}

// scaleAdd returns n·set + extra.
func scaleAdd(set model.Set, n int, extra model.Set) (model.Set, error) {
	scaled, err := set.CheckedScale(n)
	if err != nil {
		return model.Set{}, err
	}
	return scaled.CheckedAdd(extra)
}

func (s *search) path(recipes []model.Recipe) model.Path {
	return model.Path{
		Source:    s.source,
		Target:    s.target,
		Count:     s.count,
		Catalysts: s.catalysts,
		Recipes:   recipes,
	}
}

// stitch walks from meeting back to the forward root, then on to the
// backward root, collecting recipes in application order.
func stitch(meeting model.Set, forward, backward map[model.Set]step) []model.Recipe {
	var recipes []model.Recipe

	for state := meeting; ; {
		st, ok := forward[state]
		if !ok || st.root {
			break
		}
		recipes = append(recipes, st.recipe)
		state = state.Apply(st.recipe.Output, st.recipe.Input)
	}
	slices.Reverse(recipes)

	for state := meeting; ; {
		st, ok := backward[state]
		if !ok || st.root {
			break
		}
		recipes = append(recipes, st.recipe)
		state = state.Apply(st.recipe.Input, st.recipe.Output)
	}

	return recipes
}
