package model

// RecipeKind tells whether a recipe preserves or swaps polarities.
type RecipeKind int

const (
	// Folding recipes preserve the number of negative and of positive arcospheres.
	Folding RecipeKind = iota
	// Inversion recipes swap the number of negative and positive arcospheres.
	Inversion
)

// String returns the lower-case kind name.
func (k RecipeKind) String() string {
	if k == Inversion {
		return "inversion"
	}
	return "folding"
}

// Recipe transforms Input into Output, both of the same size.
//
// Recipes are only ever created by a Family; Index is their position in
// Family.Recipes. Two recipes of the same family are equal iff their input
// and output are equal.
type Recipe struct {
	Index  int
	Kind   RecipeKind
	Input  Set
	Output Set
}

// IsInversion reports whether the recipe swaps polarities.
func (r Recipe) IsInversion() bool {
	return r.Kind == Inversion
}

// Compare orders recipes by their index in the family.
func (r Recipe) Compare(other Recipe) int {
	switch {
	case r.Index < other.Index:
		return -1
	case r.Index > other.Index:
		return 1
	}
	if c := r.Input.Compare(other.Input); c != 0 {
		return c
	}
	return r.Output.Compare(other.Output)
}

// compareRecipes orders recipe lists lexicographically, shorter prefix first.
func compareRecipes(a, b []Recipe) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// SumInputs returns the union of the inputs of recipes.
func SumInputs(recipes []Recipe) Set {
	var s Set
	for _, r := range recipes {
		s = s.Add(r.Input)
	}
	return s
}

// SumOutputs returns the union of the outputs of recipes.
func SumOutputs(recipes []Recipe) Set {
	var s Set
	for _, r := range recipes {
		s = s.Add(r.Output)
	}
	return s
}
