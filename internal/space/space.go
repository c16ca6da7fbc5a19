// Package space defines the Space Exploration arcosphere family.
//
// Eight arcospheres, four of each polarity, connected by eight foldings and
// the two inversions GOTZ -> ELPX and ELPX -> GOTZ.
package space

import "github.com/roach88/arcosphere/internal/model"

// Name is the name of the family.
const Name = "space-exploration"

// Tokens of the family, by index.
const (
	Epsilon model.Token = iota
	Gamma
	Lambda
	Omega
	Phi
	Theta
	Xi
	Zeta
)

var arcospheres = []model.Arcosphere{
	{Abbr: 'E', Name: "Epsilon", Fancy: "ε", Polarity: model.Negative},
	{Abbr: 'G', Name: "Gamma", Fancy: "γ", Polarity: model.Positive},
	{Abbr: 'L', Name: "Lambda", Fancy: "λ", Polarity: model.Negative},
	{Abbr: 'O', Name: "Omega", Fancy: "ω", Polarity: model.Positive},
	{Abbr: 'P', Name: "Phi", Fancy: "φ", Polarity: model.Negative},
	{Abbr: 'T', Name: "Theta", Fancy: "θ", Polarity: model.Positive},
	{Abbr: 'X', Name: "Xi", Fancy: "ξ", Polarity: model.Negative},
	{Abbr: 'Z', Name: "Zeta", Fancy: "ζ", Polarity: model.Positive},
}

var recipes = []model.RecipeSpec{
	{Input: "GOTZ", Output: "ELPX"},
	{Input: "ELPX", Output: "GOTZ"},
	{Input: "EO", Output: "LG"},
	{Input: "ET", Output: "PO"},
	{Input: "LO", Output: "XT"},
	{Input: "LT", Output: "EZ"},
	{Input: "PG", Output: "XO"},
	{Input: "PZ", Output: "EG"},
	{Input: "XG", Output: "LZ"},
	{Input: "XZ", Output: "PT"},
}

var exploration = model.MustFamily(Name, arcospheres, recipes)

// Exploration returns the Space Exploration family.
func Exploration() *model.Family {
	return exploration
}

// Definition returns the raw tokens and recipes of the family, for callers
// building a variant of it.
func Definition() ([]model.Arcosphere, []model.RecipeSpec) {
	tokens := make([]model.Arcosphere, len(arcospheres))
	copy(tokens, arcospheres)
	specs := make([]model.RecipeSpec, len(recipes))
	copy(specs, recipes)
	return tokens, specs
}
