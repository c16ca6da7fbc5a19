package model

import (
	"fmt"
	"strings"
	"unicode"
)

// reservedRunes cannot be used as abbreviations since the grammar uses them.
const reservedRunes = "-<>=|/+"

// RecipeSpec declares a recipe by the abbreviations of its input and output,
// eg. {Input: "EO", Output: "LG"}.
type RecipeSpec struct {
	Input  string
	Output string
}

// Family is an immutable alphabet of arcospheres plus the recipes over it.
//
// A Family is safe for concurrent use: nothing mutates it after NewFamily.
type Family struct {
	name       string
	tokens     []Arcosphere
	byAbbr     map[rune]Token
	recipes    []Recipe
	foldings   []Recipe
	inversions []Recipe
	negatives  Set
	positives  Set
	polarized  bool
}

// NewFamily validates a family definition.
//
// Tokens take their index from their position in tokens. Either every token
// has a polarity or none has; in the latter case every recipe is a folding.
// With polarities, a recipe which neither preserves nor swaps the polarity
// counts is rejected.
func NewFamily(name string, tokens []Arcosphere, recipes []RecipeSpec) (*Family, error) {
	if len(tokens) == 0 {
		return nil, &FamilyError{Family: name, Field: "arcospheres", Message: "at least one arcosphere is required"}
	}
	if len(tokens) > MaxTokens {
		return nil, &FamilyError{Family: name, Field: "arcospheres", Message: fmt.Sprintf("at most %d arcospheres are supported, got %d", MaxTokens, len(tokens))}
	}

	f := &Family{
		name:   name,
		tokens: make([]Arcosphere, len(tokens)),
		byAbbr: make(map[rune]Token, len(tokens)),
	}
	copy(f.tokens, tokens)

	neutral := 0
	for i, a := range f.tokens {
		if unicode.IsSpace(a.Abbr) || unicode.IsDigit(a.Abbr) || strings.ContainsRune(reservedRunes, a.Abbr) || a.Abbr == 0 {
			return nil, &FamilyError{Family: name, Field: "arcospheres", Message: fmt.Sprintf("abbreviation %q is reserved", a.Abbr)}
		}
		if _, dup := f.byAbbr[a.Abbr]; dup {
			return nil, &FamilyError{Family: name, Field: "arcospheres", Message: fmt.Sprintf("duplicate abbreviation %q", a.Abbr)}
		}
		f.byAbbr[a.Abbr] = Token(i)

		switch a.Polarity {
		case Negative:
			f.negatives.Insert(Token(i))
		case Positive:
			f.positives.Insert(Token(i))
		default:
			neutral++
		}
	}
	if neutral != 0 && neutral != len(f.tokens) {
		return nil, &FamilyError{Family: name, Field: "arcospheres", Message: "either all or none of the arcospheres must have a polarity"}
	}
	f.polarized = neutral == 0

	seen := make(map[[2]Set]int, len(recipes))
	for i, spec := range recipes {
		input, err := f.ParseSet(spec.Input)
		if err != nil {
			return nil, &FamilyError{Family: name, Field: fmt.Sprintf("recipes[%d].input", i), Message: err.Error()}
		}
		output, err := f.ParseSet(spec.Output)
		if err != nil {
			return nil, &FamilyError{Family: name, Field: fmt.Sprintf("recipes[%d].output", i), Message: err.Error()}
		}
		if input.IsEmpty() || input.Len() != output.Len() {
			return nil, &FamilyError{Family: name, Field: fmt.Sprintf("recipes[%d]", i), Message: fmt.Sprintf("%s -> %s does not preserve the number of arcospheres", spec.Input, spec.Output)}
		}
		if j, dup := seen[[2]Set{input, output}]; dup {
			return nil, &FamilyError{Family: name, Field: fmt.Sprintf("recipes[%d]", i), Message: fmt.Sprintf("duplicate of recipes[%d]", j)}
		}
		seen[[2]Set{input, output}] = i

		kind, ok := f.classify(input, output)
		if !ok {
			return nil, &FamilyError{Family: name, Field: fmt.Sprintf("recipes[%d]", i), Message: fmt.Sprintf("%s -> %s neither preserves nor swaps polarities", spec.Input, spec.Output)}
		}

		recipe := Recipe{Index: i, Kind: kind, Input: input, Output: output}
		f.recipes = append(f.recipes, recipe)
		if kind == Inversion {
			f.inversions = append(f.inversions, recipe)
		} else {
			f.foldings = append(f.foldings, recipe)
		}
	}

	return f, nil
}

// MustFamily is like NewFamily but panics on error.
// Use only for built-in families whose definition is known to be valid.
func MustFamily(name string, tokens []Arcosphere, recipes []RecipeSpec) *Family {
	f, err := NewFamily(name, tokens, recipes)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Family) classify(input, output Set) (RecipeKind, bool) {
	if !f.polarized {
		return Folding, true
	}
	inNeg, inPos := f.CountNegatives(input), f.CountPositives(input)
	outNeg, outPos := f.CountNegatives(output), f.CountPositives(output)
	switch {
	case inNeg == outNeg && inPos == outPos:
		return Folding, true
	case inNeg == outPos && inPos == outNeg:
		return Inversion, true
	default:
		return Folding, false
	}
}

// Name returns the family name.
func (f *Family) Name() string { return f.name }

// Dimension returns the number of arcospheres.
func (f *Family) Dimension() int { return len(f.tokens) }

// Polarized reports whether the arcospheres carry a polarity.
func (f *Family) Polarized() bool { return f.polarized }

// Token returns the description of t. Panics if t is out of range.
func (f *Family) Token(t Token) Arcosphere { return f.tokens[t] }

// Tokens returns all arcosphere descriptions, by index.
func (f *Family) Tokens() []Arcosphere {
	out := make([]Arcosphere, len(f.tokens))
	copy(out, f.tokens)
	return out
}

// Lookup returns the token abbreviated abbr.
func (f *Family) Lookup(abbr rune) (Token, bool) {
	t, ok := f.byAbbr[abbr]
	return t, ok
}

// RecipeCount returns the number of recipes.
func (f *Family) RecipeCount() int { return len(f.recipes) }

// Recipe returns the recipe at index i. Panics if i is out of range.
func (f *Family) Recipe(i int) Recipe { return f.recipes[i] }

// Recipes returns every recipe, by index. The slice must not be modified.
func (f *Family) Recipes() []Recipe { return f.recipes }

// Foldings returns the polarity-preserving recipes. The slice must not be modified.
func (f *Family) Foldings() []Recipe { return f.foldings }

// Inversions returns the polarity-swapping recipes. The slice must not be modified.
func (f *Family) Inversions() []Recipe { return f.inversions }

// FindRecipe returns the recipe with exactly this input and output.
func (f *Family) FindRecipe(input, output Set) (Recipe, error) {
	for _, r := range f.recipes {
		if r.Input == input && r.Output == output {
			return r, nil
		}
	}
	return Recipe{}, ErrUnknownRecipe
}

// Contains reports whether r is one of the family's recipes.
func (f *Family) Contains(r Recipe) bool {
	return r.Index >= 0 && r.Index < len(f.recipes) && f.recipes[r.Index] == r
}

// CountNegatives returns the number of negative arcospheres in s.
func (f *Family) CountNegatives(s Set) int {
	return countMasked(s, f.negatives)
}

// CountPositives returns the number of positive arcospheres in s.
func (f *Family) CountPositives(s Set) int {
	return countMasked(s, f.positives)
}

func countMasked(s, mask Set) int {
	n := 0
	for i, m := range mask.counts {
		if m > 0 {
			n += int(s.counts[i])
		}
	}
	return n
}
