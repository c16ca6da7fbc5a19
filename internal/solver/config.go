package solver

import (
	"fmt"
	"math"
)

// SortBy selects which length is minimized first when keeping results.
type SortBy int

const (
	// SortByStages keeps the fewest stages, then the fewest recipes.
	SortByStages SortBy = iota
	// SortByRecipes keeps the fewest recipes, then the fewest stages.
	SortByRecipes
)

// String returns "stages" or "recipes".
func (s SortBy) String() string {
	if s == SortByRecipes {
		return "recipes"
	}
	return "stages"
}

// ParseSortBy maps "stages" or "recipes" to a SortBy.
func ParseSortBy(s string) (SortBy, error) {
	switch s {
	case "", "stages":
		return SortByStages, nil
	case "recipes":
		return SortByRecipes, nil
	default:
		return SortByStages, fmt.Errorf("invalid sort order %q: must be stages or recipes", s)
	}
}

// Config bounds the exploration.
type Config struct {
	// MinimumCatalysts is the first catalyst set size tried.
	MinimumCatalysts int
	// MaximumCatalysts is the last catalyst set size tried, inclusive.
	MaximumCatalysts int
	// ExtraCatalysts is the number of further sizes explored once a size
	// produced a path.
	ExtraCatalysts int
	// MaximumCount is the largest repetition count tried.
	MaximumCount int
	// MaximumRecipes is the search depth, in recipes.
	MaximumRecipes int
	// MaximumInversions caps how many inversion applications a count may
	// require.
	MaximumInversions int
	// SortBy selects the tie-break between stages and recipes.
	SortBy SortBy
}

// DefaultConfig returns bounds sufficient for every Space Exploration recipe.
func DefaultConfig() Config {
	return Config{
		MinimumCatalysts:  0,
		MaximumCatalysts:  8,
		ExtraCatalysts:    0,
		MaximumCount:      8,
		MaximumRecipes:    10,
		MaximumInversions: 1,
		SortBy:            SortByStages,
	}
}

// Validate checks that the bounds are consistent.
func (c Config) Validate() error {
	switch {
	case c.MinimumCatalysts < 0:
		return fmt.Errorf("minimum catalysts must be non-negative, got %d", c.MinimumCatalysts)
	case c.MaximumCatalysts < c.MinimumCatalysts:
		return fmt.Errorf("maximum catalysts (%d) must be at least minimum catalysts (%d)", c.MaximumCatalysts, c.MinimumCatalysts)
	case c.MaximumCatalysts > math.MaxUint8:
		return fmt.Errorf("maximum catalysts must be at most %d, got %d", math.MaxUint8, c.MaximumCatalysts)
	case c.ExtraCatalysts < 0:
		return fmt.Errorf("extra catalysts must be non-negative, got %d", c.ExtraCatalysts)
	case c.MaximumCount < 1 || c.MaximumCount > math.MaxUint8:
		return fmt.Errorf("maximum count must be between 1 and %d, got %d", math.MaxUint8, c.MaximumCount)
	case c.MaximumRecipes < 1:
		return fmt.Errorf("maximum recipes must be positive, got %d", c.MaximumRecipes)
	case c.MaximumInversions < 1:
		return fmt.Errorf("maximum inversions must be positive, got %d", c.MaximumInversions)
	case c.SortBy != SortByStages && c.SortBy != SortByRecipes:
		return fmt.Errorf("invalid sort order %d", c.SortBy)
	}
	return nil
}
