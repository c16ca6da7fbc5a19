package solver

import "github.com/roach88/arcosphere/internal/model"

// catalystSets enumerates every multiset of exactly size tokens over the
// first dimension tokens, each once, by non-decreasing token index.
// Size 0 yields the single empty set.
func catalystSets(dimension, size int) []model.Set {
	var out []model.Set

	var fill func(from, remaining int, current model.Set)
	fill = func(from, remaining int, current model.Set) {
		if remaining == 0 {
			out = append(out, current)
			return
		}
		for t := from; t < dimension; t++ {
			next := current
			next.Insert(model.Token(t))
			fill(t, remaining-1, next)
		}
	}
	fill(0, size, model.Set{})

	return out
}

// gcd returns the greatest common divisor of two positive integers.
func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// repetitionCounts lists the counts for which count·delta is a multiple of
// perApplication, with at most maxApplications applications, up to maxCount.
// Both deltas are absolute values.
func repetitionCounts(perApplication, delta, maxCount, maxApplications int) []int {
	minimal := perApplication / gcd(perApplication, delta)

	var counts []int
	for c := minimal; c <= maxCount; c += minimal {
		if c*delta/perApplication > maxApplications {
			break
		}
		counts = append(counts, c)
	}
	return counts
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
