package model

import "math"

// MaxTokens is the widest alphabet a family may declare.
const MaxTokens = 16

// Set is a multiset of arcospheres.
//
// The zero value is the empty set. Sets are values: every operation except
// Insert and Remove returns a new Set and leaves the receiver untouched.
type Set struct {
	counts [MaxTokens]uint8
}

// SetOf builds a set from a list of tokens, counting repetitions.
func SetOf(tokens ...Token) Set {
	var s Set
	for _, t := range tokens {
		s.Insert(t)
	}
	return s
}

// Full returns the set holding exactly one of each of the first dimension tokens.
func Full(dimension int) Set {
	var s Set
	for i := 0; i < dimension && i < MaxTokens; i++ {
		s.counts[i] = 1
	}
	return s
}

// Len returns the number of arcospheres in the set.
func (s Set) Len() int {
	n := 0
	for _, c := range s.counts {
		n += int(c)
	}
	return n
}

// IsEmpty reports whether the set holds no arcosphere.
func (s Set) IsEmpty() bool {
	return s == Set{}
}

// Count returns the multiplicity of t.
func (s Set) Count(t Token) int {
	return int(s.counts[t])
}

// Contains reports whether at least one t is in the set.
func (s Set) Contains(t Token) bool {
	return s.counts[t] > 0
}

// IsSubsetOf reports whether every count of s is at most the matching count of other.
// A set may be neither a subset nor a superset of another.
func (s Set) IsSubsetOf(other Set) bool {
	for i, c := range s.counts {
		if c > other.counts[i] {
			return false
		}
	}
	return true
}

// IsSupersetOf reports whether other is a subset of s.
func (s Set) IsSupersetOf(other Set) bool {
	return other.IsSubsetOf(s)
}

// Insert adds one t to the set.
//
// Panics with an *InvariantError if the count of t would exceed 255.
func (s *Set) Insert(t Token) {
	if s.counts[t] == math.MaxUint8 {
		panic(&InvariantError{Op: "insert", Token: t, Left: int(s.counts[t]), Right: 1})
	}
	s.counts[t]++
}

// Remove takes one t out of the set.
//
// Panics with an *InvariantError if there is no t in the set.
func (s *Set) Remove(t Token) {
	if s.counts[t] == 0 {
		panic(&InvariantError{Op: "remove", Token: t, Left: 0, Right: 1})
	}
	s.counts[t]--
}

// Add returns the union (sum of counts) of s and other.
//
// Panics with an *InvariantError on overflow.
func (s Set) Add(other Set) Set {
	r, err := s.CheckedAdd(other)
	if err != nil {
		panic(err)
	}
	return r
}

// CheckedAdd is Add returning the invariant violation instead of panicking.
func (s Set) CheckedAdd(other Set) (Set, error) {
	for i, c := range other.counts {
		sum := int(s.counts[i]) + int(c)
		if sum > math.MaxUint8 {
			return Set{}, &InvariantError{Op: "add", Token: Token(i), Left: int(s.counts[i]), Right: int(c)}
		}
		s.counts[i] = uint8(sum)
	}
	return s, nil
}

// Sub returns s minus other. other must be a subset of s.
//
// Panics with an *InvariantError on underflow.
func (s Set) Sub(other Set) Set {
	r, err := s.CheckedSub(other)
	if err != nil {
		panic(err)
	}
	return r
}

// CheckedSub is Sub returning the invariant violation instead of panicking.
func (s Set) CheckedSub(other Set) (Set, error) {
	for i, c := range other.counts {
		if c > s.counts[i] {
			return Set{}, &InvariantError{Op: "sub", Token: Token(i), Left: int(s.counts[i]), Right: int(c)}
		}
		s.counts[i] -= c
	}
	return s, nil
}

// Scale multiplies every count by n.
//
// Panics with an *InvariantError if n is negative or a count overflows.
func (s Set) Scale(n int) Set {
	r, err := s.CheckedScale(n)
	if err != nil {
		panic(err)
	}
	return r
}

// CheckedScale is Scale returning the invariant violation instead of panicking.
func (s Set) CheckedScale(n int) (Set, error) {
	if n < 0 {
		return Set{}, &InvariantError{Op: "scale", Left: 0, Right: n}
	}
	for i, c := range s.counts {
		product := int(c) * n
		if product > math.MaxUint8 {
			return Set{}, &InvariantError{Op: "scale", Token: Token(i), Left: int(c), Right: n}
		}
		s.counts[i] = uint8(product)
	}
	return s, nil
}

// Apply replaces input by output in s, as a forward recipe application does.
// input must be a subset of s.
func (s Set) Apply(input, output Set) Set {
	return s.Sub(input).Add(output)
}

// Min returns the element-wise minimum of s and other.
func (s Set) Min(other Set) Set {
	for i, c := range other.counts {
		if c < s.counts[i] {
			s.counts[i] = c
		}
	}
	return s
}

// Tokens lists the content of the set, each token repeated by its
// multiplicity, in increasing index order.
func (s Set) Tokens() []Token {
	tokens := make([]Token, 0, s.Len())
	for i, c := range s.counts {
		for j := uint8(0); j < c; j++ {
			tokens = append(tokens, Token(i))
		}
	}
	return tokens
}

// Compare defines the total order used to sort sets: the reverse of the
// lexicographic order of the count vectors. It returns -1, 0 or +1.
//
// Under this order a set with more of the lower-indexed arcospheres sorts
// first, so "G" sorts before "O" in the default family.
func (s Set) Compare(other Set) int {
	for i := range s.counts {
		switch {
		case s.counts[i] > other.counts[i]:
			return -1
		case s.counts[i] < other.counts[i]:
			return 1
		}
	}
	return 0
}
