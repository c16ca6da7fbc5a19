package model

import "fmt"

// Token is the dense index of an arcosphere within its family.
type Token uint8

// Polarity classifies arcospheres for families that support inversions.
type Polarity int8

const (
	// Neutral marks arcospheres of families without polarity.
	Neutral Polarity = iota
	// Negative polarity.
	Negative
	// Positive polarity.
	Positive
)

// String returns the lower-case polarity name.
func (p Polarity) String() string {
	switch p {
	case Neutral:
		return "neutral"
	case Negative:
		return "negative"
	case Positive:
		return "positive"
	default:
		return fmt.Sprintf("polarity(%d)", int8(p))
	}
}

// ParsePolarity maps a polarity name back to its value.
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "", "neutral":
		return Neutral, nil
	case "negative":
		return Negative, nil
	case "positive":
		return Positive, nil
	default:
		return Neutral, fmt.Errorf("unknown polarity %q: must be negative, positive or neutral", s)
	}
}

// Arcosphere describes one token kind of a family.
type Arcosphere struct {
	// Abbr is the single rune used by the textual grammar, eg. 'E'.
	Abbr rune
	// Name is the full name, eg. "Epsilon".
	Name string
	// Fancy is the display glyph, eg. "ε". Falls back to Name when empty.
	Fancy string
	// Polarity is Neutral unless the family supports inversions.
	Polarity Polarity
}

// Glyph returns the fancy name, or the full name if none was given.
func (a Arcosphere) Glyph() string {
	if a.Fancy != "" {
		return a.Fancy
	}
	return a.Name
}

// String returns the abbreviation.
func (a Arcosphere) String() string {
	return string(a.Abbr)
}
