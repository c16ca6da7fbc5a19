package model

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Separators of the textual grammar.
const (
	sepRecipe    = "->"
	sepCatalysts = "+"
	sepRecipes   = "=>"
	sepStage     = "|"
	sepParallel  = "//"
)

// FormatSet renders s as the concatenation of its abbreviations, in index order.
// The empty set renders as the empty string.
func (f *Family) FormatSet(s Set) string {
	var b strings.Builder
	for _, t := range s.Tokens() {
		b.WriteRune(f.tokens[t].Abbr)
	}
	return b.String()
}

// FormatFancy renders s using the display glyph of each arcosphere.
func (f *Family) FormatFancy(s Set) string {
	var b strings.Builder
	for _, t := range s.Tokens() {
		b.WriteString(f.tokens[t].Glyph())
	}
	return b.String()
}

// ParseSet parses a multiset of abbreviations, eg. "EEP".
// Surrounding whitespace is ignored.
func (f *Family) ParseSet(text string) (Set, error) {
	var s Set
	for _, r := range strings.TrimSpace(text) {
		t, ok := f.byAbbr[r]
		if !ok {
			return Set{}, &ParseError{Code: ParseUnknownToken, Input: text, Rune: r}
		}
		if s.Count(t) == math.MaxUint8 {
			return Set{}, &ParseError{Code: ParseIllFormatted, Input: text, Message: "too many arcospheres"}
		}
		s.Insert(t)
	}
	return s, nil
}

// FormatRecipe renders r as "INPUT -> OUTPUT".
func (f *Family) FormatRecipe(r Recipe) string {
	return f.FormatSet(r.Input) + " " + sepRecipe + " " + f.FormatSet(r.Output)
}

// ParseRecipe parses "INPUT -> OUTPUT" and looks it up in the family.
func (f *Family) ParseRecipe(text string) (Recipe, error) {
	in, out, ok := strings.Cut(text, sepRecipe)
	if !ok || strings.TrimSpace(in) == "" {
		return Recipe{}, &ParseError{Code: ParseIllFormatted, Input: text, Message: "expected INPUT -> OUTPUT"}
	}
	input, err := f.ParseSet(in)
	if err != nil {
		return Recipe{}, err
	}
	output, err := f.ParseSet(out)
	if err != nil {
		return Recipe{}, err
	}
	if input.Len() != output.Len() {
		return Recipe{}, &ParseError{Code: ParsePreservation, Input: text, Message: "input and output sizes differ"}
	}
	r, err := f.FindRecipe(input, output)
	if err != nil {
		return Recipe{}, &ParseError{Code: ParseUnknownRecipe, Input: text, Message: "no such recipe"}
	}
	return r, nil
}

// FormatPath renders p with every recipe in its own stage.
func (f *Family) FormatPath(p Path) string {
	var b strings.Builder
	f.writeHeader(&b, p)
	for i, r := range p.Recipes {
		if i > 0 {
			b.WriteString(" " + sepStage)
		}
		b.WriteString(" ")
		b.WriteString(f.FormatRecipe(r))
	}
	return b.String()
}

// FormatStagedPath renders sp, eg. "EP -> LX + G => PG -> XO | EO -> LG".
func (f *Family) FormatStagedPath(sp StagedPath) string {
	var b strings.Builder
	f.writeHeader(&b, sp.Path)
	for i, stage := range sp.Stages() {
		if i > 0 {
			b.WriteString(" " + sepStage)
		}
		b.WriteString(" ")
		b.WriteString(f.FormatStage(stage))
	}
	return b.String()
}

// FormatStage renders the recipes of a stage separated by " // ".
func (f *Family) FormatStage(s Stage) string {
	parts := make([]string, len(s.Recipes))
	for i, r := range s.Recipes {
		parts[i] = f.FormatRecipe(r)
	}
	return strings.Join(parts, " "+sepParallel+" ")
}

func (f *Family) writeHeader(b *strings.Builder, p Path) {
	b.WriteString(f.FormatSet(p.Source))
	b.WriteString(" " + sepRecipe + " ")
	b.WriteString(f.FormatSet(p.Target))
	if p.count() > 1 {
		b.WriteString(" x")
		b.WriteString(strconv.Itoa(p.count()))
	}
	if !p.Catalysts.IsEmpty() {
		b.WriteString(" " + sepCatalysts + " ")
		b.WriteString(f.FormatSet(p.Catalysts))
	}
	b.WriteString(" " + sepRecipes)
}

// ParsePath parses a path where stages hold exactly one recipe each.
// The parallel separator "//" is rejected.
func (f *Family) ParsePath(text string) (Path, error) {
	p, stages, err := f.parse(text)
	if err != nil {
		return Path{}, err
	}
	for _, stage := range stages {
		if len(stage) > 1 {
			return Path{}, &ParseError{Code: ParseIllFormatted, Input: text, Message: "unexpected " + sepParallel + " in unstaged path"}
		}
		p.Recipes = append(p.Recipes, stage[0])
	}
	return p, nil
}

// ParseStagedPath parses a staged path. Stage boundaries are kept as written;
// recipes within a stage are sorted, so equivalent texts parse to equal paths.
func (f *Family) ParseStagedPath(text string) (StagedPath, error) {
	p, stages, err := f.parse(text)
	if err != nil {
		return StagedPath{}, err
	}
	sp := StagedPath{Path: p}
	for i, stage := range stages {
		if i > 0 {
			sp.Boundaries = append(sp.Boundaries, len(sp.Recipes))
		}
		slices.SortStableFunc(stage, Recipe.Compare)
		sp.Recipes = append(sp.Recipes, stage...)
	}
	return sp, nil
}

func (f *Family) parse(text string) (Path, [][]Recipe, error) {
	illFormatted := func(msg string) error {
		return &ParseError{Code: ParseIllFormatted, Input: text, Message: msg}
	}

	head, tail, ok := strings.Cut(text, sepRecipes)
	if !ok {
		return Path{}, nil, illFormatted("missing " + sepRecipes)
	}

	src, rest, ok := strings.Cut(head, sepRecipe)
	if !ok {
		return Path{}, nil, illFormatted("missing " + sepRecipe + " between source and target")
	}
	tgt, cat, hasCatalysts := strings.Cut(rest, sepCatalysts)

	p := Path{Count: 1}
	var err error
	if p.Source, err = f.ParseSet(src); err != nil {
		return Path{}, nil, err
	}

	fields := strings.Fields(tgt)
	switch {
	case len(fields) == 2 && isCount(fields[1]):
		if p.Target, err = f.ParseSet(fields[0]); err != nil {
			return Path{}, nil, err
		}
		if p.Count, ok = parseCount(fields[1]); !ok {
			return Path{}, nil, illFormatted("count must be between 1 and 255")
		}
	case len(fields) == 1 && isCount(fields[0]):
		if p.Count, ok = parseCount(fields[0]); !ok {
			return Path{}, nil, illFormatted("count must be between 1 and 255")
		}
	case len(fields) <= 1:
		if p.Target, err = f.ParseSet(tgt); err != nil {
			return Path{}, nil, err
		}
	default:
		return Path{}, nil, illFormatted("expected TARGET [xCOUNT]")
	}

	if hasCatalysts {
		if strings.TrimSpace(cat) == "" {
			return Path{}, nil, illFormatted("empty catalysts after " + sepCatalysts)
		}
		if p.Catalysts, err = f.ParseSet(cat); err != nil {
			return Path{}, nil, err
		}
	}

	if p.Source.Len() != p.Target.Len() {
		return Path{}, nil, &ParseError{Code: ParsePreservation, Input: text, Message: "source and target sizes differ"}
	}

	if strings.TrimSpace(tail) == "" {
		return p, nil, nil
	}

	var stages [][]Recipe
	for _, st := range strings.Split(tail, sepStage) {
		var stage []Recipe
		for _, rt := range strings.Split(st, sepParallel) {
			if strings.TrimSpace(rt) == "" {
				return Path{}, nil, illFormatted("empty recipe")
			}
			r, err := f.ParseRecipe(rt)
			if err != nil {
				return Path{}, nil, err
			}
			stage = append(stage, r)
		}
		stages = append(stages, stage)
	}
	return p, stages, nil
}

// isCount reports whether field looks like "x2".
func isCount(field string) bool {
	if len(field) < 2 || field[0] != 'x' {
		return false
	}
	for _, r := range field[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseCount(field string) (int, bool) {
	n, err := strconv.Atoi(field[1:])
	if err != nil || n < 1 || n > math.MaxUint8 {
		return 0, false
	}
	return n, true
}
