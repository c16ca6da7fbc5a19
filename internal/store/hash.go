package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/solver"
)

// DomainRequest prefixes request hashes.
// Version suffix enables future algorithm migration.
const DomainRequest = "arcosphere/request/v1"

// Request identifies a solve request for caching.
//
// The family is captured by value (abbreviations and recipes), not only by
// name, so two CUE families sharing a name never share cached results.
type Request struct {
	Family      string        `json:"family"`
	Arcospheres string        `json:"arcospheres"`
	Recipes     []string      `json:"recipes"`
	Source      string        `json:"source"`
	Target      string        `json:"target"`
	Config      RequestConfig `json:"config"`
}

// RequestConfig is the JSON form of solver.Config.
type RequestConfig struct {
	MinimumCatalysts  int    `json:"minimum_catalysts"`
	MaximumCatalysts  int    `json:"maximum_catalysts"`
	ExtraCatalysts    int    `json:"extra_catalysts"`
	MaximumCount      int    `json:"maximum_count"`
	MaximumRecipes    int    `json:"maximum_recipes"`
	MaximumInversions int    `json:"maximum_inversions"`
	SortBy            string `json:"sort_by"`
}

// NewRequest describes solving source into target within family.
func NewRequest(family *model.Family, source, target model.Set, cfg solver.Config) Request {
	recipes := make([]string, family.RecipeCount())
	for i, r := range family.Recipes() {
		recipes[i] = family.FormatRecipe(r)
	}

	var abbrs []rune
	for _, a := range family.Tokens() {
		abbrs = append(abbrs, a.Abbr)
	}

	return Request{
		Family:      family.Name(),
		Arcospheres: string(abbrs),
		Recipes:     recipes,
		Source:      family.FormatSet(source),
		Target:      family.FormatSet(target),
		Config: RequestConfig{
			MinimumCatalysts:  cfg.MinimumCatalysts,
			MaximumCatalysts:  cfg.MaximumCatalysts,
			ExtraCatalysts:    cfg.ExtraCatalysts,
			MaximumCount:      cfg.MaximumCount,
			MaximumRecipes:    cfg.MaximumRecipes,
			MaximumInversions: cfg.MaximumInversions,
			SortBy:            cfg.SortBy.String(),
		},
	}
}

// Hash computes the content-addressed identity of the request.
// Struct fields marshal in declaration order, so the JSON is stable.
func (r Request) Hash() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("request hash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequest, data), nil
}

// ConfigJSON returns the configuration as archived in Run.Config.
func (r Request) ConfigJSON() (string, error) {
	data, err := json.Marshal(r.Config)
	if err != nil {
		return "", fmt.Errorf("request config: failed to marshal: %w", err)
	}
	return string(data), nil
}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
