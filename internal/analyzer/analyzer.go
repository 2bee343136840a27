// Package analyzer turns a client's free-text request into the keyword set
// used for provider scoring and a coarse classification of the request.
package analyzer

import "strings"

type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

const DefaultCategory = "Général"

// SearchFilters narrows a search. Nil bounds are unset.
type SearchFilters struct {
	MinPrice   *float64 `json:"minPrice,omitempty" mapstructure:"min-price"`
	MaxPrice   *float64 `json:"maxPrice,omitempty" mapstructure:"max-price"`
	Skills     []string `json:"skills,omitempty" mapstructure:"skills"`
	Experience string   `json:"experience,omitempty" mapstructure:"experience"`
}

// Merge returns a copy of f where every field set in override replaces the
// corresponding field of f.
func (f SearchFilters) Merge(override *SearchFilters) SearchFilters {
	merged := f
	if override == nil {
		return merged
	}
	if override.MinPrice != nil {
		merged.MinPrice = override.MinPrice
	}
	if override.MaxPrice != nil {
		merged.MaxPrice = override.MaxPrice
	}
	if override.Skills != nil {
		merged.Skills = append([]string(nil), override.Skills...)
	}
	if override.Experience != "" {
		merged.Experience = override.Experience
	}
	return merged
}

// IsZero reports whether no filter is set.
func (f SearchFilters) IsZero() bool {
	return f.MinPrice == nil && f.MaxPrice == nil && len(f.Skills) == 0 && f.Experience == ""
}

type SearchAnalysis struct {
	Category         string        `json:"category"`
	Complexity       Complexity    `json:"complexity"`
	SuggestedFilters SearchFilters `json:"suggestedFilters"`
}

type categoryRule struct {
	label   string
	markers []string
	apply   func(a *SearchAnalysis)
}

// categoryRules are checked in priority order, first match wins.
var categoryRules = []categoryRule{
	{
		label:   "Design & UI/UX",
		markers: []string{"design", "ui", "logo"},
		apply:   func(a *SearchAnalysis) { a.SuggestedFilters.MaxPrice = price(60) },
	},
	{
		label:   "Développement Web",
		markers: []string{"développeur", "react", "web"},
		apply:   func(a *SearchAnalysis) { a.SuggestedFilters.MaxPrice = price(80) },
	},
	{
		label:   "Marketing Digital",
		markers: []string{"seo", "marketing"},
		apply:   func(a *SearchAnalysis) { a.SuggestedFilters.MaxPrice = price(50) },
	},
	{
		label:   "Développement Mobile",
		markers: []string{"mobile", "application"},
		apply: func(a *SearchAnalysis) {
			a.Complexity = ComplexityComplex
			a.SuggestedFilters.MinPrice = price(50)
		},
	},
}

var (
	simpleMarkers  = []string{"simple", "basique"}
	complexMarkers = []string{"complexe", "avancé", "enterprise"}
)

// AnalyzeSearchTrends classifies a query into a category and a complexity
// and suggests price bounds. The suggestions are never applied here.
func AnalyzeSearchTrends(query string) SearchAnalysis {
	normalized := normalize(query)

	analysis := SearchAnalysis{
		Category:   DefaultCategory,
		Complexity: ComplexityMedium,
	}

	for _, rule := range categoryRules {
		if containsAny(normalized, rule.markers) {
			analysis.Category = rule.label
			rule.apply(&analysis)
			break
		}
	}

	switch {
	case containsAny(normalized, simpleMarkers):
		analysis.Complexity = ComplexitySimple
		analysis.SuggestedFilters.MaxPrice = price(40)
	case containsAny(normalized, complexMarkers):
		analysis.Complexity = ComplexityComplex
		analysis.SuggestedFilters.MinPrice = price(60)
	}

	return analysis
}

// Analyze runs keyword extraction and classification on the same query.
func Analyze(query string) (Keywords, SearchAnalysis) {
	return ExtractKeywords(query), AnalyzeSearchTrends(query)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func price(v float64) *float64 { return &v }
