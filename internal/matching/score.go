package matching

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/presta-matcher/internal/analyzer"
	"github.com/spigell/presta-matcher/internal/directory"
	"github.com/spigell/presta-matcher/internal/utils"
)

const (
	presenceBonus     = 10
	exactSkillBonus   = 5
	coverageWeight    = 20
	overPricePenalty  = 15
	underPricePenalty = 10
	detailedBonus     = 5

	detailedDescriptionRunes = 50

	reasonDetailed = "Profil détaillé"
	reasonFallback = "Prestataire disponible sur la plateforme"
)

// MatchResult is one scored provider.
type MatchResult struct {
	Provider        directory.Provider `json:"provider"`
	AlgorithmScore  int                `json:"algorithmScore"`
	MatchedKeywords []string           `json:"matchedKeywords"`
	MatchReason     string             `json:"matchReason"`
}

// Score rates a provider against a keyword set and price filters. It is a
// pure function of its inputs and always returns a score in 0..100.
func Score(provider directory.Provider, keywords analyzer.Keywords, filters analyzer.SearchFilters) MatchResult {
	skills := strings.ToLower(provider.Skills)
	text := skills + " " + strings.ToLower(provider.Description)

	score := 0
	matched := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			score += presenceBonus
			matched = append(matched, kw)
		}
	}

	reasons := make([]string, 0, 4)
	for _, kw := range keywords {
		if !strings.Contains(skills, kw) {
			continue
		}
		score += exactSkillBonus
		reason := fmt.Sprintf("Expert en %s", kw)
		if !contains(reasons, reason) {
			reasons = append(reasons, reason)
		}
	}

	if len(keywords) > 0 {
		score += utils.Round(coverageWeight * float64(len(matched)) / float64(len(keywords)))
	}

	score -= pricePenalty(provider, filters)

	if utf8.RuneCountInString(provider.Description) > detailedDescriptionRunes {
		score += detailedBonus
		reasons = append(reasons, reasonDetailed)
	}

	return MatchResult{
		Provider:        provider,
		AlgorithmScore:  utils.ClampScore(score),
		MatchedKeywords: matched,
		MatchReason:     matchReason(reasons, matched),
	}
}

// pricePenalty applies only when both the bound and the rate are known.
func pricePenalty(provider directory.Provider, filters analyzer.SearchFilters) int {
	rate, known := provider.Rate()
	if !known {
		return 0
	}

	penalty := 0
	if filters.MaxPrice != nil && *filters.MaxPrice > 0 && rate > *filters.MaxPrice {
		penalty += overPricePenalty
	}
	if filters.MinPrice != nil && *filters.MinPrice > 0 && rate < *filters.MinPrice {
		penalty += underPricePenalty
	}
	return penalty
}

func matchReason(reasons, matched []string) string {
	switch {
	case len(reasons) > 0:
		return strings.Join(reasons, ", ")
	case len(matched) > 0:
		n := len(matched)
		if n > 2 {
			n = 2
		}
		return "Compétences en " + strings.Join(matched[:n], ", ")
	default:
		return reasonFallback
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
