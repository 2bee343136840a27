package analyzer

import (
	"strings"
	"unicode/utf8"
)

// expansion maps a domain phrase found in a query to related skill terms.
type expansion struct {
	phrase string
	terms  []string
}

// skillExpansions is scanned in order; the order defines keyword order.
var skillExpansions = []expansion{
	// web development
	{"développeur web", []string{"react", "javascript", "html", "css", "frontend", "backend"}},
	{"dev web", []string{"react", "javascript", "html", "css", "frontend", "backend"}},
	{"site web", []string{"wordpress", "html", "css", "javascript", "frontend"}},
	{"react", []string{"react", "javascript", "frontend", "typescript"}},
	{"vue", []string{"vue", "javascript", "frontend"}},
	{"angular", []string{"angular", "typescript", "frontend"}},
	{"node", []string{"node.js", "javascript", "backend"}},
	{"php", []string{"php", "backend", "mysql"}},
	{"python", []string{"python", "backend", "django", "flask"}},

	// e-commerce
	{"boutique", []string{"shopify", "woocommerce", "e-commerce", "prestashop"}},
	{"e-commerce", []string{"shopify", "woocommerce", "prestashop", "magento"}},
	{"ecommerce", []string{"shopify", "woocommerce", "prestashop", "magento"}},
	{"shopify", []string{"shopify", "e-commerce"}},
	{"wordpress", []string{"wordpress", "php", "woocommerce"}},

	// design
	{"design", []string{"ui/ux", "figma", "photoshop", "illustrator"}},
	{"designer", []string{"ui/ux", "figma", "photoshop", "illustrator"}},
	{"ui", []string{"ui/ux", "figma", "design"}},
	{"ux", []string{"ui/ux", "figma", "design"}},
	{"logo", []string{"illustrator", "photoshop", "design"}},
	{"landing", []string{"design", "html", "css", "conversion"}},

	// marketing
	{"seo", []string{"seo", "google", "référencement", "analytics"}},
	{"référencement", []string{"seo", "google", "analytics"}},
	{"google ads", []string{"google ads", "ppc", "marketing"}},
	{"marketing", []string{"seo", "google ads", "analytics", "social media"}},

	// mobile
	{"mobile", []string{"react native", "flutter", "ios", "android"}},
	{"application mobile", []string{"react native", "flutter", "ios", "android"}},
	{"app mobile", []string{"react native", "flutter", "ios", "android"}},
	{"ios", []string{"swift", "ios", "mobile"}},
	{"android", []string{"kotlin", "java", "android", "mobile"}},

	// other
	{"automatisation", []string{"python", "automation", "api"}},
	{"ia", []string{"python", "machine learning", "tensorflow"}},
	{"intelligence artificielle", []string{"python", "machine learning", "tensorflow"}},
}

var stopWords = map[string]struct{}{
	"pour": {}, "avec": {}, "dans": {}, "sur": {}, "une": {},
	"des": {}, "les": {}, "mon": {}, "ma": {}, "mes": {},
}

const minTokenRunes = 3

// Keywords is a deduplicated list of lowercase terms in first-seen order.
type Keywords []string

func (k Keywords) Len() int { return len(k) }

func (k Keywords) Contains(term string) bool {
	for _, kw := range k {
		if kw == term {
			return true
		}
	}
	return false
}

// ExtractKeywords turns a free-text query into its keyword set: expansions of
// every known phrase contained in the query, then the raw query words.
func ExtractKeywords(query string) Keywords {
	normalized := normalize(query)
	if normalized == "" {
		return Keywords{}
	}

	seen := make(map[string]struct{})
	keywords := make(Keywords, 0, 16)
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		keywords = append(keywords, term)
	}

	for _, exp := range skillExpansions {
		if !strings.Contains(normalized, exp.phrase) {
			continue
		}
		for _, term := range exp.terms {
			add(term)
		}
	}

	for _, word := range strings.Fields(normalized) {
		if utf8.RuneCountInString(word) < minTokenRunes {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		add(word)
	}

	return keywords
}

func normalize(query string) string {
	return strings.TrimSpace(strings.ToLower(query))
}
