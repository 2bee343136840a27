package ai

import (
	_ "embed"
	"strings"

	"github.com/spigell/presta-matcher/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	maxQueryRunes   = 500
	maxProfileRunes = 2000
)

// BuildPrompt renders the scoring prompt shared by every oracle backend.
func BuildPrompt(profileSummary, query string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Query:\n{{QUERY}}\n\nProfile:\n{{PROFILE}}\n\nJSON Response:"
	}

	// One pass, so placeholders inside the query or profile stay literal.
	return strings.NewReplacer(
		"{{QUERY}}", sanitizeQuery(query),
		"{{PROFILE}}", utils.TruncateRunes(strings.TrimSpace(profileSummary), maxProfileRunes),
	).Replace(template)
}

// sanitizeQuery flattens the client request to a single line and neutralizes
// square brackets so it cannot open a new prompt section.
func sanitizeQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	query = strings.NewReplacer("[", "(", "]", ")").Replace(query)
	query = utils.TruncateRunes(query, maxQueryRunes)
	if query == "" {
		return "none"
	}
	return query
}
