// Package ai holds the contract between the relevance enhancer and the
// language-model backends that score a provider against a client request.
package ai

import "context"

// ScoringOracle rates how well a provider profile answers a client request.
// The returned text is expected to contain a JSON object
// {"score": 1-100, "explanation": "..."} but callers must not trust it.
type ScoringOracle interface {
	Score(ctx context.Context, profileSummary, query string) (string, error)
}

// Describer is implemented by oracles that can name their backend and model
// for logs and metrics.
type Describer interface {
	Name() string
	Model() string
}

// Describe returns the backend and model of an oracle when it exposes them.
func Describe(oracle ScoringOracle) (name, model string) {
	if d, ok := oracle.(Describer); ok {
		return d.Name(), d.Model()
	}
	return "", ""
}
