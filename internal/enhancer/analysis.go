package enhancer

import (
	"fmt"
	"strings"

	"github.com/spigell/presta-matcher/internal/ai"
	"github.com/spigell/presta-matcher/internal/directory"
	"github.com/spigell/presta-matcher/internal/matching"
	"github.com/spigell/presta-matcher/internal/utils"
)

type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
)

const (
	DegradedScore = 50
	FailureScore  = 40

	MaxExplanationRunes = 150

	algorithmWeight = 0.6
	oracleWeight    = 0.4
)

const (
	defaultExplanation  = "Analyse IA effectuée sans explication détaillée"
	degradedExplanation = "Analyse IA dégradée : réponse illisible, score neutre appliqué"
	failureExplanation  = "Analyse IA indisponible : score par défaut appliqué"
)

// AIAnalysis is the oracle's opinion on one candidate, possibly a fallback.
type AIAnalysis struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
	Status      Status `json:"status"`
}

// EnhancedResult is a MatchResult with the fused final score.
type EnhancedResult struct {
	matching.MatchResult
	AI         *AIAnalysis `json:"aiAnalysis,omitempty"`
	FinalScore int         `json:"finalScore"`
}

func newResult(m matching.MatchResult, analysis *AIAnalysis) EnhancedResult {
	return EnhancedResult{
		MatchResult: m,
		AI:          analysis,
		FinalScore:  Fuse(m.AlgorithmScore, analysis),
	}
}

// Fuse blends the algorithmic and oracle scores. Without an analysis the
// algorithmic score is kept unchanged.
func Fuse(algorithmScore int, analysis *AIAnalysis) int {
	if analysis == nil {
		return utils.ClampScore(algorithmScore)
	}
	blended := algorithmWeight*float64(algorithmScore) + oracleWeight*float64(analysis.Score)
	return utils.ClampScore(utils.Round(blended))
}

// PassThrough wraps candidates that are not sent to the oracle.
func PassThrough(candidates []matching.MatchResult) []EnhancedResult {
	out := make([]EnhancedResult, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, newResult(c, nil))
	}
	return out
}

// interpret turns raw oracle text into an analysis, degrading to the neutral
// score when the text cannot be trusted.
func interpret(raw string) (AIAnalysis, error) {
	verdict, err := ai.ParseVerdict(raw)
	if err != nil {
		return degraded(), err
	}

	explanation := verdict.Explanation
	if explanation == "" {
		explanation = defaultExplanation
	}

	return AIAnalysis{
		Score:       utils.ClampScore(utils.Round(verdict.Score)),
		Explanation: utils.TruncateRunes(explanation, MaxExplanationRunes),
		Status:      StatusOK,
	}, nil
}

func degraded() AIAnalysis {
	return AIAnalysis{Score: DegradedScore, Explanation: degradedExplanation, Status: StatusDegraded}
}

func failed() AIAnalysis {
	return AIAnalysis{Score: FailureScore, Explanation: failureExplanation, Status: StatusFailed}
}

// ProfileSummary renders the provider fields the oracle is allowed to see.
func ProfileSummary(p directory.Provider, algorithmScore int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Nom: %s\n", p.DisplayName())
	fmt.Fprintf(&b, "Compétences: %s\n", orDash(p.Skills))
	fmt.Fprintf(&b, "Description: %s\n", orDash(p.Description))
	if rate, ok := p.Rate(); ok {
		fmt.Fprintf(&b, "Tarif horaire: %.0f €/h\n", rate)
	} else {
		b.WriteString("Tarif horaire: non renseigné\n")
	}
	fmt.Fprintf(&b, "Score algorithmique: %d/100", algorithmScore)

	return b.String()
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}
