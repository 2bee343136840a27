package matching

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/presta-matcher/internal/analyzer"
	"github.com/spigell/presta-matcher/internal/directory"
)

const reactQuery = "Je cherche un développeur web React"

func ptr(f float64) *float64 { return &f }

func marie() directory.Provider {
	return directory.Provider{
		ID:          1,
		Name:        "Dupont",
		FirstName:   "Marie",
		Role:        directory.RoleProvider,
		Skills:      "React, Node.js, TypeScript",
		Description: "Je conçois des interfaces soignées et performantes pour startups et PME en France.",
		HourlyRate:  ptr(45),
	}
}

func TestScoreReactScenario(t *testing.T) {
	keywords := analyzer.ExtractKeywords(reactQuery)

	result := Score(marie(), keywords, analyzer.SearchFilters{})

	// presence 2x10, exact skills 2x5, coverage round(20*2/10), detailed profile 5
	if result.AlgorithmScore != 39 {
		t.Fatalf("expected score 39, got %d (%+v)", result.AlgorithmScore, result)
	}

	if len(result.MatchedKeywords) != 2 || result.MatchedKeywords[0] != "react" || result.MatchedKeywords[1] != "typescript" {
		t.Fatalf("unexpected matched keywords: %v", result.MatchedKeywords)
	}

	expectedReason := "Expert en react, Expert en typescript, Profil détaillé"
	if result.MatchReason != expectedReason {
		t.Fatalf("expected reason %q, got %q", expectedReason, result.MatchReason)
	}

	for _, kw := range result.MatchedKeywords {
		if !keywords.Contains(kw) {
			t.Fatalf("matched keyword %q not in keyword set", kw)
		}
	}
}

func TestScoreMaxPricePenalty(t *testing.T) {
	keywords := analyzer.ExtractKeywords(reactQuery)

	base := Score(marie(), keywords, analyzer.SearchFilters{})
	capped := Score(marie(), keywords, analyzer.SearchFilters{MaxPrice: ptr(30)})

	if base.AlgorithmScore-capped.AlgorithmScore != 15 {
		t.Fatalf("expected a 15 point penalty, got %d -> %d", base.AlgorithmScore, capped.AlgorithmScore)
	}
}

func TestScorePriceFilters(t *testing.T) {
	keywords := analyzer.ExtractKeywords(reactQuery)
	base := Score(marie(), keywords, analyzer.SearchFilters{}).AlgorithmScore

	tests := []struct {
		name    string
		filters analyzer.SearchFilters
		rate    *float64
		want    int
	}{
		{name: "under min price", filters: analyzer.SearchFilters{MinPrice: ptr(60)}, rate: ptr(45), want: base - 10},
		{name: "both penalties", filters: analyzer.SearchFilters{MinPrice: ptr(60), MaxPrice: ptr(40)}, rate: ptr(45), want: base - 25},
		{name: "within bounds", filters: analyzer.SearchFilters{MinPrice: ptr(30), MaxPrice: ptr(50)}, rate: ptr(45), want: base},
		{name: "zero bound is unset", filters: analyzer.SearchFilters{MaxPrice: ptr(0)}, rate: ptr(45), want: base},
		{name: "unknown rate", filters: analyzer.SearchFilters{MaxPrice: ptr(30)}, rate: nil, want: base},
		{name: "zero rate is unknown", filters: analyzer.SearchFilters{MinPrice: ptr(30)}, rate: ptr(0), want: base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := marie()
			p.HourlyRate = tt.rate
			if got := Score(p, keywords, tt.filters).AlgorithmScore; got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestScorePriceMonotonicity(t *testing.T) {
	keywords := analyzer.ExtractKeywords(reactQuery)
	p := marie()

	prev := -1
	for _, maxPrice := range []float64{10, 30, 44, 45, 46, 100} {
		got := Score(p, keywords, analyzer.SearchFilters{MaxPrice: ptr(maxPrice)}).AlgorithmScore
		if got < prev {
			t.Fatalf("raising maxPrice to %v lowered score from %d to %d", maxPrice, prev, got)
		}
		prev = got
	}

	prev = -1
	for _, minPrice := range []float64{100, 60, 46, 45, 10} {
		got := Score(p, keywords, analyzer.SearchFilters{MinPrice: ptr(minPrice)}).AlgorithmScore
		if got < prev {
			t.Fatalf("lowering minPrice to %v lowered score from %d to %d", minPrice, prev, got)
		}
		prev = got
	}
}

func TestScoreBoundsAndReasons(t *testing.T) {
	rich := directory.Provider{
		ID:          2,
		Skills:      strings.Repeat("react javascript html css frontend backend typescript ", 3),
		Description: strings.Repeat("développeur web react ", 5),
	}
	keywords := analyzer.ExtractKeywords(reactQuery + " site web wordpress")

	if got := Score(rich, keywords, analyzer.SearchFilters{}).AlgorithmScore; got != 100 {
		t.Fatalf("expected score clamped to 100, got %d", got)
	}

	empty := directory.Provider{ID: 3}
	result := Score(empty, keywords, analyzer.SearchFilters{MaxPrice: ptr(10)})
	if result.AlgorithmScore != 0 {
		t.Fatalf("expected empty profile to score 0, got %d", result.AlgorithmScore)
	}
	if result.MatchReason != reasonFallback {
		t.Fatalf("expected fallback reason, got %q", result.MatchReason)
	}

	descOnly := directory.Provider{ID: 4, Description: "intégration react"}
	result = Score(descOnly, keywords, analyzer.SearchFilters{})
	if !strings.HasPrefix(result.MatchReason, "Compétences en ") {
		t.Fatalf("expected matched keywords reason, got %q", result.MatchReason)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	keywords := analyzer.ExtractKeywords(reactQuery)
	filters := analyzer.SearchFilters{MaxPrice: ptr(30)}

	first := Score(marie(), keywords, filters)
	for i := 0; i < 5; i++ {
		next := Score(marie(), keywords, filters)
		if next.AlgorithmScore != first.AlgorithmScore || next.MatchReason != first.MatchReason {
			t.Fatalf("score changed between runs: %+v vs %+v", first, next)
		}
		if strings.Join(next.MatchedKeywords, ",") != strings.Join(first.MatchedKeywords, ",") {
			t.Fatalf("matched keywords changed between runs")
		}
	}
}

func TestMatcherFindCandidates(t *testing.T) {
	tom := directory.Provider{ID: 5, Skills: "React", Role: directory.RoleProvider}
	twin := directory.Provider{ID: 3, Skills: "React", Role: directory.RoleProvider}
	empty := directory.Provider{ID: 9, Role: directory.RoleProvider}
	designer := directory.Provider{ID: 7, Skills: "Figma, Photoshop", Role: directory.RoleProvider}

	matcher, err := NewMatcher(directory.NewStatic(tom, marie(), empty, designer, twin), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := matcher.FindCandidates(context.Background(), reactQuery, analyzer.SearchFilters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %+v", len(results), results)
	}

	ids := []int64{results[0].Provider.ID, results[1].Provider.ID, results[2].Provider.ID}
	if ids[0] != 1 || ids[1] != 3 || ids[2] != 5 {
		t.Fatalf("unexpected ranking %v", ids)
	}

	for i := 1; i < len(results); i++ {
		if results[i-1].AlgorithmScore < results[i].AlgorithmScore {
			t.Fatalf("results not sorted: %+v", results)
		}
	}
}

func TestMatcherEdgeCases(t *testing.T) {
	matcher, err := NewMatcher(directory.NewStatic(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := matcher.FindCandidates(context.Background(), reactQuery, analyzer.SearchFilters{})
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty result for empty roster, got %v, %v", results, err)
	}

	calls := 0
	counting := directory.Func(func(context.Context) ([]directory.Provider, error) {
		calls++
		return []directory.Provider{marie()}, nil
	})
	matcher, _ = NewMatcher(counting, nil)

	results, err = matcher.FindCandidates(context.Background(), "  ", analyzer.SearchFilters{})
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty result for empty query, got %v, %v", results, err)
	}
	if calls != 0 {
		t.Fatalf("expected roster not to be fetched for empty query")
	}

	boom := errors.New("connection refused")
	failing := directory.Func(func(context.Context) ([]directory.Provider, error) { return nil, boom })
	matcher, _ = NewMatcher(failing, nil)

	if _, err := matcher.FindCandidates(context.Background(), reactQuery, analyzer.SearchFilters{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped directory error, got %v", err)
	}

	if _, err := NewMatcher(nil, nil); !errors.Is(err, ErrDirectoryRequired) {
		t.Fatalf("expected ErrDirectoryRequired, got %v", err)
	}
}

func TestCandidatesExclude(t *testing.T) {
	candidates := NewCandidates([]MatchResult{
		{Provider: directory.Provider{ID: 1}, AlgorithmScore: 50},
		{Provider: directory.Provider{ID: 2}, AlgorithmScore: 40},
		{Provider: directory.Provider{ID: 3}, AlgorithmScore: 30},
	})

	removed := candidates.Exclude([]int64{2, 42})
	if len(removed) != 1 || removed[0] != 2 {
		t.Fatalf("unexpected removed ids: %v", removed)
	}
	if candidates.Len() != 2 || candidates.Items[0].Provider.ID != 1 || candidates.Items[1].Provider.ID != 3 {
		t.Fatalf("unexpected remaining candidates: %+v", candidates.Items)
	}

	if providers := candidates.Providers(); len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}

	var nilCandidates *Candidates
	if nilCandidates.Len() != 0 || nilCandidates.Exclude([]int64{1}) != nil {
		t.Fatal("nil candidates should be empty")
	}
}
