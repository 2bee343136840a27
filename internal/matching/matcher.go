// Package matching scores the provider roster against a client request and
// ranks the result.
package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spigell/presta-matcher/internal/analyzer"
	"github.com/spigell/presta-matcher/internal/directory"
	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/metrics"
	"go.uber.org/zap"
)

var ErrDirectoryRequired = errors.New("provider directory is required")

type Matcher struct {
	directory directory.Directory
	logger    *zap.Logger
}

func NewMatcher(dir directory.Directory, log *zap.Logger) (*Matcher, error) {
	if dir == nil {
		return nil, ErrDirectoryRequired
	}
	return &Matcher{directory: dir, logger: logger.OrNop(log)}, nil
}

// FindCandidates extracts keywords from query and ranks the roster.
func (m *Matcher) FindCandidates(ctx context.Context, query string, filters analyzer.SearchFilters) ([]MatchResult, error) {
	return m.Rank(ctx, analyzer.ExtractKeywords(query), filters)
}

// Rank fetches the roster once, scores every provider and returns the ones
// with a positive score, best first. Equal scores are ordered by provider id.
func (m *Matcher) Rank(ctx context.Context, keywords analyzer.Keywords, filters analyzer.SearchFilters) ([]MatchResult, error) {
	if len(keywords) == 0 {
		m.logger.Debug("no keywords extracted, skipping roster")
		return []MatchResult{}, nil
	}

	roster, err := m.directory.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	metrics.SetRosterSize(len(roster))

	results := make([]MatchResult, 0, len(roster))
	for _, provider := range roster {
		result := Score(provider, keywords, filters)
		if result.AlgorithmScore <= 0 {
			continue
		}
		results = append(results, result)
	}

	SortByScore(results)

	m.logger.Debug("roster scored",
		zap.Int("roster", len(roster)),
		zap.Int("candidates", len(results)),
		zap.Strings("keywords", keywords),
	)

	return results, nil
}

// SortByScore orders results by descending score, then ascending provider id.
func SortByScore(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].AlgorithmScore != results[j].AlgorithmScore {
			return results[i].AlgorithmScore > results[j].AlgorithmScore
		}
		return results[i].Provider.ID < results[j].Provider.ID
	})
}
