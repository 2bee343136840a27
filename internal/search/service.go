// Package search is the caller-facing boundary of the matching engine.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spigell/presta-matcher/internal/analyzer"
	"github.com/spigell/presta-matcher/internal/enhancer"
	"github.com/spigell/presta-matcher/internal/filtering"
	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/matching"
	"github.com/spigell/presta-matcher/internal/metrics"
	"go.uber.org/zap"
)

const (
	DefaultTopK        = 10
	DefaultResultLimit = 8

	// FailureMessage is the only error text callers ever see.
	FailureMessage = "La recherche a échoué, veuillez réessayer plus tard."
)

var ErrRankerRequired = errors.New("ranker is required")

type Request struct {
	Query          string                  `json:"query"`
	Filters        *analyzer.SearchFilters `json:"filters,omitempty"`
	UseEnhancement bool                    `json:"useEnhancement,omitempty"`

	// ID is reused as the response request id when set.
	ID string `json:"-"`
}

type Response struct {
	Success        bool                      `json:"success"`
	RequestID      string                    `json:"requestId"`
	Results        []enhancer.EnhancedResult `json:"results"`
	SearchAnalysis analyzer.SearchAnalysis   `json:"searchAnalysis"`
	Error          string                    `json:"error,omitempty"`
}

// Ranker is satisfied by *matching.Matcher.
type Ranker interface {
	Rank(ctx context.Context, keywords analyzer.Keywords, filters analyzer.SearchFilters) ([]matching.MatchResult, error)
}

// Enhancer is satisfied by *enhancer.Enhancer.
type Enhancer interface {
	Enhance(ctx context.Context, candidates []matching.MatchResult, query string) []enhancer.EnhancedResult
}

type Options struct {
	// ApplySuggestedFilters merges the analyzer's suggested price bounds
	// under the caller's filters.
	ApplySuggestedFilters bool
	TopK                  int
	ResultLimit           int
	Filters               *filtering.Config
	// Steps builds the filter chain for one search. Steps keep validated
	// state, so a chain is never shared between concurrent searches.
	Steps func() []filtering.Filter
}

func DefaultOptions() Options {
	return Options{
		ApplySuggestedFilters: true,
		TopK:                  DefaultTopK,
		ResultLimit:           DefaultResultLimit,
	}
}

type Service struct {
	ranker   Ranker
	enhancer Enhancer
	opts     Options
	logger   *zap.Logger
}

// NewService wires the ranking pipeline. enhancer may be nil, in which case
// enhancement requests fall back to algorithmic scores.
func NewService(ranker Ranker, enh Enhancer, opts Options, log *zap.Logger) (*Service, error) {
	if ranker == nil {
		return nil, ErrRankerRequired
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = DefaultResultLimit
	}

	return &Service{
		ranker:   ranker,
		enhancer: enh,
		opts:     opts,
		logger:   logger.OrNop(log),
	}, nil
}

// EnhancementAvailable reports whether an oracle is configured.
func (s *Service) EnhancementAvailable() bool {
	return s.enhancer != nil
}

// Search never returns an error: failures are reported with Success=false,
// an empty result list and a generic message.
func (s *Service) Search(ctx context.Context, req Request) (resp *Response) {
	started := time.Now()
	requestID := req.ID
	if requestID == "" {
		requestID = ulid.Make().String()
	}
	log := logger.WithRequest(s.logger, requestID)

	keywords, analysis := analyzer.Analyze(req.Query)
	resp = &Response{
		RequestID:      requestID,
		Results:        []enhancer.EnhancedResult{},
		SearchAnalysis: analysis,
	}

	enhanced := req.UseEnhancement && s.enhancer != nil

	defer func() {
		if r := recover(); r != nil {
			log.Error("search panicked", zap.Any("panic", r))
			s.fail(resp)
		}

		outcome := metrics.SearchOK
		switch {
		case !resp.Success:
			outcome = metrics.SearchFailed
		case len(resp.Results) == 0:
			outcome = metrics.SearchEmpty
		}
		metrics.IncSearch(outcome)
		metrics.ObserveSearchDuration(enhanced, time.Since(started))

		log.Info("search finished",
			zap.String("outcome", outcome),
			zap.Int("results", len(resp.Results)),
			zap.Duration("took", time.Since(started)),
		)
	}()

	filters := s.effectiveFilters(analysis, req.Filters)
	log.Debug("search started",
		zap.String("query", req.Query),
		zap.Strings("keywords", keywords),
		zap.String("category", analysis.Category),
		zap.Bool("enhance", enhanced),
	)

	candidates, err := s.ranker.Rank(ctx, keywords, filters)
	if err != nil {
		log.Error("ranking failed", zap.Error(err))
		s.fail(resp)
		return resp
	}

	if s.opts.Steps != nil {
		narrowed, err := filtering.Run(ctx, s.opts.Filters, filtering.Deps{Logger: log}, s.opts.Steps(), matching.NewCandidates(candidates))
		if err != nil {
			log.Error("candidate filtering failed", zap.Error(err))
			s.fail(resp)
			return resp
		}
		candidates = narrowed.Items
	}

	results := s.finalize(ctx, candidates, req.Query, enhanced)

	resp.Success = true
	resp.Results = results
	return resp
}

func (s *Service) effectiveFilters(analysis analyzer.SearchAnalysis, caller *analyzer.SearchFilters) analyzer.SearchFilters {
	if !s.opts.ApplySuggestedFilters {
		return analyzer.SearchFilters{}.Merge(caller)
	}
	return analysis.SuggestedFilters.Merge(caller)
}

// finalize enhances the top-K, re-sorts by final score and truncates.
func (s *Service) finalize(ctx context.Context, candidates []matching.MatchResult, query string, enhanced bool) []enhancer.EnhancedResult {
	var results []enhancer.EnhancedResult
	if enhanced && len(candidates) > 0 {
		k := s.opts.TopK
		if k > len(candidates) {
			k = len(candidates)
		}
		results = append(results, s.enhancer.Enhance(ctx, candidates[:k], query)...)
		results = append(results, enhancer.PassThrough(candidates[k:])...)
	} else {
		results = enhancer.PassThrough(candidates)
	}

	SortByFinalScore(results)

	if len(results) > s.opts.ResultLimit {
		results = results[:s.opts.ResultLimit]
	}
	return results
}

func (s *Service) fail(resp *Response) {
	resp.Success = false
	resp.Results = []enhancer.EnhancedResult{}
	resp.Error = FailureMessage
}

// SortByFinalScore orders by final score, then algorithmic score, then id.
func SortByFinalScore(results []enhancer.EnhancedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.AlgorithmScore != b.AlgorithmScore {
			return a.AlgorithmScore > b.AlgorithmScore
		}
		return a.Provider.ID < b.Provider.ID
	})
}

// Describe summarizes a response for logs and the CLI.
func Describe(resp *Response) string {
	if resp == nil {
		return "no response"
	}
	if !resp.Success {
		return fmt.Sprintf("search %s failed: %s", resp.RequestID, resp.Error)
	}
	return fmt.Sprintf("search %s: %d result(s), category %q, complexity %s",
		resp.RequestID, len(resp.Results), resp.SearchAnalysis.Category, resp.SearchAnalysis.Complexity)
}
