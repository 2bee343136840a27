// Package enhancer asks a scoring oracle for a second opinion on the best
// algorithmic candidates and fuses both scores.
package enhancer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/spigell/presta-matcher/internal/ai"
	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/matching"
	"github.com/spigell/presta-matcher/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultPoolSize = 4
	DefaultTimeout  = 15 * time.Second
)

var ErrOracleRequired = errors.New("scoring oracle is required")

// Enhancer fans oracle calls out on a bounded worker pool. It is safe for
// concurrent use and must be closed to release the pool.
type Enhancer struct {
	oracle     ai.ScoringOracle
	oracleName string
	pool       *ants.Pool
	poolSize   int
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type Option func(*Enhancer) error

// WithPoolSize bounds the number of concurrent oracle calls.
func WithPoolSize(size int) Option {
	return func(e *Enhancer) error {
		if size < 1 {
			size = 1
		}
		e.poolSize = size
		return nil
	}
}

// WithTimeout bounds each oracle call. Zero disables the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Enhancer) error {
		if d < 0 {
			return fmt.Errorf("negative oracle timeout %s", d)
		}
		e.timeout = d
		return nil
	}
}

// WithRateLimit caps oracle calls per second. A non-positive rate disables it.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(e *Enhancer) error {
		if perSecond <= 0 {
			e.limiter = nil
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Enhancer) error {
		e.logger = logger.OrNop(log)
		return nil
	}
}

func New(oracle ai.ScoringOracle, opts ...Option) (*Enhancer, error) {
	if oracle == nil {
		return nil, ErrOracleRequired
	}

	e := &Enhancer{
		oracle:   oracle,
		poolSize: DefaultPoolSize,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	name, model := ai.Describe(oracle)
	e.oracleName = name
	e.logger = logger.WithOracle(e.logger, name, model)

	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create oracle pool: %w", err)
	}
	e.pool = pool

	return e, nil
}

// Enhance scores every candidate with the oracle. The result has one entry
// per candidate in the same order; a failed call never affects its siblings.
func (e *Enhancer) Enhance(ctx context.Context, candidates []matching.MatchResult, query string) []EnhancedResult {
	results := make([]EnhancedResult, len(candidates))

	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results[i] = e.enhanceOne(ctx, candidates[i], query)
		})
		if err != nil {
			wg.Done()
			e.logger.Warn("oracle pool rejected candidate",
				zap.Int64(logger.FieldProviderID, candidates[i].Provider.ID),
				zap.Error(err),
			)
			analysis := failed()
			e.record(analysis.Status)
			results[i] = newResult(candidates[i], &analysis)
		}
	}
	wg.Wait()

	return results
}

func (e *Enhancer) enhanceOne(ctx context.Context, candidate matching.MatchResult, query string) (result EnhancedResult) {
	log := e.logger.With(zap.Int64(logger.FieldProviderID, candidate.Provider.ID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("oracle call panicked", zap.Any("panic", r))
			analysis := failed()
			e.record(analysis.Status)
			result = newResult(candidate, &analysis)
		}
	}()

	analysis := e.analyze(ctx, log, candidate, query)
	e.record(analysis.Status)

	return newResult(candidate, &analysis)
}

func (e *Enhancer) analyze(ctx context.Context, log *zap.Logger, candidate matching.MatchResult, query string) AIAnalysis {
	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(callCtx); err != nil {
			log.Warn("oracle rate limit wait failed", zap.Error(err))
			return failed()
		}
	}

	raw, err := e.oracle.Score(callCtx, ProfileSummary(candidate.Provider, candidate.AlgorithmScore), query)
	if err != nil {
		log.Warn("oracle call failed", zap.Error(err))
		return failed()
	}

	analysis, err := interpret(raw)
	if err != nil {
		log.Warn("oracle response rejected", zap.Error(err))
		return analysis
	}

	log.Debug("oracle scored candidate",
		zap.Int("algorithm_score", candidate.AlgorithmScore),
		zap.Int("ai_score", analysis.Score),
	)

	return analysis
}

func (e *Enhancer) record(status Status) {
	metrics.IncOracleCall(e.oracleName, string(status))
}

// Close releases the worker pool. Enhance must not be called afterwards.
func (e *Enhancer) Close() {
	if e != nil && e.pool != nil {
		e.pool.Release()
	}
}
