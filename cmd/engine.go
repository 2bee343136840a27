package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/presta-matcher/internal/ai"
	"github.com/spigell/presta-matcher/internal/ai/gemini"
	"github.com/spigell/presta-matcher/internal/ai/mistral"
	"github.com/spigell/presta-matcher/internal/directory"
	"github.com/spigell/presta-matcher/internal/enhancer"
	"github.com/spigell/presta-matcher/internal/filtering"
	"github.com/spigell/presta-matcher/internal/marketplace"
	"github.com/spigell/presta-matcher/internal/matching"
	"github.com/spigell/presta-matcher/internal/search"
	"github.com/spigell/presta-matcher/internal/secrets"
	"github.com/spigell/presta-matcher/internal/server"
)

const (
	DirectoryFile        = "file"
	DirectoryMarketplace = "marketplace"
	DirectoryPostgres    = "postgres"
	DirectoryStatic      = "static"
)

// engine bundles the search service with the resources it holds.
type engine struct {
	service  *search.Service
	closers  []func()
	enhanced bool
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func newEngine(ctx context.Context, config *Config, logger *zap.Logger) (*engine, error) {
	e := &engine{}

	dir, err := newDirectory(config.Directory, logger)
	if err != nil {
		return nil, fmt.Errorf("building provider directory: %w", err)
	}
	if c, ok := dir.(interface{ Close() error }); ok {
		e.closers = append(e.closers, func() {
			if err := c.Close(); err != nil {
				logger.Warn("closing provider directory", zap.Error(err))
			}
		})
	}

	matcher, err := matching.NewMatcher(dir, logger)
	if err != nil {
		e.Close()
		return nil, err
	}

	var enh search.Enhancer
	if config.AI.Enabled {
		oracle, err := newOracle(ctx, config.AI, logger)
		if err != nil {
			// enhancement is optional, searches keep working without it
			logger.Warn("skipping relevance enhancement", zap.Error(err))
		} else {
			en, err := newEnhancer(oracle, config.AI, logger)
			if err != nil {
				e.Close()
				return nil, fmt.Errorf("building enhancer: %w", err)
			}
			e.closers = append(e.closers, en.Close)
			enh = en
			e.enhanced = true
		}
	}

	service, err := search.NewService(matcher, enh, searchOptions(config), logger)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.service = service

	return e, nil
}

func newDirectory(cfg *DirectoryConfig, logger *zap.Logger) (directory.Directory, error) {
	kind := strings.TrimSpace(strings.ToLower(cfg.Type))
	if kind == "" {
		kind = DirectoryFile
	}

	switch kind {
	case DirectoryFile:
		if strings.TrimSpace(cfg.File) == "" {
			return nil, errors.New("directory.file is required for the file directory")
		}
		return directory.NewFile(cfg.File), nil
	case DirectoryStatic:
		return directory.NewStatic(cfg.Providers...), nil
	case DirectoryMarketplace:
		mp := cfg.Marketplace
		if mp == nil || strings.TrimSpace(mp.URL) == "" {
			return nil, errors.New("directory.marketplace.url is required")
		}
		token := ""
		if mp.TokenFile != "" || mp.Token != "" {
			var err error
			token, err = secrets.Load(secrets.Source{
				Name:  "marketplace token",
				File:  mp.TokenFile,
				Value: mp.Token,
			})
			if err != nil {
				return nil, fmt.Errorf("%w (set MARKETPLACE_TOKEN_FILE or directory.marketplace.token-file)", err)
			}
		}
		client := marketplace.New(logger, mp.URL, token)
		if mp.UserAgent != "" {
			client.UserAgent = mp.UserAgent
		}
		return client, nil
	case DirectoryPostgres:
		pg := cfg.Postgres
		if pg == nil {
			return nil, errors.New("directory.postgres section is required")
		}
		dsn, err := secrets.Load(secrets.Source{
			Name:  "postgres dsn",
			File:  pg.DSNFile,
			Value: pg.DSN,
		})
		if err != nil {
			return nil, err
		}
		return directory.OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported directory type: %s", cfg.Type)
	}
}

func newOracle(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.ScoringOracle, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = mistral.Name
	}

	switch provider {
	case mistral.Name:
		mc := cfg.Mistral
		if mc == nil {
			mc = &MistralConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "mistral api key",
			File:  mc.APIKeyFile,
			Value: mc.APIKey,
			Env:   "MISTRAL_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.mistral.api-key-file or MISTRAL_API_KEY)", err)
		}
		oracle, err := mistral.NewOracle(mistral.Config{
			APIKey:       apiKey,
			BaseURL:      mc.BaseURL,
			Model:        mc.Model,
			Temperature:  mc.Temperature,
			MaxLogLength: mc.MaxLogLength,
		}, log)
		if err != nil {
			return nil, err
		}
		return oracle, nil
	case gemini.Name:
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  gc.APIKeyFile,
			Value: gc.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		generator, err := gemini.NewGenerator(ctx, apiKey, gc.Model)
		if err != nil {
			return nil, err
		}
		return gemini.NewOracle(generator, log, gc.MaxLogLength), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newEnhancer(oracle ai.ScoringOracle, cfg *AIConfig, log *zap.Logger) (*enhancer.Enhancer, error) {
	opts := []enhancer.Option{enhancer.WithLogger(log)}
	if cfg.PoolSize > 0 {
		opts = append(opts, enhancer.WithPoolSize(cfg.PoolSize))
	}
	if cfg.Timeout != 0 {
		opts = append(opts, enhancer.WithTimeout(cfg.Timeout))
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, enhancer.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst))
	}
	return enhancer.New(oracle, opts...)
}

func searchOptions(config *Config) search.Options {
	opts := search.DefaultOptions()
	m := config.Matching

	if m.ApplySuggestedFilters != nil {
		opts.ApplySuggestedFilters = *m.ApplySuggestedFilters
	}
	opts.TopK = m.TopK
	opts.ResultLimit = m.ResultLimit
	opts.Filters = &filtering.Config{
		ExcludedProviders: m.ExcludedProviders,
		ExcludeFile:       config.ExcludeFile,
		MinimumScore:      m.MinimumScore,
	}
	opts.Steps = filtering.DefaultSteps

	return opts
}

// serverConfig fills unset listener settings with defaults.
func serverConfig(cfg *server.Config) server.Config {
	defaults := server.DefaultConfig()
	if cfg == nil {
		return defaults
	}
	out := *cfg
	if out.Host == "" {
		out.Host = defaults.Host
	}
	if out.Port == 0 {
		out.Port = defaults.Port
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	return out
}
