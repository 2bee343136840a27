package gemini

import (
	"context"
	"unicode/utf8"

	"github.com/spigell/presta-matcher/internal/ai"
	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/utils"
	"go.uber.org/zap"
)

const Name = "gemini"

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Oracle scores providers with Gemini.
type Oracle struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

var _ ai.ScoringOracle = (*Oracle)(nil)

func NewOracle(generator contentGenerator, log *zap.Logger, maxLogLength int) *Oracle {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Oracle{
		generator: generator,
		logger:    logger.WithOracle(log, Name, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (o *Oracle) Score(ctx context.Context, profileSummary, query string) (string, error) {
	prompt := ai.BuildPrompt(profileSummary, query)

	o.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, o.maxLogLen)),
	)

	raw, err := o.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	o.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, o.maxLogLen)),
	)

	return raw, nil
}

func (o *Oracle) Name() string { return Name }

func (o *Oracle) Model() string { return o.generator.Model() }
