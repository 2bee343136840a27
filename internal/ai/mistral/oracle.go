// Package mistral scores providers with Mistral's OpenAI-compatible chat API.
package mistral

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/presta-matcher/internal/ai"
	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/utils"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const (
	Name = "mistral"

	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-small"

	defaultMaxLogLength = 200
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float64
	MaxLogLength int
}

type chatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Oracle sends the scoring prompt as a single user message in JSON mode.
type Oracle struct {
	client      chatModel
	model       string
	temperature float64
	logger      *zap.Logger
	maxLogLen   int
}

var _ ai.ScoringOracle = (*Oracle)(nil)

func NewOracle(cfg Config, log *zap.Logger) (*Oracle, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("mistral api key is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create mistral client: %w", err)
	}

	return newOracle(client, model, cfg.Temperature, cfg.MaxLogLength, log), nil
}

func newOracle(client chatModel, model string, temperature float64, maxLogLength int, log *zap.Logger) *Oracle {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Oracle{
		client:      client,
		model:       model,
		temperature: temperature,
		logger:      logger.WithOracle(log, Name, model),
		maxLogLen:   maxLogLength,
	}
}

func (o *Oracle) Score(ctx context.Context, profileSummary, query string) (string, error) {
	prompt := ai.BuildPrompt(profileSummary, query)

	o.logger.Debug("mistral chat request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, o.maxLogLen)),
	)

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := o.client.GenerateContent(ctx, content, llms.WithTemperature(o.temperature), llms.WithJSONMode())
	if err != nil {
		return "", fmt.Errorf("mistral chat completion: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", errors.New("mistral returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Content)
	if raw == "" {
		return "", errors.New("mistral returned empty response")
	}

	o.logger.Debug("mistral chat response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, o.maxLogLen)),
	)

	return raw, nil
}

func (o *Oracle) Name() string { return Name }

func (o *Oracle) Model() string { return o.model }
