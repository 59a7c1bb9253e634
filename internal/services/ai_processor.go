package services

import (
	"context"
	"fmt"
	"time"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/metrics"
	"neuron_backoffice/pkg/llm"

	"go.uber.org/zap"
)

const (
	aiTemperature     = 0.7
	aiMaxOutputTokens = 500
)

// AIProcessor runs the qualification prompt against the configured model.
type AIProcessor interface {
	Generate(ctx context.Context, messages []llm.Message) (*llm.Response, error)
}

type aiProcessor struct {
	provider llm.Provider
	config   llm.Config
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAIProcessor binds the provider to the persona's system prompt and the
// finalize declaration. An empty model falls back to the provider default.
func NewAIProcessor(provider llm.Provider, model string, persona Persona, timeout time.Duration, logger *zap.Logger) AIProcessor {
	if model == "" {
		model = provider.DefaultModel()
	}
	logger.Info("ai provider selected", zap.String("provider", provider.Name()), zap.String("model", model))

	return &aiProcessor{
		provider: provider,
		config: llm.Config{
			Model:             model,
			SystemInstruction: persona.SystemPrompt(),
			Temperature:       aiTemperature,
			MaxOutputTokens:   aiMaxOutputTokens,
			Functions:         []llm.FunctionDeclaration{FinalizeDeclaration()},
		},
		timeout: timeout,
		logger:  logger,
	}
}

func (a *aiProcessor) Generate(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	response, err := a.provider.GenerateContent(ctx, messages, a.config)
	if err != nil {
		metrics.ObserveLLMRequest(a.provider.Name(), "error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGenerationFailed, err)
	}
	metrics.ObserveLLMRequest(a.provider.Name(), "ok", time.Since(start))

	if response.Usage != nil {
		metrics.AddLLMTokens(a.provider.Name(), response.Usage.PromptTokens, response.Usage.CompletionTokens)
	}
	a.logger.Debug("ai response",
		zap.String("provider", a.provider.Name()),
		zap.Int("messages", len(messages)),
		zap.Int("function_calls", len(response.FunctionCalls)),
	)
	return response, nil
}
