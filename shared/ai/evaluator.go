package ai

import (
	"context"
	"fmt"
	"strings"

	"video-judge/shared/config"
	"video-judge/shared/logging"

	"go.uber.org/zap"
)

// Evaluator sends one prompt to a generation backend and returns its text.
// Implementations make exactly one outbound call per Evaluate and never retry.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (string, error)
}

// NewEvaluator picks the backend named by cfg.AI.Provider.
func NewEvaluator(ctx context.Context, cfg *config.Config, systemPrompt string, logger *zap.SugaredLogger) (Evaluator, error) {
	logger = logging.OrNop(logger)

	switch cfg.AI.Provider {
	case config.ProviderGemini:
		return NewGeminiEvaluator(ctx, cfg.AI, systemPrompt, logger)
	case config.ProviderOpenAI:
		return NewOpenAIEvaluator(cfg.AI, systemPrompt, logger), nil
	case config.ProviderOllama:
		return NewOllamaEvaluator(cfg.AI, systemPrompt, logger)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// checkText turns a backend answer into the Evaluate result.
func checkText(provider, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Provider: provider, Err: ErrEmptyResponse}
	}
	return text, nil
}
