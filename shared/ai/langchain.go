package ai

import (
	"context"
	"fmt"
	"time"

	"video-judge/shared/config"
	"video-judge/shared/logging"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// LangChainEvaluator runs the prompt through any langchaingo model. The
// configured provider uses a local Ollama server.
type LangChainEvaluator struct {
	llm          llms.Model
	provider     string
	systemPrompt string
	temperature  float64
	logger       *zap.SugaredLogger
}

func NewOllamaEvaluator(cfg config.AIConfig, systemPrompt string, logger *zap.SugaredLogger) (*LangChainEvaluator, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.OllamaURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.OllamaURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return NewLangChainEvaluator(llm, config.ProviderOllama, systemPrompt, cfg.Temperature, logger), nil
}

func NewLangChainEvaluator(llm llms.Model, provider, systemPrompt string, temperature float32, logger *zap.SugaredLogger) *LangChainEvaluator {
	return &LangChainEvaluator{
		llm:          llm,
		provider:     provider,
		systemPrompt: systemPrompt,
		temperature:  float64(temperature),
		logger:       logging.OrNop(logger),
	}
}

func (l *LangChainEvaluator) Evaluate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	var messages []llms.MessageContent
	if l.systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, l.systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := l.llm.GenerateContent(ctx, messages, llms.WithTemperature(l.temperature))
	if err != nil {
		return "", &GenerationError{Provider: l.provider, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: l.provider, Err: ErrEmptyResponse}
	}

	text := resp.Choices[0].Content
	l.logger.Debugw("LangChain evaluation finished",
		"provider", l.provider,
		"response_chars", len(text),
		"duration", time.Since(start),
	)

	return checkText(l.provider, text)
}
