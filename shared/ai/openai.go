package ai

import (
	"context"
	"time"

	"video-judge/shared/config"
	"video-judge/shared/logging"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIEvaluator talks to any OpenAI-compatible chat endpoint, including
// OpenRouter when BaseURL points there.
type OpenAIEvaluator struct {
	client       *openai.Client
	model        string
	systemPrompt string
	temperature  float32
	logger       *zap.SugaredLogger
}

func NewOpenAIEvaluator(cfg config.AIConfig, systemPrompt string, logger *zap.SugaredLogger) *OpenAIEvaluator {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIEvaluator{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: systemPrompt,
		temperature:  cfg.Temperature,
		logger:       logging.OrNop(logger),
	}
}

func (o *OpenAIEvaluator) Evaluate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	var messages []openai.ChatCompletionMessage
	if o.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: o.systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", &GenerationError{Provider: config.ProviderOpenAI, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: config.ProviderOpenAI, Err: ErrEmptyResponse}
	}

	text := resp.Choices[0].Message.Content
	o.logger.Debugw("OpenAI evaluation finished",
		"model", o.model,
		"finish_reason", resp.Choices[0].FinishReason,
		"total_tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start),
	)

	return checkText(config.ProviderOpenAI, text)
}
