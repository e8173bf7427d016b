package ai

import (
	"context"
	"fmt"
	"time"

	"video-judge/shared/config"
	"video-judge/shared/logging"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// contentGenerator is the part of *genai.Models the evaluator uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiEvaluator struct {
	models       contentGenerator
	model        string
	systemPrompt string
	temperature  float32
	logger       *zap.SugaredLogger
}

func NewGeminiEvaluator(ctx context.Context, cfg config.AIConfig, systemPrompt string, logger *zap.SugaredLogger) (*GeminiEvaluator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEvaluator{
		models:       client.Models,
		model:        cfg.Model,
		systemPrompt: systemPrompt,
		temperature:  cfg.Temperature,
		logger:       logging.OrNop(logger),
	}, nil
}

func (g *GeminiEvaluator) Evaluate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.models.GenerateContent(ctx, g.model, contents, g.buildConfig())
	if err != nil {
		return "", &GenerationError{Provider: config.ProviderGemini, Err: err}
	}

	text := result.Text()
	if text == "" && len(result.Candidates) > 0 && result.Candidates[0] != nil {
		g.logger.Warnw("Empty Gemini response", "finish_reason", result.Candidates[0].FinishReason)
	}

	g.logger.Debugw("Gemini evaluation finished",
		"model", g.model,
		"prompt_chars", len(prompt),
		"response_chars", len(text),
		"duration", time.Since(start),
	)

	return checkText(config.ProviderGemini, text)
}

func (g *GeminiEvaluator) buildConfig() *genai.GenerateContentConfig {
	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if g.systemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: g.systemPrompt}},
		}
	}
	return cfg
}
