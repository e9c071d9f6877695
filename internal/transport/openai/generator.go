package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/akshaykn0797/menudex/internal/domain"
	"github.com/akshaykn0797/menudex/internal/metrics"
)

// Generator is a chat-completion provider using the OpenAI API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI chat-completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		logger:      cfg.Logger,
	}
}

// Generate runs one chat completion with the instruction as the system
// message and the retrieved context inlined ahead of the user query. The
// response format is pinned to a JSON object.
func (g *Generator) Generate(
	ctx context.Context, genReq domain.GenerationRequest,
) (domain.GenerationResult, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: genReq.Instruction},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(genReq)},
		},
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, g.logger, func(ctx context.Context) error {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}

		start := time.Now()
		var callErr error
		resp, callErr = g.client.CreateChatCompletion(callCtx, req)
		duration := time.Since(start)

		if callErr != nil {
			metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
			return parseAPIError(callErr, domain.ErrGenerationProvider)
		}

		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
		metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())
		return nil
	})
	if err != nil {
		return domain.GenerationResult{}, err
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return domain.GenerationResult{}, fmt.Errorf(
			"empty completion response: %w", domain.ErrGenerationProvider,
		)
	}

	if resp.Usage.TotalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(g.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(g.model, "completion").
			Add(float64(resp.Usage.CompletionTokens))
	}

	return domain.GenerationResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

func buildUserMessage(req domain.GenerationRequest) string {
	if req.Context == "" {
		return "Menu context: (empty)\n\nUser Query: " + req.Query
	}
	return "Menu context:\n" + req.Context + "\n\nUser Query: " + req.Query
}
