package domain

import "context"

// Generator is the text completion contract: a fixed instruction block, the
// retrieved menu context, and the user query produce one free-form completion.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// GenerationRequest is a single, stateless completion call.
type GenerationRequest struct {
	Instruction string
	Context     string
	Query       string
}

// GenerationResult carries the raw completion text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
