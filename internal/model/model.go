package model

import (
	"context"

	"github.com/stupiduntilnot/sponsor/internal/conversation"
)

// CompletionResponse is the common response model for model providers.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// Provider is the model provider abstraction behind the inference gateway.
// Exactly one provider is configured at process start.
type Provider interface {
	ChatCompletion(ctx context.Context, messages []conversation.Message) (CompletionResponse, error)
}
