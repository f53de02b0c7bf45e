package provider

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/stupiduntilnot/sponsor/internal/conversation"
	"github.com/stupiduntilnot/sponsor/internal/model"
)

// LangChain adapts a langchaingo chat model to the Provider interface.
// OpenAI, Google and Anthropic backends all go through this one adapter.
type LangChain struct {
	llm llms.Model
}

// NewOpenAI builds the hosted-OpenAI provider.
func NewOpenAI(apiKey, modelName string) (*LangChain, error) {
	llm, err := openai.New(openai.WithToken(apiKey), openai.WithModel(modelName))
	if err != nil {
		return nil, errors.Wrap(err, "init openai model")
	}
	return &LangChain{llm: llm}, nil
}

// NewGoogleAI builds the Gemini provider.
func NewGoogleAI(ctx context.Context, apiKey, modelName string) (*LangChain, error) {
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(modelName))
	if err != nil {
		return nil, errors.Wrap(err, "init googleai model")
	}
	return &LangChain{llm: llm}, nil
}

// NewAnthropic builds the Claude provider.
func NewAnthropic(apiKey, modelName string) (*LangChain, error) {
	llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(modelName))
	if err != nil {
		return nil, errors.Wrap(err, "init anthropic model")
	}
	return &LangChain{llm: llm}, nil
}

// ChatCompletion invokes the wrapped chat model with the assembled messages.
func (p *LangChain) ChatCompletion(ctx context.Context, messages []conversation.Message) (model.CompletionResponse, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	resp, err := p.llm.GenerateContent(ctx, content)
	if err != nil {
		return model.CompletionResponse{}, errors.Wrap(err, "generate content")
	}
	if len(resp.Choices) == 0 {
		return model.CompletionResponse{Content: "(empty model response)"}, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		text = "(empty model response)"
	}
	return model.CompletionResponse{Content: text}, nil
}

func chatMessageType(role string) schema.ChatMessageType {
	switch role {
	case conversation.RoleSystem:
		return schema.ChatMessageTypeSystem
	case conversation.RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
