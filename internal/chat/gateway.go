package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stupiduntilnot/sponsor/internal/conversation"
	"github.com/stupiduntilnot/sponsor/internal/model"
)

// Gateway invokes the single configured provider. Failures are converted to
// *InferenceError at this boundary; there is no retry and no failover.
type Gateway struct {
	provider model.Provider
	name     string
	timeout  time.Duration
}

// NewGateway wraps the provider. name labels the provider in logs and
// errors; timeout bounds each call (0 disables the bound).
func NewGateway(provider model.Provider, name string, timeout time.Duration) *Gateway {
	return &Gateway{provider: provider, name: name, timeout: timeout}
}

// Invoke sends the assembled messages and returns the generated text, or a
// *InferenceError describing the failure.
func (g *Gateway) Invoke(ctx context.Context, messages []conversation.Message) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := g.provider.ChatCompletion(ctx, messages)
	if err != nil {
		log.Warn().Err(err).Str("provider", g.name).Msg("inference call failed")
		return "", &InferenceError{Provider: g.name, Err: err}
	}
	log.Debug().
		Str("provider", g.name).
		Int("messages", len(messages)).
		Int("input_tokens", resp.InputTokens).
		Int("output_tokens", resp.OutputTokens).
		Dur("elapsed", time.Since(started)).
		Msg("inference call completed")
	return resp.Content, nil
}
