package provider

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/stupiduntilnot/sponsor/internal/model"
)

// Options selects and configures the single provider for this process.
type Options struct {
	Kind    string // openai | googleai | anthropic | openai-compat | script
	Model   string
	APIKey  string
	BaseURL string // openai-compat chat-completions URL
	Script  string // script provider action list
	Timeout time.Duration
}

// New builds the configured provider. The selection is fixed for the
// process lifetime; there is no runtime switching.
func New(ctx context.Context, opts Options) (model.Provider, error) {
	switch opts.Kind {
	case "openai":
		return NewOpenAI(opts.APIKey, opts.Model)
	case "googleai":
		return NewGoogleAI(ctx, opts.APIKey, opts.Model)
	case "anthropic":
		return NewAnthropic(opts.APIKey, opts.Model)
	case "openai-compat":
		if opts.BaseURL == "" {
			return nil, errors.New("openai-compat provider requires a base URL")
		}
		return NewOpenAICompat(opts.APIKey, opts.BaseURL, opts.Model, opts.Timeout), nil
	case "script":
		return NewScript(opts.Script)
	default:
		return nil, errors.Errorf("unsupported provider: %s", opts.Kind)
	}
}
