package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// DefaultSystemPrompt is the fixed counselor persona sent as the system
// message on every inference call.
const DefaultSystemPrompt = `You are an Alcoholics Anonymous (AA) counselor. Your role is to provide support, guidance, and encouragement to individuals struggling with alcohol addiction.
You should respond with empathy, understanding, and non-judgmental advice. Your goal is to help the user reflect on their situation, consider the 12-step program,
and provide resources or coping strategies when appropriate. Always maintain a supportive and compassionate tone.

Keep responses to 100 words or less.`

// Config holds all process configuration, read once at startup from the
// environment. There is no runtime reconfiguration.
type Config struct {
	Addr     string
	LogLevel string

	Provider        string // openai | googleai | anthropic | openai-compat | script
	Model           string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	AnthropicAPIKey string
	OpenAICompatURL string
	ProviderScript  string
	SystemPrompt    string

	InferenceTimeoutSeconds int

	StoreDriver string // sqlite | postgres | none
	SQLitePath  string
	PostgresDSN string

	SessionIdleSeconds   int
	EvictIntervalSeconds int
}

// Load reads configuration from environment variables and validates the
// provider/store selections.
func Load() (Config, error) {
	cfg := Config{
		Addr:     envOrDefault("SPONSOR_ADDR", ":8080"),
		LogLevel: envOrDefault("SPONSOR_LOG_LEVEL", "info"),

		Provider:        envOrDefault("SPONSOR_PROVIDER", "openai"),
		Model:           envOrDefault("SPONSOR_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAICompatURL: os.Getenv("SPONSOR_OPENAI_COMPAT_URL"),
		ProviderScript:  envOrDefault("SPONSOR_PROVIDER_SCRIPT", "ok"),
		SystemPrompt:    envOrDefault("SPONSOR_SYSTEM_PROMPT", DefaultSystemPrompt),

		InferenceTimeoutSeconds: envIntOrDefault("SPONSOR_INFERENCE_TIMEOUT_SECONDS", 60),

		StoreDriver: envOrDefault("SPONSOR_STORE", "sqlite"),
		SQLitePath:  envOrDefault("SPONSOR_SQLITE_PATH", "data/sponsor.db"),
		PostgresDSN: os.Getenv("SPONSOR_POSTGRES_DSN"),

		SessionIdleSeconds:   envIntOrDefault("SPONSOR_SESSION_IDLE_SECONDS", 1800),
		EvictIntervalSeconds: envIntOrDefault("SPONSOR_EVICT_INTERVAL_SECONDS", 60),
	}

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return Config{}, errors.New("OPENAI_API_KEY is required when SPONSOR_PROVIDER=openai")
		}
	case "googleai":
		if cfg.GoogleAPIKey == "" {
			return Config{}, errors.New("GOOGLE_API_KEY is required when SPONSOR_PROVIDER=googleai")
		}
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return Config{}, errors.New("ANTHROPIC_API_KEY is required when SPONSOR_PROVIDER=anthropic")
		}
	case "openai-compat":
		if cfg.OpenAICompatURL == "" {
			return Config{}, errors.New("SPONSOR_OPENAI_COMPAT_URL is required when SPONSOR_PROVIDER=openai-compat")
		}
	case "script":
	default:
		return Config{}, errors.Errorf("unsupported SPONSOR_PROVIDER: %s", cfg.Provider)
	}

	switch cfg.StoreDriver {
	case "sqlite", "none":
	case "postgres":
		if cfg.PostgresDSN == "" {
			return Config{}, errors.New("SPONSOR_POSTGRES_DSN is required when SPONSOR_STORE=postgres")
		}
	default:
		return Config{}, errors.Errorf("unsupported SPONSOR_STORE: %s", cfg.StoreDriver)
	}

	return cfg, nil
}

// ProviderAPIKey returns the API key matching the configured provider.
func (c Config) ProviderAPIKey() string {
	switch c.Provider {
	case "googleai":
		return c.GoogleAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
