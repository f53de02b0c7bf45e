package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stupiduntilnot/sponsor/internal/config"
	"github.com/stupiduntilnot/sponsor/internal/store"
)

func TestNewStore_None(t *testing.T) {
	st, err := newStore(config.Config{StoreDriver: "none"})
	require.NoError(t, err)
	require.IsType(t, store.Nop{}, st)
}

func TestNewStore_SQLiteDefault(t *testing.T) {
	st, err := newStore(config.Config{StoreDriver: "sqlite", SQLitePath: t.TempDir() + "/chat.db"})
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestProviderOptions_Mapping(t *testing.T) {
	cfg := config.Config{
		Provider:                "anthropic",
		Model:                   "claude-3-5-sonnet-20241022",
		AnthropicAPIKey:         "key",
		OpenAICompatURL:         "http://localhost:1234",
		ProviderScript:          "ok",
		InferenceTimeoutSeconds: 30,
	}
	opts := providerOptions(cfg)
	require.Equal(t, "anthropic", opts.Kind)
	require.Equal(t, "claude-3-5-sonnet-20241022", opts.Model)
	require.Equal(t, "key", opts.APIKey)
	require.Equal(t, float64(30), opts.Timeout.Seconds())
}

func TestRootCmd_HasAddrFlag(t *testing.T) {
	cmd := newRootCmd()
	require.NotNil(t, cmd.Flags().Lookup("addr"))
}
