package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stupiduntilnot/sponsor/internal/chat"
	"github.com/stupiduntilnot/sponsor/internal/config"
	"github.com/stupiduntilnot/sponsor/internal/conversation"
	"github.com/stupiduntilnot/sponsor/internal/provider"
	"github.com/stupiduntilnot/sponsor/internal/store"
)

// Terminal adapter over the same turn contract the web UI uses. One
// conversation per process run; Ctrl-D ends the session.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("sponsor-cli failed")
	}
}

func newRootCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:          "sponsor-cli",
		Short:        "Terminal chat with the counselor assistant",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, userID)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "cli", "user id for persisted history")
	return cmd
}

func run(ctx context.Context, cfg config.Config, userID string) error {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	prov, err := provider.New(ctx, providerOptions(cfg))
	if err != nil {
		return err
	}
	gateway := chat.NewGateway(prov, cfg.Provider, time.Duration(cfg.InferenceTimeoutSeconds)*time.Second)
	orch := chat.NewOrchestrator(cfg.SystemPrompt, &conversation.StandardAssembler{}, gateway, st)

	fmt.Println("Type a message and press Enter. Ctrl-D to quit.")
	var history conversation.History
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		history, _ = orch.HandleTurn(ctx, userID, text, history)
		last := history[len(history)-1]
		fmt.Println(*last.BotText)

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
	return scanner.Err()
}

func providerOptions(cfg config.Config) provider.Options {
	return provider.Options{
		Kind:    cfg.Provider,
		Model:   cfg.Model,
		APIKey:  cfg.ProviderAPIKey(),
		BaseURL: cfg.OpenAICompatURL,
		Script:  cfg.ProviderScript,
		Timeout: time.Duration(cfg.InferenceTimeoutSeconds) * time.Second,
	}
}

func newStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return store.OpenPostgres(cfg.PostgresDSN)
	case "none":
		return store.Nop{}, nil
	default:
		return store.OpenSQLite(cfg.SQLitePath)
	}
}
