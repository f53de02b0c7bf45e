package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stupiduntilnot/sponsor/internal/chat"
	"github.com/stupiduntilnot/sponsor/internal/config"
	"github.com/stupiduntilnot/sponsor/internal/conversation"
	"github.com/stupiduntilnot/sponsor/internal/provider"
	"github.com/stupiduntilnot/sponsor/internal/store"
	"github.com/stupiduntilnot/sponsor/internal/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("sponsor-server failed")
	}
}

func newRootCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:          "sponsor-server",
		Short:        "Web chat server for the counselor assistant",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SPONSOR_ADDR)")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	setupLogging(cfg.LogLevel)

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

	sessions := web.NewSessionManager(
		time.Duration(cfg.SessionIdleSeconds)*time.Second,
		time.Duration(cfg.EvictIntervalSeconds)*time.Second,
	)
	sessions.StartEvictionLoop(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewRouter(orch, sessions, st),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", cfg.Addr).
			Str("provider", cfg.Provider).
			Str("store", cfg.StoreDriver).
			Msg("sponsor-server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
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
