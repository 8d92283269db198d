// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"luna-bot/config"
	"luna-bot/internal/analysis"
	"luna-bot/internal/bot"
	"luna-bot/internal/db"
	"luna-bot/internal/gemini"
	"luna-bot/internal/gpt"
	"luna-bot/internal/server"
	"luna-bot/internal/session"
	"luna-bot/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "luna-bot",
		Short:         "Luna AI stylist Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the users table in the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	})
	return root
}

func newLogger(cfg *config.Config) *logger.Logger {
	if cfg != nil && cfg.Log.Development {
		return logger.NewDevelopment()
	}
	return logger.New()
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	l := newLogger(cfg)
	if err := cfg.ValidateStore(); err != nil {
		l.Error("Invalid store configuration", "error", err)
		return err
	}

	store, err := db.Open(cfg, l)
	if err != nil {
		l.Error("Failed to open store", "error", err)
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		l.Error("Migration failed", "error", err)
		return err
	}
	l.Info("Migration complete", "driver", cfg.Store.Driver)
	return nil
}

func newAnalyzer(ctx context.Context, cfg *config.Config) (analysis.Analyzer, error) {
	switch cfg.Analysis.Provider {
	case config.ProviderOpenAI:
		return gpt.NewClient(cfg.GPT.APIKey).WithModel(cfg.GPT.Model), nil
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Analysis.Provider)
	}
}

func runBot(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Error("Failed to load config", "error", err)
		return err
	}
	l := newLogger(cfg)
	l.Info("Starting Luna stylist bot...")

	// Missing credentials are fatal: do not start serving
	if err := cfg.Validate(); err != nil {
		l.Error("Invalid configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(cfg, l)
	if err != nil {
		l.Error("Failed to open store", "error", err)
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		l.Error("Failed to prepare store", "error", err)
		return err
	}

	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		l.Error("Failed to create analysis client", "error", err)
		return err
	}
	l.Info("Analysis client ready", "analyzer", analyzer.Name(), "timeout", cfg.Analysis.Timeout)

	telegramBot, err := bot.NewTelegramBot(cfg.Telegram.Token, cfg.Telegram.Debug, l)
	if err != nil {
		l.Error("Failed to create Telegram bot", "error", err)
		return err
	}

	controller := bot.NewController(telegramBot, analyzer, db.Serialize(store), session.NewStore(cfg.Session.TTL), l, bot.Options{
		OperatorChatID:  cfg.Admin.ChatID,
		AnalysisTimeout: cfg.Analysis.Timeout,
		Lexicon:         analysis.LexiconFor(cfg.Analysis.Language),
	})

	httpServer := server.NewServer(cfg.Server.Port, store, l)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return telegramBot.Run(gctx, controller.HandleEvent)
	})
	g.Go(func() error {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("Shutting down bot...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			l.Error("Error during HTTP server shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		l.Error("Bot stopped with error", "error", err)
		return err
	}
	l.Info("Bot stopped successfully")
	return nil
}
