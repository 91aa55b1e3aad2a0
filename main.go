package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"datamodeler/internal/config"
	"datamodeler/internal/database"
	"datamodeler/internal/generator"
	"datamodeler/internal/llm"
	"datamodeler/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "datamodeler",
		Short:        "HTTP API that inspects PostgreSQL catalogs and drafts warehouse models",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)
			slog.SetDefault(logger)

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			composer, err := generator.NewComposer(cfg.PromptTemplate)
			if err != nil {
				return err
			}

			catalog := database.NewInspector(cfg.DBSchema, nil, logger)
			gen := llm.NewAnthropicClient(llm.AnthropicConfig{
				APIKey:    cfg.AnthropicAPIKey,
				Model:     cfg.AnthropicModel,
				MaxTokens: cfg.AnthropicMaxTokens,
				BaseURL:   cfg.AnthropicBaseURL,
			}, logger)
			if cfg.AnthropicAPIKey == "" {
				logger.Warn("ANTHROPIC_API_KEY is not set; data model generation will fail")
			}

			logger.Info("Default connection loaded", "conn", cfg.DefaultConnection.String(), "schema", cfg.DBSchema)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.NewServer(cfg, catalog, composer, gen, logger).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", ".env", "Path to .env configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
	}))
}
