package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"example.com/ko-tokenizer/internal/config"
	"example.com/ko-tokenizer/internal/metrics"
	"example.com/ko-tokenizer/internal/server"
	"example.com/ko-tokenizer/internal/tokenizer"
)

var rootCmd = &cobra.Command{
	Use:   "server [port backlog]",
	Short: "Korean morphological tokenizer over HTTP",
	Long: `Serves GET /healthz and POST /tokenize. The request body {"string": "..."}
is split into morphemes with part-of-speech tags and character offsets.

Without arguments the server listens on port 9999 with a backlog of 64.`,
	Args:          validateArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func validateArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("%w: expected <port> <backlog> or nothing, got %d argument(s)", config.ErrInvalidArgs, len(args))
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cfg, err = config.ApplyArgs(cfg, args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.Level}))
	slog.SetDefault(logger)

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	srv := server.New(cfg, logger, tokenizer.NewAnalyzer(), m)
	if err := srv.Start(); err != nil {
		return err
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownSignal)

	select {
	case sig := <-shutdownSignal:
		logger.Info("shutdown requested", slog.String("signal", sig.String()))
	case <-srv.Done():
		if err := srv.Err(); err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return errors.New("http server stopped unexpectedly")
	}

	if err := srv.Stop(cfg.Server.ShutdownGrace); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	return nil
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
	}
}
