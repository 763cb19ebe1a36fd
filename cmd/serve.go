package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koopa0/ragapi/api"
	"github.com/koopa0/ragapi/internal/app"
	"github.com/koopa0/ragapi/internal/config"
	"github.com/koopa0/ragapi/internal/log"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// runServe initializes and starts the HTTP API server.
func runServe(addr string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if addr == "" {
		addr = cfg.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(log.Config{JSON: true})
	logger.Info("starting ragapi", "version", Version)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	srv := api.NewServer(a.Orchestrator, a.DBPool, logger)
	if err := srv.Run(ctx, addr); err != nil {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}
