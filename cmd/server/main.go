package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/textworld/internal/api"
	"github.com/mcoot/textworld/internal/config"
	"github.com/mcoot/textworld/internal/factory"
	"github.com/mcoot/textworld/internal/services/notify"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "textworld-server",
		Short: "Run the textworld server",
		Long: `Serve the command API over HTTP and push notifications over a plain
TCP port. Settings come from textworld.yaml (created with defaults when
missing) and TEXTWORLD_* environment variables.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ./textworld.yaml)")

	return cmd
}

func run(parent context.Context, configPath string) error {
	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, path, err := config.Load(logger, configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := factory.New(ctx, cfg.App(logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Commands:  app.Commands,
		Online:    app.GameController,
		IDs:       app.IDs,
		RateLimit: cfg.Limits(),
	})
	server := api.NewServer(router, cfg.APIServer(), logger)
	if err := server.Listen(); err != nil {
		_ = app.Close(context.Background())
		return fmt.Errorf("failed to open API port: %w", err)
	}

	listener := notify.NewListener(cfg.Listener(), app.GameController, logger)
	if err := listener.Listen(); err != nil {
		_ = server.Shutdown(context.Background())
		_ = app.Close(context.Background())
		return fmt.Errorf("failed to open notification port: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()
	go func() {
		if err := listener.Serve(ctx); err != nil {
			errCh <- err
		}
	}()
	go app.GameController.Run(ctx)

	logger.Info("server started",
		slog.String("config", path),
		slog.String("addr", server.Addr()),
		slog.String("notify_addr", listener.Addr().String()),
		slog.String("storage", cfg.Storage.Type))

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error("server error", slog.String("error", runErr.Error()))
		}
		cancel()
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.ShutdownTimeout())
	defer shutdownCancel()

	_ = listener.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		runErr = err
	}
	// Persists every session and closes their channels
	if err := app.Close(shutdownCtx); err != nil {
		logger.Error("failed to close application", slog.String("error", err.Error()))
		runErr = err
	}

	logger.Info("server stopped")
	return runErr
}
