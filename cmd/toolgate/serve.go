package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goutils "github.com/jkaninda/go-utils"
	"github.com/spf13/cobra"

	"github.com/jkaninda/toolgate/internal/config"
	"github.com/jkaninda/toolgate/internal/server"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tool adapters over MCP stdio",
	RunE:  runServe,
}

func init() {
	// Register flags on both root and serve so that
	// `toolgate --config path` and `toolgate serve --config path` both work.
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().StringVar(&serveConfigPath, "config", config.DefaultPath, "path to config file")
	}
}

// resolveConfigPath applies flag > TOOLGATE_CONFIG > default precedence:
// an explicitly passed --config always wins over the environment.
func resolveConfigPath(flagSet bool, flagValue string) string {
	if flagSet {
		return flagValue
	}
	return goutils.Env("TOOLGATE_CONFIG", flagValue)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// MCP owns stdout; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(resolveConfigPath(cmd.Flags().Changed("config"), serveConfigPath))
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		err = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}
