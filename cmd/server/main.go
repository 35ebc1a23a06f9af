package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"impostor/internal/config"
	"impostor/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "impostor:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := SetupServer(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	logger.Info("configuration loaded",
		zap.String("advisor", cfg.Advisor.Provider),
		zap.Int("rounds", cfg.Game.TotalRounds),
		zap.Int("max_sessions", cfg.Server.MaxSessions))

	if err := app.Serve(ctx, ln); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
