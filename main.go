package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	exitOK     = 0
	exitConfig = 1
	exitNoData = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	env, err := LoadEnv(".env")
	if err != nil {
		slog.Error("[main][LoadEnv] Failed to load environment", "error", err)
		return exitConfig
	}

	cfg, err := NewConfig(env)
	if err != nil {
		slog.Error("[main][NewConfig] Invalid configuration", "error", err)
		return exitConfig
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			logger.Error(fmt.Sprintf("[main][sentry.Init] %s", err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := NewApp(cfg, logger).Run(ctx)

	return exitCode(cfg, report)
}
