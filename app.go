package main

import (
	"context"
	"log/slog"

	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/jobs"
	"github.com/samgozman/vn-market-thread/providers"
	"github.com/samgozman/vn-market-thread/publisher"
	"github.com/samgozman/vn-market-thread/scavenger"
)

type App struct {
	cfg       *Config
	collector *collector.Collector
	publisher *publisher.TelegramPublisher
	logger    *slog.Logger
}

// NewApp wires the providers, the collector and the publisher from the config.
// A failed Telegram handshake is logged and leaves the publisher disabled.
func NewApp(cfg *Config, logger *slog.Logger) *App {
	set := providers.NewSet(scavenger.New(cfg.HTTPTimeout), cfg.Retry)
	registry := map[string]collector.Provider{
		providers.SourceGold:     set.Gold,
		providers.SourceStock:    set.Stock,
		providers.SourceVNIndex:  set.VNIndex,
		providers.SourceExchange: set.Exchange,
		providers.SourceCrypto:   set.Crypto,
	}

	c := collector.NewCollector(cfg.Retry).WithLogger(logger)
	for _, name := range sourceOrder {
		c.Register(name, registry[name], cfg.Enabled[name])
	}

	a := &App{
		cfg:       cfg,
		collector: c,
		logger:    logger,
	}

	if cfg.DryRun {
		return a
	}

	p, err := publisher.NewTelegramPublisher(cfg.TelegramChatID, cfg.TelegramToken, cfg.TelegramTimeout)
	if err != nil {
		logger.Error("[app][NewTelegramPublisher] Telegram delivery is disabled", "error", err)
	}
	a.publisher = p.WithLogger(logger)

	return a
}

// Run runs the market update job once.
func (a *App) Run(ctx context.Context) jobs.Report {
	a.logger.Info("Starting vn-market-thread", "sources", a.cfg.EnabledSources(), "dry_run", a.cfg.DryRun)

	job := jobs.NewMarketJob(a.collector, a.publisher).
		WithServiceConfig(a.cfg.ServiceConfig()).
		WithLogger(a.logger)
	if !a.cfg.DryRun {
		job = job.Publish()
	}

	report := job.Run(ctx)
	a.logger.Info("vn-market-thread finished",
		"run_id", report.RunID.String(),
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed),
		"delivered", report.Delivered,
	)

	return report
}

// exitCode is 0 for every finished run. With STRICT_EXIT it is 2 when no source returned data.
func exitCode(cfg *Config, report jobs.Report) int {
	if cfg.StrictExit && len(report.Succeeded) == 0 {
		return exitNoData
	}
	return exitOK
}
