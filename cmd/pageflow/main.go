// Command pageflow declares the page view topic, consumes it, and publishes
// generated page views through every configured publisher once the router
// is running. Configuration comes from the environment, see pageflow.Config.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/drblury/pageflow"
	_ "github.com/drblury/pageflow/transport/transports"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := pageflow.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		return 1
	}

	level, err := pageflow.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("parse log level", "error", err)
		return 1
	}
	logger := pageflow.NewSlogServiceLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := pageflow.TryNewService(&cfg, logger, ctx, pageflow.ServiceDependencies{})
	if err != nil {
		logger.Error("Service setup failed", err, nil)
		return 1
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Service close failed", err, nil)
		}
	}()

	if _, err := pageflow.RegisterPageViewConsumer(svc, pageflow.ConsumerConfig{}); err != nil {
		logger.Error("Consumer registration failed", err, nil)
		return 1
	}

	if cfg.Iterations > 0 {
		runner, err := svc.NewRunner()
		if err != nil {
			logger.Error("Runner setup failed", err, nil)
			return 1
		}
		if err := svc.OnReady("runner", runner.Hook()); err != nil {
			logger.Error("Runner registration failed", err, nil)
			return 1
		}
	}

	logger.Info("Starting pageflow", pageflow.LogFields{"config": cfg.String()})
	if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Router stopped", err, nil)
		return 1
	}
	return 0
}
