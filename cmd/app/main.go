package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris/habit-pools/pkg/app"
	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/config"
	"github.com/chris/habit-pools/pkg/handlers"
	wshandlers "github.com/chris/habit-pools/pkg/handlers/websockets"
	"github.com/chris/habit-pools/pkg/scheduler"
	"github.com/chris/habit-pools/pkg/websockets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cfg.OpenStore(ctx)
	if err != nil {
		logger.Error("unable to open storage", "error", err)
		os.Exit(1)
	}

	// Jobs go to SQS when queues are configured and run in-process otherwise.
	var sched scheduler.Scheduler
	var local *scheduler.LocalScheduler
	sqsScheduler, err := app.NewSQSScheduler(ctx, cfg)
	switch {
	case err == nil:
		sched = sqsScheduler
	case errors.Is(err, app.ErrNoQueues):
		local = scheduler.NewLocalScheduler(256)
		sched = local
	default:
		logger.Error("unable to create scheduler", "error", err)
		os.Exit(1)
	}

	// Live updates go through API Gateway when an endpoint is configured and
	// through the local hub otherwise.
	var publisher websockets.Publisher
	var wsHandler http.Handler
	if cfg.WebsocketEndpoint != "" {
		if publisher, err = app.NewPublisher(ctx, cfg, store); err != nil {
			logger.Error("unable to create publisher", "error", err)
			os.Exit(1)
		}
	} else {
		hub := websockets.NewHub()
		publisher = hub
		wsHandler = wshandlers.NewLocalHandler(hub)
	}

	a := app.New(cfg, store, sched, publisher, clock.Real{})
	if local != nil {
		local.Start(ctx, cfg.Workers, a.LocalHandlers())
		defer local.Stop()
	}
	go a.Sweeper.Run(ctx, cfg.SweepInterval)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handlers.NewRouter(a.Handler(), wsHandler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("Starting server", "port", cfg.HTTPPort, "storage", cfg.StorageBackend, "in_process_jobs", local != nil)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
