package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/habit-pools/pkg/app"
	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/config"
)

var worker *app.App

func init() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg.Logger()

	store, err := cfg.OpenStore(ctx)
	if err != nil {
		slog.Error("unable to open storage", "error", err)
		os.Exit(1)
	}
	publisher, err := app.NewPublisher(ctx, cfg, store)
	if err != nil {
		slog.Error("unable to create publisher", "error", err)
		os.Exit(1)
	}
	sched, err := app.NewSQSScheduler(ctx, cfg)
	if err != nil {
		slog.Error("unable to create scheduler", "error", err)
		os.Exit(1)
	}
	worker = app.New(cfg, store, sched, publisher, clock.Real{})
}

// main consumes the settlement queue. A settlement that is already done or
// running elsewhere is acknowledged; anything else is redelivered.
func main() {
	lambda.Start(worker.HandleSQSEvent)
}
