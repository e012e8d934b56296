package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/habit-pools/pkg/app"
	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/config"
	"github.com/chris/habit-pools/pkg/sweeper"
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

// HandleRequest is triggered by an EventBridge schedule.
func HandleRequest(ctx context.Context) (sweeper.Report, error) {
	report, err := worker.Sweeper.Sweep(ctx)
	if err != nil {
		slog.Error("Sweep failed", "error", err)
		return report, err
	}
	slog.Info("Sweep finished",
		"pools_swept", report.PoolsSwept,
		"members_failed", report.MembersFailed,
		"pools_closed", report.PoolsClosed,
		"pools_enqueued", report.PoolsEnqueued,
		"reviews_expired", report.ReviewsExpired,
		"proofs_requeued", report.ProofsRequeued)
	return report, nil
}

func main() {
	lambda.Start(HandleRequest)
}
