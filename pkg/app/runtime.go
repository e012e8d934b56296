package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/habit-pools/pkg/config"
	"github.com/chris/habit-pools/pkg/scheduler"
	"github.com/chris/habit-pools/pkg/websockets"
)

// ErrNoQueues is returned when SQS scheduling is requested without queue URLs.
var ErrNoQueues = errors.New("SQS_VERIFICATION_QUEUE_URL and SQS_SETTLEMENT_QUEUE_URL must be set")

// NewSQSScheduler builds the SQS scheduler from configuration.
func NewSQSScheduler(ctx context.Context, cfg *config.Config) (*scheduler.SQSScheduler, error) {
	if cfg.VerificationQueueURL == "" || cfg.SettlementQueueURL == "" {
		return nil, ErrNoQueues
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return scheduler.NewSQSScheduler(sqs.NewFromConfig(awsCfg), cfg.VerificationQueueURL, cfg.SettlementQueueURL), nil
}

// NewPublisher returns the API Gateway publisher when an endpoint is
// configured, and a no-op publisher otherwise.
func NewPublisher(ctx context.Context, cfg *config.Config, store config.Store) (websockets.Publisher, error) {
	if cfg.WebsocketEndpoint == "" {
		return &websockets.NoOpPublisher{}, nil
	}
	pub, err := websockets.NewPublisher(ctx, store, store, cfg.WebsocketEndpoint)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// HandleSQSEvent runs each queued job. Failed jobs are reported individually
// so SQS redelivers only those; malformed bodies are dropped.
func (a *App) HandleSQSEvent(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		job, err := scheduler.ParseJob(message.Body)
		if err != nil {
			slog.Error("Dropping malformed job", "message_id", message.MessageId, "error", err)
			continue
		}
		if err := a.HandleJob(ctx, job); err != nil {
			slog.Error("Job failed", "message_id", message.MessageId, "kind", job.Kind, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		}
	}
	return resp, nil
}
