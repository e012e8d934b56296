package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAPI is the subset of the SQS client used by SQSScheduler.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSScheduler implements the Scheduler interface using AWS SQS. Verification
// and settlement jobs go to separate queues so a settlement backlog never
// delays proof verdicts.
type SQSScheduler struct {
	Client               SQSAPI
	VerificationQueueURL string
	SettlementQueueURL   string
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, verificationQueueURL, settlementQueueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:               client,
		VerificationQueueURL: verificationQueueURL,
		SettlementQueueURL:   settlementQueueURL,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

func (s *SQSScheduler) send(ctx context.Context, queueURL string, job Job) error {
	// Marshal the job to JSON.
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job for SQS: %w", err)
	}

	// Send the message to SQS.
	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}
	return nil
}

// EnqueueVerification sends a verification job to the verification queue.
func (s *SQSScheduler) EnqueueVerification(ctx context.Context, proofID string) error {
	return s.send(ctx, s.VerificationQueueURL, Job{Kind: JobVerifyProof, ProofId: proofID})
}

// EnqueueSettlement sends a settlement job to the settlement queue.
func (s *SQSScheduler) EnqueueSettlement(ctx context.Context, poolID string) error {
	return s.send(ctx, s.SettlementQueueURL, Job{Kind: JobSettlePool, PoolId: poolID})
}
