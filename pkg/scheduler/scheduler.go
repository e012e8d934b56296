package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
)

// JobKind identifies the work a queued job asks for.
type JobKind string

const (
	JobVerifyProof JobKind = "verify_proof"
	JobSettlePool  JobKind = "settle_pool"
)

// Job is the message body of a queued job.
type Job struct {
	Kind    JobKind `json:"kind"`
	ProofId string  `json:"proof_id,omitempty"`
	PoolId  string  `json:"pool_id,omitempty"`
}

// ParseJob decodes a queued job.
func ParseJob(body string) (*Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	switch job.Kind {
	case JobVerifyProof:
		if job.ProofId == "" {
			return nil, fmt.Errorf("verify job without proof id")
		}
	case JobSettlePool:
		if job.PoolId == "" {
			return nil, fmt.Errorf("settle job without pool id")
		}
	default:
		return nil, fmt.Errorf("unknown job kind %q", job.Kind)
	}
	return &job, nil
}

// Scheduler defines the interface for a component that queues work for
// asynchronous processing.
type Scheduler interface {
	// EnqueueVerification queues a submitted proof for verification.
	EnqueueVerification(ctx context.Context, proofID string) error

	// EnqueueSettlement queues a pool for settlement.
	EnqueueSettlement(ctx context.Context, poolID string) error
}
