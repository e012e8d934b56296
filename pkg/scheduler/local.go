package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped is returned when a job is enqueued after the worker pool stopped.
var ErrStopped = errors.New("scheduler stopped")

// Handlers process jobs for the LocalScheduler.
type Handlers struct {
	Verify func(ctx context.Context, proofID string) error
	Settle func(ctx context.Context, poolID string) error
}

// LocalScheduler runs jobs on an in-process worker pool. It is used by the
// local server in place of SQS and the worker lambdas.
type LocalScheduler struct {
	jobs     chan Job
	handlers Handlers

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewLocalScheduler creates a LocalScheduler with a bounded job buffer.
func NewLocalScheduler(buffer int) *LocalScheduler {
	if buffer <= 0 {
		buffer = 64
	}
	return &LocalScheduler{jobs: make(chan Job, buffer)}
}

// Make sure we conform to the interface
var _ Scheduler = (*LocalScheduler)(nil)

// Start launches workers that process jobs until ctx is done or Stop is called.
func (s *LocalScheduler) Start(ctx context.Context, workers int, handlers Handlers) {
	s.handlers = handlers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-s.jobs:
					if !ok {
						return
					}
					s.run(ctx, job)
				}
			}
		}()
	}
}

func (s *LocalScheduler) run(ctx context.Context, job Job) {
	var err error
	switch job.Kind {
	case JobVerifyProof:
		if s.handlers.Verify != nil {
			err = s.handlers.Verify(ctx, job.ProofId)
		}
	case JobSettlePool:
		if s.handlers.Settle != nil {
			err = s.handlers.Settle(ctx, job.PoolId)
		}
	}
	if err != nil {
		slog.Error("Job failed", "kind", job.Kind, "proof_id", job.ProofId, "pool_id", job.PoolId, "error", err)
	}
}

func (s *LocalScheduler) enqueue(ctx context.Context, job Job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return ErrStopped
	}
	select {
	case s.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueVerification queues a proof for verification.
func (s *LocalScheduler) EnqueueVerification(ctx context.Context, proofID string) error {
	return s.enqueue(ctx, Job{Kind: JobVerifyProof, ProofId: proofID})
}

// EnqueueSettlement queues a pool for settlement.
func (s *LocalScheduler) EnqueueSettlement(ctx context.Context, poolID string) error {
	return s.enqueue(ctx, Job{Kind: JobSettlePool, PoolId: poolID})
}

// Stop rejects new jobs, drains the queued ones and waits for the workers.
func (s *LocalScheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.jobs)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
