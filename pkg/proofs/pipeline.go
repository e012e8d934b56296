package proofs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/google/uuid"
)

// UrgentWithin is how close to the day boundary a due proof becomes urgent.
const UrgentWithin = 6 * time.Hour

// DueStatus describes whether a member still owes a proof today.
type DueStatus struct {
	PoolId   string        `json:"pool_id"`
	UserId   string        `json:"user_id"`
	Day      string        `json:"day"`
	Due      bool          `json:"due"`
	Deadline time.Duration `json:"deadline"`
	Urgent   bool          `json:"urgent"`
}

// SubmitInput is a proof submission.
type SubmitInput struct {
	PoolId         string
	UserId         string
	ImageReference string
}

// Pipeline accepts proofs and hands them to verification.
type Pipeline struct {
	store    Store
	enqueuer Enqueuer
	clock    clock.Clock
}

// NewPipeline creates a new Pipeline.
func NewPipeline(store Store, enqueuer Enqueuer, clk clock.Clock) *Pipeline {
	return &Pipeline{store: store, enqueuer: enqueuer, clock: clk}
}

// due loads the pool and member and checks both are active. A pool past its
// end is no longer active even before the sweeper closes it.
func (p *Pipeline) due(ctx context.Context, poolID, userID string) (*models.Member, error) {
	pool, err := p.store.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool.Status != models.PoolActive {
		return nil, storage.ErrPoolNotActive
	}
	if pool.EndsAt != nil && !p.clock.Now().Before(*pool.EndsAt) {
		return nil, storage.ErrPoolNotActive
	}
	m, err := p.store.GetMember(ctx, poolID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MemberActive {
		return nil, storage.ErrMemberNotActive
	}
	return m, nil
}

// Due reports whether userID owes a proof for today and how long is left.
func (p *Pipeline) Due(ctx context.Context, poolID, userID string) (*DueStatus, error) {
	now := p.clock.Now()
	status := &DueStatus{
		PoolId:   poolID,
		UserId:   userID,
		Day:      clock.Day(now),
		Deadline: clock.NextMidnight(now).Sub(now),
	}

	m, err := p.due(ctx, poolID, userID)
	switch {
	case errors.Is(err, storage.ErrPoolNotActive), errors.Is(err, storage.ErrMemberNotActive):
		return status, nil
	case err != nil:
		return nil, err
	}

	status.Due = m.LastProofDate != status.Day
	status.Urgent = status.Due && status.Deadline < UrgentWithin
	return status, nil
}

// SubmitProof stores a pending proof for today and queues it for
// verification. The verdict arrives later through the live-update publisher.
func (p *Pipeline) SubmitProof(ctx context.Context, in SubmitInput) (*models.Proof, error) {
	if strings.TrimSpace(in.ImageReference) == "" {
		return nil, ErrEmptyImage
	}
	m, err := p.due(ctx, in.PoolId, in.UserId)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()
	day := clock.Day(now)
	if m.HasDay(day) {
		return nil, storage.ErrDayAlreadyLogged
	}

	proof := &models.Proof{
		Id:             uuid.New().String(),
		PoolId:         in.PoolId,
		UserId:         in.UserId,
		ImageReference: in.ImageReference,
		SubmittedAt:    now,
		Day:            day,
		Status:         models.ProofPending,
	}
	if err := p.store.CreateProof(ctx, proof); err != nil {
		return nil, fmt.Errorf("failed to store proof: %w", err)
	}

	// A proof that fails to enqueue stays pending and is picked up by the sweeper.
	if err := p.enqueuer.EnqueueVerification(ctx, proof.Id); err != nil {
		slog.Error("Failed to enqueue verification", "proof_id", proof.Id, "error", err)
	}
	slog.Info("Proof submitted", "proof_id", proof.Id, "pool_id", proof.PoolId, "user_id", proof.UserId, "day", day)
	return proof, nil
}

// GetProof returns a proof by id.
func (p *Pipeline) GetProof(ctx context.Context, proofID string) (*models.Proof, error) {
	return p.store.GetProof(ctx, proofID)
}

// ListProofs returns a member's proofs in a pool.
func (p *Pipeline) ListProofs(ctx context.Context, poolID, userID string) ([]models.Proof, error) {
	return p.store.ListProofsByMember(ctx, poolID, userID)
}

// RequeueStale re-enqueues a member's proofs that have been pending since
// before cutoff. It returns how many were queued.
func (p *Pipeline) RequeueStale(ctx context.Context, poolID, userID string, cutoff time.Time) (int, error) {
	proofs, err := p.store.ListProofsByMember(ctx, poolID, userID)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, proof := range proofs {
		if proof.Status != models.ProofPending || !proof.SubmittedAt.Before(cutoff) {
			continue
		}
		if err := p.enqueuer.EnqueueVerification(ctx, proof.Id); err != nil {
			return queued, fmt.Errorf("failed to requeue proof %s: %w", proof.Id, err)
		}
		queued++
	}
	return queued, nil
}
