package proofs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/websockets"
	"github.com/google/uuid"
)

// ResolvedByTimeout marks reviews closed by the default-resolution policy.
const ResolvedByTimeout = "timeout"

// Reviews is the peer review queue for flagged proofs.
type Reviews struct {
	store Store
	effects
}

// NewReviews creates a new Reviews queue.
func NewReviews(store Store, publisher websockets.Publisher, clk clock.Clock) *Reviews {
	return &Reviews{
		store:   store,
		effects: effects{store: store, publisher: publisher, clock: clk},
	}
}

// reviewerFor picks the earliest-joined active member other than the
// submitter, or the pool creator when there is none.
func (r *Reviews) reviewerFor(ctx context.Context, proof *models.Proof) (string, error) {
	members, err := r.store.ListMembers(ctx, proof.PoolId)
	if err != nil {
		return "", err
	}
	for _, m := range members {
		if m.Status == models.MemberActive && m.UserId != proof.UserId {
			return m.UserId, nil
		}
	}
	pool, err := r.store.GetPool(ctx, proof.PoolId)
	if err != nil {
		return "", err
	}
	return pool.CreatorId, nil
}

// ReviewID is the id of the single review a proof can have.
func ReviewID(proofID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("proof-review:"+proofID)).String()
}

// Assign creates the pending review for a flagged proof. Assigning a proof
// that already has a review returns that review.
func (r *Reviews) Assign(ctx context.Context, proof *models.Proof) (*models.ProofReview, error) {
	reviewer, err := r.reviewerFor(ctx, proof)
	if err != nil {
		return nil, fmt.Errorf("failed to pick reviewer: %w", err)
	}
	review := &models.ProofReview{
		Id:         ReviewID(proof.Id),
		ProofId:    proof.Id,
		PoolId:     proof.PoolId,
		ReviewerId: reviewer,
		Status:     models.ReviewPending,
		CreatedAt:  r.clock.Now(),
	}
	err = r.store.CreateReview(ctx, review)
	if errors.Is(err, storage.ErrReviewExists) {
		return r.store.GetReview(ctx, review.Id)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("Review assigned", "review_id", review.Id, "proof_id", proof.Id, "reviewer_id", reviewer)

	if r.publisher != nil {
		err := r.publisher.Publish(ctx, reviewer, websockets.Message{
			Type:    websockets.MessageTypeReviewAssigned,
			Payload: websockets.ReviewAssignedPayload{ReviewID: review.Id, ProofID: proof.Id, PoolID: proof.PoolId},
		})
		if err != nil {
			slog.Error("Failed to publish review assignment", "review_id", review.Id, "error", err)
		}
	}
	return review, nil
}

// GetReview returns a review by id.
func (r *Reviews) GetReview(ctx context.Context, reviewID string) (*models.ProofReview, error) {
	return r.store.GetReview(ctx, reviewID)
}

// ListPending returns the reviews waiting on reviewerID.
func (r *Reviews) ListPending(ctx context.Context, reviewerID string) ([]models.ProofReview, error) {
	return r.store.ListPendingReviewsByReviewer(ctx, reviewerID)
}

// Resolve records reviewerID's decision on a review and applies it to the
// proof. A review can be resolved once; later attempts get ErrReviewResolved.
func (r *Reviews) Resolve(ctx context.Context, reviewID, reviewerID string, approve bool, note string) (*models.ProofReview, error) {
	review, err := r.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ReviewerId != reviewerID {
		return nil, ErrNotReviewer
	}
	if review.Status != models.ReviewPending {
		// A retry after a failure past the review's resolution still owes the
		// approval effects.
		return nil, r.closeResolved(ctx, review, review.Note, review.ResolvedBy)
	}
	status := models.ReviewRejected
	if approve {
		status = models.ReviewApproved
	}
	return r.resolve(ctx, review, status, note, reviewerID)
}

// resolve moves the flagged proof first; its conditional write decides which
// of two racing resolutions wins.
func (r *Reviews) resolve(ctx context.Context, review *models.ProofReview, status models.ReviewStatus, note, resolvedBy string) (*models.ProofReview, error) {
	proof, err := r.store.GetProof(ctx, review.ProofId)
	if err != nil {
		return nil, fmt.Errorf("failed to load proof: %w", err)
	}
	now := r.clock.Now()

	verdict := models.Verdict{
		Status:     models.ProofRejected,
		Confidence: proof.AiConfidence,
		Reasoning:  proof.AiReasoning,
		Flags:      proof.Flags,
		Degraded:   proof.Degraded,
		At:         now,
	}
	if status == models.ReviewApproved {
		verdict.Status = models.ProofApproved
	}

	err = r.store.ResolveProof(ctx, proof.Id, []models.ProofStatus{models.ProofFlagged}, verdict)
	if errors.Is(err, storage.ErrProofAlreadyResolved) {
		return nil, r.closeResolved(ctx, review, note, resolvedBy)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve proof: %w", err)
	}
	if err := r.store.ResolveReview(ctx, review.Id, status, note, resolvedBy, now); err != nil && !errors.Is(err, storage.ErrReviewResolved) {
		return nil, err
	}

	review.Status = status
	review.Note = note
	review.ResolvedBy = resolvedBy
	review.ResolvedAt = &now
	proof.Status = verdict.Status
	proof.ResolvedAt = &now
	slog.Info("Review resolved", "review_id", review.Id, "proof_id", proof.Id, "status", status, "resolved_by", resolvedBy)

	streak := 0
	if proof.Status == models.ProofApproved {
		m, err := r.approve(ctx, proof)
		if err != nil {
			return review, err
		}
		streak = m.CurrentStreak
	}
	r.notify(ctx, proof, streak)
	return review, nil
}

// closeResolved handles a review whose proof already left flagged, either
// through a racing resolution or an attempt that stopped halfway. The review
// is closed with the proof's status and the approval effects are re-applied,
// which is a no-op for a day that is already logged.
func (r *Reviews) closeResolved(ctx context.Context, review *models.ProofReview, note, resolvedBy string) error {
	proof, err := r.store.GetProof(ctx, review.ProofId)
	if err != nil {
		return fmt.Errorf("failed to reload proof: %w", err)
	}
	status := models.ReviewRejected
	if proof.Status == models.ProofApproved {
		status = models.ReviewApproved
	}
	err = r.store.ResolveReview(ctx, review.Id, status, note, resolvedBy, r.clock.Now())
	if err != nil && !errors.Is(err, storage.ErrReviewResolved) {
		return err
	}
	if proof.Status == models.ProofApproved {
		if _, err := r.approve(ctx, proof); err != nil {
			return err
		}
	}
	return storage.ErrReviewResolved
}

func (r *Reviews) expire(ctx context.Context, reviews []models.ProofReview) (int, error) {
	expired := 0
	for i := range reviews {
		_, err := r.resolve(ctx, &reviews[i], models.ReviewApproved, "no response before the review timeout", ResolvedByTimeout)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, storage.ErrReviewResolved):
		default:
			return expired, fmt.Errorf("failed to expire review %s: %w", reviews[i].Id, err)
		}
	}
	return expired, nil
}

// ExpireStale approves every pending review older than olderThan.
func (r *Reviews) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := r.store.GetStaleReviews(ctx, r.clock.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to get stale reviews: %w", err)
	}
	return r.expire(ctx, stale)
}

// ExpirePool approves every pending review of a pool. It runs before
// settlement so no proof stays flagged: flagged proofs that never got their
// review are assigned one first, and approved proofs have their effects
// re-applied.
func (r *Reviews) ExpirePool(ctx context.Context, poolID string) (int, error) {
	if err := r.repair(ctx, poolID); err != nil {
		return 0, err
	}
	pending, err := r.store.ListPendingReviewsByPool(ctx, poolID)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	return r.expire(ctx, pending)
}

// repair finishes the effects of verdicts whose processing stopped after the
// proof's status was written.
func (r *Reviews) repair(ctx context.Context, poolID string) error {
	members, err := r.store.ListMembers(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		proofs, err := r.store.ListProofsByMember(ctx, poolID, m.UserId)
		if err != nil {
			return fmt.Errorf("failed to list proofs of %s: %w", m.UserId, err)
		}
		for i := range proofs {
			if _, err := r.reapply(ctx, &proofs[i]); err != nil {
				return fmt.Errorf("failed to repair proof %s: %w", proofs[i].Id, err)
			}
		}
	}
	return nil
}

// reapply runs the idempotent effects of a proof's current status: the day
// is logged for an approved proof and a flagged proof gets its review. The
// member is returned for an approved proof.
func (r *Reviews) reapply(ctx context.Context, proof *models.Proof) (*models.Member, error) {
	switch proof.Status {
	case models.ProofApproved:
		return r.approve(ctx, proof)
	case models.ProofFlagged:
		if _, err := r.Assign(ctx, proof); err != nil {
			return nil, fmt.Errorf("failed to assign review: %w", err)
		}
	}
	return nil, nil
}
