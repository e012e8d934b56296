// Package proofs implements proof submission, automatic verification and the
// peer review queue for ambiguous verdicts.
package proofs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/streaks"
	"github.com/chris/habit-pools/pkg/verification"
	"github.com/chris/habit-pools/pkg/websockets"
)

// ErrNotReviewer is returned when someone other than the assigned reviewer
// tries to resolve a review.
var ErrNotReviewer = errors.New("not the assigned reviewer")

// ErrEmptyImage is returned for a submission without an image reference.
var ErrEmptyImage = errors.New("image reference must not be empty")

// Store is the storage the proof services need.
type Store interface {
	storage.PoolReader
	storage.MemberStore
	storage.ProofStore
	storage.ReviewStore
	storage.HabitStore
}

// Verifier judges a proof image against a pool's requirement.
type Verifier interface {
	Verify(ctx context.Context, req verification.Request) (*verification.Judgment, error)
}

// Enqueuer queues proofs for asynchronous verification.
type Enqueuer interface {
	EnqueueVerification(ctx context.Context, proofID string) error
}

const maxMemberRetries = 5

// effects applies the downstream consequences of a verdict. Automatic and
// peer-reviewed verdicts share it.
type effects struct {
	store     Store
	publisher websockets.Publisher
	clock     clock.Clock
}

// approve logs the proof's day on the member and bumps the daily habit record
// on the first approval of that day.
func (e *effects) approve(ctx context.Context, proof *models.Proof) (*models.Member, error) {
	for attempt := 0; attempt < maxMemberRetries; attempt++ {
		m, err := e.store.GetMember(ctx, proof.PoolId, proof.UserId)
		if err != nil {
			return nil, fmt.Errorf("failed to load member: %w", err)
		}
		if m.Status != models.MemberActive {
			slog.Info("Approval for inactive member not applied", "proof_id", proof.Id, "member_status", m.Status)
			return m, nil
		}
		if !streaks.ApplyApproval(m, proof.Day) {
			return m, nil
		}

		err = e.store.UpdateMember(ctx, m)
		if err == nil {
			if err := e.store.IncrementDailyRecord(ctx, proof.UserId, proof.Day); err != nil {
				return m, fmt.Errorf("failed to record daily habit: %w", err)
			}
			slog.Info("Proof day logged", "pool_id", proof.PoolId, "user_id", proof.UserId, "day", proof.Day, "current_streak", m.CurrentStreak)
			return m, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to update member: %w", err)
		}
	}
	return nil, storage.ErrVersionConflict
}

func (e *effects) notify(ctx context.Context, proof *models.Proof, streak int) {
	if e.publisher == nil {
		return
	}
	err := e.publisher.Publish(ctx, proof.UserId, websockets.Message{
		Type: websockets.MessageTypeProofStatus,
		Payload: websockets.ProofStatusPayload{
			ProofID:       proof.Id,
			PoolID:        proof.PoolId,
			Day:           proof.Day,
			Status:        string(proof.Status),
			Confidence:    proof.AiConfidence,
			CurrentStreak: streak,
		},
	})
	if err != nil {
		slog.Error("Failed to publish proof status", "proof_id", proof.Id, "error", err)
	}
}
