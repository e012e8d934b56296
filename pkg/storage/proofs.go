package storage

import (
	"context"
	"time"

	"github.com/chris/habit-pools/pkg/models"
)

// ProofStore defines the interface for proof submissions.
type ProofStore interface {
	CreateProof(ctx context.Context, proof *models.Proof) error
	GetProof(ctx context.Context, proofID string) (*models.Proof, error)
	ListProofsByMember(ctx context.Context, poolID, userID string) ([]models.Proof, error)

	// ResolveProof writes a verdict if the proof is currently in one of the
	// given states, otherwise it returns ErrProofAlreadyResolved.
	ResolveProof(ctx context.Context, proofID string, from []models.ProofStatus, verdict models.Verdict) error
}

// ReviewStore defines the interface for the peer review queue.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.ProofReview) error
	GetReview(ctx context.Context, reviewID string) (*models.ProofReview, error)
	ListPendingReviewsByReviewer(ctx context.Context, reviewerID string) ([]models.ProofReview, error)
	ListPendingReviewsByPool(ctx context.Context, poolID string) ([]models.ProofReview, error)

	// GetStaleReviews retrieves pending reviews created before cutoff.
	GetStaleReviews(ctx context.Context, cutoff time.Time) ([]models.ProofReview, error)

	// ResolveReview resolves a pending review exactly once. A second attempt
	// returns ErrReviewResolved.
	ResolveReview(ctx context.Context, reviewID string, status models.ReviewStatus, note, resolvedBy string, at time.Time) error
}

// HabitStore defines the interface for the daily habit history.
type HabitStore interface {
	IncrementDailyRecord(ctx context.Context, userID, day string) error
	ListDailyRecords(ctx context.Context, userID string) ([]models.DailyHabitRecord, error)
}
