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
	"github.com/chris/habit-pools/pkg/verification"
	"github.com/chris/habit-pools/pkg/websockets"
)

// ArbiterConfig holds the verdict thresholds.
type ArbiterConfig struct {
	VerifyTimeout      time.Duration
	ApproveAtOrAbove   float64
	RejectAtOrBelow    float64
	FailOpenConfidence float64
	// MaxFailOpenPerMember bounds degraded auto-approvals per member and
	// pool. Further degraded verdicts go to peer review.
	MaxFailOpenPerMember int
}

// DefaultArbiterConfig returns the production thresholds.
func DefaultArbiterConfig() ArbiterConfig {
	return ArbiterConfig{
		VerifyTimeout:        30 * time.Second,
		ApproveAtOrAbove:     0.6,
		RejectAtOrBelow:      0.4,
		FailOpenConfidence:   0.75,
		MaxFailOpenPerMember: 3,
	}
}

// Arbiter turns verifier judgments into proof verdicts.
type Arbiter struct {
	store    Store
	verifier Verifier
	reviews  *Reviews
	cfg      ArbiterConfig
	effects
}

// NewArbiter creates a new Arbiter. Flagged proofs are handed to reviews.
func NewArbiter(store Store, verifier Verifier, reviews *Reviews, publisher websockets.Publisher, clk clock.Clock, cfg ArbiterConfig) *Arbiter {
	def := DefaultArbiterConfig()
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = def.VerifyTimeout
	}
	if cfg.ApproveAtOrAbove <= 0 {
		cfg.ApproveAtOrAbove = def.ApproveAtOrAbove
	}
	if cfg.RejectAtOrBelow <= 0 {
		cfg.RejectAtOrBelow = def.RejectAtOrBelow
	}
	if cfg.FailOpenConfidence <= 0 {
		cfg.FailOpenConfidence = def.FailOpenConfidence
	}
	if cfg.MaxFailOpenPerMember <= 0 {
		cfg.MaxFailOpenPerMember = def.MaxFailOpenPerMember
	}
	return &Arbiter{
		store:    store,
		verifier: verifier,
		reviews:  reviews,
		cfg:      cfg,
		effects:  effects{store: store, publisher: publisher, clock: clk},
	}
}

// Classify maps a confidence to a proof status.
func (a *Arbiter) Classify(confidence float64) models.ProofStatus {
	switch {
	case confidence >= a.cfg.ApproveAtOrAbove:
		return models.ProofApproved
	case confidence <= a.cfg.RejectAtOrBelow:
		return models.ProofRejected
	default:
		return models.ProofFlagged
	}
}

func (a *Arbiter) judge(ctx context.Context, proof *models.Proof, pool *models.Pool) (*verification.Judgment, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.VerifyTimeout)
	defer cancel()

	return a.verifier.Verify(ctx, verification.Request{
		ProofId:              proof.Id,
		Image:                proof.ImageReference,
		ProofRequirementText: pool.ProofRequirement,
		PoolContext: verification.PoolContext{
			PoolId:       pool.Id,
			Title:        pool.Title,
			Day:          proof.Day,
			DurationDays: pool.DurationDays,
		},
	})
}

// failOpenExhausted reports whether the member already used up the degraded
// approvals allowed in this pool.
func (a *Arbiter) failOpenExhausted(ctx context.Context, proof *models.Proof) (bool, error) {
	proofs, err := a.store.ListProofsByMember(ctx, proof.PoolId, proof.UserId)
	if err != nil {
		return false, err
	}
	used := 0
	for _, p := range proofs {
		if p.Degraded && p.Status == models.ProofApproved {
			used++
		}
	}
	return used >= a.cfg.MaxFailOpenPerMember, nil
}

func (a *Arbiter) verdict(ctx context.Context, proof *models.Proof, pool *models.Pool) (models.Verdict, error) {
	now := a.clock.Now()
	judgment, err := a.judge(ctx, proof, pool)
	if err == nil {
		flags := judgment.Flags
		if flags == nil {
			flags = []string{}
		}
		return models.Verdict{
			Status:     a.Classify(judgment.Confidence),
			Confidence: judgment.Confidence,
			Reasoning:  judgment.Reasoning,
			Flags:      flags,
			At:         now,
		}, nil
	}

	slog.Warn("Verification unavailable, failing open", "proof_id", proof.Id, "error", err)
	v := models.Verdict{
		Status:     models.ProofApproved,
		Confidence: a.cfg.FailOpenConfidence,
		Reasoning:  fmt.Sprintf("degraded verification: verifier unavailable (%v)", err),
		Flags:      []string{models.FlagDegraded},
		Degraded:   true,
		At:         now,
	}
	exhausted, cerr := a.failOpenExhausted(ctx, proof)
	if cerr != nil {
		return models.Verdict{}, fmt.Errorf("failed to count degraded approvals: %w", cerr)
	}
	if exhausted {
		v.Status = models.ProofFlagged
		v.Reasoning = "degraded verification: fail-open limit reached, sent to peer review"
	}
	return v, nil
}

// VerifyProof judges a pending proof and applies the verdict. A proof that
// already left pending is not judged again, but the effects of its status
// are re-applied: a redelivered job finishes what a failed attempt started.
func (a *Arbiter) VerifyProof(ctx context.Context, proofID string) (*models.Proof, error) {
	proof, err := a.store.GetProof(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof.Status != models.ProofPending {
		return a.resume(ctx, proof)
	}
	pool, err := a.store.GetPool(ctx, proof.PoolId)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool: %w", err)
	}

	v, err := a.verdict(ctx, proof, pool)
	if err != nil {
		return nil, err
	}
	err = a.store.ResolveProof(ctx, proof.Id, []models.ProofStatus{models.ProofPending}, v)
	if errors.Is(err, storage.ErrProofAlreadyResolved) {
		if proof, err = a.store.GetProof(ctx, proofID); err != nil {
			return nil, err
		}
		return a.resume(ctx, proof)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve proof: %w", err)
	}
	proof.Status = v.Status
	proof.AiConfidence = v.Confidence
	proof.AiReasoning = v.Reasoning
	proof.Flags = v.Flags
	proof.Degraded = v.Degraded
	if v.Status.Terminal() {
		at := v.At
		proof.ResolvedAt = &at
	}
	slog.Info("Proof verified", "proof_id", proof.Id, "status", proof.Status, "confidence", proof.AiConfidence, "degraded", proof.Degraded)

	streak := 0
	switch proof.Status {
	case models.ProofApproved:
		m, err := a.approve(ctx, proof)
		if err != nil {
			return proof, err
		}
		streak = m.CurrentStreak
	case models.ProofFlagged:
		if _, err := a.reviews.Assign(ctx, proof); err != nil {
			return proof, fmt.Errorf("failed to assign review: %w", err)
		}
	}
	a.notify(ctx, proof, streak)
	return proof, nil
}

func (a *Arbiter) resume(ctx context.Context, proof *models.Proof) (*models.Proof, error) {
	if _, err := a.reviews.reapply(ctx, proof); err != nil {
		return proof, err
	}
	return proof, nil
}
