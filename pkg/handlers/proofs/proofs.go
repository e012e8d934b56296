package proofs

import (
	"context"
	"net/http"

	"github.com/chris/habit-pools/pkg/api"
	"github.com/chris/habit-pools/pkg/handlers/respond"
	"github.com/chris/habit-pools/pkg/mapping"
	"github.com/chris/habit-pools/pkg/models"
	domain "github.com/chris/habit-pools/pkg/proofs"
	"github.com/oapi-codegen/runtime/types"
)

// Pipeline accepts proofs and answers due checks.
type Pipeline interface {
	Due(ctx context.Context, poolID, userID string) (*domain.DueStatus, error)
	SubmitProof(ctx context.Context, in domain.SubmitInput) (*models.Proof, error)
	GetProof(ctx context.Context, proofID string) (*models.Proof, error)
}

// Reviews is the peer review queue.
type Reviews interface {
	ListPending(ctx context.Context, reviewerID string) ([]models.ProofReview, error)
	Resolve(ctx context.Context, reviewID, reviewerID string, approve bool, note string) (*models.ProofReview, error)
}

// ProofsHandler holds the dependencies for proof and review handlers.
type ProofsHandler struct {
	Pipeline Pipeline
	Reviews  Reviews
}

// NewProofsHandler creates a new ProofsHandler.
func NewProofsHandler(pipeline Pipeline, reviews Reviews) *ProofsHandler {
	return &ProofsHandler{Pipeline: pipeline, Reviews: reviews}
}

func (h *ProofsHandler) GetDueStatus(w http.ResponseWriter, r *http.Request, poolId types.UUID, params api.GetDueStatusParams) {
	status, err := h.Pipeline.Due(r.Context(), poolId.String(), params.XUserId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiDueStatus(status))
}

// SubmitProof accepts today's proof. The verdict is delivered over the
// websocket once verification finishes.
func (h *ProofsHandler) SubmitProof(w http.ResponseWriter, r *http.Request, poolId types.UUID, params api.SubmitProofParams) {
	var body api.NewProof
	if !respond.Decode(w, r, &body) {
		return
	}
	proof, err := h.Pipeline.SubmitProof(r.Context(), domain.SubmitInput{
		PoolId:         poolId.String(),
		UserId:         params.XUserId,
		ImageReference: body.ImageReference,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, mapping.ToApiProof(proof))
}

func (h *ProofsHandler) GetProof(w http.ResponseWriter, r *http.Request, proofId types.UUID) {
	proof, err := h.Pipeline.GetProof(r.Context(), proofId.String())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiProof(proof))
}

func (h *ProofsHandler) ListPendingReviews(w http.ResponseWriter, r *http.Request, params api.ListPendingReviewsParams) {
	reviews, err := h.Reviews.ListPending(r.Context(), params.XUserId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := make([]*api.Review, len(reviews))
	for i := range reviews {
		out[i] = mapping.ToApiReview(&reviews[i])
	}
	respond.JSON(w, http.StatusOK, out)
}

// ResolveReview records the assigned reviewer's decision.
func (h *ProofsHandler) ResolveReview(w http.ResponseWriter, r *http.Request, reviewId types.UUID, params api.ResolveReviewParams) {
	var body api.ReviewDecision
	if !respond.Decode(w, r, &body) {
		return
	}
	note := ""
	if body.Note != nil {
		note = *body.Note
	}
	review, err := h.Reviews.Resolve(r.Context(), reviewId.String(), params.XUserId, body.Approve, note)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiReview(review))
}
