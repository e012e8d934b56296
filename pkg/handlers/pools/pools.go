package pools

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chris/habit-pools/pkg/api"
	"github.com/chris/habit-pools/pkg/handlers/respond"
	"github.com/chris/habit-pools/pkg/mapping"
	"github.com/chris/habit-pools/pkg/models"
	domain "github.com/chris/habit-pools/pkg/pools"
	"github.com/chris/habit-pools/pkg/settlement"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/oapi-codegen/runtime/types"
)

// PoolService is the pool registry and membership ledger.
type PoolService interface {
	CreatePool(ctx context.Context, in domain.NewPool) (*models.Pool, error)
	GetPool(ctx context.Context, poolID string) (*models.Pool, error)
	ListPools(ctx context.Context, status models.PoolStatus) ([]models.Pool, error)
	ListMembers(ctx context.Context, poolID string) ([]models.Member, error)
	JoinPool(ctx context.Context, poolID, userID, stakeRef string) (*models.Member, error)
	CancelPool(ctx context.Context, poolID, requesterID string) (int, error)
	RecountPool(ctx context.Context, poolID string) (*domain.Recount, error)
}

// Settler settles a finished pool.
type Settler interface {
	Settle(ctx context.Context, poolID string) (*settlement.Result, error)
}

// PoolsHandler holds the dependencies for pool-related handlers.
type PoolsHandler struct {
	Pools   PoolService
	Settler Settler
}

// NewPoolsHandler creates a new PoolsHandler.
func NewPoolsHandler(pools PoolService, settler Settler) *PoolsHandler {
	return &PoolsHandler{Pools: pools, Settler: settler}
}

// ListPools lists pools, optionally filtered by status.
func (h *PoolsHandler) ListPools(w http.ResponseWriter, r *http.Request, params api.ListPoolsParams) {
	var status models.PoolStatus
	if params.Status != nil {
		status = models.PoolStatus(*params.Status)
	}
	list, err := h.Pools.ListPools(r.Context(), status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := make([]*api.Pool, len(list))
	for i := range list {
		out[i] = mapping.ToApiPool(&list[i])
	}
	respond.JSON(w, http.StatusOK, out)
}

// CreatePool creates a pool with the caller as creator and first member.
func (h *PoolsHandler) CreatePool(w http.ResponseWriter, r *http.Request, params api.CreatePoolParams) {
	var body api.NewPool
	if !respond.Decode(w, r, &body) {
		return
	}
	in, err := mapping.ToDomainNewPool(params.XUserId, &body)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	pool, err := h.Pools.CreatePool(r.Context(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiPool(pool))
}

// GetPool returns a pool by id.
func (h *PoolsHandler) GetPool(w http.ResponseWriter, r *http.Request, poolId types.UUID) {
	pool, err := h.Pools.GetPool(r.Context(), poolId.String())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiPool(pool))
}

// JoinPool enrolls the caller. The body is optional.
func (h *PoolsHandler) JoinPool(w http.ResponseWriter, r *http.Request, poolId types.UUID, params api.JoinPoolParams) {
	var body api.JoinRequest
	if r.ContentLength > 0 && !respond.Decode(w, r, &body) {
		return
	}
	ref := ""
	if body.StakeTxReference != nil {
		ref = *body.StakeTxReference
	}
	member, err := h.Pools.JoinPool(r.Context(), poolId.String(), params.XUserId, ref)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiMember(member))
}

// CancelPool cancels a pool on behalf of its creator.
func (h *PoolsHandler) CancelPool(w http.ResponseWriter, r *http.Request, poolId types.UUID, params api.CancelPoolParams) {
	refunded, err := h.Pools.CancelPool(r.Context(), poolId.String(), params.XUserId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.CancelResult{PoolId: poolId, Refunded: refunded})
}

// SettlePool settles a pool synchronously. Settlement normally runs from the
// queue; this is the manual trigger.
func (h *PoolsHandler) SettlePool(w http.ResponseWriter, r *http.Request, poolId types.UUID) {
	res, err := h.Settler.Settle(r.Context(), poolId.String())
	if err != nil {
		if errors.Is(err, storage.ErrSettlementInProgress) {
			slog.Info("Settlement already running", "pool_id", poolId.String())
		}
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiSettlement(res))
}

// RecountPool rebuilds the pool counters from the ledger.
func (h *PoolsHandler) RecountPool(w http.ResponseWriter, r *http.Request, poolId types.UUID) {
	rc, err := h.Pools.RecountPool(r.Context(), poolId.String())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiRecount(rc))
}

// ListMembers lists a pool's members in join order.
func (h *PoolsHandler) ListMembers(w http.ResponseWriter, r *http.Request, poolId types.UUID) {
	members, err := h.Pools.ListMembers(r.Context(), poolId.String())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := make([]*api.Member, len(members))
	for i := range members {
		out[i] = mapping.ToApiMember(&members[i])
	}
	respond.JSON(w, http.StatusOK, out)
}
