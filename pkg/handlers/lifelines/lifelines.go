package lifelines

import (
	"context"
	"net/http"

	"github.com/chris/habit-pools/pkg/api"
	"github.com/chris/habit-pools/pkg/handlers/respond"
	"github.com/chris/habit-pools/pkg/mapping"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/oapi-codegen/runtime/types"
)

// Bank is the lifeline bank.
type Bank interface {
	Cost() int64
	Get(ctx context.Context, poolID, userID string) (*models.LifelineAccount, error)
	Purchase(ctx context.Context, poolID, userID string) (*models.LifelineAccount, error)
	EarnViaVouch(ctx context.Context, poolID, userID, voucherID string) (*models.LifelineAccount, error)
	Activate(ctx context.Context, poolID, userID string) (*models.Member, error)
}

// LifelinesHandler holds the dependencies for lifeline handlers.
type LifelinesHandler struct {
	Bank Bank
}

// NewLifelinesHandler creates a new LifelinesHandler.
func NewLifelinesHandler(bank Bank) *LifelinesHandler {
	return &LifelinesHandler{Bank: bank}
}

func (h *LifelinesHandler) account(w http.ResponseWriter, r *http.Request, status int, acct *models.LifelineAccount, err error) {
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, status, mapping.ToApiLifelineAccount(acct, h.Bank.Cost()))
}

func (h *LifelinesHandler) GetLifelines(w http.ResponseWriter, r *http.Request, poolId types.UUID, params api.GetLifelinesParams) {
	acct, err := h.Bank.Get(r.Context(), poolId.String(), params.XUserId)
	h.account(w, r, http.StatusOK, acct, err)
}

func (h *LifelinesHandler) PurchaseLifeline(w http.ResponseWriter, r *http.Request, poolId types.UUID, params api.PurchaseLifelineParams) {
	acct, err := h.Bank.Purchase(r.Context(), poolId.String(), params.XUserId)
	h.account(w, r, http.StatusCreated, acct, err)
}

// VouchLifeline grants body.UserId a lifeline on the caller's word.
func (h *LifelinesHandler) VouchLifeline(w http.ResponseWriter, r *http.Request, poolId types.UUID, params api.VouchLifelineParams) {
	var body api.VouchRequest
	if !respond.Decode(w, r, &body) {
		return
	}
	acct, err := h.Bank.EarnViaVouch(r.Context(), poolId.String(), body.UserId, params.XUserId)
	h.account(w, r, http.StatusCreated, acct, err)
}

func (h *LifelinesHandler) ActivateLifeline(w http.ResponseWriter, r *http.Request, poolId types.UUID, params api.ActivateLifelineParams) {
	member, err := h.Bank.Activate(r.Context(), poolId.String(), params.XUserId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiMember(member))
}
