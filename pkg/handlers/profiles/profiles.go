package profiles

import (
	"context"
	"net/http"
	"strings"

	"github.com/chris/habit-pools/pkg/api"
	"github.com/chris/habit-pools/pkg/handlers/respond"
	"github.com/chris/habit-pools/pkg/mapping"
	"github.com/chris/habit-pools/pkg/models"
	domain "github.com/chris/habit-pools/pkg/profiles"
)

// ProfileService manages profiles and balances.
type ProfileService interface {
	Create(ctx context.Context, userID, wallet string) (*models.Profile, error)
	Get(ctx context.Context, userID string) (*domain.View, error)
	Deposit(ctx context.Context, userID string, amount int64, reference string) (*domain.View, error)
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
}

// ProfilesHandler holds the dependencies for profile handlers.
type ProfilesHandler struct {
	Profiles ProfileService
}

// NewProfilesHandler creates a new ProfilesHandler.
func NewProfilesHandler(profiles ProfileService) *ProfilesHandler {
	return &ProfilesHandler{Profiles: profiles}
}

func (h *ProfilesHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var body api.NewProfile
	if !respond.Decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.UserId) == "" {
		http.Error(w, "user_id must not be empty", http.StatusBadRequest)
		return
	}
	wallet := ""
	if body.WalletAddress != nil {
		wallet = *body.WalletAddress
	}
	p, err := h.Profiles.Create(r.Context(), body.UserId, wallet)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiProfile(&domain.View{Profile: *p}))
}

func (h *ProfilesHandler) GetProfile(w http.ResponseWriter, r *http.Request, userId string) {
	v, err := h.Profiles.Get(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiProfile(v))
}

// DepositBalance credits the in-app balance. Repeating a reference is a no-op.
func (h *ProfilesHandler) DepositBalance(w http.ResponseWriter, r *http.Request, userId string) {
	var body api.Deposit
	if !respond.Decode(w, r, &body) {
		return
	}
	amount, err := models.ParseSOL(body.AmountSol)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	ref := ""
	if body.Reference != nil {
		ref = *body.Reference
	}
	v, err := h.Profiles.Deposit(r.Context(), userId, amount, ref)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiProfile(v))
}

func (h *ProfilesHandler) ListTransactions(w http.ResponseWriter, r *http.Request, userId string) {
	txs, err := h.Profiles.ListTransactions(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := make([]*api.Transaction, len(txs))
	for i := range txs {
		out[i] = mapping.ToApiTransaction(&txs[i])
	}
	respond.JSON(w, http.StatusOK, out)
}
