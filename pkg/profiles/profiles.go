// Package profiles serves user profiles: balances, aggregates and the
// cross-pool streak, which is recomputed on every read.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/streaks"
	"github.com/google/uuid"
)

// ErrInvalidDeposit is returned for a non-positive deposit.
var ErrInvalidDeposit = errors.New("deposit amount must be positive")

// Store is the storage the profile service needs.
type Store interface {
	storage.ProfileStore
	storage.MemberStore
	storage.HabitStore
	storage.TransactionStore
}

// View is a profile together with its derived streak.
type View struct {
	models.Profile
	CurrentStreak int `json:"current_streak"`
}

// Service serves profiles.
type Service struct {
	store Store
	clock clock.Clock
}

// NewService creates a new Service.
func NewService(store Store, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk}
}

// Create registers a profile with an optional wallet address.
func (s *Service) Create(ctx context.Context, userID, wallet string) (*models.Profile, error) {
	p := &models.Profile{
		UserId:        userID,
		WalletAddress: strings.TrimSpace(wallet),
		CreatedAt:     s.clock.Now(),
		Version:       1,
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a profile and the user's current streak across pools.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.store.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	records, err := s.store.ListDailyRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	return &View{
		Profile:       *p,
		CurrentStreak: streaks.ProfileStreak(memberships, records, clock.Day(s.clock.Now())),
	}, nil
}

// Deposit credits amount lamports to the in-app balance. A reference that was
// already deposited is not applied twice.
func (s *Service) Deposit(ctx context.Context, userID string, amount int64, reference string) (*View, error) {
	if amount <= 0 {
		return nil, ErrInvalidDeposit
	}
	id := "deposit:" + uuid.New().String()
	if reference != "" {
		id = "deposit:" + reference
	}
	applied, err := s.store.CreditProfile(ctx, storage.ProfileCredit{Tx: &models.Transaction{
		Id:        id,
		UserId:    userID,
		Type:      models.TxBalanceDeposit,
		Amount:    amount,
		Status:    models.TxCompleted,
		Reference: reference,
		CreatedAt: s.clock.Now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to credit deposit: %w", err)
	}
	if !applied {
		slog.Info("Deposit already applied", "user_id", userID, "reference", reference)
	}
	return s.Get(ctx, userID)
}

// ListTransactions returns the user's financial history.
func (s *Service) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.store.ListTransactionsByUser(ctx, userID)
}
