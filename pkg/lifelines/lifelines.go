// Package lifelines implements the lifeline bank: a bounded per-pool stock of
// lifelines that cover a missed day without breaking the streak.
package lifelines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/streaks"
	"github.com/google/uuid"
)

// ErrSelfVouch is returned when a member tries to vouch for themselves.
var ErrSelfVouch = errors.New("members cannot vouch for themselves")

// DefaultCost is the price of one lifeline, 0.05 SOL.
const DefaultCost = models.LamportsPerSOL / 20

// Store is the storage the bank needs.
type Store interface {
	storage.PoolReader
	storage.MemberStore
	storage.LifelineStore
}

// Config holds the tunables of the bank.
type Config struct {
	Cost       int64
	MaxRetries int
}

// Bank sells, grants and spends lifelines.
type Bank struct {
	store Store
	clock clock.Clock
	cfg   Config
}

// NewBank creates a new Bank.
func NewBank(store Store, clk clock.Clock, cfg Config) *Bank {
	if cfg.Cost <= 0 {
		cfg.Cost = DefaultCost
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &Bank{store: store, clock: clk, cfg: cfg}
}

// Cost returns the price of one lifeline in lamports.
func (b *Bank) Cost() int64 { return b.cfg.Cost }

// Get returns the lifeline account of userID in a pool.
func (b *Bank) Get(ctx context.Context, poolID, userID string) (*models.LifelineAccount, error) {
	if _, err := b.store.GetMember(ctx, poolID, userID); err != nil {
		return nil, err
	}
	return b.store.GetLifelineAccount(ctx, userID, poolID)
}

// stocking checks that userID can still add lifelines in poolID.
func (b *Bank) stocking(ctx context.Context, poolID, userID string) error {
	pool, err := b.store.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if !pool.Status.Joinable() {
		return storage.ErrPoolNotActive
	}
	m, err := b.store.GetMember(ctx, poolID, userID)
	if err != nil {
		return err
	}
	if m.Status != models.MemberActive {
		return storage.ErrMemberNotActive
	}
	return nil
}

// Purchase debits the lifeline cost from the profile balance and adds one
// purchased lifeline.
func (b *Bank) Purchase(ctx context.Context, poolID, userID string) (*models.LifelineAccount, error) {
	if err := b.stocking(ctx, poolID, userID); err != nil {
		return nil, err
	}
	now := b.clock.Now()
	tx := &models.Transaction{
		Id:        "lifeline:" + uuid.New().String(),
		UserId:    userID,
		PoolId:    poolID,
		Type:      models.TxLifelinePurchase,
		Amount:    b.cfg.Cost,
		Status:    models.TxCompleted,
		CreatedAt: now,
	}
	event := &models.LedgerEvent{PoolId: poolID, Kind: models.EventLifelinePurchased, UserId: userID, Amount: b.cfg.Cost, Timestamp: now}
	if err := b.store.PurchaseLifeline(ctx, userID, poolID, tx, event); err != nil {
		return nil, err
	}
	slog.Info("Lifeline purchased", "pool_id", poolID, "user_id", userID, "cost", b.cfg.Cost)
	return b.store.GetLifelineAccount(ctx, userID, poolID)
}

// EarnViaVouch grants userID a free lifeline on the word of another member.
func (b *Bank) EarnViaVouch(ctx context.Context, poolID, userID, voucherID string) (*models.LifelineAccount, error) {
	if userID == voucherID {
		return nil, ErrSelfVouch
	}
	if err := b.stocking(ctx, poolID, userID); err != nil {
		return nil, err
	}
	if _, err := b.store.GetMember(ctx, poolID, voucherID); err != nil {
		return nil, fmt.Errorf("voucher: %w", err)
	}
	event := &models.LedgerEvent{PoolId: poolID, Kind: models.EventLifelineEarned, UserId: userID, Timestamp: b.clock.Now()}
	if err := b.store.EarnLifeline(ctx, userID, poolID, event); err != nil {
		return nil, err
	}
	slog.Info("Lifeline earned", "pool_id", poolID, "user_id", userID, "voucher_id", voucherID)
	return b.store.GetLifelineAccount(ctx, userID, poolID)
}

// Activate spends one lifeline to cover today. The streak carries over but
// does not grow.
func (b *Bank) Activate(ctx context.Context, poolID, userID string) (*models.Member, error) {
	pool, err := b.store.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool.Status != models.PoolActive {
		return nil, storage.ErrPoolNotActive
	}

	for attempt := 0; attempt < b.cfg.MaxRetries; attempt++ {
		m, err := b.store.GetMember(ctx, poolID, userID)
		if err != nil {
			return nil, err
		}
		if m.Status != models.MemberActive {
			return nil, storage.ErrMemberNotActive
		}
		now := b.clock.Now()
		today := clock.Day(now)
		if !streaks.ApplyCover(m, today) {
			return nil, storage.ErrDayAlreadyLogged
		}

		event := &models.LedgerEvent{PoolId: poolID, Kind: models.EventLifelineUsed, UserId: userID, Timestamp: now}
		err = b.store.UseLifeline(ctx, m, today, event)
		if err == nil {
			slog.Info("Lifeline activated", "pool_id", poolID, "user_id", userID, "day", today, "current_streak", m.CurrentStreak)
			return m, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, storage.ErrVersionConflict
}
