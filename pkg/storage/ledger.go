package storage

import (
	"context"
	"time"

	"github.com/chris/habit-pools/pkg/models"
)

// LifelineStore defines the bounded lifeline counter. Every mutation is a
// single conditional write so the cap holds under concurrent requests.
type LifelineStore interface {
	// GetLifelineAccount returns the account, or an empty one if none exists.
	GetLifelineAccount(ctx context.Context, userID, poolID string) (*models.LifelineAccount, error)

	// PurchaseLifeline debits tx.Amount from the profile balance and adds one
	// purchased lifeline, failing with ErrInsufficientBalance or ErrLifelineCapReached.
	PurchaseLifeline(ctx context.Context, userID, poolID string, tx *models.Transaction, event *models.LedgerEvent) error

	// EarnLifeline adds one earned lifeline, failing with ErrLifelineCapReached.
	EarnLifeline(ctx context.Context, userID, poolID string, event *models.LedgerEvent) error

	// UseLifeline consumes one lifeline for day and stores the updated member
	// in the same write. It fails with ErrNoLifelines or ErrVersionConflict.
	UseLifeline(ctx context.Context, member *models.Member, day string, event *models.LedgerEvent) error
}

// TransactionStore defines the append-only financial audit trail.
type TransactionStore interface {
	// RecordTransaction appends a transaction; a reused id yields ErrDuplicateTransaction.
	RecordTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	ListTransactionsByPool(ctx context.Context, poolID string) ([]models.Transaction, error)
}

// ProfileCredit is a balance credit applied together with its transaction.
type ProfileCredit struct {
	Tx      *models.Transaction
	PoolWon bool
	Earned  int64
}

// ProfileStore defines the interface for user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error

	// CreditProfile records credit.Tx and applies it to the profile in one
	// write. It returns false if the transaction id was already applied.
	CreditProfile(ctx context.Context, credit ProfileCredit) (bool, error)
}

// SettlementStore defines the highly-privileged interface for settling a pool.
// It should only be exposed to the component responsible for final settlement.
type SettlementStore interface {
	// AcquireSettlementLease moves the pool into settling and claims it until
	// now+lease. It returns ErrAlreadySettled, ErrSettlementInProgress or
	// ErrPoolNotSettleable when the claim cannot be taken.
	AcquireSettlementLease(ctx context.Context, poolID string, now time.Time, lease time.Duration) (*models.Pool, error)

	// MarkSettled completes the pool and stamps settled_at exactly once.
	MarkSettled(ctx context.Context, poolID string, at time.Time, event *models.LedgerEvent) error
}
