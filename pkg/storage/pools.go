package storage

import (
	"context"
	"time"

	"github.com/chris/habit-pools/pkg/models"
)

// PoolReader defines the interface for reading pool data.
type PoolReader interface {
	// GetPool retrieves a pool by its ID.
	GetPool(ctx context.Context, poolID string) (*models.Pool, error)

	// ListPools retrieves pools, optionally filtered by status ("" for all).
	ListPools(ctx context.Context, status models.PoolStatus) ([]models.Pool, error)

	// ListPoolEvents retrieves the append-only event log of a pool in order.
	ListPoolEvents(ctx context.Context, poolID string) ([]models.LedgerEvent, error)
}

// JoinWrite describes one member_joined ledger append together with the
// read-model update it implies. Pool is the snapshot the caller validated
// against; the write only succeeds if the stored pool still has its version.
type JoinWrite struct {
	Pool     *models.Pool
	Member   *models.Member
	Deposit  *models.Transaction
	Activate bool
	EndsAt   time.Time
	At       time.Time
}

// PoolWriter defines the interface for mutating pools.
type PoolWriter interface {
	// CreatePool atomically writes the pool, the creator's membership, the
	// creation and join events and the creator's deposit, if any.
	CreatePool(ctx context.Context, pool *models.Pool, creator *models.Member, deposit *models.Transaction) error

	// AddMember appends a join. It fails with ErrAlreadyMember for a duplicate
	// membership and ErrVersionConflict when the pool changed since the snapshot.
	AddMember(ctx context.Context, join *JoinWrite) error

	// TransitionPool moves a pool from one of the given states to another.
	TransitionPool(ctx context.Context, poolID string, from []models.PoolStatus, to models.PoolStatus, at time.Time) error

	// SetPoolCounters overwrites current_players and pot_size, guarded by version.
	SetPoolCounters(ctx context.Context, poolID string, players int, pot int64, version int64) error
}

// PoolStore combines the reader and writer interfaces.
type PoolStore interface {
	PoolReader
	PoolWriter
}

// MemberStore defines the interface for per-member progress state.
type MemberStore interface {
	GetMember(ctx context.Context, poolID, userID string) (*models.Member, error)
	ListMembers(ctx context.Context, poolID string) ([]models.Member, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]models.Member, error)

	// UpdateMember replaces the member record if the stored version equals
	// m.Version. On success m.Version is incremented.
	UpdateMember(ctx context.Context, m *models.Member) error
}
