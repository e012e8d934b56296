// Package pools implements the pool registry and the membership ledger.
package pools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/google/uuid"
)

// ErrNotCreator is returned when someone other than the creator tries to
// cancel a pool.
var ErrNotCreator = errors.New("only the pool creator can do this")

// ErrEscrow wraps escrow failures. A failed transfer blocks the join.
var ErrEscrow = errors.New("escrow transfer failed")

// Escrow moves stakes into the pool escrow.
type Escrow interface {
	TransferStake(ctx context.Context, from string, amount int64) (string, error)
}

// Store is the storage the pool service needs.
type Store interface {
	storage.PoolStore
	storage.MemberStore
	storage.ProfileStore
}

// Config holds the tunables of the service.
type Config struct {
	EscrowTimeout  time.Duration
	MaxJoinRetries int
}

// Service is the pool registry and membership ledger.
type Service struct {
	store  Store
	escrow Escrow
	clock  clock.Clock
	cfg    Config
}

// NewService creates a new Service.
func NewService(store Store, escrow Escrow, clk clock.Clock, cfg Config) *Service {
	if cfg.EscrowTimeout <= 0 {
		cfg.EscrowTimeout = 10 * time.Second
	}
	if cfg.MaxJoinRetries <= 0 {
		cfg.MaxJoinRetries = 5
	}
	return &Service{store: store, escrow: escrow, clock: clk, cfg: cfg}
}

// StakeTxID is the idempotency key of a member's stake deposit.
func StakeTxID(poolID, userID string) string {
	return fmt.Sprintf("stake:%s:%s", poolID, userID)
}

// RefundTxID is the idempotency key of a cancellation refund.
func RefundTxID(poolID, userID string) string {
	return fmt.Sprintf("refund:%s:%s", poolID, userID)
}

// transferStake obtains an escrow reference for a stake. The call is bounded
// and runs before any write.
func (s *Service) transferStake(ctx context.Context, userID string, amount int64, presented string) (string, error) {
	if presented != "" || amount == 0 {
		return presented, nil
	}
	if s.escrow == nil {
		return "", fmt.Errorf("%w: no escrow configured", ErrEscrow)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EscrowTimeout)
	defer cancel()

	ref, err := s.escrow.TransferStake(ctx, userID, amount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEscrow, err)
	}
	return ref, nil
}

func stakeDeposit(poolID, userID string, amount int64, ref string, at time.Time) *models.Transaction {
	return &models.Transaction{
		Id:        StakeTxID(poolID, userID),
		UserId:    userID,
		PoolId:    poolID,
		Type:      models.TxStakeDeposit,
		Amount:    amount,
		Status:    models.TxCompleted,
		Reference: ref,
		CreatedAt: at,
	}
}

// CreatePool validates a pool definition, creates the pool in waiting and
// enrolls the creator as its first member.
func (s *Service) CreatePool(ctx context.Context, in NewPool) (*models.Pool, error) {
	if err := ValidateNewPool(&in); err != nil {
		return nil, err
	}

	ref, err := s.transferStake(ctx, in.CreatorId, in.StakeAmount, in.StakeTxReference)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	pool := &models.Pool{
		Id:               uuid.New().String(),
		CreatorId:        in.CreatorId,
		Title:            in.Title,
		ProofRequirement: in.ProofRequirement,
		StakeAmount:      in.StakeAmount,
		DurationDays:     in.DurationDays,
		MaxPlayers:       in.MaxPlayers,
		CurrentPlayers:   1,
		PotSize:          in.StakeAmount,
		Status:           models.PoolWaiting,
		CreatedAt:        now,
		Version:          1,
	}
	creator := &models.Member{
		PoolId:           pool.Id,
		UserId:           in.CreatorId,
		Status:           models.MemberActive,
		JoinedAt:         now,
		StakeAmount:      in.StakeAmount,
		StakeTxReference: ref,
	}

	if err := s.store.CreatePool(ctx, pool, creator, stakeDeposit(pool.Id, in.CreatorId, in.StakeAmount, ref, now)); err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	slog.Info("Pool created", "pool_id", pool.Id, "creator_id", pool.CreatorId, "stake", pool.StakeAmount)
	return pool, nil
}

// GetPool returns a pool by id.
func (s *Service) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	return s.store.GetPool(ctx, poolID)
}

// ListPools returns pools in a status, or every pool for "".
func (s *Service) ListPools(ctx context.Context, status models.PoolStatus) ([]models.Pool, error) {
	return s.store.ListPools(ctx, status)
}

// ListMembers returns a pool's members in join order.
func (s *Service) ListMembers(ctx context.Context, poolID string) ([]models.Member, error) {
	if _, err := s.store.GetPool(ctx, poolID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, poolID)
}

// checkJoinable returns the typed conflict that forbids userID from joining.
func (s *Service) checkJoinable(ctx context.Context, pool *models.Pool, userID string) error {
	if !pool.Status.Joinable() {
		return storage.ErrPoolNotJoinable
	}
	if _, err := s.store.GetMember(ctx, pool.Id, userID); err == nil {
		return storage.ErrAlreadyMember
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if pool.CurrentPlayers >= pool.MaxPlayers {
		return storage.ErrPoolFull
	}
	return nil
}

// JoinPool enrolls userID in a pool. The stake is transferred through escrow
// unless stakeRef is given; a failed transfer blocks the join. The enrollment,
// the counter update and the activation on the second member are a single
// conditional write on the pool version, retried after a re-read.
func (s *Service) JoinPool(ctx context.Context, poolID, userID, stakeRef string) (*models.Member, error) {
	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if err := s.checkJoinable(ctx, pool, userID); err != nil {
		return nil, err
	}

	ref, err := s.transferStake(ctx, userID, pool.StakeAmount, stakeRef)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.cfg.MaxJoinRetries; attempt++ {
		if attempt > 0 {
			if pool, err = s.store.GetPool(ctx, poolID); err != nil {
				return nil, err
			}
			if err := s.checkJoinable(ctx, pool, userID); err != nil {
				s.logOrphanedStake(poolID, userID, ref, err)
				return nil, err
			}
		}

		now := s.clock.Now()
		member := &models.Member{
			PoolId:           poolID,
			UserId:           userID,
			Status:           models.MemberActive,
			JoinedAt:         now,
			StakeAmount:      pool.StakeAmount,
			StakeTxReference: ref,
		}
		join := &storage.JoinWrite{
			Pool:    pool,
			Member:  member,
			Deposit: stakeDeposit(poolID, userID, pool.StakeAmount, ref, now),
			At:      now,
		}
		if pool.Status == models.PoolWaiting && pool.CurrentPlayers+1 >= 2 {
			join.Activate = true
			join.EndsAt = clock.StartOfDay(now).AddDate(0, 0, pool.DurationDays)
		}

		err = s.store.AddMember(ctx, join)
		if err == nil {
			slog.Info("Member joined", "pool_id", poolID, "user_id", userID, "activated", join.Activate)
			return member, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			s.logOrphanedStake(poolID, userID, ref, err)
			return nil, err
		}
		slog.Debug("Join lost a version race, retrying", "pool_id", poolID, "attempt", attempt+1)
	}
	s.logOrphanedStake(poolID, userID, ref, storage.ErrVersionConflict)
	return nil, storage.ErrVersionConflict
}

func (s *Service) logOrphanedStake(poolID, userID, ref string, cause error) {
	if ref == "" {
		return
	}
	slog.Warn("Stake transferred but join failed", "pool_id", poolID, "user_id", userID, "stake_tx_reference", ref, "error", cause)
}

// CancelPool cancels a waiting or active pool and refunds every
// non-withdrawn member. Refunds are idempotent, so calling it again on a
// cancelled pool finishes an interrupted cancellation.
func (s *Service) CancelPool(ctx context.Context, poolID, requesterID string) (int, error) {
	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return 0, err
	}
	if pool.CreatorId != requesterID {
		return 0, ErrNotCreator
	}
	now := s.clock.Now()
	if pool.Status != models.PoolCancelled {
		from := []models.PoolStatus{models.PoolWaiting, models.PoolActive}
		if err := s.store.TransitionPool(ctx, poolID, from, models.PoolCancelled, now); err != nil {
			return 0, err
		}
		slog.Info("Pool cancelled", "pool_id", poolID)
	}

	members, err := s.store.ListMembers(ctx, poolID)
	if err != nil {
		return 0, fmt.Errorf("failed to list members for refund: %w", err)
	}
	refunded := 0
	for _, m := range members {
		if m.Status == models.MemberWithdrawn || m.StakeAmount == 0 {
			continue
		}
		applied, err := s.store.CreditProfile(ctx, storage.ProfileCredit{Tx: &models.Transaction{
			Id:        RefundTxID(poolID, m.UserId),
			UserId:    m.UserId,
			PoolId:    poolID,
			Type:      models.TxStakeRefund,
			Amount:    m.StakeAmount,
			Status:    models.TxCompleted,
			CreatedAt: now,
		}})
		if err != nil {
			return refunded, fmt.Errorf("failed to refund %s: %w", m.UserId, err)
		}
		if applied {
			refunded++
		}
	}
	return refunded, nil
}

// Recount is the result of rebuilding a pool's counters from its ledger.
type Recount struct {
	Players int
	Pot     int64
	Drifted bool
}

// RecountPool rebuilds current_players and pot_size from the member_joined
// events and repairs the stored counters if they drifted.
func (s *Service) RecountPool(ctx context.Context, poolID string) (*Recount, error) {
	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListPoolEvents(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool ledger: %w", err)
	}

	rc := &Recount{}
	for _, ev := range events {
		if ev.Kind == models.EventMemberJoined {
			rc.Players++
			rc.Pot += ev.Amount
		}
	}
	if rc.Players == pool.CurrentPlayers && rc.Pot == pool.PotSize {
		return rc, nil
	}

	rc.Drifted = true
	slog.Warn("Pool counters drifted from ledger", "pool_id", poolID,
		"stored_players", pool.CurrentPlayers, "ledger_players", rc.Players,
		"stored_pot", pool.PotSize, "ledger_pot", rc.Pot)
	if err := s.store.SetPoolCounters(ctx, poolID, rc.Players, rc.Pot, pool.Version); err != nil {
		return nil, fmt.Errorf("failed to repair pool counters: %w", err)
	}
	return rc, nil
}
