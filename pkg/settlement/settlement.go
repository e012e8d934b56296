// Package settlement closes a finished pool: it partitions the members into
// winners and losers, redistributes forfeited stakes and credits balances.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/streaks"
	"github.com/chris/habit-pools/pkg/websockets"
)

// Outcome is a member's result in a settled pool.
type Outcome string

const (
	OutcomeWon      Outcome = "won"
	OutcomeLost     Outcome = "lost"
	OutcomeRefunded Outcome = "refunded"
)

// Payout is the amount credited to one member. Losers appear with a zero
// amount.
type Payout struct {
	UserId  string  `json:"user_id"`
	Stake   int64   `json:"stake"`
	Amount  int64   `json:"amount"`
	Outcome Outcome `json:"outcome"`
}

// Result summarizes a settlement.
type Result struct {
	PoolId    string   `json:"pool_id"`
	Winners   int      `json:"winners"`
	Forfeit   int64    `json:"forfeit"`
	TotalPaid int64    `json:"total_paid"`
	Payouts   []Payout `json:"payouts"`
}

// Store is the storage the engine needs.
type Store interface {
	storage.PoolReader
	storage.MemberStore
	storage.ProfileStore
	storage.SettlementStore
}

// ReviewExpirer default-resolves the pending reviews of a pool.
type ReviewExpirer interface {
	ExpirePool(ctx context.Context, poolID string) (int, error)
}

// Config holds the tunables of the engine.
type Config struct {
	MissedDayTolerance int
	Lease              time.Duration
}

// Engine settles pools.
type Engine struct {
	store     Store
	reviews   ReviewExpirer
	publisher websockets.Publisher
	clock     clock.Clock
	cfg       Config
}

// NewEngine creates a new Engine. reviews and publisher may be nil.
func NewEngine(store Store, reviews ReviewExpirer, publisher websockets.Publisher, clk clock.Clock, cfg Config) *Engine {
	if cfg.Lease <= 0 {
		cfg.Lease = 5 * time.Minute
	}
	if cfg.MissedDayTolerance < 0 {
		cfg.MissedDayTolerance = 0
	}
	return &Engine{store: store, reviews: reviews, publisher: publisher, clock: clk, cfg: cfg}
}

// Completed reports whether m met the pool's completion rule: not failed by
// the sweeper, and no more than tolerance owed days left without a proof or a
// lifeline. Days are owed from the later of the pool start and the join day,
// the same window the sweeper uses.
func Completed(pool *models.Pool, m *models.Member, tolerance int) bool {
	if m.Status == models.MemberFailed {
		return false
	}
	return streaks.PoolMissedDays(pool, m, streaks.EndDay(pool)) <= tolerance
}

// Partition splits the non-withdrawn members into completed and failed,
// preserving the input order.
func Partition(pool *models.Pool, members []models.Member, tolerance int) (completed, failed []models.Member) {
	for _, m := range members {
		switch {
		case m.Status == models.MemberWithdrawn:
		case Completed(pool, &m, tolerance):
			completed = append(completed, m)
		default:
			failed = append(failed, m)
		}
	}
	return completed, failed
}

// ComputePayouts splits the failed members' stakes equally among the
// completed members, handing out the remainder one lamport at a time in the
// order given. Without any completed member everyone is refunded.
func ComputePayouts(completed, failed []models.Member) []Payout {
	payouts := make([]Payout, 0, len(completed)+len(failed))
	if len(completed) == 0 {
		for _, m := range failed {
			payouts = append(payouts, Payout{UserId: m.UserId, Stake: m.StakeAmount, Amount: m.StakeAmount, Outcome: OutcomeRefunded})
		}
		return payouts
	}

	var forfeit int64
	for _, m := range failed {
		forfeit += m.StakeAmount
	}
	n := int64(len(completed))
	share, rem := forfeit/n, forfeit%n
	for i, m := range completed {
		amount := m.StakeAmount + share
		if int64(i) < rem {
			amount++
		}
		payouts = append(payouts, Payout{UserId: m.UserId, Stake: m.StakeAmount, Amount: amount, Outcome: OutcomeWon})
	}
	for _, m := range failed {
		payouts = append(payouts, Payout{UserId: m.UserId, Stake: m.StakeAmount, Outcome: OutcomeLost})
	}
	return payouts
}

// TxID is the idempotency key of a member's settlement payout.
func TxID(poolID, userID string) string {
	return fmt.Sprintf("settle:%s:%s", poolID, userID)
}

// Settle settles a pool exactly once. It can be re-run after a crash: the
// lease expires, payouts already credited are skipped by their idempotency
// key and member statuses are recomputed to the same values.
func (e *Engine) Settle(ctx context.Context, poolID string) (*Result, error) {
	now := e.clock.Now()
	current, err := e.store.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.PoolActive && (current.EndsAt == nil || now.Before(*current.EndsAt)) {
		return nil, storage.ErrPoolNotSettleable
	}

	pool, err := e.store.AcquireSettlementLease(ctx, poolID, now, e.cfg.Lease)
	if err != nil {
		return nil, err
	}
	slog.Info("Settlement lease acquired", "pool_id", poolID, "lease", e.cfg.Lease)

	if e.reviews != nil {
		if n, err := e.reviews.ExpirePool(ctx, poolID); err != nil {
			return nil, fmt.Errorf("failed to expire pending reviews: %w", err)
		} else if n > 0 {
			slog.Info("Expired pending reviews before settlement", "pool_id", poolID, "count", n)
		}
	}

	members, err := e.store.ListMembers(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	completed, failed := Partition(pool, members, e.cfg.MissedDayTolerance)
	payouts := ComputePayouts(completed, failed)

	res := &Result{PoolId: poolID, Winners: len(completed), Payouts: payouts}
	for _, m := range failed {
		if len(completed) > 0 {
			res.Forfeit += m.StakeAmount
		}
	}

	for _, p := range payouts {
		res.TotalPaid += p.Amount
		if p.Amount == 0 {
			continue
		}
		if err := e.credit(ctx, poolID, p); err != nil {
			return nil, err
		}
	}

	for _, m := range completed {
		if err := e.setStatus(ctx, poolID, m.UserId, models.MemberCompleted); err != nil {
			return nil, err
		}
	}
	for _, m := range failed {
		if err := e.setStatus(ctx, poolID, m.UserId, models.MemberFailed); err != nil {
			return nil, err
		}
	}

	event := &models.LedgerEvent{PoolId: poolID, Kind: models.EventPoolSettled, Amount: res.TotalPaid, Timestamp: e.clock.Now()}
	if err := e.store.MarkSettled(ctx, poolID, e.clock.Now(), event); err != nil {
		return nil, err
	}
	slog.Info("Pool settled", "pool_id", poolID, "winners", res.Winners, "forfeit", res.Forfeit, "total_paid", res.TotalPaid)

	e.notify(ctx, poolID, res)
	return res, nil
}

func (e *Engine) credit(ctx context.Context, poolID string, p Payout) error {
	tx := &models.Transaction{
		Id:        TxID(poolID, p.UserId),
		UserId:    p.UserId,
		PoolId:    poolID,
		Type:      models.TxWinningsClaim,
		Amount:    p.Amount,
		Status:    models.TxCompleted,
		CreatedAt: e.clock.Now(),
	}
	credit := storage.ProfileCredit{Tx: tx}
	if p.Outcome == OutcomeWon {
		// A plain stake return is not counted as a win.
		credit.PoolWon = p.Amount > p.Stake
		credit.Earned = p.Amount - p.Stake
	} else {
		tx.Type = models.TxStakeRefund
	}

	applied, err := e.store.CreditProfile(ctx, credit)
	if err != nil {
		return fmt.Errorf("failed to credit %s: %w", p.UserId, err)
	}
	if !applied {
		slog.Info("Payout already applied", "pool_id", poolID, "user_id", p.UserId)
	}
	return nil
}

func (e *Engine) setStatus(ctx context.Context, poolID, userID string, status models.MemberStatus) error {
	for attempt := 0; attempt < 5; attempt++ {
		m, err := e.store.GetMember(ctx, poolID, userID)
		if err != nil {
			return err
		}
		if m.Status == status {
			return nil
		}
		m.Status = status
		err = e.store.UpdateMember(ctx, m)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return fmt.Errorf("failed to update member %s: %w", userID, err)
		}
	}
	return storage.ErrVersionConflict
}

func (e *Engine) notify(ctx context.Context, poolID string, res *Result) {
	if e.publisher == nil {
		return
	}
	for _, p := range res.Payouts {
		err := e.publisher.Publish(ctx, p.UserId, websockets.Message{
			Type: websockets.MessageTypePoolSettled,
			Payload: websockets.PoolSettledPayload{
				PoolID:  poolID,
				Outcome: string(p.Outcome),
				Payout:  p.Amount,
				Winners: res.Winners,
			},
		})
		if err != nil {
			slog.Error("Failed to publish settlement", "pool_id", poolID, "user_id", p.UserId, "error", err)
		}
	}
}
