// Package sweeper is the periodic watchdog that keeps pools moving: it counts
// missed days, fails members over the tolerance, closes finished pools and
// hands them to settlement.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/streaks"
	"golang.org/x/sync/errgroup"
)

// Store is the storage the sweeper needs.
type Store interface {
	storage.PoolStore
	storage.MemberStore
}

// Reviews default-resolves pending peer reviews.
type Reviews interface {
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
	ExpirePool(ctx context.Context, poolID string) (int, error)
}

// Settler queues pools for settlement.
type Settler interface {
	EnqueueSettlement(ctx context.Context, poolID string) error
}

// Requeuer re-enqueues proofs stuck in pending.
type Requeuer interface {
	RequeueStale(ctx context.Context, poolID, userID string, cutoff time.Time) (int, error)
}

// Config holds the tunables of the sweeper.
type Config struct {
	MissedDayTolerance int
	ReviewTimeout      time.Duration
	RequeueAfter       time.Duration
	Workers            int
}

// Report summarizes one sweep.
type Report struct {
	PoolsSwept     int `json:"pools_swept"`
	MembersFailed  int `json:"members_failed"`
	PoolsClosed    int `json:"pools_closed"`
	PoolsEnqueued  int `json:"pools_enqueued"`
	ReviewsExpired int `json:"reviews_expired"`
	ProofsRequeued int `json:"proofs_requeued"`
}

// Sweeper runs sweeps.
type Sweeper struct {
	store    Store
	reviews  Reviews
	settler  Settler
	requeuer Requeuer
	clock    clock.Clock
	cfg      Config

	mu     sync.Mutex
	report Report
}

// New creates a new Sweeper. requeuer may be nil.
func New(store Store, reviews Reviews, settler Settler, requeuer Requeuer, clk clock.Clock, cfg Config) *Sweeper {
	if cfg.ReviewTimeout <= 0 {
		cfg.ReviewTimeout = 48 * time.Hour
	}
	if cfg.RequeueAfter <= 0 {
		cfg.RequeueAfter = 15 * time.Minute
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Sweeper{store: store, reviews: reviews, settler: settler, requeuer: requeuer, clock: clk, cfg: cfg}
}

func (s *Sweeper) add(f func(r *Report)) {
	s.mu.Lock()
	f(&s.report)
	s.mu.Unlock()
}

// Sweep runs one pass over every active and settling pool. A failure on one
// pool does not stop the others; the first error is returned.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	s.mu.Lock()
	s.report = Report{}
	s.mu.Unlock()

	expired, err := s.reviews.ExpireStale(ctx, s.cfg.ReviewTimeout)
	if err != nil {
		return Report{}, fmt.Errorf("failed to expire stale reviews: %w", err)
	}
	s.add(func(r *Report) { r.ReviewsExpired += expired })

	// Settling pools are listed first so pools closed in this pass are
	// enqueued once.
	settling, err := s.store.ListPools(ctx, models.PoolSettling)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list settling pools: %w", err)
	}
	active, err := s.store.ListPools(ctx, models.PoolActive)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list active pools: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i := range settling {
		pool := settling[i]
		g.Go(func() error {
			return s.enqueue(ctx, &pool)
		})
	}
	for i := range active {
		pool := active[i]
		g.Go(func() error {
			if err := s.sweepPool(ctx, &pool); err != nil {
				slog.Error("Failed to sweep pool", "pool_id", pool.Id, "error", err)
				return fmt.Errorf("pool %s: %w", pool.Id, err)
			}
			return nil
		})
	}
	err = g.Wait()

	s.mu.Lock()
	report := s.report
	s.mu.Unlock()
	slog.Info("Sweep finished", "pools_swept", report.PoolsSwept, "members_failed", report.MembersFailed,
		"pools_closed", report.PoolsClosed, "pools_enqueued", report.PoolsEnqueued,
		"reviews_expired", report.ReviewsExpired, "proofs_requeued", report.ProofsRequeued)
	return report, err
}

func (s *Sweeper) enqueue(ctx context.Context, pool *models.Pool) error {
	if err := s.settler.EnqueueSettlement(ctx, pool.Id); err != nil {
		return fmt.Errorf("failed to enqueue settlement for %s: %w", pool.Id, err)
	}
	s.add(func(r *Report) { r.PoolsEnqueued++ })
	return nil
}

func (s *Sweeper) sweepPool(ctx context.Context, pool *models.Pool) error {
	now := s.clock.Now()
	today := clock.Day(now)
	ended := pool.EndsAt != nil && !now.Before(*pool.EndsAt)

	members, err := s.store.ListMembers(ctx, pool.Id)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		if m.Status != models.MemberActive {
			continue
		}
		failed, err := s.checkMissed(ctx, pool, m.UserId, today)
		if err != nil {
			return err
		}
		if failed {
			s.add(func(r *Report) { r.MembersFailed++ })
		}
		if s.requeuer != nil && !ended {
			n, err := s.requeuer.RequeueStale(ctx, pool.Id, m.UserId, now.Add(-s.cfg.RequeueAfter))
			if err != nil {
				return err
			}
			s.add(func(r *Report) { r.ProofsRequeued += n })
		}
	}
	s.add(func(r *Report) { r.PoolsSwept++ })

	if !ended {
		return nil
	}
	err = s.store.TransitionPool(ctx, pool.Id, []models.PoolStatus{models.PoolActive}, models.PoolSettling, now)
	if err != nil && !errors.Is(err, storage.ErrInvalidTransition) {
		return fmt.Errorf("failed to close pool: %w", err)
	}
	if err == nil {
		s.add(func(r *Report) { r.PoolsClosed++ })
		slog.Info("Pool closed for settlement", "pool_id", pool.Id)
	}
	n, err := s.reviews.ExpirePool(ctx, pool.Id)
	if err != nil {
		return fmt.Errorf("failed to expire pool reviews: %w", err)
	}
	s.add(func(r *Report) { r.ReviewsExpired += n })
	return s.enqueue(ctx, pool)
}

// checkMissed refreshes days_missed and fails the member once it exceeds the
// tolerance. Days after the pool's end are not owed. It reports whether the member was failed.
func (s *Sweeper) checkMissed(ctx context.Context, pool *models.Pool, userID, today string) (bool, error) {
	for attempt := 0; attempt < 5; attempt++ {
		m, err := s.store.GetMember(ctx, pool.Id, userID)
		if err != nil {
			return false, err
		}
		if m.Status != models.MemberActive {
			return false, nil
		}
		missed := streaks.PoolMissedDays(pool, m, today)
		failing := missed > s.cfg.MissedDayTolerance
		if missed == m.DaysMissed && !failing {
			return false, nil
		}
		m.DaysMissed = missed
		if failing {
			m.Status = models.MemberFailed
		}

		err = s.store.UpdateMember(ctx, m)
		if err == nil {
			if failing {
				slog.Info("Member failed for missed days", "pool_id", pool.Id, "user_id", userID, "days_missed", missed)
			}
			return failing, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return false, fmt.Errorf("failed to update member: %w", err)
		}
	}
	return false, storage.ErrVersionConflict
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				slog.Error("Sweep failed", "error", err)
			}
		}
	}
}
