package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedPool(t *testing.T, s *Store, maxPlayers int) *models.Pool {
	t.Helper()
	pool := &models.Pool{
		Id:             "pool1",
		CreatorId:      "alice",
		Title:          "Read 20 pages",
		StakeAmount:    100,
		DurationDays:   7,
		MaxPlayers:     maxPlayers,
		CurrentPlayers: 1,
		PotSize:        100,
		Status:         models.PoolWaiting,
		CreatedAt:      t0,
		Version:        1,
	}
	creator := &models.Member{PoolId: "pool1", UserId: "alice", Status: models.MemberActive, JoinedAt: t0, StakeAmount: 100}
	require.NoError(t, s.CreatePool(context.Background(), pool, creator, nil))
	return pool
}

func TestAddMemberConcurrentJoinsNeverOverfill(t *testing.T) {
	s := New()
	seedPool(t, s, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	joined := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user%d", i)
			for {
				pool, err := s.GetPool(ctx, "pool1")
				if err != nil {
					return
				}
				if pool.CurrentPlayers >= pool.MaxPlayers {
					return
				}
				err = s.AddMember(ctx, &storage.JoinWrite{
					Pool:   pool,
					Member: &models.Member{PoolId: "pool1", UserId: user, Status: models.MemberActive, JoinedAt: time.Now(), StakeAmount: 100},
					At:     time.Now(),
				})
				if err == nil {
					mu.Lock()
					joined++
					mu.Unlock()
					return
				}
				if err != storage.ErrVersionConflict {
					return
				}
			}
		}(i)
	}
	wg.Wait()

	pool, err := s.GetPool(ctx, "pool1")
	require.NoError(t, err)
	members, err := s.ListMembers(ctx, "pool1")
	require.NoError(t, err)

	assert.Equal(t, 4, joined)
	assert.Equal(t, 5, pool.CurrentPlayers)
	assert.Len(t, members, 5)
	assert.Equal(t, int64(500), pool.PotSize)
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("Duplicate Member", func(t *testing.T) {
		s := New()
		pool := seedPool(t, s, 3)

		err := s.AddMember(ctx, &storage.JoinWrite{Pool: pool, Member: &models.Member{PoolId: "pool1", UserId: "alice"}, At: t0})

		assert.ErrorIs(t, err, storage.ErrAlreadyMember)
	})

	t.Run("Stale Snapshot", func(t *testing.T) {
		s := New()
		pool := seedPool(t, s, 3)
		stale := *pool
		require.NoError(t, s.AddMember(ctx, &storage.JoinWrite{Pool: pool, Member: &models.Member{PoolId: "pool1", UserId: "bob", JoinedAt: t0}, At: t0}))

		err := s.AddMember(ctx, &storage.JoinWrite{Pool: &stale, Member: &models.Member{PoolId: "pool1", UserId: "carol"}, At: t0})

		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})

	t.Run("Activation Appends Events", func(t *testing.T) {
		s := New()
		pool := seedPool(t, s, 3)
		ends := t0.Add(7 * 24 * time.Hour)

		err := s.AddMember(ctx, &storage.JoinWrite{Pool: pool, Member: &models.Member{PoolId: "pool1", UserId: "bob", JoinedAt: t0}, Activate: true, EndsAt: ends, At: t0})
		require.NoError(t, err)

		got, _ := s.GetPool(ctx, "pool1")
		assert.Equal(t, models.PoolActive, got.Status)
		assert.Equal(t, ends, *got.EndsAt)

		events, _ := s.ListPoolEvents(ctx, "pool1")
		kinds := make([]models.EventKind, len(events))
		for i, ev := range events {
			kinds[i] = ev.Kind
		}
		assert.Equal(t, []models.EventKind{models.EventPoolCreated, models.EventMemberJoined, models.EventMemberJoined, models.EventPoolActivated}, kinds)
	})
}

func TestLifelines(t *testing.T) {
	ctx := context.Background()

	t.Run("Cap Holds Under Concurrency", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateProfile(ctx, &models.Profile{UserId: "bob", Balance: 1_000}))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%2 == 0 {
					tx := &models.Transaction{Id: fmt.Sprintf("tx%d", i), UserId: "bob", PoolId: "pool1", Amount: 10}
					_ = s.PurchaseLifeline(ctx, "bob", "pool1", tx, nil)
				} else {
					_ = s.EarnLifeline(ctx, "bob", "pool1", nil)
				}
			}(i)
		}
		wg.Wait()

		acct, err := s.GetLifelineAccount(ctx, "bob", "pool1")
		require.NoError(t, err)
		assert.Equal(t, models.LifelineCap, acct.Obtained())

		profile, _ := s.GetProfile(ctx, "bob")
		assert.Equal(t, int64(1_000-10*acct.Purchased), profile.Balance)
	})

	t.Run("Insufficient Balance", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateProfile(ctx, &models.Profile{UserId: "bob", Balance: 5}))

		err := s.PurchaseLifeline(ctx, "bob", "pool1", &models.Transaction{Id: "tx", UserId: "bob", Amount: 10}, nil)

		assert.ErrorIs(t, err, storage.ErrInsufficientBalance)
	})

	t.Run("Use Once Per Day", func(t *testing.T) {
		s := New()
		seedPool(t, s, 3)
		require.NoError(t, s.EarnLifeline(ctx, "alice", "pool1", nil))
		require.NoError(t, s.EarnLifeline(ctx, "alice", "pool1", nil))

		member, _ := s.GetMember(ctx, "pool1", "alice")
		member.CoveredDays = append(member.CoveredDays, "2026-03-02")
		require.NoError(t, s.UseLifeline(ctx, member, "2026-03-02", nil))

		again, _ := s.GetMember(ctx, "pool1", "alice")
		err := s.UseLifeline(ctx, again, "2026-03-02", nil)
		assert.ErrorIs(t, err, storage.ErrNoLifelines)

		acct, _ := s.GetLifelineAccount(ctx, "alice", "pool1")
		assert.Equal(t, 1, acct.Available())
	})
}

func TestCreditProfileIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	tx := &models.Transaction{Id: "settle:pool1:bob", UserId: "bob", PoolId: "pool1", Type: models.TxWinningsClaim, Amount: 300, CreatedAt: t0}

	applied, err := s.CreditProfile(ctx, storage.ProfileCredit{Tx: tx, PoolWon: true, Earned: 200})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = s.CreditProfile(ctx, storage.ProfileCredit{Tx: tx, PoolWon: true, Earned: 200})
	require.NoError(t, err)
	assert.False(t, applied)

	profile, _ := s.GetProfile(ctx, "bob")
	assert.Equal(t, int64(300), profile.Balance)
	assert.Equal(t, int64(200), profile.TotalSolEarned)
	assert.Equal(t, 1, profile.TotalPoolsWon)
}

func TestSettlementLease(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedPool(t, s, 3)
	require.NoError(t, s.TransitionPool(ctx, "pool1", []models.PoolStatus{models.PoolWaiting}, models.PoolActive, t0))

	now := t0.Add(8 * 24 * time.Hour)
	_, err := s.AcquireSettlementLease(ctx, "pool1", now, time.Minute)
	require.NoError(t, err)

	_, err = s.AcquireSettlementLease(ctx, "pool1", now.Add(time.Second), time.Minute)
	assert.ErrorIs(t, err, storage.ErrSettlementInProgress)

	// An expired lease can be taken over.
	_, err = s.AcquireSettlementLease(ctx, "pool1", now.Add(2*time.Minute), time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.MarkSettled(ctx, "pool1", now, &models.LedgerEvent{PoolId: "pool1", Kind: models.EventPoolSettled, Timestamp: now}))
	assert.ErrorIs(t, s.MarkSettled(ctx, "pool1", now, nil), storage.ErrAlreadySettled)

	_, err = s.AcquireSettlementLease(ctx, "pool1", now.Add(time.Hour), time.Minute)
	assert.ErrorIs(t, err, storage.ErrAlreadySettled)
}

func TestReviews(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateReview(ctx, &models.ProofReview{Id: "r1", ProofId: "p1", PoolId: "pool1", ReviewerId: "carol", Status: models.ReviewPending, CreatedAt: t0}))
	require.NoError(t, s.CreateReview(ctx, &models.ProofReview{Id: "r2", ProofId: "p2", PoolId: "pool1", ReviewerId: "carol", Status: models.ReviewPending, CreatedAt: t0.Add(47 * time.Hour)}))
	err := s.CreateReview(ctx, &models.ProofReview{Id: "r1", ProofId: "p1", PoolId: "pool1", ReviewerId: "dave", Status: models.ReviewPending, CreatedAt: t0})
	assert.ErrorIs(t, err, storage.ErrReviewExists)

	stale, err := s.GetStaleReviews(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "r1", stale[0].Id)

	require.NoError(t, s.ResolveReview(ctx, "r1", models.ReviewApproved, "", "carol", t0))
	assert.ErrorIs(t, s.ResolveReview(ctx, "r1", models.ReviewRejected, "", "carol", t0), storage.ErrReviewResolved)

	pending, _ := s.ListPendingReviewsByReviewer(ctx, "carol")
	assert.Len(t, pending, 1)
}
