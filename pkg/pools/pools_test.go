package pools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/pools/mocks"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const halfSOL = models.LamportsPerSOL / 2

var start = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memory.Store, *mocks.Escrow) {
	t.Helper()
	store := memory.New()
	escrow := mocks.NewEscrow(t)
	return NewService(store, escrow, clock.NewFixed(start), Config{EscrowTimeout: time.Second}), store, escrow
}

func validPool() NewPool {
	return NewPool{
		CreatorId:        "alice",
		Title:            "Morning run",
		ProofRequirement: "Photo of your running watch",
		StakeAmount:      halfSOL,
		DurationDays:     7,
		MaxPlayers:       2,
		StakeTxReference: "sig-alice",
	}
}

func TestCreatePoolValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(p *NewPool)
		field  string
	}{
		{"Zero Stake", func(p *NewPool) { p.StakeAmount = 0 }, "stake_amount"},
		{"Zero Duration", func(p *NewPool) { p.DurationDays = 0 }, "duration_days"},
		{"Too Few Players", func(p *NewPool) { p.MaxPlayers = 1 }, "max_players"},
		{"Too Many Players", func(p *NewPool) { p.MaxPlayers = 51 }, "max_players"},
		{"Blank Requirement", func(p *NewPool) { p.ProofRequirement = "   " }, "proof_requirement"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _ := newTestService(t)
			in := validPool()
			tc.mutate(&in)

			_, err := svc.CreatePool(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.NotErrorIs(t, err, storage.ErrConflict)

			pools, _ := store.ListPools(context.Background(), "")
			assert.Empty(t, pools)
		})
	}
}

func TestCreateAndJoinActivatesPool(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	pool, err := svc.CreatePool(ctx, validPool())
	require.NoError(t, err)
	assert.Equal(t, models.PoolWaiting, pool.Status)
	assert.Equal(t, 1, pool.CurrentPlayers)

	_, err = svc.JoinPool(ctx, pool.Id, "bob", "sig-bob")
	require.NoError(t, err)

	got, err := svc.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	assert.Equal(t, models.PoolActive, got.Status)
	assert.Equal(t, 2, got.CurrentPlayers)
	assert.Equal(t, models.LamportsPerSOL, got.PotSize)
	assert.Equal(t, start, *got.StartedAt)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), *got.EndsAt)

	txs, _ := store.ListTransactionsByPool(ctx, pool.Id)
	require.Len(t, txs, 2)
	assert.Equal(t, models.TxStakeDeposit, txs[1].Type)
	assert.Equal(t, "sig-bob", txs[1].Reference)
}

func TestJoinPoolConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("Already Member", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		in := validPool()
		in.MaxPlayers = 3
		pool, _ := svc.CreatePool(ctx, in)

		_, err := svc.JoinPool(ctx, pool.Id, "alice", "sig")
		assert.ErrorIs(t, err, storage.ErrAlreadyMember)
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("Full", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		pool, _ := svc.CreatePool(ctx, validPool())
		_, err := svc.JoinPool(ctx, pool.Id, "bob", "sig-bob")
		require.NoError(t, err)

		_, err = svc.JoinPool(ctx, pool.Id, "carol", "sig-carol")
		assert.ErrorIs(t, err, storage.ErrPoolFull)
	})

	t.Run("Cancelled", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		in := validPool()
		in.MaxPlayers = 3
		pool, _ := svc.CreatePool(ctx, in)
		_, err := svc.CancelPool(ctx, pool.Id, "alice")
		require.NoError(t, err)

		_, err = svc.JoinPool(ctx, pool.Id, "bob", "sig-bob")
		assert.ErrorIs(t, err, storage.ErrPoolNotJoinable)
	})
}

func TestJoinPoolEscrow(t *testing.T) {
	ctx := context.Background()

	t.Run("Transfer Used As Reference", func(t *testing.T) {
		svc, store, escrow := newTestService(t)
		pool, _ := svc.CreatePool(ctx, validPool())
		escrow.On("TransferStake", mock.Anything, "bob", halfSOL).Return("escrow-tx-1", nil).Once()

		member, err := svc.JoinPool(ctx, pool.Id, "bob", "")

		require.NoError(t, err)
		assert.Equal(t, "escrow-tx-1", member.StakeTxReference)
		stored, _ := store.GetMember(ctx, pool.Id, "bob")
		assert.Equal(t, "escrow-tx-1", stored.StakeTxReference)
	})

	t.Run("Failure Blocks Join", func(t *testing.T) {
		svc, store, escrow := newTestService(t)
		pool, _ := svc.CreatePool(ctx, validPool())
		escrow.On("TransferStake", mock.Anything, "bob", halfSOL).Return("", errors.New("rpc unavailable")).Once()

		_, err := svc.JoinPool(ctx, pool.Id, "bob", "")

		assert.ErrorIs(t, err, ErrEscrow)
		got, _ := store.GetPool(ctx, pool.Id)
		assert.Equal(t, 1, got.CurrentPlayers)
		assert.Equal(t, models.PoolWaiting, got.Status)
		_, err = store.GetMember(ctx, pool.Id, "bob")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestConcurrentJoinsKeepCounters(t *testing.T) {
	store := memory.New()
	svc := NewService(store, nil, clock.NewFixed(start), Config{MaxJoinRetries: 50})
	ctx := context.Background()
	in := validPool()
	in.MaxPlayers = 10
	pool, err := svc.CreatePool(ctx, in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.JoinPool(ctx, pool.Id, fmt.Sprintf("user%d", i), fmt.Sprintf("sig%d", i))
		}(i)
	}
	wg.Wait()

	got, _ := store.GetPool(ctx, pool.Id)
	members, _ := store.ListMembers(ctx, pool.Id)
	var staked int64
	for _, m := range members {
		staked += m.StakeAmount
	}
	assert.Equal(t, 10, got.CurrentPlayers)
	assert.Len(t, members, 10)
	assert.Equal(t, staked, got.PotSize)
}

func TestCancelPoolRefunds(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	pool, _ := svc.CreatePool(ctx, validPool())
	_, err := svc.JoinPool(ctx, pool.Id, "bob", "sig-bob")
	require.NoError(t, err)

	_, err = svc.CancelPool(ctx, pool.Id, "bob")
	assert.ErrorIs(t, err, ErrNotCreator)

	refunded, err := svc.CancelPool(ctx, pool.Id, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, refunded)

	// A repeat finishes nothing new.
	refunded, err = svc.CancelPool(ctx, pool.Id, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, refunded)

	bob, _ := store.GetProfile(ctx, "bob")
	assert.Equal(t, halfSOL, bob.Balance)
	got, _ := store.GetPool(ctx, pool.Id)
	assert.Equal(t, models.PoolCancelled, got.Status)
}

func TestRecountPool(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	in := validPool()
	in.MaxPlayers = 4
	pool, _ := svc.CreatePool(ctx, in)
	_, err := svc.JoinPool(ctx, pool.Id, "bob", "sig-bob")
	require.NoError(t, err)

	rc, err := svc.RecountPool(ctx, pool.Id)
	require.NoError(t, err)
	assert.False(t, rc.Drifted)

	current, _ := store.GetPool(ctx, pool.Id)
	require.NoError(t, store.SetPoolCounters(ctx, pool.Id, 5, 1, current.Version))

	rc, err = svc.RecountPool(ctx, pool.Id)
	require.NoError(t, err)
	assert.True(t, rc.Drifted)
	repaired, _ := store.GetPool(ctx, pool.Id)
	assert.Equal(t, 2, repaired.CurrentPlayers)
	assert.Equal(t, models.LamportsPerSOL, repaired.PotSize)
}
