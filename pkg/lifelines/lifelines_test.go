package lifelines

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/pools"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/storage/memory"
	"github.com/chris/habit-pools/pkg/streaks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const halfSOL = models.LamportsPerSOL / 2

var start = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func setup(t *testing.T, cost int64) (*Bank, *memory.Store, *clock.Fixed, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	clk := clock.NewFixed(start)

	svc := pools.NewService(store, nil, clk, pools.Config{})
	pool, err := svc.CreatePool(ctx, pools.NewPool{
		CreatorId:        "alice",
		ProofRequirement: "Photo of your running watch",
		StakeAmount:      halfSOL,
		DurationDays:     7,
		MaxPlayers:       2,
		StakeTxReference: "sig-alice",
	})
	require.NoError(t, err)
	_, err = svc.JoinPool(ctx, pool.Id, "bob", "sig-bob")
	require.NoError(t, err)

	for _, user := range []string{"alice", "bob"} {
		_, err := store.CreditProfile(ctx, storage.ProfileCredit{Tx: &models.Transaction{
			Id: "deposit:" + user, UserId: user, Type: models.TxBalanceDeposit,
			Amount: models.LamportsPerSOL, Status: models.TxCompleted, CreatedAt: start,
		}})
		require.NoError(t, err)
	}
	return NewBank(store, clk, Config{Cost: cost}), store, clk, pool.Id
}

func TestPurchaseThenActivateOnMissedDay(t *testing.T) {
	bank, store, clk, poolID := setup(t, halfSOL)
	ctx := context.Background()

	// Day 1 logged by proof.
	m, err := store.GetMember(ctx, poolID, "alice")
	require.NoError(t, err)
	require.True(t, streaks.ApplyApproval(m, "2026-03-01"))
	require.NoError(t, store.UpdateMember(ctx, m))

	acct, err := bank.Purchase(ctx, poolID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, acct.Available())
	profile, err := store.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, halfSOL, profile.Balance)

	// Day 2 covered by the lifeline.
	clk.Advance(24 * time.Hour)
	m, err = bank.Activate(ctx, poolID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, m.CurrentStreak)
	assert.Equal(t, "2026-03-02", m.LastProofDate)
	assert.Contains(t, m.CoveredDays, "2026-03-02")

	acct, err = bank.Get(ctx, poolID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, acct.Available())
	assert.Equal(t, 1, acct.Used)

	// Day 3 proof continues the streak across the covered day.
	m, err = store.GetMember(ctx, poolID, "alice")
	require.NoError(t, err)
	require.True(t, streaks.ApplyApproval(m, "2026-03-03"))
	assert.Equal(t, 2, m.CurrentStreak)

	txs, err := store.ListTransactionsByUser(ctx, "alice")
	require.NoError(t, err)
	var purchases int
	for _, tx := range txs {
		if tx.Type == models.TxLifelinePurchase {
			purchases++
			assert.Equal(t, halfSOL, tx.Amount)
		}
	}
	assert.Equal(t, 1, purchases)
}

func TestActivateConflicts(t *testing.T) {
	bank, _, clk, poolID := setup(t, 0)
	ctx := context.Background()

	_, err := bank.Activate(ctx, poolID, "alice")
	assert.ErrorIs(t, err, storage.ErrNoLifelines)

	_, err = bank.EarnViaVouch(ctx, poolID, "alice", "bob")
	require.NoError(t, err)
	_, err = bank.EarnViaVouch(ctx, poolID, "alice", "bob")
	require.NoError(t, err)

	_, err = bank.Activate(ctx, poolID, "alice")
	require.NoError(t, err)
	_, err = bank.Activate(ctx, poolID, "alice")
	assert.ErrorIs(t, err, storage.ErrDayAlreadyLogged)

	clk.Advance(24 * time.Hour)
	_, err = bank.Activate(ctx, poolID, "alice")
	require.NoError(t, err)

	_, err = bank.Activate(ctx, poolID, "carol")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLifelineCap(t *testing.T) {
	bank, store, _, poolID := setup(t, models.LamportsPerSOL/20)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 6)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, results[i] = bank.Purchase(ctx, poolID, "alice")
			} else {
				_, results[i] = bank.EarnViaVouch(ctx, poolID, "alice", "bob")
			}
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrLifelineCapReached)
	}
	assert.Equal(t, models.LifelineCap, ok)

	acct, err := store.GetLifelineAccount(ctx, "alice", poolID)
	require.NoError(t, err)
	assert.Equal(t, models.LifelineCap, acct.Obtained())
}

func TestPurchaseErrors(t *testing.T) {
	bank, _, _, poolID := setup(t, 2*models.LamportsPerSOL)
	ctx := context.Background()

	_, err := bank.Purchase(ctx, poolID, "alice")
	assert.ErrorIs(t, err, storage.ErrInsufficientBalance)

	_, err = bank.EarnViaVouch(ctx, poolID, "alice", "alice")
	assert.ErrorIs(t, err, ErrSelfVouch)

	_, err = bank.EarnViaVouch(ctx, poolID, "alice", "mallory")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDefaultCost(t *testing.T) {
	bank := NewBank(memory.New(), clock.Real{}, Config{})
	assert.Equal(t, int64(50_000_000), bank.Cost())
}
