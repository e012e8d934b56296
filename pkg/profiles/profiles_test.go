package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositIsIdempotentPerReference(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	_, err := svc.Create(ctx, "alice", "So1anaWa11et")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "")
	assert.ErrorIs(t, err, storage.ErrProfileExists)

	view, err := svc.Deposit(ctx, "alice", models.LamportsPerSOL, "sig-1")
	require.NoError(t, err)
	assert.Equal(t, models.LamportsPerSOL, view.Balance)

	view, err = svc.Deposit(ctx, "alice", models.LamportsPerSOL, "sig-1")
	require.NoError(t, err)
	assert.Equal(t, models.LamportsPerSOL, view.Balance)
	assert.Equal(t, "So1anaWa11et", view.WalletAddress)

	_, err = svc.Deposit(ctx, "alice", 0, "")
	assert.ErrorIs(t, err, ErrInvalidDeposit)

	txs, err := svc.ListTransactions(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestStreakIsDerivedOnRead(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clk := clock.NewFixed(time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC))
	svc := NewService(store, clk)

	_, err := svc.Create(ctx, "alice", "")
	require.NoError(t, err)
	for _, day := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		require.NoError(t, store.IncrementDailyRecord(ctx, "alice", day))
	}

	view, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, view.CurrentStreak)

	// Two days later the run has lapsed.
	clk.Advance(48 * time.Hour)
	view, err = svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentStreak)

	_, err = svc.Get(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
