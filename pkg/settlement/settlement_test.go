package settlement

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/pools"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/storage/memory"
	"github.com/chris/habit-pools/pkg/streaks"
	"github.com/chris/habit-pools/pkg/websockets"
	wsmocks "github.com/chris/habit-pools/pkg/websockets/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const halfSOL = models.LamportsPerSOL / 2

var start = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// member logs days consecutive proof days from the start of the pool.
func member(user string, stake int64, days int, status models.MemberStatus) models.Member {
	m := models.Member{UserId: user, StakeAmount: stake, Status: status, JoinedAt: start}
	for d := 0; d < days; d++ {
		streaks.ApplyApproval(&m, clock.AddDays("2026-03-01", d))
	}
	return m
}

func TestPartition(t *testing.T) {
	ends := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	pool := &models.Pool{DurationDays: 7, StartedAt: &start, EndsAt: &ends}
	members := []models.Member{
		member("all-days", 1, 7, models.MemberActive),
		member("one-short", 1, 6, models.MemberActive),
		member("two-short", 1, 5, models.MemberActive),
		member("swept", 1, 7, models.MemberFailed),
		member("left", 1, 0, models.MemberWithdrawn),
	}
	covered := models.Member{UserId: "covered", StakeAmount: 1, Status: models.MemberActive, JoinedAt: start}
	for _, d := range []string{"2026-03-01", "2026-03-03", "2026-03-05", "2026-03-06", "2026-03-07"} {
		streaks.ApplyApproval(&covered, d)
	}
	streaks.ApplyCover(&covered, "2026-03-02")
	streaks.ApplyCover(&covered, "2026-03-04")
	members = append(members, covered)

	// Joined on day 3 and logged every day from then on.
	late := models.Member{UserId: "late", StakeAmount: 1, Status: models.MemberActive, JoinedAt: start.AddDate(0, 0, 2)}
	for d := 2; d < 7; d++ {
		streaks.ApplyApproval(&late, clock.AddDays("2026-03-01", d))
	}
	members = append(members, late)

	completed, failed := Partition(pool, members, 1)

	names := func(ms []models.Member) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.UserId)
		}
		return out
	}
	assert.Equal(t, []string{"all-days", "one-short", "covered", "late"}, names(completed))
	assert.Equal(t, []string{"two-short", "swept"}, names(failed))

	completed, _ = Partition(pool, members, 0)
	assert.Equal(t, []string{"all-days", "covered", "late"}, names(completed))
}

func TestComputePayouts(t *testing.T) {
	testCases := []struct {
		name      string
		completed []models.Member
		failed    []models.Member
		want      []int64
	}{
		{
			name:      "Winner Takes Forfeit",
			completed: []models.Member{member("b", halfSOL, 7, models.MemberActive)},
			failed:    []models.Member{member("a", halfSOL, 2, models.MemberActive)},
			want:      []int64{models.LamportsPerSOL, 0},
		},
		{
			name: "Remainder In Join Order",
			completed: []models.Member{
				member("a", 10, 7, models.MemberActive),
				member("b", 10, 7, models.MemberActive),
				member("c", 10, 7, models.MemberActive),
			},
			failed: []models.Member{member("d", 10, 0, models.MemberActive), member("e", 10, 0, models.MemberActive)},
			// 20 forfeited over 3 winners: 6 each plus 2 left over.
			want: []int64{17, 17, 16, 0, 0},
		},
		{
			name:   "Nobody Completed",
			failed: []models.Member{member("a", 10, 0, models.MemberActive), member("b", 10, 1, models.MemberFailed)},
			want:   []int64{10, 10},
		},
		{
			name:      "Nobody Failed",
			completed: []models.Member{member("a", 10, 7, models.MemberActive), member("b", 10, 7, models.MemberActive)},
			want:      []int64{10, 10},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payouts := ComputePayouts(tc.completed, tc.failed)
			require.Len(t, payouts, len(tc.want))

			var paid, staked int64
			for i, p := range payouts {
				assert.Equal(t, tc.want[i], p.Amount, p.UserId)
				paid += p.Amount
			}
			for _, m := range append(append([]models.Member{}, tc.completed...), tc.failed...) {
				staked += m.StakeAmount
			}
			assert.Equal(t, staked, paid, "payouts must conserve stakes")
		})
	}
}

func TestComputePayoutsConservation(t *testing.T) {
	for winners := 1; winners <= 7; winners++ {
		for losers := 0; losers <= 7; losers++ {
			var completed, failed []models.Member
			var staked int64
			for i := 0; i < winners; i++ {
				completed = append(completed, member(fmt.Sprintf("w%d", i), 333_333_333, 7, models.MemberActive))
				staked += 333_333_333
			}
			for i := 0; i < losers; i++ {
				failed = append(failed, member(fmt.Sprintf("l%d", i), 333_333_333, 0, models.MemberActive))
				staked += 333_333_333
			}
			var paid int64
			for _, p := range ComputePayouts(completed, failed) {
				paid += p.Amount
			}
			assert.Equal(t, staked, paid, "winners=%d losers=%d", winners, losers)
		}
	}
}

type fixture struct {
	store  *memory.Store
	clock  *clock.Fixed
	engine *Engine
	poolID string
}

// newFixture runs a 7-day pool where bob logs every day and alice only day 1.
func newFixture(t *testing.T, publisher websockets.Publisher) *fixture {
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

	bob, err := store.GetMember(ctx, pool.Id, "bob")
	require.NoError(t, err)
	for d := 0; d < 7; d++ {
		streaks.ApplyApproval(bob, clock.AddDays("2026-03-01", d))
	}
	require.NoError(t, store.UpdateMember(ctx, bob))

	alice, err := store.GetMember(ctx, pool.Id, "alice")
	require.NoError(t, err)
	streaks.ApplyApproval(alice, "2026-03-01")
	streaks.ApplyApproval(alice, "2026-03-03")
	require.NoError(t, store.UpdateMember(ctx, alice))

	clk.Set(time.Date(2026, 3, 8, 0, 5, 0, 0, time.UTC))
	return &fixture{
		store:  store,
		clock:  clk,
		engine: NewEngine(store, nil, publisher, clk, Config{Lease: time.Minute}),
		poolID: pool.Id,
	}
}

func (f *fixture) balance(t *testing.T, user string) int64 {
	t.Helper()
	p, err := f.store.GetProfile(context.Background(), user)
	if err != nil {
		return 0
	}
	return p.Balance
}

func TestSettleWinnerTakesForfeit(t *testing.T) {
	publisher := wsmocks.NewPublisher(t)
	publisher.On("Publish", mock.Anything, "bob", mock.MatchedBy(func(msg websockets.Message) bool {
		p := msg.Payload.(websockets.PoolSettledPayload)
		return p.Outcome == "won" && p.Payout == models.LamportsPerSOL
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, "alice", mock.Anything).Return(nil).Once()

	f := newFixture(t, publisher)
	ctx := context.Background()

	res, err := f.engine.Settle(ctx, f.poolID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Winners)
	assert.Equal(t, halfSOL, res.Forfeit)
	assert.Equal(t, models.LamportsPerSOL, res.TotalPaid)
	assert.Equal(t, models.LamportsPerSOL, f.balance(t, "bob"))
	assert.Zero(t, f.balance(t, "alice"))

	bobProfile, err := f.store.GetProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bobProfile.TotalPoolsWon)
	assert.Equal(t, halfSOL, bobProfile.TotalSolEarned)

	alice, _ := f.store.GetMember(ctx, f.poolID, "alice")
	bob, _ := f.store.GetMember(ctx, f.poolID, "bob")
	assert.Equal(t, models.MemberFailed, alice.Status)
	assert.Equal(t, models.MemberCompleted, bob.Status)

	pool, err := f.store.GetPool(ctx, f.poolID)
	require.NoError(t, err)
	assert.Equal(t, models.PoolCompleted, pool.Status)
	assert.NotNil(t, pool.SettledAt)

	txs, err := f.store.ListTransactionsByPool(ctx, f.poolID)
	require.NoError(t, err)
	var claims int
	for _, tx := range txs {
		if tx.Type == models.TxWinningsClaim {
			claims++
			assert.Equal(t, TxID(f.poolID, "bob"), tx.Id)
		}
	}
	assert.Equal(t, 1, claims)

	_, err = f.engine.Settle(ctx, f.poolID)
	assert.ErrorIs(t, err, storage.ErrAlreadySettled)
	assert.Equal(t, models.LamportsPerSOL, f.balance(t, "bob"))
}

func TestSettleBeforeEnd(t *testing.T) {
	f := newFixture(t, nil)
	f.clock.Set(time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC))

	_, err := f.engine.Settle(context.Background(), f.poolID)
	assert.ErrorIs(t, err, storage.ErrPoolNotSettleable)
}

func TestConcurrentSettleCreditsOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Settle(ctx, f.poolID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, models.LamportsPerSOL, f.balance(t, "bob"))
}

func TestSettleResumesAfterCrash(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// A previous run took the lease and paid bob, then died.
	_, err := f.store.AcquireSettlementLease(ctx, f.poolID, f.clock.Now(), time.Minute)
	require.NoError(t, err)
	_, err = f.store.CreditProfile(ctx, storage.ProfileCredit{Tx: &models.Transaction{
		Id: TxID(f.poolID, "bob"), UserId: "bob", PoolId: f.poolID, Type: models.TxWinningsClaim,
		Amount: models.LamportsPerSOL, Status: models.TxCompleted, CreatedAt: f.clock.Now(),
	}, PoolWon: true, Earned: halfSOL})
	require.NoError(t, err)

	_, err = f.engine.Settle(ctx, f.poolID)
	assert.ErrorIs(t, err, storage.ErrSettlementInProgress)

	f.clock.Advance(2 * time.Minute)
	res, err := f.engine.Settle(ctx, f.poolID)
	require.NoError(t, err)
	assert.Equal(t, models.LamportsPerSOL, res.TotalPaid)
	assert.Equal(t, models.LamportsPerSOL, f.balance(t, "bob"))
}

func TestSettleRefundsWhenNobodyCompletes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	bob, err := f.store.GetMember(ctx, f.poolID, "bob")
	require.NoError(t, err)
	bob.Status = models.MemberFailed
	require.NoError(t, f.store.UpdateMember(ctx, bob))

	res, err := f.engine.Settle(ctx, f.poolID)
	require.NoError(t, err)
	assert.Zero(t, res.Winners)
	assert.Equal(t, halfSOL, f.balance(t, "alice"))
	assert.Equal(t, halfSOL, f.balance(t, "bob"))
	for _, p := range res.Payouts {
		assert.Equal(t, OutcomeRefunded, p.Outcome)
	}
}

type expirer struct{ calls []string }

func (e *expirer) ExpirePool(ctx context.Context, poolID string) (int, error) {
	e.calls = append(e.calls, poolID)
	return 0, nil
}

func TestSettleExpiresReviewsFirst(t *testing.T) {
	f := newFixture(t, nil)
	exp := &expirer{}
	engine := NewEngine(f.store, exp, nil, f.clock, Config{})

	_, err := engine.Settle(context.Background(), f.poolID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.poolID}, exp.calls)
}

func (f *fixture) logDays(t *testing.T, user string, days ...string) {
	t.Helper()
	ctx := context.Background()
	m, err := f.store.GetMember(ctx, f.poolID, user)
	require.NoError(t, err)
	for _, d := range days {
		streaks.ApplyApproval(m, d)
	}
	require.NoError(t, f.store.UpdateMember(ctx, m))
}

func TestSettleFailsSingleUncoveredMiss(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	// alice now misses only day 2.
	f.logDays(t, "alice", "2026-03-04", "2026-03-05", "2026-03-06", "2026-03-07")

	res, err := f.engine.Settle(ctx, f.poolID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Winners)
	assert.Equal(t, models.LamportsPerSOL, f.balance(t, "bob"))
	assert.Zero(t, f.balance(t, "alice"))

	alice, err := f.store.GetMember(ctx, f.poolID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.MemberFailed, alice.Status)
}

func TestSettleWithoutForfeitIsNotAWin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.logDays(t, "alice", "2026-03-02", "2026-03-04", "2026-03-05", "2026-03-06", "2026-03-07")

	res, err := f.engine.Settle(ctx, f.poolID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Winners)
	assert.Zero(t, res.Forfeit)

	for _, user := range []string{"alice", "bob"} {
		p, err := f.store.GetProfile(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, halfSOL, p.Balance, user)
		assert.Zero(t, p.TotalPoolsWon, user)
		assert.Zero(t, p.TotalSolEarned, user)
	}
}
