package sweeper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/pools"
	"github.com/chris/habit-pools/pkg/settlement"
	"github.com/chris/habit-pools/pkg/storage/memory"
	"github.com/chris/habit-pools/pkg/streaks"
	"github.com/chris/habit-pools/pkg/sweeper/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// activePool creates a 7-day pool joined by alice and bob on 2026-03-01.
func activePool(t *testing.T, store *memory.Store, clk clock.Clock, title string) string {
	t.Helper()
	ctx := context.Background()
	svc := pools.NewService(store, nil, clk, pools.Config{})
	pool, err := svc.CreatePool(ctx, pools.NewPool{
		CreatorId:        "alice",
		Title:            title,
		ProofRequirement: "Photo of your running watch",
		StakeAmount:      models.LamportsPerSOL / 2,
		DurationDays:     7,
		MaxPlayers:       3,
		StakeTxReference: "sig-alice",
	})
	require.NoError(t, err)
	_, err = svc.JoinPool(ctx, pool.Id, "bob", "sig-bob")
	require.NoError(t, err)
	return pool.Id
}

func logDays(t *testing.T, store *memory.Store, poolID, userID string, days ...string) {
	t.Helper()
	m, err := store.GetMember(context.Background(), poolID, userID)
	require.NoError(t, err)
	for _, d := range days {
		streaks.ApplyApproval(m, d)
	}
	require.NoError(t, store.UpdateMember(context.Background(), m))
}

func TestSweepFailsMembersOverTolerance(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clk := clock.NewFixed(start)
	poolID := activePool(t, store, clk, "run")

	logDays(t, store, poolID, "alice", "2026-03-01", "2026-03-02", "2026-03-03")
	logDays(t, store, poolID, "bob", "2026-03-01")

	reviews := mocks.NewReviews(t)
	reviews.On("ExpireStale", mock.Anything, 48*time.Hour).Return(0, nil)
	settler := mocks.NewSettler(t)

	s := New(store, reviews, settler, nil, clk, Config{MissedDayTolerance: 1})

	// On day 4 bob has missed days 2 and 3.
	clk.Set(time.Date(2026, 3, 4, 1, 0, 0, 0, time.UTC))
	report, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PoolsSwept)
	assert.Equal(t, 1, report.MembersFailed)

	bob, err := store.GetMember(ctx, poolID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.MemberFailed, bob.Status)
	assert.Equal(t, 2, bob.DaysMissed)

	alice, err := store.GetMember(ctx, poolID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.MemberActive, alice.Status)
	assert.Zero(t, alice.DaysMissed)
}

func TestSweepCountsFromJoinDay(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clk := clock.NewFixed(start)
	poolID := activePool(t, store, clk, "run")

	clk.Set(time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC))
	_, err := pools.NewService(store, nil, clk, pools.Config{}).JoinPool(ctx, poolID, "carol", "sig-carol")
	require.NoError(t, err)

	reviews := mocks.NewReviews(t)
	reviews.On("ExpireStale", mock.Anything, mock.Anything).Return(0, nil)
	s := New(store, reviews, mocks.NewSettler(t), nil, clk, Config{MissedDayTolerance: 0})

	clk.Set(time.Date(2026, 3, 3, 20, 0, 0, 0, time.UTC))
	_, err = s.Sweep(ctx)
	require.NoError(t, err)

	carol, err := store.GetMember(ctx, poolID, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.MemberActive, carol.Status)
	assert.Zero(t, carol.DaysMissed)
}

func TestLateJoinerWhoLogsEveryDayWins(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clk := clock.NewFixed(start)
	poolID := activePool(t, store, clk, "run")

	clk.Set(time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC))
	_, err := pools.NewService(store, nil, clk, pools.Config{}).JoinPool(ctx, poolID, "carol", "sig-carol")
	require.NoError(t, err)

	var week []string
	for d := 0; d < 7; d++ {
		week = append(week, clock.AddDays("2026-03-01", d))
	}
	logDays(t, store, poolID, "alice", week...)
	logDays(t, store, poolID, "bob", week[0], week[2], week[3], week[4], week[5], week[6])
	logDays(t, store, poolID, "carol", week[2:]...)

	reviews := mocks.NewReviews(t)
	reviews.On("ExpireStale", mock.Anything, mock.Anything).Return(0, nil)
	reviews.On("ExpirePool", mock.Anything, poolID).Return(0, nil)
	settler := mocks.NewSettler(t)
	settler.On("EnqueueSettlement", mock.Anything, poolID).Return(nil)

	s := New(store, reviews, settler, nil, clk, Config{})
	clk.Set(time.Date(2026, 3, 8, 0, 1, 0, 0, time.UTC))
	report, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MembersFailed)

	carol, err := store.GetMember(ctx, poolID, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.MemberActive, carol.Status)
	assert.Zero(t, carol.DaysMissed)
	bob, err := store.GetMember(ctx, poolID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.MemberFailed, bob.Status)
	assert.Equal(t, 1, bob.DaysMissed)

	// Settlement agrees with the sweep about who owed which days.
	res, err := settlement.NewEngine(store, nil, nil, clk, settlement.Config{}).Settle(ctx, poolID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Winners)
	outcomes := map[string]settlement.Outcome{}
	for _, p := range res.Payouts {
		outcomes[p.UserId] = p.Outcome
	}
	assert.Equal(t, settlement.OutcomeWon, outcomes["alice"])
	assert.Equal(t, settlement.OutcomeWon, outcomes["carol"])
	assert.Equal(t, settlement.OutcomeLost, outcomes["bob"])

	carol, err = store.GetMember(ctx, poolID, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.MemberCompleted, carol.Status)
}

func TestSweepClosesEndedPools(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clk := clock.NewFixed(start)
	ended := activePool(t, store, clk, "ended")
	var week []string
	for d := 0; d < 7; d++ {
		week = append(week, clock.AddDays("2026-03-01", d))
	}
	logDays(t, store, ended, "alice", week...)
	logDays(t, store, ended, "bob", week...)

	clk.Set(time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC))
	running := activePool(t, store, clk, "running")

	reviews := mocks.NewReviews(t)
	reviews.On("ExpireStale", mock.Anything, mock.Anything).Return(1, nil).Once()
	reviews.On("ExpirePool", mock.Anything, ended).Return(2, nil).Once()
	settler := mocks.NewSettler(t)
	settler.On("EnqueueSettlement", mock.Anything, ended).Return(nil).Once()

	s := New(store, reviews, settler, nil, clk, Config{MissedDayTolerance: 7, Workers: 2})
	clk.Set(time.Date(2026, 3, 8, 0, 1, 0, 0, time.UTC))
	report, err := s.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.PoolsClosed)
	assert.Equal(t, 1, report.PoolsEnqueued)
	assert.Equal(t, 3, report.ReviewsExpired)
	assert.Zero(t, report.MembersFailed)

	pool, err := store.GetPool(ctx, ended)
	require.NoError(t, err)
	assert.Equal(t, models.PoolSettling, pool.Status)
	pool, err = store.GetPool(ctx, running)
	require.NoError(t, err)
	assert.Equal(t, models.PoolActive, pool.Status)

	// The next sweep re-enqueues the pool still waiting for settlement.
	reviews.On("ExpireStale", mock.Anything, mock.Anything).Return(0, nil).Once()
	settler.On("EnqueueSettlement", mock.Anything, ended).Return(nil).Once()
	report, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PoolsEnqueued)
	assert.Zero(t, report.PoolsClosed)
}

func TestSweepContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clk := clock.NewFixed(start)
	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, activePool(t, store, clk, fmt.Sprintf("pool-%d", i)))
	}

	reviews := mocks.NewReviews(t)
	reviews.On("ExpireStale", mock.Anything, mock.Anything).Return(0, nil)
	reviews.On("ExpirePool", mock.Anything, mock.Anything).Return(0, nil)
	settler := mocks.NewSettler(t)
	settler.On("EnqueueSettlement", mock.Anything, ids[1]).Return(errors.New("queue down"))
	settler.On("EnqueueSettlement", mock.Anything, mock.Anything).Return(nil)

	s := New(store, reviews, settler, nil, clk, Config{MissedDayTolerance: 7})
	clk.Set(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	report, err := s.Sweep(ctx)

	assert.Error(t, err)
	assert.Equal(t, 3, report.PoolsClosed)
	assert.Equal(t, 2, report.PoolsEnqueued)
}

type requeuer struct{ calls int }

func (r *requeuer) RequeueStale(ctx context.Context, poolID, userID string, cutoff time.Time) (int, error) {
	r.calls++
	return 1, nil
}

func TestSweepRequeuesPendingProofs(t *testing.T) {
	store := memory.New()
	clk := clock.NewFixed(start)
	activePool(t, store, clk, "run")

	reviews := mocks.NewReviews(t)
	reviews.On("ExpireStale", mock.Anything, mock.Anything).Return(0, nil)
	rq := &requeuer{}
	s := New(store, reviews, mocks.NewSettler(t), rq, clk, Config{MissedDayTolerance: 1})

	report, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rq.calls)
	assert.Equal(t, 2, report.ProofsRequeued)
}
