package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/config"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/pools"
	"github.com/chris/habit-pools/pkg/proofs"
	"github.com/chris/habit-pools/pkg/scheduler"
	"github.com/chris/habit-pools/pkg/storage/memory"
	"github.com/chris/habit-pools/pkg/websockets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// newApp runs against a verifier that approves everything with high
// confidence.
func newApp(t *testing.T) (*App, *scheduler.LocalScheduler, *clock.Fixed) {
	t.Helper()
	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"approved","confidence":0.93,"reasoning":"page visible","flags":[]}`))
	}))
	t.Cleanup(verifier.Close)
	t.Setenv("VERIFIER_URL", verifier.URL)

	cfg, err := config.Load()
	require.NoError(t, err)

	clk := clock.NewFixed(start)
	local := scheduler.NewLocalScheduler(16)
	a := New(cfg, memory.New(), local, &websockets.NoOpPublisher{}, clk)
	return a, local, clk
}

func activePool(t *testing.T, a *App, clk *clock.Fixed) *models.Pool {
	t.Helper()
	ctx := context.Background()
	pool, err := a.Pools.CreatePool(ctx, pools.NewPool{
		CreatorId:        "alice",
		ProofRequirement: "Photo of the page you read",
		StakeAmount:      models.LamportsPerSOL,
		DurationDays:     3,
		MaxPlayers:       4,
		StakeTxReference: "sig-alice",
	})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = a.Pools.JoinPool(ctx, pool.Id, "bob", "sig-bob")
	require.NoError(t, err)
	return pool
}

func TestSubmittedProofIsVerifiedInProcess(t *testing.T) {
	a, local, clk := newApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	local.Start(ctx, 2, a.LocalHandlers())
	defer local.Stop()

	pool := activePool(t, a, clk)
	proof, err := a.Pipeline.SubmitProof(ctx, proofs.SubmitInput{PoolId: pool.Id, UserId: "bob", ImageReference: "s3://proofs/b.jpg"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		p, err := a.Pipeline.GetProof(ctx, proof.Id)
		return err == nil && p.Status == models.ProofApproved
	}, 2*time.Second, 10*time.Millisecond)

	m, err := a.Store.GetMember(ctx, pool.Id, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, m.CurrentStreak)
}

func TestDefaultConfigFailsUncoveredMiss(t *testing.T) {
	a, _, clk := newApp(t)
	ctx := context.Background()
	pool := activePool(t, a, clk)

	logDay := func(day int, users ...string) {
		clk.Set(time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC))
		for _, user := range users {
			proof, err := a.Pipeline.SubmitProof(ctx, proofs.SubmitInput{PoolId: pool.Id, UserId: user, ImageReference: "s3://proofs/" + user + ".jpg"})
			require.NoError(t, err)
			_, err = a.Arbiter.VerifyProof(ctx, proof.Id)
			require.NoError(t, err)
		}
	}
	logDay(1, "alice", "bob")
	logDay(2, "bob")
	logDay(3, "alice", "bob")

	clk.Set(time.Date(2026, 3, 4, 0, 5, 0, 0, time.UTC))
	_, err := a.Sweeper.Sweep(ctx)
	require.NoError(t, err)

	alice, err := a.Store.GetMember(ctx, pool.Id, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.MemberFailed, alice.Status)
	assert.Equal(t, 1, alice.DaysMissed)

	res, err := a.Engine.Settle(ctx, pool.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Winners)

	bob, err := a.Store.GetProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2*models.LamportsPerSOL, bob.Balance)
}

func TestSettleJobToleratesRepeats(t *testing.T) {
	a, _, clk := newApp(t)
	ctx := context.Background()
	pool := activePool(t, a, clk)

	job := &scheduler.Job{Kind: scheduler.JobSettlePool, PoolId: pool.Id}
	assert.NoError(t, a.HandleJob(ctx, job), "a pool that has not ended is dropped")

	clk.Advance(4 * 24 * time.Hour)
	require.NoError(t, a.HandleJob(ctx, job))
	require.NoError(t, a.HandleJob(ctx, job))

	got, err := a.Store.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	assert.Equal(t, models.PoolCompleted, got.Status)
}

func TestVerifyJobDropsUnknownProof(t *testing.T) {
	a, _, _ := newApp(t)
	err := a.HandleJob(context.Background(), &scheduler.Job{Kind: scheduler.JobVerifyProof, ProofId: "missing"})
	assert.NoError(t, err)
}

func TestHandleSQSEvent(t *testing.T) {
	a, _, clk := newApp(t)
	ctx := context.Background()
	pool := activePool(t, a, clk)
	clk.Advance(4 * 24 * time.Hour)

	resp, err := a.HandleSQSEvent(ctx, events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "m1", Body: `{"kind":"settle_pool","pool_id":"` + pool.Id + `"}`},
		{MessageId: "m2", Body: `not json`},
		{MessageId: "m3", Body: `{"kind":"verify_proof","proof_id":"missing"}`},
	}})
	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)

	got, err := a.Store.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	assert.Equal(t, models.PoolCompleted, got.Status)
}

func TestNewSQSSchedulerRequiresQueues(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	_, err = NewSQSScheduler(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNoQueues)
}
