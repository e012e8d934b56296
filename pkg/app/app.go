// Package app wires the domain services from configuration. Every binary
// builds the same graph and differs only in the scheduler and publisher it
// passes in.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/config"
	"github.com/chris/habit-pools/pkg/escrow"
	"github.com/chris/habit-pools/pkg/handlers"
	"github.com/chris/habit-pools/pkg/lifelines"
	"github.com/chris/habit-pools/pkg/pools"
	"github.com/chris/habit-pools/pkg/profiles"
	"github.com/chris/habit-pools/pkg/proofs"
	"github.com/chris/habit-pools/pkg/scheduler"
	"github.com/chris/habit-pools/pkg/settlement"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/sweeper"
	"github.com/chris/habit-pools/pkg/verification"
	"github.com/chris/habit-pools/pkg/websockets"
)

type App struct {
	Store    config.Store
	Pools    *pools.Service
	Pipeline *proofs.Pipeline
	Reviews  *proofs.Reviews
	Arbiter  *proofs.Arbiter
	Bank     *lifelines.Bank
	Profiles *profiles.Service
	Engine   *settlement.Engine
	Sweeper  *sweeper.Sweeper
}

// New builds the services on top of store.
func New(cfg *config.Config, store config.Store, sched scheduler.Scheduler, publisher websockets.Publisher, clk clock.Clock) *App {
	var esc pools.Escrow
	if cfg.EscrowURL != "" {
		esc = escrow.NewClient(cfg.EscrowURL)
	} else {
		slog.Warn("ESCROW_URL not set, joins must present a stake transfer reference")
	}
	if cfg.VerifierURL == "" {
		slog.Warn("VERIFIER_URL not set, every proof goes through the fail-open path")
	}
	verifier := verification.NewClient(cfg.VerifierURL, cfg.VerifierAPIKey)

	a := &App{Store: store}
	a.Pools = pools.NewService(store, esc, clk, pools.Config{EscrowTimeout: cfg.EscrowTimeout})
	a.Pipeline = proofs.NewPipeline(store, sched, clk)
	a.Reviews = proofs.NewReviews(store, publisher, clk)
	a.Arbiter = proofs.NewArbiter(store, verifier, a.Reviews, publisher, clk, cfg.ArbiterConfig())
	a.Bank = lifelines.NewBank(store, clk, lifelines.Config{Cost: cfg.LifelineCost()})
	a.Profiles = profiles.NewService(store, clk)
	a.Engine = settlement.NewEngine(store, a.Reviews, publisher, clk, settlement.Config{
		MissedDayTolerance: cfg.MissedDayTolerance,
		Lease:              cfg.SettlementLease,
	})
	a.Sweeper = sweeper.New(store, a.Reviews, sched, a.Pipeline, clk, cfg.SweeperConfig())
	return a
}

// Handler returns the HTTP API over the services.
func (a *App) Handler() *handlers.ApiHandler {
	return handlers.NewApiHandler(handlers.Services{
		Pools:    a.Pools,
		Settler:  a.Engine,
		Pipeline: a.Pipeline,
		Reviews:  a.Reviews,
		Bank:     a.Bank,
		Profiles: a.Profiles,
	})
}

// Verify runs a verification job.
func (a *App) Verify(ctx context.Context, proofID string) error {
	_, err := a.Arbiter.VerifyProof(ctx, proofID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Dropping verification of unknown proof", "proof_id", proofID)
		return nil
	}
	return err
}

// Settle runs a settlement job. Outcomes that a retry cannot change are not
// reported as failures, so the queue does not redeliver them.
func (a *App) Settle(ctx context.Context, poolID string) error {
	res, err := a.Engine.Settle(ctx, poolID)
	switch {
	case err == nil:
		slog.Info("Pool settled", "pool_id", poolID, "winners", res.Winners, "total_paid", res.TotalPaid)
		return nil
	case errors.Is(err, storage.ErrAlreadySettled):
		slog.Info("Pool already settled", "pool_id", poolID)
		return nil
	case errors.Is(err, storage.ErrPoolNotSettleable), errors.Is(err, storage.ErrNotFound):
		slog.Warn("Dropping settlement job", "pool_id", poolID, "error", err)
		return nil
	}
	return err
}

// HandleJob dispatches a queued job.
func (a *App) HandleJob(ctx context.Context, job *scheduler.Job) error {
	switch job.Kind {
	case scheduler.JobVerifyProof:
		return a.Verify(ctx, job.ProofId)
	case scheduler.JobSettlePool:
		return a.Settle(ctx, job.PoolId)
	}
	return nil
}

// LocalHandlers routes in-process jobs to the services.
func (a *App) LocalHandlers() scheduler.Handlers {
	return scheduler.Handlers{Verify: a.Verify, Settle: a.Settle}
}
