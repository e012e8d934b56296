// Package mapping converts between domain models and the API models.
// Amounts cross the boundary as decimal SOL strings.
package mapping

import (
	"github.com/chris/habit-pools/pkg/api"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/pools"
	"github.com/chris/habit-pools/pkg/proofs"
	"github.com/chris/habit-pools/pkg/profiles"
	"github.com/chris/habit-pools/pkg/settlement"
	"github.com/google/uuid"
)

func sol(lamports int64) string {
	return models.SOL(lamports).String()
}

// optional returns nil for the empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// id parses a stored id into the API uuid type. Ids are generated by this
// service, so a malformed one maps to the zero uuid.
func id(s string) uuid.UUID {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return u
}

func days(d []string) []string {
	if d == nil {
		return []string{}
	}
	return d
}

// ToApiPool converts a domain Pool to an API Pool.
func ToApiPool(p *models.Pool) *api.Pool {
	return &api.Pool{
		Id:               id(p.Id),
		CreatorId:        p.CreatorId,
		Title:            p.Title,
		ProofRequirement: p.ProofRequirement,
		StakeSol:         sol(p.StakeAmount),
		DurationDays:     p.DurationDays,
		MaxPlayers:       p.MaxPlayers,
		CurrentPlayers:   p.CurrentPlayers,
		PotSol:           sol(p.PotSize),
		Status:           api.PoolStatus(p.Status),
		CreatedAt:        p.CreatedAt,
		StartedAt:        p.StartedAt,
		EndsAt:           p.EndsAt,
		SettledAt:        p.SettledAt,
	}
}

// ToDomainNewPool converts an API NewPool into the pool service input.
func ToDomainNewPool(creatorID string, in *api.NewPool) (pools.NewPool, error) {
	stake, err := models.ParseSOL(in.StakeSol)
	if err != nil {
		return pools.NewPool{}, err
	}
	return pools.NewPool{
		CreatorId:        creatorID,
		Title:            deref(in.Title),
		ProofRequirement: in.ProofRequirement,
		StakeAmount:      stake,
		DurationDays:     in.DurationDays,
		MaxPlayers:       in.MaxPlayers,
		StakeTxReference: deref(in.StakeTxReference),
	}, nil
}

// ToApiMember converts a domain Member to an API Member.
func ToApiMember(m *models.Member) *api.Member {
	return &api.Member{
		PoolId:        id(m.PoolId),
		UserId:        m.UserId,
		Status:        api.MemberStatus(m.Status),
		JoinedAt:      m.JoinedAt,
		LastProofDate: optional(m.LastProofDate),
		CurrentStreak: m.CurrentStreak,
		BestStreak:    m.BestStreak,
		DaysCompleted: m.DaysCompleted,
		DaysMissed:    m.DaysMissed,
		ProofDays:     days(m.ProofDays),
		CoveredDays:   days(m.CoveredDays),
		StakeSol:      sol(m.StakeAmount),
	}
}

// ToApiRecount converts a pool recount.
func ToApiRecount(rc *pools.Recount) *api.Recount {
	return &api.Recount{Players: rc.Players, PotSol: sol(rc.Pot), Drifted: rc.Drifted}
}

// ToApiDueStatus converts a due status. The deadline is expressed in seconds
// until the end of the day.
func ToApiDueStatus(d *proofs.DueStatus) *api.DueStatus {
	return &api.DueStatus{
		PoolId:          id(d.PoolId),
		UserId:          d.UserId,
		Day:             d.Day,
		Due:             d.Due,
		DeadlineSeconds: int64(d.Deadline.Seconds()),
		Urgent:          d.Urgent,
	}
}

// ToApiProof converts a domain Proof to an API Proof.
func ToApiProof(p *models.Proof) *api.Proof {
	flags := p.Flags
	if flags == nil {
		flags = []string{}
	}
	return &api.Proof{
		Id:             id(p.Id),
		PoolId:         id(p.PoolId),
		UserId:         p.UserId,
		ImageReference: p.ImageReference,
		Day:            p.Day,
		SubmittedAt:    p.SubmittedAt,
		Status:         api.ProofStatus(p.Status),
		AiConfidence:   p.AiConfidence,
		AiReasoning:    optional(p.AiReasoning),
		Flags:          flags,
		Degraded:       p.Degraded,
		ResolvedAt:     p.ResolvedAt,
	}
}

// ToApiReview converts a domain ProofReview to an API Review.
func ToApiReview(r *models.ProofReview) *api.Review {
	return &api.Review{
		Id:         id(r.Id),
		ProofId:    id(r.ProofId),
		PoolId:     id(r.PoolId),
		ReviewerId: r.ReviewerId,
		Status:     api.ReviewStatus(r.Status),
		Note:       optional(r.Note),
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
		ResolvedBy: optional(r.ResolvedBy),
	}
}

// ToApiLifelineAccount converts a lifeline account, quoting the current price.
func ToApiLifelineAccount(a *models.LifelineAccount, cost int64) *api.LifelineAccount {
	return &api.LifelineAccount{
		PoolId:      id(a.PoolId),
		UserId:      a.UserId,
		Purchased:   a.Purchased,
		Earned:      a.Earned,
		Used:        a.Used,
		Available:   a.Available(),
		CoveredDays: days(a.CoveredDays),
		CostSol:     sol(cost),
	}
}

// ToApiProfile converts a profile view.
func ToApiProfile(v *profiles.View) *api.Profile {
	return &api.Profile{
		UserId:         v.UserId,
		WalletAddress:  optional(v.WalletAddress),
		BalanceSol:     sol(v.Balance),
		TotalPoolsWon:  v.TotalPoolsWon,
		TotalSolEarned: sol(v.TotalSolEarned),
		CurrentStreak:  v.CurrentStreak,
		CreatedAt:      v.CreatedAt,
	}
}

// ToApiTransaction converts a domain Transaction to an API Transaction.
func ToApiTransaction(tx *models.Transaction) *api.Transaction {
	return &api.Transaction{
		Id:        tx.Id,
		UserId:    tx.UserId,
		PoolId:    optional(tx.PoolId),
		Type:      string(tx.Type),
		AmountSol: sol(tx.Amount),
		Status:    string(tx.Status),
		Reference: optional(tx.Reference),
		CreatedAt: tx.CreatedAt,
	}
}

// ToApiSettlement converts a settlement result.
func ToApiSettlement(res *settlement.Result) *api.SettlementResult {
	payouts := make([]api.Payout, len(res.Payouts))
	for i, p := range res.Payouts {
		payouts[i] = api.Payout{
			UserId:    p.UserId,
			AmountSol: sol(p.Amount),
			Outcome:   api.PayoutOutcome(p.Outcome),
		}
	}
	return &api.SettlementResult{
		PoolId:       id(res.PoolId),
		Winners:      res.Winners,
		ForfeitSol:   sol(res.Forfeit),
		TotalPaidSol: sol(res.TotalPaid),
		Payouts:      payouts,
	}
}
