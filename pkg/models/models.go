package models

import (
	"time"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL int64 = 1_000_000_000

// PoolStatus defines the lifecycle states of a pool.
type PoolStatus string

const (
	PoolWaiting   PoolStatus = "waiting"
	PoolActive    PoolStatus = "active"
	PoolSettling  PoolStatus = "settling"
	PoolCompleted PoolStatus = "completed"
	PoolCancelled PoolStatus = "cancelled"
)

// Joinable reports whether new members may join a pool in this state.
func (s PoolStatus) Joinable() bool {
	return s == PoolWaiting || s == PoolActive
}

// Pool represents a habit-staking challenge.
// Amounts are in lamports.
type Pool struct {
	Id                   string     `json:"id" dynamodbav:"id"`
	CreatorId            string     `json:"creator_id" dynamodbav:"creator_id"`
	Title                string     `json:"title" dynamodbav:"title"`
	ProofRequirement     string     `json:"proof_requirement" dynamodbav:"proof_requirement"`
	StakeAmount          int64      `json:"stake_amount" dynamodbav:"stake_amount"`
	DurationDays         int        `json:"duration_days" dynamodbav:"duration_days"`
	MaxPlayers           int        `json:"max_players" dynamodbav:"max_players"`
	CurrentPlayers       int        `json:"current_players" dynamodbav:"current_players"`
	PotSize              int64      `json:"pot_size" dynamodbav:"pot_size"`
	Status               PoolStatus `json:"status" dynamodbav:"status"`
	CreatedAt            time.Time  `json:"created_at" dynamodbav:"created_at"`
	StartedAt            *time.Time `json:"started_at,omitempty" dynamodbav:"started_at,omitempty"`
	EndsAt               *time.Time `json:"ends_at,omitempty" dynamodbav:"ends_at,omitempty"`
	SettlementLeaseUntil int64      `json:"-" dynamodbav:"settlement_lease_until,omitempty"`
	SettledAt            *time.Time `json:"settled_at,omitempty" dynamodbav:"settled_at,omitempty"`
	Version              int64      `json:"version" dynamodbav:"version"`
}

// StartDay returns the calendar day the pool became active, or "" if it never did.
func (p *Pool) StartDay() string {
	if p.StartedAt == nil {
		return ""
	}
	return p.StartedAt.UTC().Format("2006-01-02")
}

// MemberStatus defines the states of a member within a pool.
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberCompleted MemberStatus = "completed"
	MemberFailed    MemberStatus = "failed"
	MemberWithdrawn MemberStatus = "withdrawn"
)

// Member is a user's participation record within one pool.
// ProofDays and CoveredDays hold calendar days ("2006-01-02").
type Member struct {
	PoolId           string       `json:"pool_id" dynamodbav:"pool_id"`
	UserId           string       `json:"user_id" dynamodbav:"user_id"`
	Status           MemberStatus `json:"status" dynamodbav:"status"`
	JoinedAt         time.Time    `json:"joined_at" dynamodbav:"joined_at"`
	LastProofDate    string       `json:"last_proof_date,omitempty" dynamodbav:"last_proof_date,omitempty"`
	CurrentStreak    int          `json:"current_streak" dynamodbav:"current_streak"`
	BestStreak       int          `json:"best_streak" dynamodbav:"best_streak"`
	DaysCompleted    int          `json:"days_completed" dynamodbav:"days_completed"`
	DaysMissed       int          `json:"days_missed" dynamodbav:"days_missed"`
	ProofDays        []string     `json:"proof_days,omitempty" dynamodbav:"proof_days,omitempty,stringset"`
	CoveredDays      []string     `json:"covered_days,omitempty" dynamodbav:"covered_days,omitempty,stringset"`
	StakeAmount      int64        `json:"stake_amount" dynamodbav:"stake_amount"`
	StakeTxReference string       `json:"stake_tx_reference,omitempty" dynamodbav:"stake_tx_reference,omitempty"`
	Version          int64        `json:"version" dynamodbav:"version"`
}

// HasDay reports whether day is already logged, by proof or by lifeline.
func (m *Member) HasDay(day string) bool {
	for _, d := range m.ProofDays {
		if d == day {
			return true
		}
	}
	for _, d := range m.CoveredDays {
		if d == day {
			return true
		}
	}
	return false
}

// Profile holds per-user aggregates and the in-app balance.
type Profile struct {
	UserId         string    `json:"user_id" dynamodbav:"user_id"`
	WalletAddress  string    `json:"wallet_address,omitempty" dynamodbav:"wallet_address,omitempty"`
	Balance        int64     `json:"balance" dynamodbav:"balance"`
	TotalPoolsWon  int       `json:"total_pools_won" dynamodbav:"total_pools_won"`
	TotalSolEarned int64     `json:"total_sol_earned" dynamodbav:"total_sol_earned"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
	Version        int64     `json:"version" dynamodbav:"version"`
}
