package models

import "time"

// ProofStatus defines the verification states of a proof.
type ProofStatus string

const (
	ProofPending  ProofStatus = "pending"
	ProofApproved ProofStatus = "approved"
	ProofRejected ProofStatus = "rejected"
	ProofFlagged  ProofStatus = "flagged"
)

// Terminal reports whether no further transition is allowed.
func (s ProofStatus) Terminal() bool {
	return s == ProofApproved || s == ProofRejected
}

// FlagDegraded marks a verdict produced by the fail-open policy.
const FlagDegraded = "degraded_verification"

// Proof is one submitted piece of evidence for one calendar day.
type Proof struct {
	Id             string      `json:"id" dynamodbav:"id"`
	PoolId         string      `json:"pool_id" dynamodbav:"pool_id"`
	UserId         string      `json:"user_id" dynamodbav:"user_id"`
	ImageReference string      `json:"image_reference" dynamodbav:"image_reference"`
	SubmittedAt    time.Time   `json:"submitted_at" dynamodbav:"submitted_at"`
	Day            string      `json:"day" dynamodbav:"day"`
	Status         ProofStatus `json:"status" dynamodbav:"status"`
	AiConfidence   float64     `json:"ai_confidence" dynamodbav:"ai_confidence"`
	AiReasoning    string      `json:"ai_reasoning,omitempty" dynamodbav:"ai_reasoning,omitempty"`
	Flags          []string    `json:"flags,omitempty" dynamodbav:"flags,omitempty"`
	Degraded       bool        `json:"degraded" dynamodbav:"degraded"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty" dynamodbav:"resolved_at,omitempty"`
}

// Verdict is the outcome written onto a proof when it leaves pending or flagged.
type Verdict struct {
	Status     ProofStatus
	Confidence float64
	Reasoning  string
	Flags      []string
	Degraded   bool
	At         time.Time
}

// ReviewStatus defines the states of a peer review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ProofReview is a human adjudication request for a flagged proof.
type ProofReview struct {
	Id         string       `json:"id" dynamodbav:"id"`
	ProofId    string       `json:"proof_id" dynamodbav:"proof_id"`
	PoolId     string       `json:"pool_id" dynamodbav:"pool_id"`
	ReviewerId string       `json:"reviewer_id" dynamodbav:"reviewer_id"`
	Status     ReviewStatus `json:"status" dynamodbav:"status"`
	Note       string       `json:"note,omitempty" dynamodbav:"note,omitempty"`
	CreatedAt  time.Time    `json:"created_at" dynamodbav:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty" dynamodbav:"resolved_at,omitempty"`
	ResolvedBy string       `json:"resolved_by,omitempty" dynamodbav:"resolved_by,omitempty"`
}

// DailyHabitRecord counts approved proofs for one user on one calendar day.
type DailyHabitRecord struct {
	UserId     string `json:"user_id" dynamodbav:"user_id"`
	Day        string `json:"day" dynamodbav:"day"`
	ProofCount int    `json:"proof_count" dynamodbav:"proof_count"`
}
