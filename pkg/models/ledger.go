package models

import "time"

// TransactionType classifies an entry of the financial audit trail.
type TransactionType string

const (
	TxStakeDeposit     TransactionType = "stake_deposit"
	TxStakeRefund      TransactionType = "stake_refund"
	TxWinningsClaim    TransactionType = "winnings_claim"
	TxPenalty          TransactionType = "penalty"
	TxLifelinePurchase TransactionType = "lifeline_purchase"
	TxBalanceDeposit   TransactionType = "balance_deposit"
)

// TransactionStatus defines the possible states of a transaction.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
)

// Transaction is an append-only financial record. Id doubles as the
// idempotency key of the write that produced it.
type Transaction struct {
	Id        string            `json:"id" dynamodbav:"id"`
	UserId    string            `json:"user_id" dynamodbav:"user_id"`
	PoolId    string            `json:"pool_id,omitempty" dynamodbav:"pool_id,omitempty"`
	Type      TransactionType   `json:"type" dynamodbav:"type"`
	Amount    int64             `json:"amount" dynamodbav:"amount"`
	Status    TransactionStatus `json:"status" dynamodbav:"status"`
	Reference string            `json:"reference,omitempty" dynamodbav:"reference,omitempty"`
	CreatedAt time.Time         `json:"created_at" dynamodbav:"created_at"`
}

// EventKind classifies pool ledger events.
type EventKind string

const (
	EventPoolCreated       EventKind = "pool_created"
	EventMemberJoined      EventKind = "member_joined"
	EventPoolActivated     EventKind = "pool_activated"
	EventPoolCancelled     EventKind = "pool_cancelled"
	EventLifelinePurchased EventKind = "lifeline_purchased"
	EventLifelineEarned    EventKind = "lifeline_earned"
	EventLifelineUsed      EventKind = "lifeline_used"
	EventPoolSettled       EventKind = "pool_settled"
)

// LedgerEvent is one entry of a pool's append-only activity log.
type LedgerEvent struct {
	PoolId    string    `json:"pool_id" dynamodbav:"pool_id"`
	EventId   string    `json:"event_id" dynamodbav:"event_id"`
	Kind      EventKind `json:"kind" dynamodbav:"kind"`
	UserId    string    `json:"user_id,omitempty" dynamodbav:"user_id,omitempty"`
	Amount    int64     `json:"amount,omitempty" dynamodbav:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// LifelineCap bounds purchased + earned lifelines per user per pool.
const LifelineCap = 3

// LifelineKind distinguishes how a lifeline was obtained or spent.
type LifelineKind string

const (
	LifelinePurchased LifelineKind = "purchased"
	LifelineEarned    LifelineKind = "earned"
	LifelineUsed      LifelineKind = "used"
)

// LifelineAccount is the bounded lifeline counter for one user in one pool.
type LifelineAccount struct {
	UserId      string   `json:"user_id" dynamodbav:"user_id"`
	PoolId      string   `json:"pool_id" dynamodbav:"pool_id"`
	Purchased   int      `json:"purchased" dynamodbav:"purchased"`
	Earned      int      `json:"earned" dynamodbav:"earned"`
	Used        int      `json:"used" dynamodbav:"used"`
	CoveredDays []string `json:"covered_days,omitempty" dynamodbav:"covered_days,omitempty,stringset"`
}

// Available returns the number of lifelines that can still be activated.
func (a *LifelineAccount) Available() int {
	return a.Purchased + a.Earned - a.Used
}

// Obtained returns the number of lifelines counted against the cap.
func (a *LifelineAccount) Obtained() int {
	return a.Purchased + a.Earned
}
