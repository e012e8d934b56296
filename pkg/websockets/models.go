package websockets

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeProofStatus is sent when a proof reaches a verdict or is flagged.
	MessageTypeProofStatus MessageType = "proofStatus"
	// MessageTypeReviewAssigned is sent to a member asked to review a proof.
	MessageTypeReviewAssigned MessageType = "reviewAssigned"
	// MessageTypePoolSettled is sent to every member of a settled pool.
	MessageTypePoolSettled MessageType = "poolSettled"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// ProofStatusPayload is the payload for a proofStatus message.
type ProofStatusPayload struct {
	ProofID       string  `json:"proof_id"`
	PoolID        string  `json:"pool_id"`
	Day           string  `json:"day"`
	Status        string  `json:"status"`
	Confidence    float64 `json:"confidence"`
	CurrentStreak int     `json:"current_streak"`
}

// ReviewAssignedPayload is the payload for a reviewAssigned message.
type ReviewAssignedPayload struct {
	ReviewID string `json:"review_id"`
	ProofID  string `json:"proof_id"`
	PoolID   string `json:"pool_id"`
}

// PoolSettledPayload is the payload for a poolSettled message. Amounts are in
// lamports.
type PoolSettledPayload struct {
	PoolID  string `json:"pool_id"`
	Outcome string `json:"outcome"`
	Payout  int64  `json:"payout"`
	Winners int    `json:"winners"`
}
