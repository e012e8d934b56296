package pools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// NewPool is the input of CreatePool. Amounts are in lamports.
type NewPool struct {
	CreatorId        string `json:"creator_id" validate:"required"`
	Title            string `json:"title" validate:"max=120"`
	ProofRequirement string `json:"proof_requirement" validate:"required"`
	StakeAmount      int64  `json:"stake_amount" validate:"gt=0"`
	DurationDays     int    `json:"duration_days" validate:"gte=1"`
	MaxPlayers       int    `json:"max_players" validate:"gte=2,lte=50"`

	// StakeTxReference is an escrow transfer the creator already made. When
	// empty the stake is transferred through the escrow service.
	StakeTxReference string `json:"stake_tx_reference,omitempty"`
}

// ValidationError reports a rejected pool definition. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateNewPool checks a pool definition and returns a *ValidationError
// describing the first violated rule.
func ValidateNewPool(in *NewPool) error {
	in.ProofRequirement = strings.TrimSpace(in.ProofRequirement)
	in.Title = strings.TrimSpace(in.Title)

	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate pool: %w", err)
	}
	fe := verrs[0]
	return &ValidationError{Field: fieldName(fe.Field()), Reason: reason(fe)}
}

func fieldName(field string) string {
	switch field {
	case "CreatorId":
		return "creator_id"
	case "ProofRequirement":
		return "proof_requirement"
	case "StakeAmount":
		return "stake_amount"
	case "DurationDays":
		return "duration_days"
	case "MaxPlayers":
		return "max_players"
	}
	return strings.ToLower(field)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag()
}
