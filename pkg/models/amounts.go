package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for a SOL amount that is not a whole number
// of lamports or does not fit in an int64.
var ErrInvalidAmount = errors.New("invalid SOL amount")

var (
	lamportsPerSOL = decimal.NewFromInt(LamportsPerSOL)
	maxLamports    = decimal.NewFromInt(math.MaxInt64)
	minLamports    = decimal.NewFromInt(math.MinInt64)
)

// SOL converts lamports to a SOL decimal.
func SOL(lamports int64) decimal.Decimal {
	return decimal.NewFromInt(lamports).Div(lamportsPerSOL)
}

// Lamports converts a SOL decimal to lamports. Fractions of a lamport are rejected.
func Lamports(sol decimal.Decimal) (int64, error) {
	l := sol.Mul(lamportsPerSOL)
	if !l.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than 9 decimal places", ErrInvalidAmount, sol)
	}
	if l.GreaterThan(maxLamports) || l.LessThan(minLamports) {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, sol)
	}
	return l.IntPart(), nil
}

// ParseSOL parses a decimal SOL string into lamports. Negative amounts are
// rejected.
func ParseSOL(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, s)
	}
	return Lamports(d)
}
