package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is the root of every state conflict. Conflicts are safe to
// retry only after re-reading state.
var ErrConflict = errors.New("conflict")

func conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

var (
	// ErrVersionConflict is returned when an optimistic-concurrency check fails.
	ErrVersionConflict = conflict("record was modified concurrently")

	ErrPoolFull             = conflict("pool is full")
	ErrAlreadyMember        = conflict("user is already a member of this pool")
	ErrPoolNotJoinable      = conflict("pool is not accepting members")
	ErrPoolNotActive        = conflict("pool is not active")
	ErrInvalidTransition    = conflict("invalid pool status transition")
	ErrMemberNotActive      = conflict("member is not active")
	ErrLifelineCapReached   = conflict("lifeline cap reached")
	ErrNoLifelines          = conflict("no lifelines available")
	ErrDayAlreadyLogged     = conflict("day already logged")
	ErrAlreadySettled       = conflict("pool already settled")
	ErrSettlementInProgress = conflict("settlement already in progress")
	ErrPoolNotSettleable    = conflict("pool is not in a settleable state")
	ErrReviewResolved       = conflict("review already resolved")
	ErrReviewExists         = conflict("review already exists")
	ErrProofAlreadyResolved = conflict("proof already resolved")
	ErrDuplicateTransaction = conflict("transaction already recorded")
	ErrProfileExists        = conflict("profile already exists")
)

// ErrInsufficientBalance is returned when a profile balance cannot cover a debit.
var ErrInsufficientBalance = errors.New("insufficient balance")
