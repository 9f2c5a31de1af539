package borrower

import (
	"context"
	"errors"
)

// ErrProfileExists is returned by Create when the borrower already has a profile.
var ErrProfileExists = errors.New("borrower profile already exists")

type ProfileStore interface {
	Get(ctx context.Context, borrowerID string) (Profile, bool, error)
	Put(ctx context.Context, p Profile) error
	// Create inserts a new profile and never overwrites one.
	Create(ctx context.Context, p Profile) error
}

// HistoryStore holds each borrower's repayment events. List returns them
// oldest first; events are never reordered or removed.
type HistoryStore interface {
	Append(ctx context.Context, borrowerID string, e RepaymentEvent) error
	List(ctx context.Context, borrowerID string) ([]RepaymentEvent, error)
}

// EligibilityVerifier attests a student's academic standing. Its proofs are
// opaque; the output is trusted input.
type EligibilityVerifier interface {
	Verify(ctx context.Context, c Credentials) (Academics, error)
}
