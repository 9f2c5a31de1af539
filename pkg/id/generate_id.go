package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID32 returns a random (v4) identifier as exactly 32 lowercase hex
// characters, used for loan request ids.
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// NewEventID returns a canonical hyphenated UUID for repayment events.
func NewEventID() string { return uuid.NewString() }
