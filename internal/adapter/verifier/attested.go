// Package verifier holds EligibilityVerifier implementations.
package verifier

import (
	"context"

	"studentloan-backend/internal/domain/borrower"
)

// Attested trusts the student's own claims. It stands in until an institution
// integration exists.
type Attested struct{}

var _ borrower.EligibilityVerifier = Attested{}

func (Attested) Verify(ctx context.Context, c borrower.Credentials) (borrower.Academics, error) {
	if err := ctx.Err(); err != nil {
		return borrower.Academics{}, err
	}
	return borrower.Academics{
		FullName:       c.FullName,
		Institution:    c.Institution,
		StudentID:      c.StudentID,
		Enrolled:       c.Enrolled,
		GPA:            c.ClaimedGPA,
		CompletionDate: c.CompletionDate,
	}, nil
}
