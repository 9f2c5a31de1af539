package borrowermock

import (
	"context"

	domain "studentloan-backend/internal/domain/borrower"
)

var (
	_ domain.ProfileStore        = (*Profiles)(nil)
	_ domain.HistoryStore        = (*History)(nil)
	_ domain.EligibilityVerifier = (*Verifier)(nil)
)

// Profiles is a function-backed mock that satisfies domain.ProfileStore.
type Profiles struct {
	GetFn    func(ctx context.Context, borrowerID string) (domain.Profile, bool, error)
	PutFn    func(ctx context.Context, p domain.Profile) error
	CreateFn func(ctx context.Context, p domain.Profile) error
}

func (m *Profiles) Get(ctx context.Context, borrowerID string) (domain.Profile, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, borrowerID)
	}
	return domain.Profile{}, false, nil
}

func (m *Profiles) Put(ctx context.Context, p domain.Profile) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, p)
	}
	return nil
}

func (m *Profiles) Create(ctx context.Context, p domain.Profile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

// History is a function-backed mock that satisfies domain.HistoryStore.
type History struct {
	AppendFn func(ctx context.Context, borrowerID string, e domain.RepaymentEvent) error
	ListFn   func(ctx context.Context, borrowerID string) ([]domain.RepaymentEvent, error)
}

func (m *History) Append(ctx context.Context, borrowerID string, e domain.RepaymentEvent) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, borrowerID, e)
	}
	return nil
}

func (m *History) List(ctx context.Context, borrowerID string) ([]domain.RepaymentEvent, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, borrowerID)
	}
	return nil, nil
}

// Verifier is a function-backed mock that satisfies domain.EligibilityVerifier.
// Unset, it echoes the claims back.
type Verifier struct {
	VerifyFn func(ctx context.Context, c domain.Credentials) (domain.Academics, error)
}

func (m *Verifier) Verify(ctx context.Context, c domain.Credentials) (domain.Academics, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, c)
	}
	return domain.Academics{
		FullName:       c.FullName,
		Institution:    c.Institution,
		StudentID:      c.StudentID,
		Enrolled:       c.Enrolled,
		GPA:            c.ClaimedGPA,
		CompletionDate: c.CompletionDate,
	}, nil
}
