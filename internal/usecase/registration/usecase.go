package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studentloan-backend/internal/domain/apperr"
	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/clock"
	"studentloan-backend/internal/domain/eligibility"
	"studentloan-backend/internal/domain/uow"
	"studentloan-backend/internal/infrastructure/logger"

	"go.uber.org/zap"
)

type Input struct {
	BorrowerID     string    `json:"borrower_id"`
	FullName       string    `json:"full_name"`
	Institution    string    `json:"institution"`
	StudentID      string    `json:"student_id"`
	ContactNumber  string    `json:"contact_number"`
	GPA            float64   `json:"gpa"`
	CompletionDate time.Time `json:"completion_date"`
	Enrolled       bool      `json:"enrolled"`
}

type Usecase struct {
	uow      uow.UnitOfWork
	verifier borrower.EligibilityVerifier
	clock    clock.Clock
	log      *zap.Logger
}

func NewUsecase(u uow.UnitOfWork, verifier borrower.EligibilityVerifier, clk clock.Clock, log *zap.Logger) *Usecase {
	if clk == nil {
		clk = clock.System{}
	}
	return &Usecase{uow: u, verifier: verifier, clock: clk, log: logger.OrNop(log)}
}

// Register verifies a student and stores their profile as verified.
// Re-registering refreshes the academic record but keeps the credit score.
func (u *Usecase) Register(ctx context.Context, in Input) (*borrower.Profile, error) {
	switch {
	case strings.TrimSpace(in.BorrowerID) == "":
		return nil, apperr.Validation("borrower_id", "is required")
	case strings.TrimSpace(in.Institution) == "":
		return nil, apperr.Validation("institution", "is required")
	case strings.TrimSpace(in.StudentID) == "":
		return nil, apperr.Validation("student_id", "is required")
	case in.CompletionDate.IsZero():
		return nil, apperr.Validation("completion_date", "is required")
	}

	acad, err := u.verifier.Verify(ctx, borrower.Credentials{
		BorrowerID:     in.BorrowerID,
		FullName:       strings.TrimSpace(in.FullName),
		Institution:    strings.TrimSpace(in.Institution),
		StudentID:      strings.TrimSpace(in.StudentID),
		ContactNumber:  in.ContactNumber,
		ClaimedGPA:     in.GPA,
		CompletionDate: in.CompletionDate,
		Enrolled:       in.Enrolled,
	})
	if err != nil {
		var ee *apperr.EligibilityError
		if errors.As(err, &ee) || errors.Is(err, apperr.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("verify student: %w", err)
	}

	now := u.clock.Now()
	if acad.GPA < eligibility.MinGPA {
		return nil, &apperr.EligibilityError{Reason: eligibility.ReasonGPATooLow}
	}
	if !eligibility.CompletionFarEnough(acad.CompletionDate, now) {
		return nil, &apperr.EligibilityError{Reason: eligibility.ReasonCompletionTooSoon}
	}

	p := borrower.Profile{
		BorrowerID:     in.BorrowerID,
		DisplayName:    acad.FullName,
		Enrolled:       acad.Enrolled,
		Institution:    acad.Institution,
		StudentID:      acad.StudentID,
		GPA:            acad.GPA,
		CompletionDate: acad.CompletionDate.UTC(),
		Verified:       true,
		VerifiedAt:     &now,
		CreatedAt:      now,
	}
	found, err := u.save(ctx, &p)
	if err != nil {
		return nil, err
	}

	u.log.Info("borrower registered",
		zap.String("borrower_id", p.BorrowerID),
		zap.String("institution", p.Institution),
		zap.Bool("re_registration", found))
	return &p, nil
}

// save updates an existing profile under the borrower lock so a concurrent
// repayment cannot have its score overwritten. A new borrower is inserted;
// losing that insert to a concurrent registration falls back to the update.
func (u *Usecase) save(ctx context.Context, p *borrower.Profile) (bool, error) {
	err := u.update(ctx, p)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, fmt.Errorf("save borrower: %w", err)
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Profiles.Create(ctx, *p)
	})
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, borrower.ErrProfileExists):
		return false, fmt.Errorf("create borrower: %w", err)
	}

	if err := u.update(ctx, p); err != nil {
		return false, fmt.Errorf("save borrower: %w", err)
	}
	return true, nil
}

func (u *Usecase) update(ctx context.Context, p *borrower.Profile) error {
	return u.uow.WithinBorrowerTx(ctx, p.BorrowerID, func(r uow.Repos, cur borrower.Profile) error {
		p.ID = cur.ID
		p.CreditScore = cur.CreditScore
		p.CreatedAt = cur.CreatedAt
		return r.Profiles.Put(ctx, *p)
	})
}
