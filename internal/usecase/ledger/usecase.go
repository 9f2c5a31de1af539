// Package ledger records repayment outcomes and keeps borrower credit scores
// in step with them.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"studentloan-backend/internal/domain/apperr"
	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/clock"
	"studentloan-backend/internal/domain/loan"
	"studentloan-backend/internal/domain/pricing"
	"studentloan-backend/internal/domain/scoring"
	"studentloan-backend/internal/domain/uow"
	"studentloan-backend/internal/infrastructure/logger"
	"studentloan-backend/pkg/id"

	"go.uber.org/zap"
)

type OutcomeDTO struct {
	Loan        loan.Request `json:"loan"`
	CreditScore int          `json:"credit_score"`
}

type Usecase struct {
	uow          uow.UnitOfWork
	loans        loan.Store
	profiles     borrower.ProfileStore
	history      borrower.HistoryStore
	clock        clock.Clock
	log          *zap.Logger
	defaultScore int
}

func NewUsecase(u uow.UnitOfWork, loans loan.Store, profiles borrower.ProfileStore, history borrower.HistoryStore, clk clock.Clock, log *zap.Logger, defaultScore int) *Usecase {
	if clk == nil {
		clk = clock.System{}
	}
	if defaultScore == 0 {
		defaultScore = pricing.DefaultCreditScore
	}
	return &Usecase{
		uow:          u,
		loans:        loans,
		profiles:     profiles,
		history:      history,
		clock:        clk,
		log:          logger.OrNop(log),
		defaultScore: defaultScore,
	}
}

// RecordRepaymentEvent appends one outcome to the borrower's history and
// rescores them. The append and the new score commit together.
func (u *Usecase) RecordRepaymentEvent(ctx context.Context, borrowerID, loanID string, onTime bool) (int, error) {
	if strings.TrimSpace(borrowerID) == "" {
		return 0, apperr.Validation("borrower_id", "is required")
	}
	if strings.TrimSpace(loanID) == "" {
		return 0, apperr.Validation("loan_id", "is required")
	}

	var score int
	err := u.uow.WithinBorrowerTx(ctx, borrowerID, func(r uow.Repos, p borrower.Profile) error {
		var err error
		score, err = u.record(ctx, r, p, loanID, onTime)
		return err
	})
	if err != nil {
		return 0, err
	}
	u.log.Info("repayment recorded",
		zap.String("borrower_id", borrowerID),
		zap.String("loan_id", loanID),
		zap.Bool("on_time", onTime),
		zap.Int("credit_score", score))
	return score, nil
}

func (u *Usecase) record(ctx context.Context, r uow.Repos, p borrower.Profile, loanID string, onTime bool) (int, error) {
	e := borrower.RepaymentEvent{
		EventID:    id.NewEventID(),
		BorrowerID: p.BorrowerID,
		LoanID:     loanID,
		OccurredAt: u.clock.Now(),
		OnTime:     onTime,
	}
	if err := r.History.Append(ctx, p.BorrowerID, e); err != nil {
		return 0, fmt.Errorf("append repayment: %w", err)
	}
	history, err := r.History.List(ctx, p.BorrowerID)
	if err != nil {
		return 0, fmt.Errorf("list repayments: %w", err)
	}

	base := p.CreditScore
	if base == 0 {
		base = u.defaultScore
	}
	p.CreditScore = scoring.NextScore(base, history)
	if err := r.Profiles.Put(ctx, p); err != nil {
		return 0, fmt.Errorf("save credit score: %w", err)
	}
	return p.CreditScore, nil
}

// RecordLoanOutcome settles a funded loan as repaid or defaulted and records
// the matching repayment event for its borrower in the same unit of work.
func (u *Usecase) RecordLoanOutcome(ctx context.Context, requestID string, outcome loan.Status) (*OutcomeDTO, error) {
	if !outcome.Terminal() {
		return nil, apperr.Validation("outcome", "must be repaid or defaulted")
	}
	cur, ok, err := u.loans.Get(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get loan request: %w", err)
	}
	if !ok {
		return nil, apperr.NotFound("loan request", requestID)
	}

	var out OutcomeDTO
	err = u.uow.WithinBorrowerTx(ctx, cur.BorrowerID, func(r uow.Repos, p borrower.Profile) error {
		l, ok, err := r.Loans.Get(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get loan request: %w", err)
		}
		if !ok {
			return apperr.NotFound("loan request", requestID)
		}
		if l.Status != loan.StatusFunded {
			return &apperr.InvalidStateError{Entity: "loan request", ID: requestID, State: string(l.Status), Op: "settle"}
		}

		score, err := u.record(ctx, r, p, requestID, outcome == loan.StatusRepaid)
		if err != nil {
			return err
		}

		settled := l
		settled.Status = outcome
		swapped, err := r.Loans.CompareAndSwap(ctx, requestID, loan.StatusFunded, settled)
		if err != nil {
			return fmt.Errorf("settle loan request: %w", err)
		}
		if !swapped {
			return &apperr.InvalidStateError{Entity: "loan request", ID: requestID, State: "changed", Op: "settle"}
		}
		out = OutcomeDTO{Loan: settled, CreditScore: score}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("loan settled",
		zap.String("request_id", requestID),
		zap.String("outcome", string(outcome)),
		zap.Int("credit_score", out.CreditScore))
	return &out, nil
}

// Score returns the borrower's current score; zero means not yet scored.
func (u *Usecase) Score(ctx context.Context, borrowerID string) (int, error) {
	p, err := u.profile(ctx, borrowerID)
	if err != nil {
		return 0, err
	}
	return p.CreditScore, nil
}

func (u *Usecase) Profile(ctx context.Context, borrowerID string) (*borrower.Profile, error) {
	p, err := u.profile(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (u *Usecase) History(ctx context.Context, borrowerID string) ([]borrower.RepaymentEvent, error) {
	if _, err := u.profile(ctx, borrowerID); err != nil {
		return nil, err
	}
	events, err := u.history.List(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("list repayments: %w", err)
	}
	if events == nil {
		events = []borrower.RepaymentEvent{}
	}
	return events, nil
}

func (u *Usecase) profile(ctx context.Context, borrowerID string) (borrower.Profile, error) {
	p, ok, err := u.profiles.Get(ctx, borrowerID)
	if err != nil {
		return borrower.Profile{}, fmt.Errorf("get borrower: %w", err)
	}
	if !ok {
		return borrower.Profile{}, apperr.NotFound("borrower", borrowerID)
	}
	return p, nil
}
