package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentloan-backend/internal/domain/apperr"
	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/clock"
	"studentloan-backend/internal/domain/loan"
	"studentloan-backend/internal/domain/uow"
	"studentloan-backend/internal/testutil/borrowermock"
	"studentloan-backend/internal/testutil/loanmock"
	"studentloan-backend/internal/testutil/uowmock"
)

func TestRecordRepaymentEvent_AppendFailureSkipsRescore(t *testing.T) {
	boom := errors.New("disk full")
	putCalled := false
	repos := uow.Repos{
		History:  &borrowermock.History{AppendFn: func(context.Context, string, borrower.RepaymentEvent) error { return boom }},
		Profiles: &borrowermock.Profiles{PutFn: func(context.Context, borrower.Profile) error { putCalled = true; return nil }},
	}
	u := NewUsecase(uowmock.Passthrough(repos, borrower.Profile{BorrowerID: "stu-1"}), nil, nil, nil, clock.NewFixed(now), nil, 0)

	_, err := u.RecordRepaymentEvent(context.Background(), "stu-1", "loan-1", true)
	require.ErrorIs(t, err, boom)
	assert.False(t, putCalled)
}

func TestRecordRepaymentEvent_KeepsExistingScoreAsBase(t *testing.T) {
	var saved borrower.Profile
	repos := uow.Repos{
		History: &borrowermock.History{ListFn: func(context.Context, string) ([]borrower.RepaymentEvent, error) {
			return []borrower.RepaymentEvent{{OnTime: true}}, nil
		}},
		Profiles: &borrowermock.Profiles{PutFn: func(_ context.Context, p borrower.Profile) error { saved = p; return nil }},
	}
	u := NewUsecase(uowmock.Passthrough(repos, borrower.Profile{BorrowerID: "stu-1", CreditScore: 840}), nil, nil, nil, clock.NewFixed(now), nil, 0)

	got, err := u.RecordRepaymentEvent(context.Background(), "stu-1", "loan-1", true)
	require.NoError(t, err)
	assert.Equal(t, borrower.MaxScore, got)
	assert.Equal(t, borrower.MaxScore, saved.CreditScore)
}

func TestRecordLoanOutcome_LostSwapIsInvalidState(t *testing.T) {
	funded := loan.Request{RequestID: "l1", BorrowerID: "stu-1", Status: loan.StatusFunded}
	loans := &loanmock.Repo{
		GetFn: func(context.Context, string) (loan.Request, bool, error) { return funded, true, nil },
		CompareAndSwapFn: func(context.Context, string, loan.Status, loan.Request) (bool, error) {
			return false, nil
		},
	}
	repos := uow.Repos{Loans: loans, History: &borrowermock.History{}, Profiles: &borrowermock.Profiles{}}
	u := NewUsecase(uowmock.Passthrough(repos, borrower.Profile{BorrowerID: "stu-1"}), loans, nil, nil, clock.NewFixed(now), nil, 0)

	_, err := u.RecordLoanOutcome(context.Background(), "l1", loan.StatusRepaid)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}
