package marketplace

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"studentloan-backend/internal/adapter/repository/memory"
	"studentloan-backend/internal/domain/apperr"
	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/clock"
	"studentloan-backend/internal/domain/eligibility"
	"studentloan-backend/internal/domain/loan"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var now = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	uc       *Usecase
	loans    *memory.LoanStore
	profiles *memory.ProfileStore
	clock    *clock.Fixed
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		loans:    memory.NewLoanStore(),
		profiles: memory.NewProfileStore(),
		clock:    clock.NewFixed(now),
	}
	f.uc = NewUsecase(f.loans, f.profiles, f.clock, zap.NewNop(), Config{})
	require.NoError(t, f.profiles.Put(context.Background(), student("stu-1")))
	return f
}

func student(id string) borrower.Profile {
	return borrower.Profile{
		BorrowerID:     id,
		DisplayName:    "Ada Student",
		Enrolled:       true,
		Institution:    "State University",
		GPA:            3.2,
		CompletionDate: time.Date(2028, 6, 1, 0, 0, 0, 0, time.UTC),
		Verified:       true,
	}
}

func books(amount float64, months int) SubmitInput {
	return SubmitInput{Principal: amount, DurationMonths: months, Purpose: loan.PurposeBooks, Description: " textbooks "}
}

func TestSubmit_PricesUnscoredBorrowerAtDefault(t *testing.T) {
	f := newFixture(t)
	got, err := f.uc.SubmitForBorrower(context.Background(), "stu-1", books(1200, 12))
	require.NoError(t, err)

	assert.Len(t, got.RequestID, 32)
	assert.Equal(t, loan.StatusPending, got.Status)
	assert.Equal(t, 650, got.CreditScore)
	assert.Equal(t, 10.0, got.InterestRate)
	assert.Equal(t, 105.5, got.MonthlyPayment)
	assert.Equal(t, 1265.99, got.TotalRepayment)
	assert.Equal(t, "textbooks", got.Description)
	assert.Equal(t, "Ada Student", got.BorrowerName)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, "medium", string(got.Risk))
	assert.Equal(t, "Books & Supplies", got.PurposeLabel)

	stored, ok, err := f.loans.Get(context.Background(), got.RequestID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, got.Request.RequestID, stored.RequestID)
}

func TestSubmit_UsesStoredScore(t *testing.T) {
	f := newFixture(t)
	p := student("stu-2")
	p.CreditScore = 780
	got, err := f.uc.Submit(context.Background(), p, books(1000, 6))
	require.NoError(t, err)
	assert.Equal(t, 8.0, got.InterestRate)
	assert.Equal(t, 780, got.CreditScore)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		in   SubmitInput
	}{
		{"zero amount", books(0, 12)},
		{"negative amount", books(-5, 12)},
		{"over ceiling", books(10_000.01, 12)},
		{"odd duration", books(500, 7)},
		{"unknown purpose", SubmitInput{Principal: 500, DurationMonths: 6, Purpose: "yacht"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.SubmitForBorrower(context.Background(), "stu-1", tc.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := f.uc.SubmitForBorrower(context.Background(), "stu-1", books(10_000, 12))
	assert.NoError(t, err, "ceiling itself is allowed")

	list, _ := f.loans.List(context.Background())
	assert.Len(t, list, 1)
}

func TestSubmit_Eligibility(t *testing.T) {
	f := newFixture(t)

	unverified := student("u")
	unverified.Verified = false
	_, err := f.uc.Submit(context.Background(), unverified, books(500, 6))
	assert.ErrorIs(t, err, apperr.ErrEligibility)
	assert.Equal(t, ReasonNotVerified, apperr.Reason(err))

	dropped := student("d")
	dropped.Enrolled = false
	_, err = f.uc.Submit(context.Background(), dropped, books(500, 6))
	assert.ErrorIs(t, err, apperr.ErrEligibility)
	assert.Equal(t, eligibility.ReasonNotEnrolled, apperr.Reason(err))

	short := student("s")
	short.CompletionDate = now.AddDate(0, 8, 0)
	_, err = f.uc.Submit(context.Background(), short, books(500, 12))
	assert.ErrorIs(t, err, apperr.ErrEligibility)
	assert.Equal(t, eligibility.ReasonExceedsCompletion, apperr.Reason(err))

	list, _ := f.loans.List(context.Background())
	assert.Empty(t, list)
}

func TestSubmitForBorrower_Unknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.SubmitForBorrower(context.Background(), "ghost", books(500, 6))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearch_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.uc.SubmitForBorrower(ctx, "stu-1", books(1500, 6))
	require.NoError(t, err)
	b, err := f.uc.SubmitForBorrower(ctx, "stu-1", SubmitInput{Principal: 4000, DurationMonths: 18, Purpose: loan.PurposeTuition})
	require.NoError(t, err)
	c, err := f.uc.SubmitForBorrower(ctx, "stu-1", SubmitInput{Principal: 800, DurationMonths: 3, Purpose: loan.PurposeHousing})
	require.NoError(t, err)
	_, err = f.uc.Fund(ctx, FundInput{RequestID: c.RequestID, FunderID: "lender-1", Amount: 800})
	require.NoError(t, err)

	pending, err := f.uc.Search(ctx, loan.FilterCriteria{Status: loan.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for i, want := range []*LoanDTO{a, b} {
		got := pending[i]
		assert.Equal(t, want.RequestID, got.RequestID)
		assert.Equal(t, loan.StatusPending, got.Status)
		assert.Equal(t, want.Principal, got.Principal)
		assert.Equal(t, want.DurationMonths, got.DurationMonths)
		assert.Equal(t, want.Purpose, got.Purpose)
		assert.Equal(t, want.InterestRate, got.InterestRate)
		assert.Equal(t, want.MonthlyPayment, got.MonthlyPayment)
		assert.Equal(t, want.TotalRepayment, got.TotalRepayment)
		assert.Equal(t, want.CreditScore, got.CreditScore)
		assert.Equal(t, want.Risk, got.Risk)
		assert.Equal(t, want.CreatedAt, got.CreatedAt)
	}

	all, err := f.uc.Search(ctx, loan.FilterCriteria{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, c.RequestID, all[2].RequestID)

	max := 2000.0
	got, err := f.uc.Search(ctx, loan.FilterCriteria{MaxAmount: &max, Status: loan.StatusPending})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.RequestID, got[0].RequestID)

	minDur, maxRate := 12, 10.0
	got, err = f.uc.Search(ctx, loan.FilterCriteria{MinDuration: &minDur, MaxRate: &maxRate})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.RequestID, got[0].RequestID)

	six, minRate := 6, 10.01
	got, err = f.uc.Search(ctx, loan.FilterCriteria{MinDuration: &six, MaxDuration: &six})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.RequestID, got[0].RequestID)

	got, err = f.uc.Search(ctx, loan.FilterCriteria{MinRate: &minRate})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.uc.Search(ctx, loan.FilterCriteria{Term: "TUITION"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.RequestID, got[0].RequestID)
}

func TestSearch_MinCreditScoreIsInclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, score := range []int{749, 750} {
		r := loan.Request{RequestID: fmt.Sprintf("r%d", i), Principal: 100, DurationMonths: 6,
			Purpose: loan.PurposeOther, CreditScore: score, Status: loan.StatusPending}
		require.NoError(t, f.loans.Put(ctx, r))
	}
	min := 750
	got, err := f.uc.Search(ctx, loan.FilterCriteria{MinCreditScore: &min})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 750, got[0].CreditScore)
}

func TestFund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.uc.SubmitForBorrower(ctx, "stu-1", books(2000, 6))
	require.NoError(t, err)

	_, err = f.uc.Fund(ctx, FundInput{RequestID: "missing", FunderID: "lender-1", Amount: 10})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.uc.Fund(ctx, FundInput{RequestID: r.RequestID, FunderID: "", Amount: 10})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Fund(ctx, FundInput{RequestID: r.RequestID, FunderID: "lender-1", Amount: 2000.01})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Fund(ctx, FundInput{RequestID: r.RequestID, FunderID: "lender-1", Amount: 0})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	f.clock.Advance(time.Hour)
	funded, err := f.uc.Fund(ctx, FundInput{RequestID: r.RequestID, FunderID: "lender-1", Amount: 1500})
	require.NoError(t, err)
	assert.Equal(t, loan.StatusFunded, funded.Status)
	require.NotNil(t, funded.FundedBy)
	assert.Equal(t, "lender-1", *funded.FundedBy)
	assert.Equal(t, 1500.0, *funded.FundedAmount)
	assert.Equal(t, now.Add(time.Hour), *funded.FundedAt)

	_, err = f.uc.Fund(ctx, FundInput{RequestID: r.RequestID, FunderID: "lender-2", Amount: 10})
	var ise *apperr.InvalidStateError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "funded", ise.State)

	stored, _, _ := f.loans.Get(ctx, r.RequestID)
	assert.Equal(t, "lender-1", *stored.FundedBy)
}

func TestFund_ConcurrentFundersHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.uc.SubmitForBorrower(ctx, "stu-1", books(2000, 6))
	require.NoError(t, err)

	var wins, conflicts atomic.Int32
	var g errgroup.Group
	for i := 0; i < 50; i++ {
		i := i
		g.Go(func() error {
			_, err := f.uc.Fund(ctx, FundInput{RequestID: r.RequestID, FunderID: fmt.Sprintf("lender-%d", i), Amount: 2000})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, apperr.ErrInvalidState):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, 49, conflicts.Load())
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	q, err := f.uc.Quote(QuoteInput{Principal: 10_000, DurationMonths: 36, CreditScore: 800})
	require.NoError(t, err)
	assert.Equal(t, 9.0, q.AnnualRatePercent)
	assert.Equal(t, 318.0, q.MonthlyPayment)
	assert.Equal(t, "low", string(q.Risk))

	q, err = f.uc.Quote(QuoteInput{Principal: 1200, DurationMonths: 12})
	require.NoError(t, err)
	assert.Equal(t, 650, q.CreditScore)

	_, err = f.uc.Quote(QuoteInput{Principal: 1200, DurationMonths: 0})
	assert.ErrorIs(t, err, apperr.ErrComputation)

	_, err = f.uc.Quote(QuoteInput{Principal: 0, DurationMonths: 12})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSchedule_StartsAtFunding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.uc.SubmitForBorrower(ctx, "stu-1", books(1200, 12))
	require.NoError(t, err)

	before, err := f.uc.Schedule(ctx, r.RequestID)
	require.NoError(t, err)
	require.Len(t, before, 12)
	assert.Equal(t, now.AddDate(0, 1, 0), before[0].DueDate)

	f.clock.Set(now.AddDate(0, 0, 10))
	_, err = f.uc.Fund(ctx, FundInput{RequestID: r.RequestID, FunderID: "lender-1", Amount: 1200})
	require.NoError(t, err)
	after, err := f.uc.Schedule(ctx, r.RequestID)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 1, 10), after[0].DueDate)
	assert.True(t, after[11].Remaining.IsZero())

	_, err = f.uc.Schedule(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.uc.SubmitForBorrower(ctx, "stu-1", books(1200, 12))
	require.NoError(t, err)
	_, err = f.uc.SubmitForBorrower(ctx, "stu-1", books(800, 6))
	require.NoError(t, err)

	_, err = f.uc.Fund(ctx, FundInput{RequestID: a.RequestID, FunderID: "lender-1", Amount: 600})
	require.NoError(t, err)

	ls, err := f.uc.LenderStats(ctx, "lender-1")
	require.NoError(t, err)
	assert.Equal(t, 600.0, ls.TotalLent)
	assert.Equal(t, 1, ls.ActiveLoans)
	assert.Equal(t, 10.0, ls.AverageRate)
	// half of the 65.99 interest on the full principal
	assert.InDelta(t, 33.0, ls.ExpectedInterest, 0.02)

	none, err := f.uc.LenderStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, none.TotalLent)
	assert.Zero(t, none.AverageRate)

	bs, err := f.uc.BorrowerStats(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 600.0, bs.TotalBorrowed)
	assert.Equal(t, 1, bs.PendingRequests)
	require.Len(t, bs.ActiveLoans, 1)
	assert.Equal(t, a.RequestID, bs.ActiveLoans[0].RequestID)

	_, err = f.uc.BorrowerStats(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
