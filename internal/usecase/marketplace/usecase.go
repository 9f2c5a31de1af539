package marketplace

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"studentloan-backend/internal/domain/apperr"
	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/clock"
	"studentloan-backend/internal/domain/eligibility"
	"studentloan-backend/internal/domain/loan"
	"studentloan-backend/internal/domain/pricing"
	"studentloan-backend/internal/infrastructure/logger"
	"studentloan-backend/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReasonNotVerified rejects profiles the verifier has not vouched for.
const ReasonNotVerified = "borrower is not verified"

type Config struct {
	Ceiling            float64
	DefaultCreditScore int
}

type Usecase struct {
	loans    loan.Store
	profiles borrower.ProfileStore
	checker  *eligibility.Checker
	clock    clock.Clock
	log      *zap.Logger
	cfg      Config
}

func NewUsecase(loans loan.Store, profiles borrower.ProfileStore, clk clock.Clock, log *zap.Logger, cfg Config) *Usecase {
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = loan.DefaultCeiling
	}
	if cfg.DefaultCreditScore == 0 {
		cfg.DefaultCreditScore = pricing.DefaultCreditScore
	}
	return &Usecase{
		loans:    loans,
		profiles: profiles,
		checker:  eligibility.NewChecker(clk),
		clock:    clk,
		log:      logger.OrNop(log),
		cfg:      cfg,
	}
}

func (u *Usecase) validate(in SubmitInput) error {
	if !(in.Principal > 0) || in.Principal > u.cfg.Ceiling {
		return apperr.Validation("amount", "must be greater than 0 and at most "+loan.FormatNumber(u.cfg.Ceiling))
	}
	if !loan.ValidDuration(in.DurationMonths) {
		return apperr.Validation("duration", "must be one of "+joinInts(loan.Durations)+" months")
	}
	if !in.Purpose.Valid() {
		return apperr.Validation("purpose", fmt.Sprintf("unknown purpose %q", in.Purpose))
	}
	return nil
}

// effectiveScore prices unscored borrowers at the default.
func (u *Usecase) effectiveScore(score int) int {
	if score == 0 {
		return u.cfg.DefaultCreditScore
	}
	return score
}

// Submit validates the request, checks eligibility, prices it and stores it
// as pending.
func (u *Usecase) Submit(ctx context.Context, p borrower.Profile, in SubmitInput) (*LoanDTO, error) {
	if err := u.validate(in); err != nil {
		return nil, err
	}
	if !p.Verified {
		return nil, &apperr.EligibilityError{Reason: ReasonNotVerified}
	}
	if res := u.checker.Check(p, in.DurationMonths); !res.Eligible {
		u.log.Info("loan request rejected",
			zap.String("borrower_id", p.BorrowerID),
			zap.Int("duration", in.DurationMonths),
			zap.String("reason", res.Reason))
		return nil, &apperr.EligibilityError{Reason: res.Reason}
	}

	score := u.effectiveScore(p.CreditScore)
	q, err := pricing.Calculate(in.Principal, in.DurationMonths, score)
	if err != nil {
		return nil, err
	}

	completion := p.CompletionDate
	r := loan.Request{
		RequestID:          id.NewID32(),
		BorrowerID:         p.BorrowerID,
		BorrowerName:       p.DisplayName,
		Principal:          in.Principal,
		DurationMonths:     in.DurationMonths,
		Purpose:            in.Purpose,
		Description:        strings.TrimSpace(in.Description),
		InterestRate:       q.AnnualRatePercent,
		MonthlyPayment:     q.MonthlyPayment,
		TotalRepayment:     q.TotalRepayment,
		CreditScore:        score,
		ExpectedCompletion: &completion,
		Status:             loan.StatusPending,
		CreatedAt:          u.clock.Now(),
	}
	if err := u.loans.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("store loan request: %w", err)
	}

	u.log.Info("loan request submitted",
		zap.String("request_id", r.RequestID),
		zap.String("borrower_id", r.BorrowerID),
		zap.Float64("amount", r.Principal),
		zap.Int("duration", r.DurationMonths),
		zap.Float64("rate", r.InterestRate))
	dto := toDTO(r)
	return &dto, nil
}

// SubmitForBorrower loads the borrower's profile and submits on its behalf.
func (u *Usecase) SubmitForBorrower(ctx context.Context, borrowerID string, in SubmitInput) (*LoanDTO, error) {
	p, err := u.profile(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return u.Submit(ctx, p, in)
}

// Search returns requests matching every bound of c, in store order.
func (u *Usecase) Search(ctx context.Context, c loan.FilterCriteria) ([]LoanDTO, error) {
	all, err := u.loans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loan requests: %w", err)
	}
	out := make([]LoanDTO, 0, len(all))
	for _, r := range all {
		if c.Matches(r) {
			out = append(out, toDTO(r))
		}
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*LoanDTO, error) {
	r, err := u.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(r)
	return &dto, nil
}

func (u *Usecase) get(ctx context.Context, requestID string) (loan.Request, error) {
	r, ok, err := u.loans.Get(ctx, requestID)
	if err != nil {
		return loan.Request{}, fmt.Errorf("get loan request: %w", err)
	}
	if !ok {
		return loan.Request{}, apperr.NotFound("loan request", requestID)
	}
	return r, nil
}

// Fund moves a pending request to funded. Concurrent attempts on one request
// race on the store's compare-and-swap; losers see an InvalidStateError.
func (u *Usecase) Fund(ctx context.Context, in FundInput) (*LoanDTO, error) {
	if strings.TrimSpace(in.FunderID) == "" {
		return nil, apperr.Validation("funder_id", "is required")
	}
	cur, err := u.get(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if cur.Status != loan.StatusPending {
		return nil, u.notPending(cur)
	}
	if !(in.Amount > 0) || in.Amount > cur.Principal {
		return nil, apperr.Validation("amount", "must be greater than 0 and at most "+loan.FormatNumber(cur.Principal))
	}

	funder, amount, at := in.FunderID, in.Amount, u.clock.Now()
	updated := cur
	updated.Status = loan.StatusFunded
	updated.FundedBy = &funder
	updated.FundedAmount = &amount
	updated.FundedAt = &at

	ok, err := u.loans.CompareAndSwap(ctx, cur.RequestID, loan.StatusPending, updated)
	if err != nil {
		return nil, fmt.Errorf("fund loan request: %w", err)
	}
	if !ok {
		latest, gerr := u.get(ctx, cur.RequestID)
		if gerr != nil {
			return nil, gerr
		}
		u.log.Info("fund lost race",
			zap.String("request_id", cur.RequestID),
			zap.String("funder_id", funder),
			zap.String("status", string(latest.Status)))
		return nil, u.notPending(latest)
	}

	u.log.Info("loan request funded",
		zap.String("request_id", cur.RequestID),
		zap.String("funder_id", funder),
		zap.Float64("amount", amount))
	dto := toDTO(updated)
	return &dto, nil
}

func (u *Usecase) notPending(r loan.Request) error {
	return &apperr.InvalidStateError{Entity: "loan request", ID: r.RequestID, State: string(r.Status), Op: "fund"}
}

// Quote previews pricing without storing anything.
func (u *Usecase) Quote(in QuoteInput) (*QuoteDTO, error) {
	if !(in.Principal > 0) || in.Principal > u.cfg.Ceiling {
		return nil, apperr.Validation("amount", "must be greater than 0 and at most "+loan.FormatNumber(u.cfg.Ceiling))
	}
	score := u.effectiveScore(in.CreditScore)
	q, err := pricing.Calculate(in.Principal, in.DurationMonths, score)
	if err != nil {
		return nil, err
	}
	return &QuoteDTO{Quote: q, CreditScore: score, Risk: pricing.RiskBand(score)}, nil
}

// Schedule lays out the request's installments, starting from funding when
// funded and from submission otherwise.
func (u *Usecase) Schedule(ctx context.Context, requestID string) ([]pricing.Installment, error) {
	r, err := u.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	start := r.CreatedAt
	if r.FundedAt != nil {
		start = *r.FundedAt
	}
	return pricing.Schedule(r.Principal, r.InterestRate, r.DurationMonths, start)
}

func (u *Usecase) LenderStats(ctx context.Context, lenderID string) (*LenderStats, error) {
	all, err := u.loans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loan requests: %w", err)
	}
	lent, interest, rates := decimal.Zero, decimal.Zero, decimal.Zero
	out := &LenderStats{LenderID: lenderID}
	n := 0
	for _, r := range all {
		if r.FundedBy == nil || *r.FundedBy != lenderID || r.FundedAmount == nil {
			continue
		}
		n++
		amount := decimal.NewFromFloat(*r.FundedAmount)
		lent = lent.Add(amount)
		rates = rates.Add(decimal.NewFromFloat(r.InterestRate))
		if r.Principal > 0 {
			// interest scales with the funded share of the principal
			share := amount.Div(decimal.NewFromFloat(r.Principal))
			interest = interest.Add(decimal.NewFromFloat(r.TotalRepayment - r.Principal).Mul(share))
		}
		if r.Status == loan.StatusFunded {
			out.ActiveLoans++
		}
	}
	out.TotalLent = lent.Round(2).InexactFloat64()
	out.ExpectedInterest = interest.Round(2).InexactFloat64()
	if n > 0 {
		out.AverageRate = rates.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
	}
	return out, nil
}

func (u *Usecase) BorrowerStats(ctx context.Context, borrowerID string) (*BorrowerStats, error) {
	p, err := u.profile(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	all, err := u.loans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loan requests: %w", err)
	}
	borrowed := decimal.Zero
	out := &BorrowerStats{BorrowerID: borrowerID, CreditScore: p.CreditScore, ActiveLoans: []LoanDTO{}}
	for _, r := range all {
		if r.BorrowerID != borrowerID {
			continue
		}
		switch r.Status {
		case loan.StatusPending:
			out.PendingRequests++
			continue
		case loan.StatusFunded:
			out.ActiveLoans = append(out.ActiveLoans, toDTO(r))
		}
		if r.FundedAmount != nil {
			borrowed = borrowed.Add(decimal.NewFromFloat(*r.FundedAmount))
		}
	}
	out.TotalBorrowed = borrowed.Round(2).InexactFloat64()
	return out, nil
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

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ", ")
}
