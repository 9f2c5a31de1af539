// Package pricing prices student loans from the borrower's credit score and
// the loan term, and lays out their amortization.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"studentloan-backend/internal/domain/apperr"
)

// DefaultCreditScore prices borrowers whose score has not been set yet.
const DefaultCreditScore = 650

const longTermSurchargeMonths = 24

type Quote struct {
	AnnualRatePercent float64 `json:"interest_rate"`
	MonthlyPayment    float64 `json:"monthly_payment"`
	TotalRepayment    float64 `json:"total_repayment"`
}

// BaseRate returns the annual rate, in percent, for a credit score.
func BaseRate(creditScore int) float64 {
	switch {
	case creditScore >= 750:
		return 8
	case creditScore >= 650:
		return 10
	default:
		return 12
	}
}

// AnnualRate adds one point to the base rate for terms longer than two years.
func AnnualRate(creditScore, months int) float64 {
	rate := BaseRate(creditScore)
	if months > longTermSurchargeMonths {
		rate++
	}
	return rate
}

// Calculate quotes an amortizing loan. Money values are rounded to cents on
// the way out; the math runs at full precision.
func Calculate(principal float64, months, creditScore int) (Quote, error) {
	if months <= 0 {
		return Quote{}, &apperr.ComputationError{Reason: "duration must be a positive number of months"}
	}
	rate := AnnualRate(creditScore, months)
	payment := annuity(principal, rate, months)
	total := payment * float64(months)
	if !finite(payment) || !finite(total) {
		return Quote{}, &apperr.ComputationError{Reason: "monthly payment is not a finite number"}
	}
	return Quote{
		AnnualRatePercent: rate,
		MonthlyPayment:    round2(payment),
		TotalRepayment:    round2(total),
	}, nil
}

func annuity(principal, annualRatePercent float64, months int) float64 {
	n := float64(months)
	r := annualRatePercent / 100 / 12
	if r == 0 {
		return principal / n
	}
	f := math.Pow(1+r, n)
	return principal * r * f / (f - 1)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func round2(v float64) float64 { return decimal.NewFromFloat(v).Round(2).InexactFloat64() }
