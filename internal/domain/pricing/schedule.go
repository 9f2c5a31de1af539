package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"studentloan-backend/internal/domain/apperr"
)

type Installment struct {
	Number    int             `json:"number"`
	DueDate   time.Time       `json:"due_date"`
	Payment   decimal.Decimal `json:"payment"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Schedule splits each monthly payment into interest and principal. The last
// installment absorbs rounding so the balance ends at exactly zero.
func Schedule(principal, annualRatePercent float64, months int, start time.Time) ([]Installment, error) {
	if months <= 0 {
		return nil, &apperr.ComputationError{Reason: "duration must be a positive number of months"}
	}
	p := annuity(principal, annualRatePercent, months)
	if !finite(p) {
		return nil, &apperr.ComputationError{Reason: "monthly payment is not a finite number"}
	}

	payment := decimal.NewFromFloat(p).Round(2)
	remaining := decimal.NewFromFloat(principal).Round(2)
	monthlyRate := decimal.NewFromFloat(annualRatePercent).Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))

	out := make([]Installment, 0, months)
	for i := 1; i <= months; i++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		amount := payment
		if i == months || principalPart.GreaterThan(remaining) {
			principalPart = remaining
			amount = principalPart.Add(interest)
		}
		remaining = remaining.Sub(principalPart)

		out = append(out, Installment{
			Number:    i,
			DueDate:   start.AddDate(0, i, 0),
			Payment:   amount,
			Interest:  interest,
			Principal: principalPart,
			Remaining: remaining,
		})
		if !remaining.IsPositive() {
			break
		}
	}
	return out, nil
}
