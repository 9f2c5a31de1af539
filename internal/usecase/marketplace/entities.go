package marketplace

import (
	"studentloan-backend/internal/domain/loan"
	"studentloan-backend/internal/domain/pricing"
)

type SubmitInput struct {
	Principal      float64      `json:"amount"`
	DurationMonths int          `json:"duration"`
	Purpose        loan.Purpose `json:"purpose"`
	Description    string       `json:"description"`
}

type FundInput struct {
	RequestID string
	FunderID  string
	Amount    float64
}

type QuoteInput struct {
	Principal      float64
	DurationMonths int
	CreditScore    int
}

// LoanDTO is a stored request plus the values derived from it for display.
type LoanDTO struct {
	loan.Request
	PurposeLabel string       `json:"purpose_label"`
	Risk         pricing.Risk `json:"risk"`
}

func toDTO(r loan.Request) LoanDTO {
	return LoanDTO{Request: r, PurposeLabel: r.Purpose.Label(), Risk: pricing.RiskBand(r.CreditScore)}
}

type QuoteDTO struct {
	pricing.Quote
	CreditScore int          `json:"credit_score"`
	Risk        pricing.Risk `json:"risk"`
}

type LenderStats struct {
	LenderID         string  `json:"lender_id"`
	TotalLent        float64 `json:"total_lent"`
	ExpectedInterest float64 `json:"expected_interest"`
	ActiveLoans      int     `json:"active_loans"`
	AverageRate      float64 `json:"average_rate"`
}

type BorrowerStats struct {
	BorrowerID      string    `json:"borrower_id"`
	CreditScore     int       `json:"credit_score"`
	TotalBorrowed   float64   `json:"total_borrowed"`
	PendingRequests int       `json:"pending_requests"`
	ActiveLoans     []LoanDTO `json:"active_loans"`
}
