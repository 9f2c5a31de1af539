package http

import (
	"github.com/labstack/echo/v4"
)

// Routes groups the handlers served by the API.
type Routes struct {
	Health    *Handler
	Borrowers *BorrowerHandler
	Loans     *LoanHandler
}

func (r Routes) Register(e *echo.Echo) {
	e.GET("/health", r.Health.Health)

	e.POST("/borrowers", r.Borrowers.Register)
	e.GET("/borrowers/:ref", r.Borrowers.GetBorrower)
	e.GET("/borrowers/:ref/stats", r.Borrowers.Stats)
	e.GET("/borrowers/:ref/repayments", r.Borrowers.History)
	e.POST("/borrowers/:ref/repayments", r.Borrowers.RecordRepayment)

	e.GET("/quote", r.Loans.Quote)
	e.POST("/loans", r.Loans.CreateLoan)
	e.GET("/loans", r.Loans.ListLoans)
	e.GET("/loans/:id", r.Loans.GetLoan)
	e.GET("/loans/:id/schedule", r.Loans.Schedule)
	e.POST("/loans/:id/fund", r.Loans.FundLoan)
	e.POST("/loans/:id/outcome", r.Loans.RecordOutcome)

	e.GET("/lenders/:ref/stats", r.Loans.LenderStats)
}
