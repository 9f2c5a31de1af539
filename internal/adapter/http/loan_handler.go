package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"studentloan-backend/internal/domain/loan"
	"studentloan-backend/internal/infrastructure/logger"
	"studentloan-backend/internal/usecase/ledger"
	"studentloan-backend/internal/usecase/marketplace"
)

type LoanHandler struct {
	market *marketplace.Usecase
	ledger *ledger.Usecase
	log    *zap.Logger
}

func NewLoanHandler(market *marketplace.Usecase, ledger *ledger.Usecase, log *zap.Logger) *LoanHandler {
	return &LoanHandler{market: market, ledger: ledger, log: logger.OrNop(log)}
}

type createLoanReq struct {
	BorrowerID  string  `json:"borrower_id" validate:"required,max=64"`
	Amount      float64 `json:"amount"      validate:"dec2"`
	Duration    int     `json:"duration"    validate:"duration"`
	Purpose     string  `json:"purpose"     validate:"purpose"`
	Description string  `json:"description" validate:"max=500"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, resp := bindAndValidate(c, &req); !ok {
		return resp
	}
	dto, err := h.market.SubmitForBorrower(c.Request().Context(), req.BorrowerID, marketplace.SubmitInput{
		Principal:      req.Amount,
		DurationMonths: req.Duration,
		Purpose:        loan.Purpose(req.Purpose),
		Description:    req.Description,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type loanPath struct {
	ID string `param:"id" validate:"hex32"`
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	var req loanPath
	if ok, resp := bindAndValidate(c, &req); !ok {
		return resp
	}
	dto, err := h.market.Get(c.Request().Context(), req.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Schedule(c echo.Context) error {
	var req loanPath
	if ok, resp := bindAndValidate(c, &req); !ok {
		return resp
	}
	rows, err := h.market.Schedule(c.Request().Context(), req.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": req.ID, "installments": rows})
}

// ListLoans serves GET /loans; every query parameter is an optional filter.
func (h *LoanHandler) ListLoans(c echo.Context) error {
	var (
		crit loan.FilterCriteria
		errs []FieldError
	)
	crit.MinAmount = queryFloat(c, "min_amount", &errs)
	crit.MaxAmount = queryFloat(c, "max_amount", &errs)
	crit.MinRate = queryFloat(c, "min_rate", &errs)
	crit.MaxRate = queryFloat(c, "max_rate", &errs)
	crit.MinDuration = queryInt(c, "min_duration", &errs)
	crit.MaxDuration = queryInt(c, "max_duration", &errs)
	crit.MinCreditScore = queryInt(c, "min_credit_score", &errs)
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		crit.Status = loan.Status(strings.ToLower(s))
		if !crit.Status.Valid() {
			errs = append(errs, FieldError{Field: "status", Message: "must be one of pending, funded, repaid, defaulted"})
		}
	}
	crit.Term = strings.TrimSpace(c.QueryParam("q"))
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query", Details: errs})
	}

	items, err := h.market.Search(c.Request().Context(), crit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"count": len(items), "items": items})
}

type fundLoanReq struct {
	ID       string  `param:"id"       validate:"hex32"`
	FunderID string  `json:"funder_id" validate:"required,max=64"`
	Amount   float64 `json:"amount"    validate:"dec2"`
}

func (h *LoanHandler) FundLoan(c echo.Context) error {
	var req fundLoanReq
	if ok, resp := bindAndValidate(c, &req); !ok {
		return resp
	}
	dto, err := h.market.Fund(c.Request().Context(), marketplace.FundInput{
		RequestID: req.ID,
		FunderID:  req.FunderID,
		Amount:    req.Amount,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type outcomeReq struct {
	ID      string `param:"id"     validate:"hex32"`
	Outcome string `json:"outcome" validate:"required,oneof=repaid defaulted"`
}

func (h *LoanHandler) RecordOutcome(c echo.Context) error {
	var req outcomeReq
	if ok, resp := bindAndValidate(c, &req); !ok {
		return resp
	}
	out, err := h.ledger.RecordLoanOutcome(c.Request().Context(), req.ID, loan.Status(req.Outcome))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

type quoteReq struct {
	Amount      float64 `query:"amount"       validate:"dec2"`
	Duration    int     `query:"duration"`
	CreditScore int     `query:"credit_score" validate:"omitempty,gte=300,lte=850"`
}

// Quote prices a hypothetical request without storing it.
func (h *LoanHandler) Quote(c echo.Context) error {
	var req quoteReq
	if ok, resp := bindAndValidate(c, &req); !ok {
		return resp
	}
	q, err := h.market.Quote(marketplace.QuoteInput{
		Principal:      req.Amount,
		DurationMonths: req.Duration,
		CreditScore:    req.CreditScore,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *LoanHandler) LenderStats(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("ref"))
	stats, err := h.market.LenderStats(c.Request().Context(), ref)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func queryFloat(c echo.Context, name string, errs *[]FieldError) *float64 {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, FieldError{Field: name, Message: "must be a number"})
		return nil
	}
	return &v
}

func queryInt(c echo.Context, name string, errs *[]FieldError) *int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, FieldError{Field: name, Message: "must be an integer"})
		return nil
	}
	return &v
}
