package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"studentloan-backend/internal/infrastructure/logger"
	"studentloan-backend/internal/usecase/ledger"
	"studentloan-backend/internal/usecase/marketplace"
	"studentloan-backend/internal/usecase/registration"
)

type BorrowerHandler struct {
	reg    *registration.Usecase
	ledger *ledger.Usecase
	market *marketplace.Usecase
	log    *zap.Logger
}

func NewBorrowerHandler(reg *registration.Usecase, ledger *ledger.Usecase, market *marketplace.Usecase, log *zap.Logger) *BorrowerHandler {
	return &BorrowerHandler{reg: reg, ledger: ledger, market: market, log: logger.OrNop(log)}
}

type registerReq struct {
	BorrowerID     string  `json:"borrower_id"     validate:"required,max=64"`
	FullName       string  `json:"full_name"       validate:"required,max=128"`
	Institution    string  `json:"institution"     validate:"required,max=255"`
	StudentID      string  `json:"student_id"      validate:"required,max=64"`
	ContactNumber  string  `json:"contact_number"  validate:"max=32"`
	GPA            float64 `json:"gpa"             validate:"gte=0,lte=4,dec2"`
	CompletionDate string  `json:"completion_date" validate:"required,datetime=2006-01-02"`
	Enrolled       *bool   `json:"enrolled"        validate:"required"`
}

func (h *BorrowerHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, resp := bindAndValidate(c, &req); !ok {
		return resp
	}
	completion, _ := time.Parse(time.DateOnly, req.CompletionDate)
	p, err := h.reg.Register(c.Request().Context(), registration.Input{
		BorrowerID:     req.BorrowerID,
		FullName:       req.FullName,
		Institution:    req.Institution,
		StudentID:      req.StudentID,
		ContactNumber:  req.ContactNumber,
		GPA:            req.GPA,
		CompletionDate: completion,
		Enrolled:       *req.Enrolled,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *BorrowerHandler) GetBorrower(c echo.Context) error {
	p, err := h.ledger.Profile(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *BorrowerHandler) Stats(c echo.Context) error {
	s, err := h.market.BorrowerStats(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *BorrowerHandler) History(c echo.Context) error {
	ref := c.Param("ref")
	events, err := h.ledger.History(c.Request().Context(), ref)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"borrower_id": ref, "events": events})
}

type repaymentReq struct {
	Ref    string `param:"ref"`
	LoanID string `json:"loan_id" validate:"required,max=32"`
	OnTime *bool  `json:"on_time" validate:"required"`
}

func (h *BorrowerHandler) RecordRepayment(c echo.Context) error {
	var req repaymentReq
	if ok, resp := bindAndValidate(c, &req); !ok {
		return resp
	}
	score, err := h.ledger.RecordRepaymentEvent(c.Request().Context(), req.Ref, req.LoanID, *req.OnTime)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"borrower_id": req.Ref, "credit_score": score})
}
