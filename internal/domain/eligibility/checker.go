// Package eligibility decides whether a borrower profile qualifies for a loan
// of a given duration.
package eligibility

import (
	"time"

	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/clock"
)

const (
	MinGPA                = 1.5
	MinMonthsToCompletion = 5
)

const (
	ReasonNotEnrolled       = "not currently enrolled"
	ReasonGPATooLow         = "GPA below minimum requirement of 1.5"
	ReasonCompletionTooSoon = "completion date must be at least 5 months away"
	ReasonExceedsCompletion = "loan repayment period exceeds completion date"
)

type Result struct {
	Eligible bool
	Reason   string
}

type Checker struct{ clock clock.Clock }

func NewChecker(c clock.Clock) *Checker {
	if c == nil {
		c = clock.System{}
	}
	return &Checker{clock: c}
}

func (c *Checker) Check(p borrower.Profile, durationMonths int) Result {
	return Evaluate(p, durationMonths, c.clock.Now())
}

// Evaluate applies the rules in order; the first failure wins. Dates are
// compared as calendar days.
func Evaluate(p borrower.Profile, durationMonths int, now time.Time) Result {
	if !p.Enrolled {
		return Result{Reason: ReasonNotEnrolled}
	}
	if p.GPA < MinGPA {
		return Result{Reason: ReasonGPATooLow}
	}

	if !CompletionFarEnough(p.CompletionDate, now) {
		return Result{Reason: ReasonCompletionTooSoon}
	}
	if day(now.UTC()).AddDate(0, durationMonths, 0).After(day(p.CompletionDate)) {
		return Result{Reason: ReasonExceedsCompletion}
	}
	return Result{Eligible: true}
}

// CompletionFarEnough reports whether completion is at least
// MinMonthsToCompletion calendar months after now's UTC day.
func CompletionFarEnough(completion, now time.Time) bool {
	return !day(completion).Before(day(now.UTC()).AddDate(0, MinMonthsToCompletion, 0))
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
