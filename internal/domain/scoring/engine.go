// Package scoring moves a borrower's credit score from their repayment record.
package scoring

import (
	"studentloan-backend/internal/domain/borrower"
)

const recentWindow = 3

// NextScore returns the score after applying the full history, oldest first.
// It is pure: replaying the same inputs yields the same score.
func NextScore(currentScore int, history []borrower.RepaymentEvent) int {
	if len(history) == 0 {
		return currentScore
	}
	onTime := 0
	for _, e := range history {
		if e.OnTime {
			onTime++
		}
	}
	delta := BaseAdjustment(onTime, len(history)) + RecencyAdjustment(history)
	return Clamp(currentScore + delta)
}

// BaseAdjustment rewards the overall on-time ratio.
func BaseAdjustment(onTime, total int) int {
	switch {
	case total == 0:
		return 0
	case onTime == total && total >= recentWindow:
		return 30
	case onTime*100 >= 85*total:
		return 15
	case onTime*100 >= 70*total:
		return 0
	default:
		return -25
	}
}

// RecencyAdjustment weighs the last three events, when there are three.
func RecencyAdjustment(history []borrower.RepaymentEvent) int {
	if len(history) < recentWindow {
		return 0
	}
	onTime := 0
	for _, e := range history[len(history)-recentWindow:] {
		if e.OnTime {
			onTime++
		}
	}
	switch onTime {
	case recentWindow:
		return 10
	case 0:
		return -20
	default:
		return 0
	}
}

func Clamp(score int) int {
	return max(borrower.MinScore, min(borrower.MaxScore, score))
}
