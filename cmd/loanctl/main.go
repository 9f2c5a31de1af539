// Command loanctl evaluates pricing, eligibility and scoring rules offline.
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/eligibility"
	"studentloan-backend/internal/domain/pricing"
	"studentloan-backend/internal/domain/scoring"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "loanctl",
		Short:        "Inspect student loan pricing, eligibility and scoring",
		SilenceUsage: true,
	}
	root.AddCommand(newQuoteCmd(), newScheduleCmd(), newEligibilityCmd(), newScoreCmd())
	return root
}

func newQuoteCmd() *cobra.Command {
	var (
		amount   float64
		duration int
		score    int
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a loan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if score == 0 {
				score = pricing.DefaultCreditScore
			}
			q, err := pricing.Calculate(amount, duration, score)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "credit score:    %d (%s risk)\n", score, pricing.RiskBand(score))
			fmt.Fprintf(out, "interest rate:   %.2f%%\n", q.AnnualRatePercent)
			fmt.Fprintf(out, "monthly payment: %.2f\n", q.MonthlyPayment)
			fmt.Fprintf(out, "total repayment: %.2f\n", q.TotalRepayment)
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "principal")
	cmd.Flags().IntVar(&duration, "duration", 12, "term in months")
	cmd.Flags().IntVar(&score, "score", 0, "credit score (0 prices as unscored)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newScheduleCmd() *cobra.Command {
	var (
		amount   float64
		duration int
		score    int
		start    string
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the installment schedule for a loan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if score == 0 {
				score = pricing.DefaultCreditScore
			}
			from := time.Now().UTC()
			if start != "" {
				t, err := time.Parse(time.DateOnly, start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				from = t
			}
			rows, err := pricing.Schedule(amount, pricing.AnnualRate(score, duration), duration, from)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "#\tdue\tpayment\tinterest\tprincipal\tremaining\t")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n", r.Number, r.DueDate.Format(time.DateOnly),
					r.Payment.StringFixed(2), r.Interest.StringFixed(2), r.Principal.StringFixed(2), r.Remaining.StringFixed(2))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "principal")
	cmd.Flags().IntVar(&duration, "duration", 12, "term in months")
	cmd.Flags().IntVar(&score, "score", 0, "credit score (0 prices as unscored)")
	cmd.Flags().StringVar(&start, "start", "", "first month start date, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newEligibilityCmd() *cobra.Command {
	var (
		enrolled   bool
		gpa        float64
		completion string
		duration   int
		today      string
	)
	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Check whether a student may borrow for a term",
		RunE: func(cmd *cobra.Command, _ []string) error {
			done, err := time.Parse(time.DateOnly, completion)
			if err != nil {
				return fmt.Errorf("--completion: %w", err)
			}
			now := time.Now().UTC()
			if today != "" {
				if now, err = time.Parse(time.DateOnly, today); err != nil {
					return fmt.Errorf("--today: %w", err)
				}
			}
			res := eligibility.Evaluate(borrower.Profile{Enrolled: enrolled, GPA: gpa, CompletionDate: done}, duration, now)
			if res.Eligible {
				fmt.Fprintln(cmd.OutOrStdout(), "eligible")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "not eligible: %s\n", res.Reason)
			return nil
		},
	}
	cmd.Flags().BoolVar(&enrolled, "enrolled", true, "currently enrolled")
	cmd.Flags().Float64Var(&gpa, "gpa", 0, "grade point average")
	cmd.Flags().StringVar(&completion, "completion", "", "expected completion date, YYYY-MM-DD")
	cmd.Flags().IntVar(&duration, "duration", 12, "term in months")
	cmd.Flags().StringVar(&today, "today", "", "evaluate as of this date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("completion")
	return cmd
}

func newScoreCmd() *cobra.Command {
	var (
		current int
		history string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Replay a repayment history, e.g. --history 1,1,0,1",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var events []borrower.RepaymentEvent
			for _, f := range strings.Split(history, ",") {
				switch strings.TrimSpace(f) {
				case "":
				case "1", "y", "on-time":
					events = append(events, borrower.RepaymentEvent{OnTime: true})
				case "0", "n", "late":
					events = append(events, borrower.RepaymentEvent{OnTime: false})
				default:
					return fmt.Errorf("--history: unrecognised entry %q", f)
				}
			}
			score := current
			if score == 0 {
				score = pricing.DefaultCreditScore
			}
			// each event rescored against the history so far, as the ledger does
			for i := range events {
				score = scoring.NextScore(score, events[:i+1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), score)
			return nil
		},
	}
	cmd.Flags().IntVar(&current, "current", 0, "starting score (0 starts at the default)")
	cmd.Flags().StringVar(&history, "history", "", "comma-separated outcomes, oldest first")
	return cmd
}
