package loan

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFunded    Status = "funded"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusFunded, StatusRepaid, StatusDefaulted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool { return s == StatusRepaid || s == StatusDefaulted }

type Purpose string

const (
	PurposeTuition        Purpose = "tuition"
	PurposeBooks          Purpose = "books"
	PurposeHousing        Purpose = "housing"
	PurposeTechnology     Purpose = "technology"
	PurposeLiving         Purpose = "living"
	PurposeTransportation Purpose = "transportation"
	PurposeOther          Purpose = "other"
)

var purposeLabels = map[Purpose]string{
	PurposeTuition:        "Tuition Fees",
	PurposeBooks:          "Books & Supplies",
	PurposeHousing:        "Student Housing",
	PurposeTechnology:     "Technology & Equipment",
	PurposeLiving:         "Living Expenses",
	PurposeTransportation: "Transportation",
	PurposeOther:          "Other Educational Expenses",
}

func (p Purpose) Valid() bool {
	_, ok := purposeLabels[p]
	return ok
}

func (p Purpose) Label() string { return purposeLabels[p] }

// Durations lists the loan terms, in months, a borrower may request.
var Durations = []int{3, 6, 12, 18, 24}

func ValidDuration(months int) bool { return slices.Contains(Durations, months) }

// DefaultCeiling is the largest principal a single request may ask for.
const DefaultCeiling = 10_000.0

// Request is a borrower's loan request. Pricing fields are derived once at
// submission and never recomputed.
type Request struct {
	ID                 uint64     `gorm:"primaryKey;column:id" json:"-"`
	RequestID          string     `gorm:"column:request_id;size:32;uniqueIndex:ux_loan_requests_request_id" json:"id"`
	BorrowerID         string     `gorm:"column:borrower_id;size:64;index:idx_loan_requests_borrower" json:"borrower_id"`
	BorrowerName       string     `gorm:"column:borrower_name;size:128" json:"borrower_name"`
	Principal          float64    `gorm:"column:principal;type:decimal(18,2)" json:"amount"`
	DurationMonths     int        `gorm:"column:duration_months" json:"duration"`
	Purpose            Purpose    `gorm:"column:purpose;size:32" json:"purpose"`
	Description        string     `gorm:"column:description;type:text" json:"description,omitempty"`
	InterestRate       float64    `gorm:"column:interest_rate;type:decimal(6,2)" json:"interest_rate"`
	MonthlyPayment     float64    `gorm:"column:monthly_payment;type:decimal(18,2)" json:"monthly_payment"`
	TotalRepayment     float64    `gorm:"column:total_repayment;type:decimal(18,2)" json:"total_repayment"`
	CreditScore        int        `gorm:"column:credit_score" json:"credit_score"`
	ExpectedCompletion *time.Time `gorm:"column:expected_completion;type:date" json:"expected_completion,omitempty"`
	Status             Status     `gorm:"column:status;type:enum('pending','funded','repaid','defaulted');default:'pending';index:idx_loan_requests_status" json:"status"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"-"`
	FundedBy           *string    `gorm:"column:funded_by;size:64;index:idx_loan_requests_funded_by" json:"funded_by,omitempty"`
	FundedAmount       *float64   `gorm:"column:funded_amount;type:decimal(18,2)" json:"funded_amount,omitempty"`
	FundedAt           *time.Time `gorm:"column:funded_at" json:"funded_at,omitempty"`
}

func (Request) TableName() string { return "loan_requests" }

// FilterCriteria is a lender-side query over the pool. Nil bounds are open.
type FilterCriteria struct {
	MinAmount      *float64
	MaxAmount      *float64
	MinDuration    *int
	MaxDuration    *int
	MinRate        *float64
	MaxRate        *float64
	MinCreditScore *int
	Status         Status // empty matches every status
	Term           string // case-insensitive substring over amount, purpose, duration, rate
}

func (c FilterCriteria) Matches(r Request) bool {
	if c.Status != "" && r.Status != c.Status {
		return false
	}
	if c.MinAmount != nil && r.Principal < *c.MinAmount {
		return false
	}
	if c.MaxAmount != nil && r.Principal > *c.MaxAmount {
		return false
	}
	if c.MinDuration != nil && r.DurationMonths < *c.MinDuration {
		return false
	}
	if c.MaxDuration != nil && r.DurationMonths > *c.MaxDuration {
		return false
	}
	if c.MinRate != nil && r.InterestRate < *c.MinRate {
		return false
	}
	if c.MaxRate != nil && r.InterestRate > *c.MaxRate {
		return false
	}
	if c.MinCreditScore != nil && r.CreditScore < *c.MinCreditScore {
		return false
	}
	return c.Term == "" || matchesTerm(r, c.Term)
}

func matchesTerm(r Request, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{
		FormatNumber(r.Principal),
		string(r.Purpose),
		strconv.Itoa(r.DurationMonths),
		FormatNumber(r.InterestRate),
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// FormatNumber renders v in its shortest form: 2000 -> "2000", 9.5 -> "9.5".
func FormatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
