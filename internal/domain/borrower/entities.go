package borrower

import (
	"time"
)

const (
	MinScore = 300
	MaxScore = 850
)

// Profile is a borrower's verified identity and academic standing.
// CreditScore is zero until the first repayment is scored.
type Profile struct {
	ID             uint64     `gorm:"primaryKey;column:id" json:"-"`
	BorrowerID     string     `gorm:"column:borrower_id;size:64;uniqueIndex:ux_borrower_profiles_borrower_id" json:"borrower_id"`
	DisplayName    string     `gorm:"column:display_name;size:128" json:"display_name"`
	Enrolled       bool       `gorm:"column:enrolled" json:"enrolled"`
	Institution    string     `gorm:"column:institution;size:255" json:"institution"`
	StudentID      string     `gorm:"column:student_id;size:64" json:"student_id,omitempty"`
	GPA            float64    `gorm:"column:gpa;type:decimal(3,2)" json:"gpa"`
	CompletionDate time.Time  `gorm:"column:completion_date;type:date" json:"completion_date"`
	CreditScore    int        `gorm:"column:credit_score;default:0" json:"credit_score"`
	Verified       bool       `gorm:"column:verified" json:"verified"`
	VerifiedAt     *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "borrower_profiles" }

// RepaymentEvent is an append-only record of one repayment outcome.
type RepaymentEvent struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	EventID    string    `gorm:"column:event_id;size:36;uniqueIndex:ux_repayment_events_event_id" json:"id"`
	BorrowerID string    `gorm:"column:borrower_id;size:64;index:idx_repayment_events_borrower" json:"borrower_id"`
	LoanID     string    `gorm:"column:loan_id;size:32" json:"loan_id"`
	OccurredAt time.Time `gorm:"column:occurred_at" json:"occurred_at"`
	OnTime     bool      `gorm:"column:on_time" json:"on_time"`
}

func (RepaymentEvent) TableName() string { return "repayment_events" }

// Credentials are what a prospective borrower presents for verification.
type Credentials struct {
	BorrowerID     string
	FullName       string
	Institution    string
	StudentID      string
	ContactNumber  string
	ClaimedGPA     float64
	CompletionDate time.Time
	Enrolled       bool
}

// Academics is the verifier's attested view of a student.
type Academics struct {
	FullName       string
	Institution    string
	StudentID      string
	Enrolled       bool
	GPA            float64
	CompletionDate time.Time
}
