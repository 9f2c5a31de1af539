package mysql

import (
	"context"
	"errors"

	loanDomain "studentloan-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

var _ loanDomain.Store = (*LoanRepository)(nil)

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Get(ctx context.Context, requestID string) (loanDomain.Request, bool, error) {
	var out loanDomain.Request
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return loanDomain.Request{}, false, nil
	case err != nil:
		return loanDomain.Request{}, false, err
	}
	return out, true, nil
}

// Put inserts the request or overwrites the row with the same request_id.
func (r *LoanRepository) Put(ctx context.Context, l loanDomain.Request) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur loanDomain.Request
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "created_at").
			Where("request_id = ?", l.RequestID).
			First(&cur).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			l.ID = 0
			return tx.Create(&l).Error
		case err != nil:
			return err
		}
		l.ID = cur.ID
		if l.CreatedAt.IsZero() {
			l.CreatedAt = cur.CreatedAt
		}
		return tx.Save(&l).Error
	})
}

func (r *LoanRepository) List(ctx context.Context) ([]loanDomain.Request, error) {
	var out []loanDomain.Request
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// CompareAndSwap is a conditional UPDATE; the status predicate makes the
// database serialize competing writers on the row.
func (r *LoanRepository) CompareAndSwap(ctx context.Context, requestID string, expected loanDomain.Status, updated loanDomain.Request) (bool, error) {
	updated.RequestID = requestID
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Request{}).
		Where("request_id = ? AND status = ?", requestID, expected).
		Select("*").
		Omit("id", "request_id", "created_at").
		Updates(&updated)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
