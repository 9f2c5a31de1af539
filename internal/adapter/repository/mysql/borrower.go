package mysql

import (
	"context"
	"errors"

	"studentloan-backend/internal/domain/borrower"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct{ db *gorm.DB }

var _ borrower.ProfileStore = (*ProfileRepository)(nil)

func NewProfileRepository(db *gorm.DB) *ProfileRepository { return &ProfileRepository{db: db} }

func (r *ProfileRepository) Get(ctx context.Context, borrowerID string) (borrower.Profile, bool, error) {
	var out borrower.Profile
	err := r.db.WithContext(ctx).Where("borrower_id = ?", borrowerID).First(&out).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return borrower.Profile{}, false, nil
	case err != nil:
		return borrower.Profile{}, false, err
	}
	return out, true, nil
}

// Put inserts the profile or overwrites the row with the same borrower_id.
func (r *ProfileRepository) Put(ctx context.Context, p borrower.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur borrower.Profile
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "created_at").
			Where("borrower_id = ?", p.BorrowerID).
			First(&cur).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p.ID = 0
			return tx.Create(&p).Error
		case err != nil:
			return err
		}
		p.ID = cur.ID
		if p.CreatedAt.IsZero() {
			p.CreatedAt = cur.CreatedAt
		}
		return tx.Save(&p).Error
	})
}

// Create relies on the unique borrower_id index; the db must be opened with
// TranslateError so duplicates surface as gorm.ErrDuplicatedKey.
func (r *ProfileRepository) Create(ctx context.Context, p borrower.Profile) error {
	p.ID = 0
	err := r.db.WithContext(ctx).Create(&p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return borrower.ErrProfileExists
	}
	return err
}

// getForUpdate locks the profile row until the surrounding tx ends.
func (r *ProfileRepository) getForUpdate(ctx context.Context, borrowerID string) (borrower.Profile, bool, error) {
	var out borrower.Profile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("borrower_id = ?", borrowerID).
		First(&out).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return borrower.Profile{}, false, nil
	case err != nil:
		return borrower.Profile{}, false, err
	}
	return out, true, nil
}

type HistoryRepository struct{ db *gorm.DB }

var _ borrower.HistoryStore = (*HistoryRepository)(nil)

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Append(ctx context.Context, borrowerID string, e borrower.RepaymentEvent) error {
	e.ID = 0
	e.BorrowerID = borrowerID
	return r.db.WithContext(ctx).Create(&e).Error
}

func (r *HistoryRepository) List(ctx context.Context, borrowerID string) ([]borrower.RepaymentEvent, error) {
	var out []borrower.RepaymentEvent
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
