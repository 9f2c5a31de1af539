package mysql

import (
	"context"

	"studentloan-backend/internal/domain/apperr"
	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

var _ uow.UnitOfWork = (*GormUoW)(nil)

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:    &LoanRepository{db: tx},
		Profiles: &ProfileRepository{db: tx},
		History:  &HistoryRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinBorrowerTx(ctx context.Context, borrowerID string, fn func(r uow.Repos, p borrower.Profile) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the profile row up-front to prevent races
		p, ok, err := (&ProfileRepository{db: tx}).getForUpdate(ctx, borrowerID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("borrower", borrowerID)
		}
		return fn(repos(tx), p)
	})
}
