package uow

import (
	"context"

	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/loan"
)

// Repos are store handles bound to one unit of work.
type Repos struct {
	Loans    loan.Store
	Profiles borrower.ProfileStore
	History  borrower.HistoryStore
}

type UnitOfWork interface {
	// plain tx: every write made through r commits together or not at all
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the borrower first, then pass the profile in. Units of work on the
	// same borrower are serialized. Returns an apperr.NotFoundError if the
	// borrower does not exist.
	WithinBorrowerTx(ctx context.Context, borrowerID string, fn func(r Repos, p borrower.Profile) error) error
}
