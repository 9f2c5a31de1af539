package uowmock

import (
	"context"
	"errors"

	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn         func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinBorrowerTxFn func(ctx context.Context, borrowerID string, fn func(r uow.Repos, p borrower.Profile) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinBorrowerTx(fn func(context.Context, string, func(uow.Repos, borrower.Profile) error) error) *UoW {
	m.WithinBorrowerTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs every unit of work directly against repos, handing p to
// borrower-scoped ones.
func Passthrough(repos uow.Repos, p borrower.Profile) *UoW {
	return New().
		WithWithinTx(func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) }).
		WithWithinBorrowerTx(func(_ context.Context, _ string, fn func(uow.Repos, borrower.Profile) error) error {
			return fn(repos, p)
		})
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinBorrowerTx(ctx context.Context, borrowerID string, fn func(r uow.Repos, p borrower.Profile) error) error {
	if m.WithinBorrowerTxFn != nil {
		return m.WithinBorrowerTxFn(ctx, borrowerID, fn)
	}
	return errUnimplemented
}
