package loanmock

import (
	"context"

	domain "studentloan-backend/internal/domain/loan"
)

var _ domain.Store = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Store.
// Unset funcs behave like an empty store.
type Repo struct {
	GetFn            func(ctx context.Context, requestID string) (domain.Request, bool, error)
	PutFn            func(ctx context.Context, r domain.Request) error
	ListFn           func(ctx context.Context) ([]domain.Request, error)
	CompareAndSwapFn func(ctx context.Context, requestID string, expected domain.Status, updated domain.Request) (bool, error)
}

func (m *Repo) Get(ctx context.Context, requestID string) (domain.Request, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, requestID)
	}
	return domain.Request{}, false, nil
}

func (m *Repo) Put(ctx context.Context, r domain.Request) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, r)
	}
	return nil
}

func (m *Repo) List(ctx context.Context) ([]domain.Request, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) CompareAndSwap(ctx context.Context, requestID string, expected domain.Status, updated domain.Request) (bool, error) {
	if m.CompareAndSwapFn != nil {
		return m.CompareAndSwapFn(ctx, requestID, expected, updated)
	}
	return false, nil
}
