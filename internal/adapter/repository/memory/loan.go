package memory

import (
	"context"
	"sync"

	loanDomain "studentloan-backend/internal/domain/loan"
)

// LoanStore keeps requests in insertion order.
type LoanStore struct {
	mu     sync.RWMutex
	byID   map[string]loanDomain.Request
	order  []string
	nextPK uint64
}

var _ loanDomain.Store = (*LoanStore)(nil)

func NewLoanStore() *LoanStore {
	return &LoanStore{byID: map[string]loanDomain.Request{}}
}

func (s *LoanStore) Get(ctx context.Context, requestID string) (loanDomain.Request, bool, error) {
	if err := ctx.Err(); err != nil {
		return loanDomain.Request{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[requestID]
	return r, ok, nil
}

func (s *LoanStore) Put(ctx context.Context, r loanDomain.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(r)
	return nil
}

func (s *LoanStore) putLocked(r loanDomain.Request) {
	if cur, ok := s.byID[r.RequestID]; ok {
		r.ID = cur.ID
	} else {
		s.nextPK++
		r.ID = s.nextPK
		s.order = append(s.order, r.RequestID)
	}
	s.byID[r.RequestID] = r
}

func (s *LoanStore) List(ctx context.Context) ([]loanDomain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loanDomain.Request, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *LoanStore) CompareAndSwap(ctx context.Context, requestID string, expected loanDomain.Status, updated loanDomain.Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[requestID]
	if !ok || cur.Status != expected {
		return false, nil
	}
	updated.RequestID = requestID
	s.putLocked(updated)
	return true, nil
}
