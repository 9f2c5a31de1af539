package memory

import (
	"context"
	"slices"
	"sync"

	"studentloan-backend/internal/domain/borrower"
)

type ProfileStore struct {
	mu     sync.RWMutex
	byID   map[string]borrower.Profile
	nextPK uint64
}

var _ borrower.ProfileStore = (*ProfileStore)(nil)

func NewProfileStore() *ProfileStore {
	return &ProfileStore{byID: map[string]borrower.Profile{}}
}

func (s *ProfileStore) Get(ctx context.Context, borrowerID string) (borrower.Profile, bool, error) {
	if err := ctx.Err(); err != nil {
		return borrower.Profile{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[borrowerID]
	return p, ok, nil
}

func (s *ProfileStore) Put(ctx context.Context, p borrower.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.byID[p.BorrowerID]; ok {
		p.ID = cur.ID
	} else {
		s.nextPK++
		p.ID = s.nextPK
	}
	s.byID[p.BorrowerID] = p
	return nil
}

func (s *ProfileStore) Create(ctx context.Context, p borrower.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(p)
}

func (s *ProfileStore) createLocked(p borrower.Profile) error {
	if _, ok := s.byID[p.BorrowerID]; ok {
		return borrower.ErrProfileExists
	}
	s.nextPK++
	p.ID = s.nextPK
	s.byID[p.BorrowerID] = p
	return nil
}

// HistoryStore is append-only.
type HistoryStore struct {
	mu     sync.RWMutex
	events map[string][]borrower.RepaymentEvent
	nextPK uint64
}

var _ borrower.HistoryStore = (*HistoryStore)(nil)

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{events: map[string][]borrower.RepaymentEvent{}}
}

func (s *HistoryStore) Append(ctx context.Context, borrowerID string, e borrower.RepaymentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(borrowerID, e)
	return nil
}

func (s *HistoryStore) appendLocked(borrowerID string, e borrower.RepaymentEvent) {
	s.nextPK++
	e.ID = s.nextPK
	e.BorrowerID = borrowerID
	s.events[borrowerID] = append(s.events[borrowerID], e)
}

func (s *HistoryStore) List(ctx context.Context, borrowerID string) ([]borrower.RepaymentEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[borrowerID]), nil
}
