package memory

import (
	"context"

	"studentloan-backend/internal/domain/apperr"
	"studentloan-backend/internal/domain/borrower"
	loanDomain "studentloan-backend/internal/domain/loan"
	"studentloan-backend/internal/domain/uow"
)

// UoW stages writes made inside fn and applies them together once fn
// returns nil. Borrower units of work are serialized per borrower.
type UoW struct {
	loans     *LoanStore
	profiles  *ProfileStore
	history   *HistoryStore
	borrowers *keyedMutex
}

var _ uow.UnitOfWork = (*UoW)(nil)

func NewUoW(loans *LoanStore, profiles *ProfileStore, history *HistoryStore) *UoW {
	return &UoW{loans: loans, profiles: profiles, history: history, borrowers: newKeyedMutex()}
}

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	tx := u.begin()
	if err := fn(tx.repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

func (u *UoW) WithinBorrowerTx(ctx context.Context, borrowerID string, fn func(r uow.Repos, p borrower.Profile) error) error {
	unlock := u.borrowers.Lock(borrowerID)
	defer unlock()

	p, ok, err := u.profiles.Get(ctx, borrowerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("borrower", borrowerID)
	}
	return u.WithinTx(ctx, func(r uow.Repos) error { return fn(r, p) })
}

type loanOp struct {
	cas      bool
	expected loanDomain.Status
	r        loanDomain.Request
}

type txn struct {
	u        *UoW
	loanOps  []loanOp
	profiles map[string]borrower.Profile
	creates  map[string]bool
	appends  map[string][]borrower.RepaymentEvent
	order    []string
}

func (u *UoW) begin() *txn {
	return &txn{
		u:        u,
		profiles: map[string]borrower.Profile{},
		creates:  map[string]bool{},
		appends:  map[string][]borrower.RepaymentEvent{},
	}
}

func (t *txn) repos() uow.Repos {
	return uow.Repos{
		Loans:    txLoans{t},
		Profiles: txProfiles{t},
		History:  txHistory{t},
	}
}

// commit validates staged compare-and-swaps against the live stores and then
// applies every write under the stores' locks.
func (t *txn) commit() error {
	l, h, p := t.u.loans, t.u.history, t.u.profiles
	l.mu.Lock()
	defer l.mu.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	status := map[string]loanDomain.Status{}
	for _, op := range t.loanOps {
		id := op.r.RequestID
		cur, seen := status[id]
		if !seen {
			if live, ok := l.byID[id]; ok {
				cur, seen = live.Status, true
			}
		}
		if op.cas && (!seen || cur != op.expected) {
			return &apperr.InvalidStateError{Entity: "loan request", ID: id, State: string(cur), Op: "update"}
		}
		status[id] = op.r.Status
	}
	for id := range t.creates {
		if _, ok := p.byID[id]; ok {
			return borrower.ErrProfileExists
		}
	}

	for _, op := range t.loanOps {
		l.putLocked(op.r)
	}
	for _, id := range t.order {
		for _, e := range t.appends[id] {
			h.appendLocked(id, e)
		}
	}
	for id, prof := range t.profiles {
		if t.creates[id] {
			if err := p.createLocked(prof); err != nil {
				return err
			}
			continue
		}
		if cur, ok := p.byID[id]; ok {
			prof.ID = cur.ID
		} else {
			p.nextPK++
			prof.ID = p.nextPK
		}
		p.byID[id] = prof
	}
	return nil
}

type txLoans struct{ t *txn }

func (x txLoans) Get(ctx context.Context, requestID string) (loanDomain.Request, bool, error) {
	for i := len(x.t.loanOps) - 1; i >= 0; i-- {
		if op := x.t.loanOps[i]; op.r.RequestID == requestID {
			return op.r, true, nil
		}
	}
	return x.t.u.loans.Get(ctx, requestID)
}

func (x txLoans) Put(ctx context.Context, r loanDomain.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.t.loanOps = append(x.t.loanOps, loanOp{r: r})
	return nil
}

func (x txLoans) List(ctx context.Context) ([]loanDomain.Request, error) {
	base, err := x.t.u.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(base))
	for i, r := range base {
		idx[r.RequestID] = i
	}
	for _, op := range x.t.loanOps {
		if i, ok := idx[op.r.RequestID]; ok {
			base[i] = op.r
			continue
		}
		idx[op.r.RequestID] = len(base)
		base = append(base, op.r)
	}
	return base, nil
}

func (x txLoans) CompareAndSwap(ctx context.Context, requestID string, expected loanDomain.Status, updated loanDomain.Request) (bool, error) {
	cur, ok, err := x.Get(ctx, requestID)
	if err != nil || !ok || cur.Status != expected {
		return false, err
	}
	updated.RequestID = requestID
	x.t.loanOps = append(x.t.loanOps, loanOp{cas: true, expected: expected, r: updated})
	return true, nil
}

type txProfiles struct{ t *txn }

func (x txProfiles) Get(ctx context.Context, borrowerID string) (borrower.Profile, bool, error) {
	if p, ok := x.t.profiles[borrowerID]; ok {
		return p, true, nil
	}
	return x.t.u.profiles.Get(ctx, borrowerID)
}

func (x txProfiles) Put(ctx context.Context, p borrower.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.t.profiles[p.BorrowerID] = p
	return nil
}

// Create is checked against the live store at commit.
func (x txProfiles) Create(ctx context.Context, p borrower.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := x.t.profiles[p.BorrowerID]; ok {
		return borrower.ErrProfileExists
	}
	x.t.profiles[p.BorrowerID] = p
	x.t.creates[p.BorrowerID] = true
	return nil
}

type txHistory struct{ t *txn }

func (x txHistory) Append(ctx context.Context, borrowerID string, e borrower.RepaymentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := x.t.appends[borrowerID]; !ok {
		x.t.order = append(x.t.order, borrowerID)
	}
	e.BorrowerID = borrowerID
	x.t.appends[borrowerID] = append(x.t.appends[borrowerID], e)
	return nil
}

func (x txHistory) List(ctx context.Context, borrowerID string) ([]borrower.RepaymentEvent, error) {
	base, err := x.t.u.history.List(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return append(base, x.t.appends[borrowerID]...), nil
}
