package handler

import (
	"context"
	"sync"

	"github.com/roadprice/valuation/internal/model"
	"github.com/roadprice/valuation/internal/repository"
)

// In-memory stores implementing the handler store interfaces with the
// same contracts as the MySQL repositories: (nil, nil) for missing
// rows, repository sentinels on conflicting writes.

type fakeAccountStore struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{byID: make(map[uint64]*model.Account)}
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id uint64) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountStore) Create(_ context.Context, email, passwordRecord string, role model.Role) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	f.byID[f.nextID] = &model.Account{ID: f.nextID, Email: email, Password: passwordRecord, Role: role}
	return f.nextID, nil
}

func (f *fakeAccountStore) Save(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		return repository.ErrAccountNotFound
	}
	for id, other := range f.byID {
		if id != a.ID && other.Email == a.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAccountStore) Delete(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		return repository.ErrAccountNotFound
	}
	delete(f.byID, a.ID)
	return nil
}

type fakeReportStore struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Report
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{byID: make(map[uint64]*model.Report)}
}

func (f *fakeReportStore) Create(_ context.Context, r *model.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	r.Approved = false
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}

func (f *fakeReportStore) FindByID(_ context.Context, id uint64) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReportStore) FindByOwner(_ context.Context, ownerID uint64) ([]model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Report
	for id := uint64(1); id <= f.nextID; id++ {
		if r, ok := f.byID[id]; ok && r.OwnerID == ownerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReportStore) FindApproved(_ context.Context, mk, mdl string) ([]model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Report
	for id := uint64(1); id <= f.nextID; id++ {
		if r, ok := f.byID[id]; ok && r.Approved && r.Make == mk && r.Model == mdl {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReportStore) Save(_ context.Context, r *model.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[r.ID]; !ok {
		return repository.ErrReportNotFound
	}
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}
