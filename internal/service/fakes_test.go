package service

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/social-media-api/internal/model"
	"github.com/iliyamo/social-media-api/internal/repository"
)

var errDown = &repository.StorageError{Op: "test", Query: "SELECT 1", Err: errors.New("db down")}

// fakeAccountStore is an in-memory AccountStore. Setting err makes every
// call fail with it.
type fakeAccountStore struct {
	mu       sync.Mutex
	rows     map[int64]model.Account
	nextID   int64
	err      error
	inserted int
}

func newFakeAccountStore(seed ...model.Account) *fakeAccountStore {
	f := &fakeAccountStore{rows: map[int64]model.Account{}}
	for _, a := range seed {
		f.rows[a.ID] = a
		if a.ID > f.nextID {
			f.nextID = a.ID
		}
	}
	return f
}

func (f *fakeAccountStore) GetByID(_ context.Context, id int64) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &a, nil
}

func (f *fakeAccountStore) GetAll(context.Context) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Account{}
	for _, a := range f.rows {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAccountStore) FindByUsername(_ context.Context, username string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.rows {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (f *fakeAccountStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := f.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeAccountStore) ValidateCredentials(ctx context.Context, username, password string) (*model.Account, error) {
	a, err := f.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if a.Password != password {
		return nil, repository.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) Insert(_ context.Context, a model.Account) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	a.ID = f.nextID
	f.rows[a.ID] = a
	f.inserted++
	return &a, nil
}

func (f *fakeAccountStore) Update(_ context.Context, a model.Account) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.rows[a.ID]; !ok {
		return false, nil
	}
	f.rows[a.ID] = a
	return true, nil
}

func (f *fakeAccountStore) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

type fakeMessageStore struct {
	mu     sync.Mutex
	rows   map[int64]model.Message
	nextID int64
	err    error
	// updateMiss makes Update report no matched row.
	updateMiss bool
}

func newFakeMessageStore(seed ...model.Message) *fakeMessageStore {
	f := &fakeMessageStore{rows: map[int64]model.Message{}}
	for _, m := range seed {
		f.rows[m.ID] = m
		if m.ID > f.nextID {
			f.nextID = m.ID
		}
	}
	return f
}

func (f *fakeMessageStore) GetByID(_ context.Context, id int64) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	return &m, nil
}

func (f *fakeMessageStore) GetAll(context.Context) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Message{}
	for _, m := range f.rows {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMessageStore) GetByPoster(_ context.Context, accountID int64) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Message{}
	for _, m := range f.rows {
		if m.PostedBy == accountID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) Insert(_ context.Context, m model.Message) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	m.ID = f.nextID
	f.rows[m.ID] = m
	return &m, nil
}

func (f *fakeMessageStore) Update(_ context.Context, m model.Message) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.rows[m.ID]; !ok || f.updateMiss {
		return false, nil
	}
	f.rows[m.ID] = m
	return true, nil
}

func (f *fakeMessageStore) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}
