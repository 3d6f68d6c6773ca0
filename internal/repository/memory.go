package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/model"
)

// MemoryStore keeps accounts and messages in process memory. It mirrors the
// MySQL schema closely enough for local runs and handler tests: ids are
// assigned from 1, usernames are unique and posted_by must reference an
// existing account.
type MemoryStore struct {
	mu        sync.RWMutex
	log       logging.Logger
	accounts  map[int64]model.Account
	messages  map[int64]model.Message
	accountID int64
	messageID int64
}

// NewMemoryStore returns an empty store. A nil logger disables logging.
func NewMemoryStore(log logging.Logger) *MemoryStore {
	if log == nil {
		log = logging.Nop()
	}
	return &MemoryStore{
		log:      log.With("component", "memory_store"),
		accounts: map[int64]model.Account{},
		messages: map[int64]model.Message{},
	}
}

// Accounts returns an account repository view over the store.
func (s *MemoryStore) Accounts() *MemoryAccountRepo { return &MemoryAccountRepo{s: s} }

// Messages returns a message repository view over the store.
func (s *MemoryStore) Messages() *MemoryMessageRepo { return &MemoryMessageRepo{s: s} }

type MemoryAccountRepo struct{ s *MemoryStore }

func (r *MemoryAccountRepo) GetByID(_ context.Context, id int64) (*model.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (r *MemoryAccountRepo) GetAll(context.Context) ([]model.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryAccountRepo) FindByUsername(_ context.Context, username string) (*model.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a, ok := r.s.byUsername(username); ok {
		return &a, nil
	}
	return nil, ErrAccountNotFound
}

func (r *MemoryAccountRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.byUsername(username)
	return ok, nil
}

func (r *MemoryAccountRepo) ValidateCredentials(ctx context.Context, username, password string) (*model.Account, error) {
	a, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if a.Password != password {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (r *MemoryAccountRepo) Insert(ctx context.Context, a model.Account) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.byUsername(a.Username); ok {
		return nil, r.s.duplicate(ctx, "insert account", "INSERT INTO account (username, password) VALUES (?, ?)")
	}
	r.s.accountID++
	a.ID = r.s.accountID
	r.s.accounts[a.ID] = a
	return &a, nil
}

func (r *MemoryAccountRepo) Update(ctx context.Context, a model.Account) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.ID]; !ok {
		return false, nil
	}
	if other, ok := r.s.byUsername(a.Username); ok && other.ID != a.ID {
		return false, r.s.duplicate(ctx, "update account", "UPDATE account SET username = ?, password = ? WHERE account_id = ?")
	}
	r.s.accounts[a.ID] = a
	return true, nil
}

func (r *MemoryAccountRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[id]; !ok {
		return false, nil
	}
	delete(r.s.accounts, id)
	// ON DELETE CASCADE
	for mid, m := range r.s.messages {
		if m.PostedBy == id {
			delete(r.s.messages, mid)
		}
	}
	return true, nil
}

type MemoryMessageRepo struct{ s *MemoryStore }

func (r *MemoryMessageRepo) GetByID(_ context.Context, id int64) (*model.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	return &m, nil
}

func (r *MemoryMessageRepo) GetAll(context.Context) ([]model.Message, error) {
	return r.filter(func(model.Message) bool { return true }), nil
}

func (r *MemoryMessageRepo) GetByPoster(_ context.Context, accountID int64) ([]model.Message, error) {
	return r.filter(func(m model.Message) bool { return m.PostedBy == accountID }), nil
}

func (r *MemoryMessageRepo) Insert(ctx context.Context, m model.Message) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[m.PostedBy]; !ok {
		return nil, fail(ctx, r.s.log, "insert message",
			"INSERT INTO message (posted_by, message_text, time_posted_epoch) VALUES (?, ?, ?)",
			&mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"})
	}
	r.s.messageID++
	m.ID = r.s.messageID
	r.s.messages[m.ID] = m
	return &m, nil
}

func (r *MemoryMessageRepo) Update(_ context.Context, m model.Message) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[m.ID]; !ok {
		return false, nil
	}
	r.s.messages[m.ID] = m
	return true, nil
}

func (r *MemoryMessageRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[id]; !ok {
		return false, nil
	}
	delete(r.s.messages, id)
	return true, nil
}

func (r *MemoryMessageRepo) filter(keep func(model.Message) bool) []model.Message {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.Message{}
	for _, m := range r.s.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// byUsername must be called with mu held.
func (s *MemoryStore) byUsername(username string) (model.Account, bool) {
	for _, a := range s.accounts {
		if a.Username == username {
			return a, true
		}
	}
	return model.Account{}, false
}

// duplicate reports a unique index violation on account.username the way
// the MySQL driver does.
func (s *MemoryStore) duplicate(ctx context.Context, op, query string) error {
	return fail(ctx, s.log, op, query, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_account_username'"})
}
