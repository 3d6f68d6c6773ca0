package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/model"
)

const accountColumns = "account_id, username, password"

// AccountRepo encapsulates all queries against the `account` table. Each
// method runs a single statement; database/sql takes a pooled connection
// for the call and returns it when the statement (or its rows) is closed.
type AccountRepo struct {
	db  DBTX
	log logging.Logger
}

// NewAccountRepo constructs an AccountRepo. A nil logger disables logging.
func NewAccountRepo(db DBTX, log logging.Logger) *AccountRepo {
	if log == nil {
		log = logging.Nop()
	}
	return &AccountRepo{db: db, log: log.With("component", "account_repo")}
}

// GetByID fetches an account by primary key. ErrAccountNotFound is
// returned when no row matches.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	const q = "SELECT " + accountColumns + " FROM account WHERE account_id = ?"
	return r.getOne(ctx, "get account by id", q, id)
}

// FindByUsername fetches an account by exact username.
func (r *AccountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	const q = "SELECT " + accountColumns + " FROM account WHERE username = ?"
	return r.getOne(ctx, "find account by username", q, username)
}

// GetAll returns every account in the store's natural order.
func (r *AccountRepo) GetAll(ctx context.Context) ([]model.Account, error) {
	const q = "SELECT " + accountColumns + " FROM account"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fail(ctx, r.log, "list accounts", q, err)
	}
	defer rows.Close()

	out := []model.Account{}
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Password); err != nil {
			return nil, fail(ctx, r.log, "list accounts", q, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(ctx, r.log, "list accounts", q, err)
	}
	return out, nil
}

// UsernameExists reports whether any account already uses username.
func (r *AccountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	const q = "SELECT COUNT(*) FROM account WHERE username = ?"
	var n int
	if err := r.db.QueryRowContext(ctx, q, username).Scan(&n); err != nil {
		return false, fail(ctx, r.log, "check username exists", q, err)
	}
	return n > 0, nil
}

// ValidateCredentials returns the account whose username matches and whose
// stored password equals password exactly. Both "no such user" and "wrong
// password" yield ErrAccountNotFound.
func (r *AccountRepo) ValidateCredentials(ctx context.Context, username, password string) (*model.Account, error) {
	a, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if a.Password != password {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// Insert adds a new account and returns it with the assigned id.
func (r *AccountRepo) Insert(ctx context.Context, a model.Account) (*model.Account, error) {
	const q = "INSERT INTO account (username, password) VALUES (?, ?)"
	res, err := r.db.ExecContext(ctx, q, a.Username, a.Password)
	if err != nil {
		return nil, fail(ctx, r.log, "insert account", q, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fail(ctx, r.log, "insert account", q, err)
	}
	a.ID = id
	return &a, nil
}

// Update overwrites username and password of the account with a.ID. It
// reports true iff exactly one row was modified.
func (r *AccountRepo) Update(ctx context.Context, a model.Account) (bool, error) {
	const q = "UPDATE account SET username = ?, password = ? WHERE account_id = ?"
	res, err := r.db.ExecContext(ctx, q, a.Username, a.Password, a.ID)
	if err != nil {
		return false, fail(ctx, r.log, "update account", q, err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fail(ctx, r.log, "update account", q, err)
	}
	return ok, nil
}

// Delete removes the account with id. It reports true iff a row was removed.
func (r *AccountRepo) Delete(ctx context.Context, id int64) (bool, error) {
	const q = "DELETE FROM account WHERE account_id = ?"
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, fail(ctx, r.log, "delete account", q, err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fail(ctx, r.log, "delete account", q, err)
	}
	return ok, nil
}

func (r *AccountRepo) getOne(ctx context.Context, op, q string, arg any) (*model.Account, error) {
	var a model.Account
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&a.ID, &a.Username, &a.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fail(ctx, r.log, op, q, err)
	}
	return &a, nil
}
