// Package service holds the account and message policies: the rules that
// decide whether a mutation is admissible before it reaches the store.
// Services are stateless and safe for concurrent use.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/model"
	"github.com/iliyamo/social-media-api/internal/repository"
)

type AccountService struct {
	store AccountStore
	log   logging.Logger
}

func NewAccountService(store AccountStore, log logging.Logger) *AccountService {
	if log == nil {
		log = logging.Nop()
	}
	return &AccountService{store: store, log: log.With("component", "account_service")}
}

// Register validates candidate and inserts it. Username and password are
// trimmed before validation and stored trimmed.
//
// The uniqueness check and the insert are separate statements. Two
// concurrent registrations of one username can both pass the check; the
// UNIQUE index on account.username then rejects the second insert, which
// is reported as ErrConflict as well.
func (s *AccountService) Register(ctx context.Context, candidate model.Account) (*model.Account, error) {
	s.log.Info(ctx, "register account", "username", candidate.Username)

	username := strings.TrimSpace(candidate.Username)
	password := strings.TrimSpace(candidate.Password)
	if username == "" || password == "" {
		return nil, ruleError(ErrValidation, "username and password cannot be blank")
	}
	if len([]rune(password)) < model.MinPasswordLength {
		return nil, ruleError(ErrValidation, "password must be at least 4 characters long")
	}

	exists, err := s.store.UsernameExists(ctx, username)
	if err != nil {
		return nil, wrap("checking username", err)
	}
	if exists {
		return nil, ruleError(ErrConflict, "the username must be unique")
	}

	acc, err := s.store.Insert(ctx, model.Account{Username: username, Password: password})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ruleError(ErrConflict, "the username must be unique")
		}
		return nil, wrap("creating account", err)
	}
	return acc, nil
}

// Login returns the account whose username and password match credentials
// exactly. Unknown user and wrong password are both ErrUnauthenticated.
func (s *AccountService) Login(ctx context.Context, credentials model.Account) (*model.Account, error) {
	s.log.Info(ctx, "validate login", "username", credentials.Username)

	acc, err := s.store.ValidateCredentials(ctx, credentials.Username, credentials.Password)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, wrap("validating login", err)
	}
	return acc, nil
}

// GetByID returns the account with id or ErrNotFound.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	s.log.Info(ctx, "fetch account", "account_id", id)
	return s.lookup(s.store.GetByID(ctx, id))
}

// GetByUsername returns the account with username or ErrNotFound.
func (s *AccountService) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.log.Info(ctx, "find account by username", "username", username)
	return s.lookup(s.store.FindByUsername(ctx, username))
}

func (s *AccountService) GetAll(ctx context.Context) ([]model.Account, error) {
	s.log.Info(ctx, "fetch all accounts")
	out, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, wrap("fetching accounts", err)
	}
	return out, nil
}

// Exists reports whether an account with id is stored.
func (s *AccountService) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Update writes account as given. Field rules from Register are not
// re-applied here.
func (s *AccountService) Update(ctx context.Context, account model.Account) (bool, error) {
	s.log.Info(ctx, "update account", "account_id", account.ID)
	ok, err := s.store.Update(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return false, ruleError(ErrConflict, "the username must be unique")
		}
		return false, wrap("updating account", err)
	}
	return ok, nil
}

// Delete removes the account identified by id. An absent id is rejected
// with ErrInvalidArgument; the bool reports whether a row was removed.
func (s *AccountService) Delete(ctx context.Context, id sql.NullInt64) (bool, error) {
	s.log.Info(ctx, "delete account", "account_id", id.Int64, "id_set", id.Valid)
	if !id.Valid {
		return false, ruleError(ErrInvalidArgument, "account id must be set")
	}
	ok, err := s.store.Delete(ctx, id.Int64)
	if err != nil {
		return false, wrap("deleting account", err)
	}
	return ok, nil
}

func (s *AccountService) lookup(acc *model.Account, err error) (*model.Account, error) {
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrap("fetching account", err)
	}
	return acc, nil
}

// wrap converts a store failure into a service *Error tagged with op.
func wrap(op string, err error) error {
	return &Error{Op: op, Err: err}
}
