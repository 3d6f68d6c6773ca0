package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-media-api/internal/model"
	"github.com/iliyamo/social-media-api/internal/repository"
)

func TestAccountService_Register_Success(t *testing.T) {
	store := newFakeAccountStore()
	s := NewAccountService(store, nil)

	got, err := s.Register(context.Background(), model.Account{Username: "alice", Password: "pass1"})
	require.NoError(t, err)
	assert.Equal(t, &model.Account{ID: 1, Username: "alice", Password: "pass1"}, got)
}

func TestAccountService_Register_TrimsInput(t *testing.T) {
	store := newFakeAccountStore()
	s := NewAccountService(store, nil)

	got, err := s.Register(context.Background(), model.Account{Username: "  alice ", Password: " pass1  "})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "pass1", got.Password)
}

func TestAccountService_Register_Validation(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
	}{
		{"blank username", "   ", "pass1"},
		{"empty username", "", "pass1"},
		{"empty password", "alice", ""},
		{"whitespace password", "alice", "      "},
		{"password len 1", "alice", "a"},
		{"password len 3", "alice", "abc"},
		{"password len 3 after trim", "alice", "  abc  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeAccountStore()
			s := NewAccountService(store, nil)

			_, err := s.Register(context.Background(), model.Account{Username: tc.username, Password: tc.password})
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, store.inserted)
		})
	}
}

func TestAccountService_Register_PasswordLengthFourAccepted(t *testing.T) {
	s := NewAccountService(newFakeAccountStore(), nil)

	got, err := s.Register(context.Background(), model.Account{Username: "bob", Password: "abcd"})
	require.NoError(t, err)
	assert.NotZero(t, got.ID)
}

func TestAccountService_Register_DuplicateUsername(t *testing.T) {
	store := newFakeAccountStore(model.Account{ID: 1, Username: "alice", Password: "pass1"})
	s := NewAccountService(store, nil)

	for _, pw := range []string{"pass1", "other-password"} {
		_, err := s.Register(context.Background(), model.Account{Username: "alice", Password: pw})
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Zero(t, store.inserted)
}

type racingStore struct{ *fakeAccountStore }

func (racingStore) UsernameExists(context.Context, string) (bool, error) { return false, nil }
func (racingStore) Insert(context.Context, model.Account) (*model.Account, error) {
	return nil, &repository.StorageError{Op: "insert account", Err: &mysql.MySQLError{Number: 1062}}
}

func TestAccountService_Register_LostRaceIsConflict(t *testing.T) {
	s := NewAccountService(racingStore{newFakeAccountStore()}, nil)

	_, err := s.Register(context.Background(), model.Account{Username: "alice", Password: "pass1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAccountService_Register_StorageFailure(t *testing.T) {
	store := newFakeAccountStore()
	store.err = errDown
	s := NewAccountService(store, nil)

	_, err := s.Register(context.Background(), model.Account{Username: "alice", Password: "pass1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrService)
	assert.ErrorIs(t, err, repository.ErrStorage)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "checking username", se.Op)
	assert.NotContains(t, err.Error(), "db down")
}

func TestAccountService_Login(t *testing.T) {
	store := newFakeAccountStore(model.Account{ID: 1, Username: "alice", Password: "pass1"})
	s := NewAccountService(store, nil)

	got, err := s.Login(context.Background(), model.Account{Username: "alice", Password: "pass1"})
	require.NoError(t, err)
	assert.Equal(t, &model.Account{ID: 1, Username: "alice", Password: "pass1"}, got)

	for _, creds := range []model.Account{
		{Username: "alice", Password: "wrong"},
		{Username: "alice", Password: "pass1 "},
		{Username: "nobody", Password: "pass1"},
	} {
		_, err := s.Login(context.Background(), creds)
		assert.ErrorIs(t, err, ErrUnauthenticated, "creds %+v", creds)
	}
}

func TestAccountService_Login_StorageFailure(t *testing.T) {
	store := newFakeAccountStore()
	store.err = errDown
	s := NewAccountService(store, nil)

	_, err := s.Login(context.Background(), model.Account{Username: "alice", Password: "pass1"})
	assert.ErrorIs(t, err, ErrService)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestAccountService_Lookups(t *testing.T) {
	store := newFakeAccountStore(model.Account{ID: 1, Username: "alice", Password: "pass1"})
	s := NewAccountService(store, nil)
	ctx := context.Background()

	a, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", a.Username)

	_, err = s.GetByID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	a, err = s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)

	ok, err := s.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAccountService_Exists_StorageFailure(t *testing.T) {
	store := newFakeAccountStore()
	store.err = errDown
	s := NewAccountService(store, nil)

	_, err := s.Exists(context.Background(), 1)
	assert.ErrorIs(t, err, ErrService)
}

func TestAccountService_Update(t *testing.T) {
	store := newFakeAccountStore(model.Account{ID: 1, Username: "alice", Password: "pass1"})
	s := NewAccountService(store, nil)

	// no field rules on update
	ok, err := s.Update(context.Background(), model.Account{ID: 1, Username: "alice", Password: "x"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", store.rows[1].Password)

	ok, err = s.Update(context.Background(), model.Account{ID: 5, Username: "zed", Password: "pass"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountService_Delete(t *testing.T) {
	store := newFakeAccountStore(model.Account{ID: 1, Username: "alice", Password: "pass1"})
	s := NewAccountService(store, nil)
	ctx := context.Background()

	_, err := s.Delete(ctx, sql.NullInt64{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	ok, err := s.Delete(ctx, sql.NullInt64{Int64: 1, Valid: true})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, sql.NullInt64{Int64: 1, Valid: true})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountService_Delete_ZeroIDIsAValidID(t *testing.T) {
	store := newFakeAccountStore(model.Account{ID: 0, Username: "root", Password: "root"})
	s := NewAccountService(store, nil)

	ok, err := s.Delete(context.Background(), sql.NullInt64{Int64: 0, Valid: true})
	require.NoError(t, err)
	assert.True(t, ok)
}
