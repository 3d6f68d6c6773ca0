// Package repository defines error types that are reused across the account
// and message repositories. Sentinel values let the service layer tell a
// "no such row" outcome apart from a failure of the store itself.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrStorage is matched by every *StorageError. Callers should test with
// errors.Is(err, ErrStorage) instead of inspecting driver errors.
var ErrStorage = errors.New("storage failure")

// ErrDuplicateKey marks a StorageError caused by a unique index violation
// (MySQL error 1062).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrAccountNotFound is returned when an account lookup matches no row.
var ErrAccountNotFound = errors.New("account not found")

// ErrMessageNotFound is returned when a message lookup matches no row.
var ErrMessageNotFound = errors.New("message not found")

// StorageError carries the failing operation and statement together with
// the underlying driver error.
type StorageError struct {
	Op    string
	Query string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports ErrStorage for every StorageError, and ErrDuplicateKey when
// the driver rejected the statement on a unique index.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorage:
		return true
	case ErrDuplicateKey:
		return isDuplicateKey(e.Err)
	}
	return false
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
