package store

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPersistence        = errors.New("persistence failure")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// PersistenceError is a storage failure while reading or writing. When it
// comes out of a write the transaction was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// StorageUnavailableError means the database cannot be used any more, for
// example a rollback failed or the file cannot be opened.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func NewStorageUnavailableError(op string, err error) *StorageUnavailableError {
	return &StorageUnavailableError{Op: op, Err: err}
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error { return e.Err }

func (e *StorageUnavailableError) Is(target error) bool { return target == ErrStorageUnavailable }

// wrapWrite leaves taxonomy errors untouched and turns anything else into a
// PersistenceError.
func wrapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	var se *StorageUnavailableError
	if errors.Is(err, ErrNotFound) || errors.As(err, &pe) || errors.As(err, &se) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
