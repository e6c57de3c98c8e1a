package vault

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service. Transport layers map these onto
// status codes; callers test with errors.Is.
var (
	// ErrNotFound means the record or folder does not exist, or the caller
	// owns nothing under the named folder.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied means the record exists but the caller's effective
	// permission is below what the operation requires.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidPath means a folder path failed validation.
	ErrInvalidPath = errors.New("invalid folder path")

	// ErrInvalidArgument means a non-path input failed validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists means a folder path is already occupied.
	ErrAlreadyExists = errors.New("already exists")
)

// PartialFailureError reports a multi-record operation that changed some
// records and then failed. Affected counts the records already modified when
// the failure occurred; those changes are not rolled back.
type PartialFailureError struct {
	Affected int64
	Err      error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("operation failed after modifying %d records: %v", e.Affected, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// StoreError wraps a failure talking to the record store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
