package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrConflict is returned when a session is started while another one is
	// still pending.
	ErrConflict = stderrors.New("a session is already pending")
	// ErrDuplicate is returned when the ledger already holds the identifier.
	ErrDuplicate = stderrors.New("session id already exists")
	// ErrNotFound is returned when the ledger has no record for the identifier.
	ErrNotFound      = stderrors.New("session not found")
	ErrInvalidConfig = stderrors.New("invalid timer config")
)

// SyncError wraps a failure talking to the remote session store.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
