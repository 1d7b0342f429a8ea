// Package errs defines the sentinel errors shared across every engine
// component. They map 1:1 onto the boundary's numeric status codes
// (pkg/bridge translates between the two); internal code only ever
// compares against these with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInternal            = errors.New("internal error")
	ErrNotFound            = errors.New("not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrOutOfMemory         = errors.New("out of memory")
	ErrNotImplemented      = errors.New("not implemented")
	ErrTxnNotActive        = errors.New("transaction not active")
	ErrTxnAlreadyCommitted = errors.New("transaction already committed")
	ErrIOError             = errors.New("i/o error")
	ErrCorruption          = errors.New("corruption")
	ErrConflict            = errors.New("conflict")
	ErrAlreadyExists       = errors.New("already exists")
)

// WrapIO wraps an underlying OS/file error so that errors.Is(err, ErrIOError)
// succeeds while the original error remains available via errors.Unwrap.
func WrapIO(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrIOError, err)
}
