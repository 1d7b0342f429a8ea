package engine

import "github.com/hyperpolymath/lithoglyph/internal/engine/errs"

// Re-exported so callers of this package (notably pkg/bridge) only need
// to import one package to compare against every sentinel error the
// engine can return.
var (
	ErrInternal            = errs.ErrInternal
	ErrNotFound            = errs.ErrNotFound
	ErrInvalidArgument     = errs.ErrInvalidArgument
	ErrOutOfMemory         = errs.ErrOutOfMemory
	ErrNotImplemented      = errs.ErrNotImplemented
	ErrTxnNotActive        = errs.ErrTxnNotActive
	ErrTxnAlreadyCommitted = errs.ErrTxnAlreadyCommitted
	ErrIOError             = errs.ErrIOError
	ErrCorruption          = errs.ErrCorruption
	ErrConflict            = errs.ErrConflict
	ErrAlreadyExists       = errs.ErrAlreadyExists
)
