// Package bridge is the Go-native mirror of the database's C-callable
// boundary: the same Blob/Result/Status/TxnMode/RenderOpts shapes a
// foreign caller would see through the C shim, expressed as ordinary Go
// types and functions. It does not itself expose a cgo //export surface;
// that shim is an external concern layered on top of this package.
package bridge

import (
	"errors"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
	"github.com/hyperpolymath/lithoglyph/internal/engine/introspect"
	"github.com/hyperpolymath/lithoglyph/internal/engine/reader"
	"github.com/hyperpolymath/lithoglyph/internal/engine/verify"
)

// EngineVersion is the boundary's semantic version, encoded the way the C
// ABI's version() call does: major*10000 + minor*100 + patch.
const EngineVersion uint32 = 100

// Version returns the engine's encoded semantic version.
func Version() uint32 { return EngineVersion }

// Status mirrors the boundary's numeric result codes.
type Status int

const (
	StatusOK                  Status = 0
	StatusInternal            Status = 1
	StatusNotFound            Status = 2
	StatusInvalidArgument     Status = 3
	StatusOutOfMemory         Status = 4
	StatusNotImplemented      Status = 5
	StatusTxnNotActive        Status = 6
	StatusTxnAlreadyCommitted Status = 7
	StatusIOError             Status = 8
	StatusCorruption          Status = 9
	StatusConflict            Status = 10
	StatusAlreadyExists       Status = 11
)

// statusFor classifies err against the engine's sentinel errors. An
// unrecognized non-nil error maps to StatusInternal.
func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, engine.ErrNotFound):
		return StatusNotFound
	case errors.Is(err, engine.ErrInvalidArgument):
		return StatusInvalidArgument
	case errors.Is(err, engine.ErrOutOfMemory):
		return StatusOutOfMemory
	case errors.Is(err, engine.ErrNotImplemented):
		return StatusNotImplemented
	case errors.Is(err, engine.ErrTxnNotActive):
		return StatusTxnNotActive
	case errors.Is(err, engine.ErrTxnAlreadyCommitted):
		return StatusTxnAlreadyCommitted
	case errors.Is(err, engine.ErrIOError):
		return StatusIOError
	case errors.Is(err, engine.ErrCorruption):
		return StatusCorruption
	case errors.Is(err, engine.ErrConflict):
		return StatusConflict
	case errors.Is(err, engine.ErrAlreadyExists):
		return StatusAlreadyExists
	default:
		return StatusInternal
	}
}

// Blob is a borrowed or owned byte payload crossing the boundary. Unlike
// the C shim's Blob, which carries a raw pointer and length the caller
// must explicitly free, a Go Blob is just a slice; BlobFree is kept as a
// no-op for API parity with callers ported from the C contract.
type Blob []byte

// BlobFree exists for parity with the C boundary's explicit free call.
// Go's garbage collector reclaims the backing array once the Blob and any
// copies of it are unreferenced, so this is a no-op.
func BlobFree(Blob) {}

// Result is the uniform return shape for every boundary call that can
// produce data: a status code, an optional payload, and an optional
// human-readable message for non-OK statuses.
type Result struct {
	Status  Status
	Value   Blob
	Message string
}

func ok(value Blob) Result { return Result{Status: StatusOK, Value: value} }

func fail(err error) Result {
	return Result{Status: statusFor(err), Message: err.Error()}
}

// TxnMode mirrors engine.TxnMode at the boundary.
type TxnMode int

const (
	TxnReadOnly  TxnMode = TxnMode(engine.ReadOnly)
	TxnReadWrite TxnMode = TxnMode(engine.ReadWrite)
)

// RenderOpts mirrors reader.RenderOpts at the boundary.
type RenderOpts struct {
	Hex bool
}

// Database is the opaque handle returned by DatabaseOpen.
type Database struct {
	inner *engine.Database
}

// Transaction is the opaque handle returned by TransactionBegin.
type Transaction struct {
	inner *engine.Transaction
}

// DatabaseOpen opens (creating if necessary) the database file at path.
func DatabaseOpen(path string) (*Database, Result) {
	db, err := engine.Open(path)
	if err != nil {
		return nil, fail(err)
	}
	return &Database{inner: db}, ok(nil)
}

// DatabaseClose flushes and closes db.
func DatabaseClose(db *Database) Result {
	if err := db.inner.Close(); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// TransactionBegin starts a transaction against db in the given mode.
func TransactionBegin(db *Database, mode TxnMode) (*Transaction, Result) {
	tx, err := db.inner.Begin(engine.TxnMode(mode))
	if err != nil {
		return nil, fail(err)
	}
	return &Transaction{inner: tx}, ok(nil)
}

// TransactionCommit durably applies tx's staged effects.
func TransactionCommit(tx *Transaction) Result {
	if err := tx.inner.Commit(); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// TransactionAbort discards tx's staged effects.
func TransactionAbort(tx *Transaction) Result {
	if err := tx.inner.Abort(); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// DocumentInsert stages a new document and returns its assigned block ID
// as an 8-byte big-endian Blob in Result.Value.
func DocumentInsert(tx *Transaction, payload Blob) Result {
	id, err := tx.inner.Insert(payload)
	if err != nil {
		return fail(err)
	}
	return ok(encodeID(id))
}

// DocumentUpdate stages a replacement payload for an existing document.
func DocumentUpdate(tx *Transaction, id uint64, payload Blob) Result {
	if err := tx.inner.Update(id, payload); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// DocumentDelete stages removal of an existing document.
func DocumentDelete(tx *Transaction, id uint64) Result {
	if err := tx.inner.Delete(id); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// DocumentGet reads a document's current payload.
func DocumentGet(tx *Transaction, id uint64) Result {
	payload, err := tx.inner.Get(id)
	if err != nil {
		return fail(err)
	}
	return ok(Blob(payload))
}

func encodeID(id uint64) Blob {
	b := make(Blob, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(id)
		id >>= 8
	}
	return b
}

// ReadBlocks scans db for every live document block and returns each
// block's payload, in ascending block ID order, concatenated as a single
// newline-separated Blob for the boundary's simple Result shape.
func ReadBlocks(db *Database) Result {
	blocks, err := db.inner.Reader().ReadBlocks(format.TypeDocument)
	if err != nil {
		return fail(err)
	}
	var out []byte
	for _, b := range blocks {
		if b.Err != nil {
			continue
		}
		out = append(out, b.Payload...)
		out = append(out, '\n')
	}
	return ok(Blob(out))
}

// RenderBlock renders a single block for inspection tooling.
func RenderBlock(db *Database, id uint64, opts RenderOpts) Result {
	text, err := db.inner.Reader().RenderBlock(id, reader.RenderOpts{Hex: opts.Hex})
	if err != nil {
		return fail(err)
	}
	return ok(Blob(text))
}

// Schema renders the set of registered proof types.
func Schema(db *Database) Result {
	return ok(Blob(introspect.Schema(db.inner.Verifiers())))
}

// Constraints renders the invariants each registered proof type enforces.
func Constraints(db *Database) Result {
	return ok(Blob(introspect.Constraints(db.inner.Verifiers())))
}

// ProofVerify checks payload against a named proof type.
func ProofVerify(db *Database, proofType string, payload Blob) Result {
	if err := db.inner.Verifiers().Verify(proofType, payload); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// ProofVerifyFunc mirrors verify.VerifyFunc at the boundary, taking a Blob
// in place of a raw []byte.
type ProofVerifyFunc func(payload Blob) error

// ProofRegisterVerifier registers fn as the verifier for proofType,
// replacing any existing verifier under that name.
func ProofRegisterVerifier(db *Database, proofType, description string, fn ProofVerifyFunc) Result {
	db.inner.Verifiers().Register(proofType, description, func(payload []byte) error {
		return fn(Blob(payload))
	})
	return ok(nil)
}

// ProofUnregisterVerifier removes the verifier registered for proofType.
// Unregistering a name that is not currently registered reports NotFound.
func ProofUnregisterVerifier(db *Database, proofType string) Result {
	if err := db.inner.Verifiers().Unregister(proofType); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// ProofInitBuiltins (re)registers the engine's built-in proof verifiers
// (fd-holds, normalization, denormalization) against db.
func ProofInitBuiltins(db *Database) Result {
	verify.InitBuiltins(db.inner.Verifiers())
	return ok(nil)
}

// The following boundary entries are named in the C ABI this package
// mirrors but have no corresponding engine capability yet; they return
// StatusNotImplemented rather than being omitted, so a caller built
// against the full boundary surface still links and gets a well-defined
// status instead of a missing symbol.

// DatabaseBackup is not yet implemented.
func DatabaseBackup(*Database, string) Result {
	return fail(engine.ErrNotImplemented)
}

// DatabaseRestore is not yet implemented.
func DatabaseRestore(*Database, string) Result {
	return fail(engine.ErrNotImplemented)
}

// DatabaseCompact is not yet implemented.
func DatabaseCompact(*Database) Result {
	return fail(engine.ErrNotImplemented)
}
