package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hyperpolymath/lithoglyph/internal/engine/alloc"
	"github.com/hyperpolymath/lithoglyph/internal/engine/block"
	"github.com/hyperpolymath/lithoglyph/internal/engine/commit"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
	"github.com/hyperpolymath/lithoglyph/internal/engine/journal"
	"github.com/hyperpolymath/lithoglyph/internal/engine/reader"
	"github.com/hyperpolymath/lithoglyph/internal/engine/superblock"
	"github.com/hyperpolymath/lithoglyph/internal/engine/txn"
	"github.com/hyperpolymath/lithoglyph/internal/engine/verify"
	"github.com/hyperpolymath/lithoglyph/pkg/log"
)

// TxnMode selects whether a transaction may mutate the database.
type TxnMode int

const (
	ReadOnly TxnMode = iota
	ReadWrite
)

type dbState int

const (
	dbOpen dbState = iota
	dbClosed
)

// Database is a single open handle onto a .lgh file and its sibling
// journal. Exactly one write transaction may be active at a time;
// read-only transactions may run concurrently with it. A read-only
// transaction records the sequence committed when it began, but its reads
// go to the block file's current contents, so it can observe commits made
// after it began.
type Database struct {
	path string

	mu       sync.Mutex // guards state and poisoned
	state    dbState
	poisoned error // set on an unrecoverable I/O error; Begin fails with it from then on

	writerMu sync.Mutex // held for the lifetime of the single active write transaction

	bf        *block.File
	jrnl      *journal.Journal
	alloc     *alloc.Allocator
	coord     *commit.Coordinator
	reader    *reader.Reader
	verifiers *verify.Registry
}

// Open opens the database at path, creating it if it does not exist, and
// replays any journal records not yet reflected in the superblock.
func Open(path string) (*Database, error) {
	bf, err := block.Open(path)
	if err != nil {
		return nil, err
	}

	count, err := bf.BlockCount()
	if err != nil {
		bf.Close()
		return nil, err
	}

	var sb superblock.Superblock
	if count < format.FirstDataBlockID {
		if _, err := bf.Extend(format.FirstDataBlockID - count); err != nil {
			bf.Close()
			return nil, err
		}
		sb = superblock.Superblock{FormatVersion: superblock.FormatVersion, BlockCount: format.FirstDataBlockID}
		if err := superblock.Save(bf, sb); err != nil {
			bf.Close()
			return nil, err
		}
	} else {
		sb, err = superblock.Load(bf)
		if err != nil {
			bf.Close()
			return nil, err
		}
	}

	journalPath := path + ".journal"
	jrnl, err := journal.Open(journalPath)
	if err != nil {
		bf.Close()
		return nil, err
	}

	a := alloc.New(bf, sb.BlockCount, sb.FreeListHead)

	records, err := journal.Replay(journalPath, sb.LastSequence)
	if err != nil {
		bf.Close()
		jrnl.Close()
		return nil, err
	}
	if len(records) > 0 {
		log.WithComponent("engine").Info().Int("records", len(records)).Uint64("database_sequence", sb.LastSequence).Msg("replaying journal")
		last, err := replayRecords(bf, a, records)
		if err != nil {
			bf.Close()
			jrnl.Close()
			return nil, err
		}
		physicalCount, err := bf.BlockCount()
		if err != nil {
			bf.Close()
			jrnl.Close()
			return nil, err
		}
		sb = superblock.Superblock{
			FormatVersion: superblock.FormatVersion,
			BlockCount:    physicalCount,
			FreeListHead:  a.FreeListHead(),
			LastSequence:  last,
		}
		if err := superblock.Save(bf, sb); err != nil {
			bf.Close()
			jrnl.Close()
			return nil, err
		}
	}

	coord := commit.New(bf, jrnl, a, sb.LastSequence)
	verifiers := verify.NewRegistry()
	verify.InitBuiltins(verifiers)

	return &Database{
		path:      path,
		bf:        bf,
		jrnl:      jrnl,
		alloc:     a,
		coord:     coord,
		reader:    reader.New(bf),
		verifiers: verifiers,
	}, nil
}

// replayRecords re-applies every journal record's effects to the block
// file and returns the highest sequence number replayed. Each Insert/Update
// op carries the exact version its original commit resolved, so re-writing
// it here is idempotent regardless of whether the block write had already
// landed on disk before the crash; a delete re-threads the block into the
// free list exactly as the original commit's phase 4 did.
func replayRecords(bf *block.File, a *alloc.Allocator, records []journal.Record) (uint64, error) {
	var last uint64
	for _, rec := range records {
		for _, op := range rec.Ops {
			switch op.Kind {
			case journal.OpInsert, journal.OpUpdate:
				h := format.Header{Type: format.TypeDocument, Version: op.Version}
				if err := bf.WriteBlock(op.BlockID, h, op.Payload); err != nil {
					return 0, fmt.Errorf("replay sequence %d: %w", rec.Sequence, err)
				}
			case journal.OpDelete:
				h := format.Header{Type: format.TypeTombstone, Version: op.Version}
				if err := bf.WriteBlock(op.BlockID, h, nil); err != nil {
					return 0, fmt.Errorf("replay sequence %d: %w", rec.Sequence, err)
				}
				if err := a.Free(op.BlockID); err != nil {
					return 0, fmt.Errorf("replay sequence %d: %w", rec.Sequence, err)
				}
			}
		}
		if rec.Sequence > last {
			last = rec.Sequence
		}
	}
	if err := bf.Sync(); err != nil {
		return 0, err
	}
	return last, nil
}

// Close flushes and closes the database. It is an error to call Close
// while a write transaction is active.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.state == dbClosed {
		return nil
	}
	if !db.writerMu.TryLock() {
		return fmt.Errorf("close: write transaction active: %w", ErrInvalidArgument)
	}
	db.writerMu.Unlock()
	db.state = dbClosed

	var firstErr error
	if err := db.bf.Sync(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := db.bf.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := db.jrnl.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Verifiers returns the database's proof-verifier registry.
func (db *Database) Verifiers() *verify.Registry { return db.verifiers }

// Reader returns a read-side scanner over the database's block file.
func (db *Database) Reader() *reader.Reader { return db.reader }

func (db *Database) checkOpen() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.poisoned != nil {
		return db.poisoned
	}
	if db.state == dbClosed {
		return fmt.Errorf("database closed: %w", ErrInvalidArgument)
	}
	return nil
}

func (db *Database) poison(err error) error {
	db.mu.Lock()
	db.poisoned = err
	db.mu.Unlock()
	return err
}

type txnState int

const (
	txnActive txnState = iota
	txnCommitted
	txnAborted
)

// Transaction is either the single active write transaction or one of
// potentially many concurrent read-only snapshots.
type Transaction struct {
	db    *Database
	mode  TxnMode
	buf   *txn.Buffer
	state txnState
	// snapshotSeq is the sequence committed when a read-only transaction
	// began; it is not consulted by Get. Unused for write transactions.
	snapshotSeq uint64
}

// Begin starts a transaction. ReadWrite blocks until any other active
// write transaction commits or aborts.
func (db *Database) Begin(mode TxnMode) (*Transaction, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	if mode == ReadWrite {
		db.writerMu.Lock()
		return &Transaction{db: db, mode: mode, buf: txn.NewBuffer(false, db.alloc), state: txnActive}, nil
	}

	return &Transaction{
		db:          db,
		mode:        mode,
		buf:         txn.NewBuffer(true, nil),
		state:       txnActive,
		snapshotSeq: db.coord.Sequence(),
	}, nil
}

// Insert stages a new document and returns the block ID it will occupy
// once committed.
func (tx *Transaction) Insert(payload []byte) (uint64, error) {
	if err := tx.requireActive(); err != nil {
		return 0, err
	}
	return tx.buf.Insert(payload)
}

// Update stages a replacement payload for an existing document.
func (tx *Transaction) Update(id uint64, payload []byte) error {
	if err := tx.requireActive(); err != nil {
		return err
	}
	return tx.buf.Update(id, payload)
}

// Delete stages removal of an existing document.
func (tx *Transaction) Delete(id uint64) error {
	if err := tx.requireActive(); err != nil {
		return err
	}
	return tx.buf.Delete(id)
}

// Get reads a document's current payload. For a write transaction this
// does not see its own uncommitted writes; callers that need
// read-your-writes semantics within a transaction should track staged
// values themselves, mirroring the boundary's stateless Blob contract.
func (tx *Transaction) Get(id uint64) ([]byte, error) {
	if tx.state != txnActive {
		return nil, ErrTxnNotActive
	}
	_, payload, err := tx.db.bf.ReadBlock(id)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Commit durably applies a write transaction's staged effects, or releases
// a read-only transaction's snapshot.
func (tx *Transaction) Commit() error {
	if tx.state != txnActive {
		return ErrTxnAlreadyCommitted
	}
	if tx.mode == ReadOnly {
		tx.state = txnCommitted
		return nil
	}

	defer tx.db.writerMu.Unlock()
	if _, err := tx.db.coord.Commit(tx.buf); err != nil {
		tx.state = txnAborted
		if errors.Is(err, commit.ErrRecoverable) {
			// The journal append/sync never landed: no block or superblock
			// was touched, so the transaction simply never happened and the
			// handle remains usable.
			return err
		}
		return tx.db.poison(err)
	}
	tx.state = txnCommitted
	return nil
}

// Abort discards a write transaction's staged effects with no disk I/O,
// returning any tentatively allocated block IDs to the allocator. Abort
// on a read-only transaction simply releases the snapshot.
func (tx *Transaction) Abort() error {
	if tx.state != txnActive {
		return ErrTxnAlreadyCommitted
	}
	if tx.mode == ReadOnly {
		tx.state = txnAborted
		return nil
	}

	defer tx.db.writerMu.Unlock()
	for _, id := range tx.buf.TentativeInserts() {
		tx.db.alloc.Release(id)
	}
	tx.state = txnAborted
	return nil
}

func (tx *Transaction) requireActive() error {
	if tx.state != txnActive {
		return ErrTxnNotActive
	}
	return nil
}
