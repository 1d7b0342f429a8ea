// Package commit implements the six-phase commit protocol that turns a
// transaction buffer into durable state: journal first, then blocks, then
// the superblock, with a sync between each durability boundary so that a
// crash at any point leaves the database in a state Replay can repair.
package commit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hyperpolymath/lithoglyph/internal/engine/alloc"
	"github.com/hyperpolymath/lithoglyph/internal/engine/block"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
	"github.com/hyperpolymath/lithoglyph/internal/engine/journal"
	"github.com/hyperpolymath/lithoglyph/internal/engine/superblock"
	"github.com/hyperpolymath/lithoglyph/internal/engine/txn"
	"github.com/hyperpolymath/lithoglyph/pkg/log"
	"github.com/hyperpolymath/lithoglyph/pkg/metrics"
)

// ErrRecoverable marks a Commit failure that happened before any block or
// the superblock was touched (reading a block's current version, or the
// journal append/sync): no journal record landed, so the
// attempted transaction simply never happened and the database handle
// remains fully usable. Callers should check errors.Is(err, ErrRecoverable)
// before deciding whether to poison a handle.
var ErrRecoverable = errors.New("commit: recoverable failure")

// Coordinator serializes and durably applies write-transaction commits
// against a single database file and its journal. Only one commit may be
// in flight at a time; Commit blocks on an internal mutex to enforce
// single-writer semantics.
type Coordinator struct {
	mu       sync.Mutex
	bf       *block.File
	jrnl     *journal.Journal
	alloc    *alloc.Allocator
	sequence uint64
}

// New constructs a Coordinator from already-open components and the last
// committed sequence recovered from the superblock.
func New(bf *block.File, jrnl *journal.Journal, a *alloc.Allocator, lastSequence uint64) *Coordinator {
	return &Coordinator{bf: bf, jrnl: jrnl, alloc: a, sequence: lastSequence}
}

// Sequence returns the last committed sequence number.
func (c *Coordinator) Sequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sequence
}

// Commit durably applies buf's staged effects.
//
// Phase 1: validate there is work to do (an empty buffer is a no-op, no
// sequence is consumed and no I/O occurs).
// Phase 2: assign the next sequence number.
// Phase 3: append the journal record and sync it — the write-ahead log
// entry is durable before any block in the main file is touched.
// Phase 4: apply each effect to the block file (document write, or a
// tombstone plus free-list linkage for a delete).
// Phase 5: sync the block file.
// Phase 6: save the updated superblock (shadow then primary, each synced).
//
// A crash before phase 3's sync loses the transaction entirely, as if it
// never ran. A crash after phase 3 but before phase 6 is repaired by
// Replay the next time the database is opened.
func (c *Coordinator) Commit(buf *txn.Buffer) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf.Empty() {
		return c.sequence, nil
	}

	effects := buf.Effects()
	seq := c.sequence + 1
	commitLog := log.WithSequence(seq)

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CommitDuration)

	rec := journal.Record{Sequence: seq, Ops: make([]journal.Op, 0, len(effects))}
	for _, e := range effects {
		op := journal.Op{Kind: journal.OpKind(e.Kind + 1), BlockID: e.BlockID, Payload: e.Payload}
		switch e.Kind {
		case txn.KindInsert:
			// A document's version starts at 1 the first time it is written.
			op.Version = 1
		case txn.KindUpdate, txn.KindDelete:
			// The version counter increments on every update, and a delete's
			// tombstone carries the incremented version too; read the current
			// on-disk version so both this apply and any future replay of
			// this record write the exact same resolved version.
			prev, _, err := c.bf.ReadBlock(e.BlockID)
			if err != nil {
				metrics.CommitsTotal.WithLabelValues("block_error").Inc()
				return 0, fmt.Errorf("commit: read current version for block %d: %w: %w", e.BlockID, ErrRecoverable, err)
			}
			op.Version = prev.Version + 1
		}
		rec.Ops = append(rec.Ops, op)
	}

	if err := c.jrnl.Append(rec); err != nil {
		metrics.CommitsTotal.WithLabelValues("journal_error").Inc()
		return 0, fmt.Errorf("commit: phase 3 journal append: %w: %w", ErrRecoverable, err)
	}
	if err := c.jrnl.Sync(); err != nil {
		metrics.CommitsTotal.WithLabelValues("journal_error").Inc()
		return 0, fmt.Errorf("commit: phase 3 journal sync: %w: %w", ErrRecoverable, err)
	}
	commitLog.Debug().Int("ops", len(effects)).Msg("phase 3: journal record durable")

	for _, op := range rec.Ops {
		if err := c.applyEffect(op); err != nil {
			metrics.CommitsTotal.WithLabelValues("block_error").Inc()
			return 0, fmt.Errorf("commit: phase 4 apply block %d: %w", op.BlockID, err)
		}
	}
	if err := c.bf.Sync(); err != nil {
		metrics.CommitsTotal.WithLabelValues("block_error").Inc()
		return 0, fmt.Errorf("commit: phase 5 block sync: %w", err)
	}
	commitLog.Debug().Msg("phase 5: block file durable")

	sb := superblock.Superblock{
		FormatVersion: superblock.FormatVersion,
		BlockCount:    c.alloc.BlockCount(),
		FreeListHead:  c.alloc.FreeListHead(),
		LastSequence:  seq,
	}
	if err := superblock.Save(c.bf, sb); err != nil {
		metrics.CommitsTotal.WithLabelValues("superblock_error").Inc()
		return 0, fmt.Errorf("commit: phase 6 superblock save: %w", err)
	}
	commitLog.Debug().Msg("phase 6: superblock published")

	c.sequence = seq
	metrics.CommitsTotal.WithLabelValues("ok").Inc()
	return seq, nil
}

func (c *Coordinator) applyEffect(op journal.Op) error {
	switch op.Kind {
	case journal.OpInsert, journal.OpUpdate:
		h := format.Header{Type: format.TypeDocument, Version: op.Version}
		return c.bf.WriteBlock(op.BlockID, h, op.Payload)
	case journal.OpDelete:
		h := format.Header{Type: format.TypeTombstone, Version: op.Version}
		if err := c.bf.WriteBlock(op.BlockID, h, nil); err != nil {
			return err
		}
		return c.alloc.Free(op.BlockID)
	default:
		return fmt.Errorf("commit: unknown op kind %d", op.Kind)
	}
}
