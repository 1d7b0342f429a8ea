// Package txn implements the per-transaction operation buffer: the
// in-memory staging area where Insert/Update/Delete calls accumulate
// before a commit turns them into journal records and block writes.
package txn

import (
	"fmt"

	"github.com/hyperpolymath/lithoglyph/internal/engine/alloc"
	"github.com/hyperpolymath/lithoglyph/internal/engine/errs"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
)

// entryKind distinguishes a buffered effect before it is turned into a
// journal Op.
type entryKind uint8

const (
	entryInsert entryKind = iota
	entryUpdate
	entryDelete
)

type entry struct {
	kind      entryKind
	blockID   uint64
	payload   []byte
	tentative bool // block ID was freshly allocated by this buffer, not pre-existing
}

// Buffer accumulates the block-level effects of a single write
// transaction. It is not safe for concurrent use; the engine serializes
// write transactions on a single writer mutex.
type Buffer struct {
	readOnly bool
	alloc    *alloc.Allocator
	entries  map[uint64]*entry
	order    []uint64
}

// NewBuffer creates a transaction buffer. readOnly transactions reject
// every mutating call with ErrInvalidArgument; alloc may be nil for a
// read-only buffer.
func NewBuffer(readOnly bool, a *alloc.Allocator) *Buffer {
	return &Buffer{
		readOnly: readOnly,
		alloc:    a,
		entries:  make(map[uint64]*entry),
	}
}

func (b *Buffer) put(id uint64, e *entry) {
	if _, exists := b.entries[id]; !exists {
		b.order = append(b.order, id)
	}
	b.entries[id] = e
}

// Insert stages a new document and returns the block ID it will occupy.
func (b *Buffer) Insert(payload []byte) (uint64, error) {
	if b.readOnly {
		return 0, fmt.Errorf("insert: %w", errs.ErrInvalidArgument)
	}
	if len(payload) > format.PayloadSize {
		return 0, fmt.Errorf("insert: payload too large: %w", errs.ErrInvalidArgument)
	}
	id, err := b.alloc.Allocate()
	if err != nil {
		return 0, err
	}
	b.put(id, &entry{kind: entryInsert, blockID: id, payload: payload, tentative: true})
	return id, nil
}

// Update stages a replacement payload for an existing document. A second
// Update of the same block ID collapses into the latest payload rather
// than stacking edits.
func (b *Buffer) Update(id uint64, payload []byte) error {
	if b.readOnly {
		return fmt.Errorf("update: %w", errs.ErrInvalidArgument)
	}
	if len(payload) > format.PayloadSize {
		return fmt.Errorf("update %d: payload too large: %w", id, errs.ErrInvalidArgument)
	}
	if existing, ok := b.entries[id]; ok && existing.kind == entryInsert {
		existing.payload = payload
		return nil
	}
	tentative := false
	if existing, ok := b.entries[id]; ok {
		tentative = existing.tentative
	}
	b.put(id, &entry{kind: entryUpdate, blockID: id, payload: payload, tentative: tentative})
	return nil
}

// Delete stages removal of an existing document. Deleting a block that
// was inserted earlier in the same transaction cancels both: the block ID
// is released back to the allocator immediately, with no I/O, and no
// journal record is produced for it.
func (b *Buffer) Delete(id uint64) error {
	if b.readOnly {
		return fmt.Errorf("delete: %w", errs.ErrInvalidArgument)
	}
	if existing, ok := b.entries[id]; ok && existing.kind == entryInsert && existing.tentative {
		delete(b.entries, id)
		b.removeFromOrder(id)
		b.alloc.Release(id)
		return nil
	}
	b.put(id, &entry{kind: entryDelete, blockID: id})
	return nil
}

func (b *Buffer) removeFromOrder(id uint64) {
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			return
		}
	}
}

// Empty reports whether the buffer has no staged effects.
func (b *Buffer) Empty() bool { return len(b.order) == 0 }

// Kind mirrors entryKind for consumers outside the package (the commit
// coordinator) without exposing the entry type itself.
type Kind = entryKind

// Exported kind values for consumers that need to branch on Effect.Kind.
const (
	KindInsert = entryInsert
	KindUpdate = entryUpdate
	KindDelete = entryDelete
)

// Effect is a read-only view of one staged change, ordered by first
// mutation within the transaction.
type Effect struct {
	Kind    Kind
	BlockID uint64
	Payload []byte
}

// Effects returns the buffer's staged changes in application order.
func (b *Buffer) Effects() []Effect {
	out := make([]Effect, 0, len(b.order))
	for _, id := range b.order {
		e := b.entries[id]
		out = append(out, Effect{Kind: e.kind, BlockID: e.blockID, Payload: e.payload})
	}
	return out
}

// TentativeInserts returns the block IDs allocated by Insert within this
// buffer that are still staged as inserts. Abort uses this to hand them
// back to the allocator's pending stack without any disk I/O.
func (b *Buffer) TentativeInserts() []uint64 {
	var out []uint64
	for _, id := range b.order {
		e := b.entries[id]
		if e.kind == entryInsert && e.tentative {
			out = append(out, id)
		}
	}
	return out
}
