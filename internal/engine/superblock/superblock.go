// Package superblock manages the two-copy primary/shadow superblock that
// anchors a database file: format version, current block count, free-list
// head, and the last committed journal sequence.
package superblock

import (
	"fmt"

	"github.com/hyperpolymath/lithoglyph/internal/engine/block"
	"github.com/hyperpolymath/lithoglyph/internal/engine/errs"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
)

// FormatVersion is the on-disk format version this build writes.
const FormatVersion uint64 = 1

// Superblock is the anchor record describing a database's current shape.
type Superblock struct {
	FormatVersion uint64
	BlockCount    uint64
	FreeListHead  uint64 // 0 means empty; block IDs are never 0 (reserved for primary superblock)
	LastSequence  uint64
}

func encode(sb Superblock) []byte {
	payload := make([]byte, 32)
	putU64(payload[0:8], sb.FormatVersion)
	putU64(payload[8:16], sb.BlockCount)
	putU64(payload[16:24], sb.FreeListHead)
	putU64(payload[24:32], sb.LastSequence)
	return payload
}

func decode(payload []byte) (Superblock, bool) {
	if len(payload) < 32 {
		return Superblock{}, false
	}
	return Superblock{
		FormatVersion: getU64(payload[0:8]),
		BlockCount:    getU64(payload[8:16]),
		FreeListHead:  getU64(payload[16:24]),
		LastSequence:  getU64(payload[24:32]),
	}, true
}

func putU64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func getU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// Load reads the superblock, preferring the primary copy and falling back
// to the shadow copy if the primary fails checksum validation. If both
// copies are invalid, Load returns ErrCorruption.
func Load(bf *block.File) (Superblock, error) {
	if sb, err := loadAt(bf, format.SuperblockPrimaryID); err == nil {
		return sb, nil
	}
	sb, err := loadAt(bf, format.SuperblockShadowID)
	if err != nil {
		return Superblock{}, fmt.Errorf("load superblock: both copies invalid: %w", errs.ErrCorruption)
	}
	return sb, nil
}

func loadAt(bf *block.File, id uint64) (Superblock, error) {
	_, payload, err := bf.ReadBlock(id)
	if err != nil {
		return Superblock{}, err
	}
	sb, ok := decode(payload)
	if !ok {
		return Superblock{}, errs.ErrCorruption
	}
	return sb, nil
}

// Save writes sb durably using the atomic two-step shadow protocol: the
// shadow copy is written and synced first, then the primary copy. A crash
// between the two steps leaves the shadow holding the new state and the
// primary holding the prior state, both individually valid.
func Save(bf *block.File, sb Superblock) error {
	payload := encode(sb)
	h := format.Header{Type: format.TypeDocument, Version: sb.LastSequence}

	if err := bf.WriteBlock(format.SuperblockShadowID, h, payload); err != nil {
		return fmt.Errorf("save superblock: write shadow: %w", err)
	}
	if err := bf.Sync(); err != nil {
		return fmt.Errorf("save superblock: sync shadow: %w", err)
	}
	if err := bf.WriteBlock(format.SuperblockPrimaryID, h, payload); err != nil {
		return fmt.Errorf("save superblock: write primary: %w", err)
	}
	if err := bf.Sync(); err != nil {
		return fmt.Errorf("save superblock: sync primary: %w", err)
	}
	return nil
}
