// Package reader implements read-side access to a database file: a
// type-filtered full scan and single-block rendering for inspection
// tooling, both tolerant of individual block corruption so one bad block
// does not abort a whole scan.
package reader

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/hyperpolymath/lithoglyph/internal/engine/block"
	"github.com/hyperpolymath/lithoglyph/internal/engine/errs"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
	"github.com/hyperpolymath/lithoglyph/pkg/log"
	"github.com/hyperpolymath/lithoglyph/pkg/metrics"
)

// Block is one block surfaced by a scan: its ID, header, and payload.
// Err is set (and Payload/Header are zero) when the block failed to
// decode; the scan continues past it.
type Block struct {
	ID      uint64
	Header  format.Header
	Payload []byte
	Err     error
}

// Reader performs read-only scans over an already-open block file.
type Reader struct {
	bf *block.File
}

// New wraps bf for read access.
func New(bf *block.File) *Reader { return &Reader{bf: bf} }

// ReadBlocks scans every block from FirstDataBlockID up to the current
// block count and returns those whose header Type equals typ. Free and
// tombstoned blocks carry their own reserved Type values and so are
// excluded by construction; no separate free-list bookkeeping is needed
// to determine liveness. A block that fails checksum validation is
// reported as an entry with Err set rather than aborting the scan.
func (r *Reader) ReadBlocks(typ uint16) ([]Block, error) {
	count, err := r.bf.BlockCount()
	if err != nil {
		return nil, err
	}

	var out []Block
	for id := format.FirstDataBlockID; id < count; id++ {
		h, payload, err := r.bf.ReadBlock(id)
		if err != nil {
			if errors.Is(err, errs.ErrCorruption) {
				metrics.CorruptionTotal.Inc()
				log.WithComponent("reader").Warn().Uint64("block", id).Msg("skipping corrupt block")
				out = append(out, Block{ID: id, Err: err})
				continue
			}
			return nil, fmt.Errorf("read blocks: block %d: %w", id, err)
		}
		if h.Type != typ {
			continue
		}
		out = append(out, Block{ID: id, Header: h, Payload: payload})
	}
	return out, nil
}

// RenderOpts controls RenderBlock's output.
type RenderOpts struct {
	// Hex renders the payload as a hex dump instead of raw text.
	Hex bool
}

// RenderBlock reads a single block and renders it for inspection tooling.
func (r *Reader) RenderBlock(id uint64, opts RenderOpts) (string, error) {
	h, payload, err := r.bf.ReadBlock(id)
	if err != nil {
		return "", fmt.Errorf("render block %d: %w", id, err)
	}
	body := string(payload)
	if opts.Hex {
		body = hex.EncodeToString(payload)
	}
	return fmt.Sprintf("block=%d type=0x%04x version=%d length=%d payload=%s",
		id, h.Type, h.Version, h.Length, body), nil
}
