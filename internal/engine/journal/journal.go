// Package journal implements the write-ahead log used by the commit
// protocol for crash recovery. The journal lives in a sibling file next
// to the block file (path + ".journal") rather than a reserved region
// inside the fixed-block layout, so that its naturally variable-length
// records never have to be shoehorned into 4 KiB blocks.
//
// Records are length-prefixed and individually checksummed, following the
// same append-only, torn-tail-tolerant shape as a write-ahead log: a
// 4-byte big-endian length, a 4-byte CRC32 (IEEE) of the body, and the
// body itself (sequence number, operation count, then each operation).
package journal

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/hyperpolymath/lithoglyph/internal/engine/errs"
	"github.com/hyperpolymath/lithoglyph/pkg/metrics"
)

// OpKind tags a journal-level operation.
type OpKind uint8

const (
	OpInsert OpKind = iota + 1
	OpUpdate
	OpDelete
)

// Op is a single block-level effect recorded for a transaction. Version is
// the block header version OpInsert/OpUpdate will write; it is resolved
// once at commit time and recorded here so that replaying the record later
// writes the exact same version instead of re-deriving it (which would
// double-increment a block whose write already landed before a crash).
type Op struct {
	Kind    OpKind
	BlockID uint64
	Version uint64
	Payload []byte // empty for OpDelete
}

// Record is one durable journal entry: the set of block-level effects
// committed as sequence Sequence.
type Record struct {
	Sequence uint64
	Ops      []Op
}

// Journal is an append-only log of committed Records.
type Journal struct {
	f *os.File
}

// Open opens (creating if necessary) the journal file at path.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{f: f}, nil
}

// Close closes the underlying file descriptor.
func (j *Journal) Close() error { return j.f.Close() }

func encodeRecord(r Record) []byte {
	body := make([]byte, 0, 8+4+len(r.Ops)*32)
	body = appendU64(body, r.Sequence)
	body = appendU32(body, uint32(len(r.Ops)))
	for _, op := range r.Ops {
		body = append(body, byte(op.Kind))
		body = appendU64(body, op.BlockID)
		body = appendU64(body, op.Version)
		body = appendU32(body, uint32(len(op.Payload)))
		body = append(body, op.Payload...)
	}

	frame := make([]byte, 8+len(body))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(body)))
	binary.BigEndian.PutUint32(frame[4:8], crc32.ChecksumIEEE(body))
	copy(frame[8:], body)
	return frame
}

func appendU64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

// Append writes r to the end of the journal. The write is not durable
// until Sync is called.
func (j *Journal) Append(r Record) error {
	frame := encodeRecord(r)
	if _, err := j.f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("journal append: %w", errs.WrapIO(err))
	}
	if _, err := j.f.Write(frame); err != nil {
		return fmt.Errorf("journal append: %w", errs.WrapIO(err))
	}
	metrics.JournalRecordsTotal.Inc()
	return nil
}

// Sync forces all prior appends to durable storage.
func (j *Journal) Sync() error {
	if err := j.f.Sync(); err != nil {
		return fmt.Errorf("journal sync: %w", errs.WrapIO(err))
	}
	return nil
}

// Replay reads every well-formed record whose sequence is greater than
// since, in order. A torn tail (a partially written final record, the
// expected shape of a crash mid-append) or a record whose checksum does not
// match its body ends the scan: that record and everything after it are
// dropped rather than treated as corruption. A record whose checksum
// matches but whose body does not decode is reported as ErrCorruption.
func Replay(path string, since uint64) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("journal replay: %w", errs.WrapIO(err))
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var records []Record
	for {
		var lenBuf, crcBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err == io.EOF {
				break
			}
			break // torn length prefix: truncate
		}
		if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
			break // torn checksum: truncate
		}
		length := binary.BigEndian.Uint32(lenBuf[:])
		wantCRC := binary.BigEndian.Uint32(crcBuf[:])

		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			break // torn body: truncate
		}
		if crc32.ChecksumIEEE(body) != wantCRC {
			break // checksum mismatch: treat as torn tail, truncate
		}

		rec, err := decodeBody(body)
		if err != nil {
			return nil, fmt.Errorf("journal replay: %w", err)
		}
		if rec.Sequence > since {
			records = append(records, rec)
		}
	}
	metrics.ReplayRecordsGauge.Set(float64(len(records)))
	return records, nil
}

func decodeBody(body []byte) (Record, error) {
	if len(body) < 12 {
		return Record{}, errs.ErrCorruption
	}
	var rec Record
	rec.Sequence = binary.BigEndian.Uint64(body[0:8])
	count := binary.BigEndian.Uint32(body[8:12])
	pos := 12
	rec.Ops = make([]Op, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+21 > len(body) {
			return Record{}, errs.ErrCorruption
		}
		op := Op{Kind: OpKind(body[pos])}
		pos++
		op.BlockID = binary.BigEndian.Uint64(body[pos : pos+8])
		pos += 8
		op.Version = binary.BigEndian.Uint64(body[pos : pos+8])
		pos += 8
		plen := binary.BigEndian.Uint32(body[pos : pos+4])
		pos += 4
		if pos+int(plen) > len(body) {
			return Record{}, errs.ErrCorruption
		}
		op.Payload = append([]byte(nil), body[pos:pos+int(plen)]...)
		pos += int(plen)
		rec.Ops = append(rec.Ops, op)
	}
	return rec, nil
}
