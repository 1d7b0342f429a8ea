// Package block implements fixed 4 KiB block I/O against a single
// on-disk file: whole-block-aligned reads and writes, durable sync, and
// zero-filled extension.
package block

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hyperpolymath/lithoglyph/internal/engine/errs"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
)

// File is a block-addressed view over a single os.File.
type File struct {
	f *os.File
}

// Open opens (creating if necessary) the block file at path.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open block file: %w", err)
	}
	return &File{f: f}, nil
}

// Close closes the underlying file descriptor.
func (bf *File) Close() error {
	return bf.f.Close()
}

// BlockCount returns the number of whole blocks currently in the file.
func (bf *File) BlockCount() (uint64, error) {
	info, err := bf.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat block file: %w", err)
	}
	return uint64(info.Size()) / format.BlockSize, nil
}

// ReadBlock reads block id and validates its checksum.
func (bf *File) ReadBlock(id uint64) (format.Header, []byte, error) {
	var raw [format.BlockSize]byte
	n, err := bf.f.ReadAt(raw[:], format.Offset(id))
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return format.Header{}, nil, fmt.Errorf("read block %d: short read: %w", id, errs.ErrCorruption)
		}
		return format.Header{}, nil, fmt.Errorf("read block %d: %w", id, errs.WrapIO(err))
	}
	if n != format.BlockSize {
		return format.Header{}, nil, fmt.Errorf("read block %d: short read: %w", id, errs.ErrCorruption)
	}

	h, payload, ok := format.Decode(raw[:])
	if !ok {
		return format.Header{}, nil, fmt.Errorf("read block %d: %w", id, errs.ErrCorruption)
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return h, out, nil
}

// WriteBlock writes a full 4 KiB block for id. The write is not durable
// until Sync is called.
func (bf *File) WriteBlock(id uint64, h format.Header, payload []byte) error {
	if len(payload) > format.PayloadSize {
		return fmt.Errorf("write block %d: payload too large: %w", id, errs.ErrInvalidArgument)
	}
	block := format.Encode(h, payload)
	if _, err := bf.f.WriteAt(block[:], format.Offset(id)); err != nil {
		return fmt.Errorf("write block %d: %w", id, errs.WrapIO(err))
	}
	return nil
}

// Sync forces all prior writes to durable storage.
func (bf *File) Sync() error {
	if err := bf.f.Sync(); err != nil {
		return fmt.Errorf("sync block file: %w", errs.WrapIO(err))
	}
	return nil
}

// Extend grows the file by n zero-filled blocks and returns the ID of the
// first newly created block.
func (bf *File) Extend(n uint64) (uint64, error) {
	count, err := bf.BlockCount()
	if err != nil {
		return 0, err
	}
	zero := make([]byte, n*format.BlockSize)
	if _, err := bf.f.WriteAt(zero, format.Offset(count)); err != nil {
		return 0, fmt.Errorf("extend block file: %w", errs.WrapIO(err))
	}
	return count, nil
}
