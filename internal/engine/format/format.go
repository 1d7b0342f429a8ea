// Package format defines the on-disk block layout shared by every engine
// component: block size, header encoding, block types, and the checksum
// used to detect torn writes and corruption.
package format

import (
	"encoding/binary"
	"hash/crc32"
)

const (
	// BlockSize is the fixed size of every block on disk, in bytes.
	BlockSize = 4096
	// HeaderSize is the size of the fixed block header, in bytes.
	HeaderSize = 64
	// PayloadSize is the usable payload capacity of a block.
	PayloadSize = BlockSize - HeaderSize

	// SuperblockPrimaryID is the block ID of the primary superblock copy.
	SuperblockPrimaryID uint64 = 0
	// SuperblockShadowID is the block ID of the shadow superblock copy.
	SuperblockShadowID uint64 = 1
	// FirstDataBlockID is the first block ID available to the allocator.
	FirstDataBlockID uint64 = 2

	// GrowthStep is the number of blocks the allocator extends the file
	// by when the free list is empty.
	GrowthStep uint64 = 64
)

// Block type tags stored in the header.
const (
	TypeFree      uint16 = 0x0000
	TypeDocument  uint16 = 0x0011
	TypeTombstone uint16 = 0xFFFE
)

// Header is the fixed 64-byte prefix of every block.
type Header struct {
	Type     uint16
	Length   uint32
	Version  uint64
	Checksum uint32
}

// Encode writes h and the payload checksum into a BlockSize-byte block,
// zero-padding the remainder of the payload.
func Encode(h Header, payload []byte) [BlockSize]byte {
	var block [BlockSize]byte
	body := block[HeaderSize:]
	copy(body, payload)

	h.Length = uint32(len(payload))
	h.Checksum = crc32.ChecksumIEEE(body)

	binary.BigEndian.PutUint16(block[0:2], h.Type)
	binary.BigEndian.PutUint32(block[2:6], h.Length)
	binary.BigEndian.PutUint64(block[6:14], h.Version)
	binary.BigEndian.PutUint32(block[14:18], h.Checksum)
	// bytes [18:64) are reserved, left zero.
	return block
}

// Decode parses the header out of a BlockSize-byte block and validates its
// checksum. ok is false if the checksum does not match the payload. An
// all-zero block, as left by extending the file, decodes as a valid empty
// block of TypeFree.
func Decode(block []byte) (h Header, payload []byte, ok bool) {
	h.Type = binary.BigEndian.Uint16(block[0:2])
	h.Length = binary.BigEndian.Uint32(block[2:6])
	h.Version = binary.BigEndian.Uint64(block[6:14])
	h.Checksum = binary.BigEndian.Uint32(block[14:18])

	body := block[HeaderSize:]
	ok = crc32.ChecksumIEEE(body) == h.Checksum
	if !ok && h == (Header{}) {
		ok = true
		for _, c := range block {
			if c != 0 {
				ok = false
				break
			}
		}
	}

	if h.Length > PayloadSize {
		return h, nil, false
	}
	return h, body[:h.Length:h.Length], ok
}

// Offset returns the byte offset of block id within the file.
func Offset(id uint64) int64 {
	return int64(id) * BlockSize
}
