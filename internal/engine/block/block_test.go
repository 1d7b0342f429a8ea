package block

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/lithoglyph/internal/engine/errs"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), uuid.NewString()+".lgh")
}

func TestWriteReadRoundTrip(t *testing.T) {
	bf, err := Open(tempPath(t))
	require.NoError(t, err)
	defer bf.Close()

	_, err = bf.Extend(4)
	require.NoError(t, err)

	payload := []byte(`{"name":"Bob","age":30}`)
	h := format.Header{Type: format.TypeDocument, Version: 1}
	require.NoError(t, bf.WriteBlock(2, h, payload))
	require.NoError(t, bf.Sync())

	got, gotPayload, err := bf.ReadBlock(2)
	require.NoError(t, err)
	require.Equal(t, format.TypeDocument, got.Type)
	require.Equal(t, uint64(1), got.Version)
	require.Equal(t, payload, gotPayload)
}

func TestReadBlockDetectsCorruption(t *testing.T) {
	bf, err := Open(tempPath(t))
	require.NoError(t, err)
	defer bf.Close()

	_, err = bf.Extend(2)
	require.NoError(t, err)

	h := format.Header{Type: format.TypeDocument, Version: 1}
	require.NoError(t, bf.WriteBlock(0, h, []byte("hello")))
	require.NoError(t, bf.Sync())

	// Corrupt a payload byte directly, bypassing WriteBlock's checksum.
	garbage := make([]byte, 1)
	garbage[0] = 0xFF
	raw := make([]byte, format.BlockSize)
	n, err := bf.f.ReadAt(raw, 0)
	require.NoError(t, err)
	require.Equal(t, format.BlockSize, n)
	raw[format.HeaderSize] ^= 0xFF
	_, err = bf.f.WriteAt(raw, 0)
	require.NoError(t, err)

	_, _, err = bf.ReadBlock(0)
	require.ErrorIs(t, err, errs.ErrCorruption)
}

func TestReadBlockPastEOFIsCorruption(t *testing.T) {
	bf, err := Open(tempPath(t))
	require.NoError(t, err)
	defer bf.Close()

	_, _, err = bf.ReadBlock(5)
	require.ErrorIs(t, err, errs.ErrCorruption)
}

func TestExtendZeroFillsAndGrowsBlockCount(t *testing.T) {
	bf, err := Open(tempPath(t))
	require.NoError(t, err)
	defer bf.Close()

	first, err := bf.Extend(3)
	require.NoError(t, err)
	require.Equal(t, uint64(0), first)

	count, err := bf.BlockCount()
	require.NoError(t, err)
	require.Equal(t, uint64(3), count)

	_, payload, err := bf.ReadBlock(1)
	require.NoError(t, err)
	require.Empty(t, payload)
}

func TestWriteBlockRejectsOversizedPayload(t *testing.T) {
	bf, err := Open(tempPath(t))
	require.NoError(t, err)
	defer bf.Close()
	_, err = bf.Extend(1)
	require.NoError(t, err)

	big := make([]byte, format.PayloadSize+1)
	err = bf.WriteBlock(0, format.Header{Type: format.TypeDocument}, big)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}
