package superblock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/lithoglyph/internal/engine/block"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
)

func openBlockFile(t *testing.T) (*block.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), uuid.NewString()+".lgh")
	bf, err := block.Open(path)
	require.NoError(t, err)
	_, err = bf.Extend(2)
	require.NoError(t, err)
	t.Cleanup(func() { bf.Close() })
	return bf, path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	bf, _ := openBlockFile(t)
	sb := Superblock{FormatVersion: FormatVersion, BlockCount: 64, FreeListHead: 7, LastSequence: 42}
	require.NoError(t, Save(bf, sb))

	got, err := Load(bf)
	require.NoError(t, err)
	require.Equal(t, sb, got)
}

func TestLoadFallsBackToShadowOnPrimaryCorruption(t *testing.T) {
	bf, path := openBlockFile(t)
	sb := Superblock{FormatVersion: FormatVersion, BlockCount: 64, FreeListHead: 0, LastSequence: 3}
	require.NoError(t, Save(bf, sb))
	require.NoError(t, bf.Close())

	// Flip a payload byte in the primary copy directly on disk, bypassing
	// WriteBlock so the stored checksum no longer matches.
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	require.NoError(t, err)
	offset := format.Offset(format.SuperblockPrimaryID) + format.HeaderSize
	_, err = f.WriteAt([]byte{0xFF}, offset)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	bf2, err := block.Open(path)
	require.NoError(t, err)
	defer bf2.Close()

	got, err := Load(bf2)
	require.NoError(t, err)
	require.Equal(t, sb, got)
}

func TestLoadReturnsCorruptionWhenBothCopiesInvalid(t *testing.T) {
	bf, path := openBlockFile(t)
	sb := Superblock{FormatVersion: FormatVersion, BlockCount: 64, FreeListHead: 0, LastSequence: 3}
	require.NoError(t, Save(bf, sb))
	require.NoError(t, bf.Close())

	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	require.NoError(t, err)
	for _, id := range []uint64{format.SuperblockPrimaryID, format.SuperblockShadowID} {
		offset := format.Offset(id) + format.HeaderSize
		_, err = f.WriteAt([]byte{0xFF}, offset)
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	bf2, err := block.Open(path)
	require.NoError(t, err)
	defer bf2.Close()

	_, err = Load(bf2)
	require.Error(t, err)
}
