package alloc

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/lithoglyph/internal/engine/block"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
)

func openBlockFile(t *testing.T) *block.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), uuid.NewString()+".lgh")
	bf, err := block.Open(path)
	require.NoError(t, err)
	_, err = bf.Extend(format.FirstDataBlockID)
	require.NoError(t, err)
	t.Cleanup(func() { bf.Close() })
	return bf
}

func TestAllocateGrowsFileWhenFreeListEmpty(t *testing.T) {
	bf := openBlockFile(t)
	a := New(bf, format.FirstDataBlockID, 0)

	id, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, format.FirstDataBlockID, id)
	require.Equal(t, format.FirstDataBlockID+format.GrowthStep, a.BlockCount())
	require.NotZero(t, a.FreeListHead())
}

func TestAllocateDrainsFreeListBeforeGrowing(t *testing.T) {
	bf := openBlockFile(t)
	a := New(bf, format.FirstDataBlockID, 0)

	first, err := a.Allocate()
	require.NoError(t, err)
	countAfterGrowth := a.BlockCount()

	// The remaining GrowthStep-1 blocks are already chained; draining them
	// must not trigger another file extension.
	seen := map[uint64]bool{first: true}
	for i := uint64(0); i < format.GrowthStep-1; i++ {
		id, err := a.Allocate()
		require.NoError(t, err)
		require.False(t, seen[id], "block %d allocated twice", id)
		seen[id] = true
	}
	require.Equal(t, countAfterGrowth, a.BlockCount())
	require.Zero(t, a.FreeListHead())
}

func TestReleaseIsReusedWithoutIO(t *testing.T) {
	bf := openBlockFile(t)
	a := New(bf, format.FirstDataBlockID, 0)

	id, err := a.Allocate()
	require.NoError(t, err)
	a.Release(id)

	got, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestFreeThreadsOntoDiskFreeList(t *testing.T) {
	bf := openBlockFile(t)
	a := New(bf, format.FirstDataBlockID, 0)

	id, err := a.Allocate()
	require.NoError(t, err)
	require.NoError(t, a.Free(id))
	require.Equal(t, id, a.FreeListHead())

	got, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, id, got)
}
