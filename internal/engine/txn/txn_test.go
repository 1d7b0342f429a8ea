package txn

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/lithoglyph/internal/engine/alloc"
	"github.com/hyperpolymath/lithoglyph/internal/engine/block"
	"github.com/hyperpolymath/lithoglyph/internal/engine/errs"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
)

func newAllocator(t *testing.T) *alloc.Allocator {
	t.Helper()
	path := filepath.Join(t.TempDir(), uuid.NewString()+".lgh")
	bf, err := block.Open(path)
	require.NoError(t, err)
	_, err = bf.Extend(format.FirstDataBlockID)
	require.NoError(t, err)
	t.Cleanup(func() { bf.Close() })
	return alloc.New(bf, format.FirstDataBlockID, 0)
}

func TestReadOnlyBufferRejectsMutation(t *testing.T) {
	b := NewBuffer(true, nil)
	_, err := b.Insert([]byte("x"))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	require.ErrorIs(t, b.Update(1, []byte("x")), errs.ErrInvalidArgument)
	require.ErrorIs(t, b.Delete(1), errs.ErrInvalidArgument)
}

func TestInsertThenDeleteCancelsWithoutEffect(t *testing.T) {
	a := newAllocator(t)
	b := NewBuffer(false, a)

	id, err := b.Insert([]byte("doc"))
	require.NoError(t, err)
	require.NoError(t, b.Delete(id))

	require.True(t, b.Empty())
	require.Empty(t, b.Effects())

	// The released ID must be immediately reusable.
	again, err := b.Insert([]byte("doc2"))
	require.NoError(t, err)
	require.Equal(t, id, again)
}

func TestUpdateCollapsesToLatestPayload(t *testing.T) {
	a := newAllocator(t)
	b := NewBuffer(false, a)

	require.NoError(t, b.Update(10, []byte("first")))
	require.NoError(t, b.Update(10, []byte("second")))

	effects := b.Effects()
	require.Len(t, effects, 1)
	require.Equal(t, []byte("second"), effects[0].Payload)
	require.Equal(t, KindUpdate, effects[0].Kind)
}

func TestDeleteOverridesPriorUpdate(t *testing.T) {
	a := newAllocator(t)
	b := NewBuffer(false, a)

	require.NoError(t, b.Update(10, []byte("first")))
	require.NoError(t, b.Delete(10))

	effects := b.Effects()
	require.Len(t, effects, 1)
	require.Equal(t, KindDelete, effects[0].Kind)
}

func TestInsertRejectsOversizedPayload(t *testing.T) {
	a := newAllocator(t)
	b := NewBuffer(false, a)
	big := make([]byte, format.PayloadSize+1)
	_, err := b.Insert(big)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}
