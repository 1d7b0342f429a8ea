package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func tempJournalPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), uuid.NewString()+".journal")
}

func TestAppendReplayRoundTrip(t *testing.T) {
	path := tempJournalPath(t)
	j, err := Open(path)
	require.NoError(t, err)

	rec1 := Record{Sequence: 1, Ops: []Op{{Kind: OpInsert, BlockID: 2, Version: 1, Payload: []byte("hello")}}}
	rec2 := Record{Sequence: 2, Ops: []Op{{Kind: OpDelete, BlockID: 2}}}
	require.NoError(t, j.Append(rec1))
	require.NoError(t, j.Append(rec2))
	require.NoError(t, j.Sync())
	require.NoError(t, j.Close())

	records, err := Replay(path, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, rec1, records[0])
	require.Equal(t, rec2, records[1])
}

func TestReplaySinceFiltersOlderRecords(t *testing.T) {
	path := tempJournalPath(t)
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(Record{Sequence: 1, Ops: []Op{{Kind: OpInsert, BlockID: 1}}}))
	require.NoError(t, j.Append(Record{Sequence: 2, Ops: []Op{{Kind: OpInsert, BlockID: 2}}}))
	require.NoError(t, j.Sync())
	require.NoError(t, j.Close())

	records, err := Replay(path, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, uint64(2), records[0].Sequence)
}

func TestReplayTruncatesTornTail(t *testing.T) {
	path := tempJournalPath(t)
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(Record{Sequence: 1, Ops: []Op{{Kind: OpInsert, BlockID: 1, Payload: []byte("abc")}}}))
	require.NoError(t, j.Sync())
	require.NoError(t, j.Close())

	// Simulate a crash mid-append: append a truncated second record.
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0600)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x00, 0x00, 0x00, 0x20, 0x01, 0x02})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := Replay(path, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, uint64(1), records[0].Sequence)
}

func TestReplayMissingFileReturnsEmpty(t *testing.T) {
	records, err := Replay(filepath.Join(t.TempDir(), "nonexistent.journal"), 0)
	require.NoError(t, err)
	require.Empty(t, records)
}
