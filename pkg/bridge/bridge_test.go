package bridge

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errAlwaysFails = errors.New("always fails")

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), uuid.NewString()+".lgh")
}

func TestDatabaseOpenCloseRoundTrip(t *testing.T) {
	db, res := DatabaseOpen(tempDBPath(t))
	require.Equal(t, StatusOK, res.Status)
	require.NotNil(t, db)

	res = DatabaseClose(db)
	require.Equal(t, StatusOK, res.Status)
}

func TestInsertCommitGetThroughBridge(t *testing.T) {
	db, res := DatabaseOpen(tempDBPath(t))
	require.Equal(t, StatusOK, res.Status)
	defer DatabaseClose(db)

	tx, res := TransactionBegin(db, TxnReadWrite)
	require.Equal(t, StatusOK, res.Status)

	insertRes := DocumentInsert(tx, Blob(`{"a":1}`))
	require.Equal(t, StatusOK, insertRes.Status)
	require.Len(t, insertRes.Value, 8)

	require.Equal(t, StatusOK, TransactionCommit(tx).Status)

	rtx, res := TransactionBegin(db, TxnReadOnly)
	require.Equal(t, StatusOK, res.Status)
	defer TransactionCommit(rtx)

	getRes := DocumentGet(rtx, decodeID(insertRes.Value))
	require.Equal(t, StatusOK, getRes.Status)
	require.Equal(t, `{"a":1}`, string(getRes.Value))
}

func decodeID(b Blob) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func TestNotImplementedStubsReportStatus(t *testing.T) {
	db, res := DatabaseOpen(tempDBPath(t))
	require.Equal(t, StatusOK, res.Status)
	defer DatabaseClose(db)

	require.Equal(t, StatusNotImplemented, DatabaseBackup(db, "x").Status)
	require.Equal(t, StatusNotImplemented, DatabaseRestore(db, "x").Status)
	require.Equal(t, StatusNotImplemented, DatabaseCompact(db).Status)
}

func TestSchemaAndConstraintsThroughBridge(t *testing.T) {
	db, res := DatabaseOpen(tempDBPath(t))
	require.Equal(t, StatusOK, res.Status)
	defer DatabaseClose(db)

	schemaRes := Schema(db)
	require.Equal(t, StatusOK, schemaRes.Status)
	require.Contains(t, string(schemaRes.Value), "fd-holds")

	constraintsRes := Constraints(db)
	require.Equal(t, StatusOK, constraintsRes.Status)
	require.Contains(t, string(constraintsRes.Value), "fd-holds:")
}

func TestProofVerifyThroughBridge(t *testing.T) {
	db, res := DatabaseOpen(tempDBPath(t))
	require.Equal(t, StatusOK, res.Status)
	defer DatabaseClose(db)

	require.Equal(t, StatusOK, ProofVerify(db, "fd-holds", Blob("hi")).Status)
	require.Equal(t, StatusInvalidArgument, ProofVerify(db, "fd-holds", Blob("")).Status)
	require.Equal(t, StatusNotFound, ProofVerify(db, "no-such-proof", Blob("hi")).Status)
}

func TestVersionReturnsFixedEncodedValue(t *testing.T) {
	require.Equal(t, uint32(100), Version())
}

func TestProofRegisterAndUnregisterVerifierThroughBridge(t *testing.T) {
	db, res := DatabaseOpen(tempDBPath(t))
	require.Equal(t, StatusOK, res.Status)
	defer DatabaseClose(db)

	registerRes := ProofRegisterVerifier(db, "always-fails", "never holds", func(Blob) error {
		return errAlwaysFails
	})
	require.Equal(t, StatusOK, registerRes.Status)
	require.Equal(t, StatusInternal, ProofVerify(db, "always-fails", Blob("x")).Status)

	require.Equal(t, StatusOK, ProofUnregisterVerifier(db, "always-fails").Status)
	require.Equal(t, StatusNotFound, ProofVerify(db, "always-fails", Blob("x")).Status)
	require.Equal(t, StatusNotFound, ProofUnregisterVerifier(db, "always-fails").Status)
}

func TestProofInitBuiltinsRestoresBuiltinVerifiers(t *testing.T) {
	db, res := DatabaseOpen(tempDBPath(t))
	require.Equal(t, StatusOK, res.Status)
	defer DatabaseClose(db)

	require.Equal(t, StatusOK, ProofUnregisterVerifier(db, "fd-holds").Status)
	require.Equal(t, StatusNotFound, ProofVerify(db, "fd-holds", Blob("x")).Status)

	require.Equal(t, StatusOK, ProofInitBuiltins(db).Status)
	require.Equal(t, StatusOK, ProofVerify(db, "fd-holds", Blob("x")).Status)
}
