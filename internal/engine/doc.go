/*
Package engine implements the block-structured document store: a single
writer, multiple readers, crash-safe via write-ahead journaling, backed
by a fixed 4 KiB block file and a two-copy superblock.

A Database is opened once per process per file and owns the block file,
journal, allocator, and commit coordinator. Transaction is either a
read-only transaction, which records the last committed sequence when it
begins, or the single active write transaction serialized against all
others by an internal mutex. Transaction.Get reads the block file's
current contents in both cases; a write transaction does not see its own
uncommitted writes.

# Usage

	db, err := engine.Open("warehouse.lgh")
	tx, err := db.Begin(engine.ReadWrite)
	id, err := tx.Insert([]byte(`{"sku":"A1"}`))
	err = tx.Commit()

See pkg/bridge for the foreign-function-shaped view of this package.
*/
package engine
