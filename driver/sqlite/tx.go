package sqlite

import (
	"github.com/twoporeguys/libpersist/persisterr"
)

// StartTx opens a transaction pinned to a single underlying connection,
// so every statement issued until CommitTx/RollbackTx sees a consistent
// view and none of the driver's writes interleave with another
// transaction's. Calling it while a transaction is already open is a
// Conflict, not a silent no-op or a nested transaction.
func (d *Driver) StartTx() error {
	d.txMu.Lock()
	if d.tx != nil {
		d.txMu.Unlock()
		return persisterr.New(persisterr.Conflict, "sqlite: transaction already in progress")
	}
	d.txMu.Unlock()

	writeMu.Lock()
	defer writeMu.Unlock()

	d.txMu.Lock()
	defer d.txMu.Unlock()

	if d.tx != nil {
		return persisterr.New(persisterr.Conflict, "sqlite: transaction already in progress")
	}

	tx, err := d.db.Begin()
	if err != nil {
		return persisterr.New(persisterr.Internal, "sqlite: begin: %v", err)
	}

	d.traceStatement("BEGIN")
	d.tx = tx
	return nil
}

// CommitTx commits the open transaction.
func (d *Driver) CommitTx() error {
	writeMu.Lock()
	defer writeMu.Unlock()

	d.txMu.Lock()
	tx := d.tx
	d.txMu.Unlock()

	if tx == nil {
		return persisterr.New(persisterr.InvalidArgument, "sqlite: no transaction in progress")
	}

	d.traceStatement("COMMIT")
	err := tx.Commit()

	d.txMu.Lock()
	d.tx = nil
	d.txMu.Unlock()

	if err != nil {
		return persisterr.New(persisterr.Internal, "sqlite: commit: %v", err)
	}
	return nil
}

// RollbackTx discards the open transaction's writes.
func (d *Driver) RollbackTx() error {
	d.txMu.Lock()
	tx := d.tx
	d.tx = nil
	d.txMu.Unlock()

	if tx == nil {
		return persisterr.New(persisterr.InvalidArgument, "sqlite: no transaction in progress")
	}

	d.traceStatement("ROLLBACK")
	if err := tx.Rollback(); err != nil {
		return persisterr.New(persisterr.Internal, "sqlite: rollback: %v", err)
	}
	return nil
}

// InTx reports whether a transaction is currently open on this driver.
func (d *Driver) InTx() bool {
	d.txMu.Lock()
	defer d.txMu.Unlock()
	return d.tx != nil
}
