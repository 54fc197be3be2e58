package engine

import "github.com/google/uuid"

// TransactionStatus tracks a transaction's lifecycle: a transaction groups
// several Insert/Delete/Update/ApplyDelta calls into one batch that
// flushes atomically, or is discarded entirely on rollback.
type TransactionStatus string

const (
	TxnOpen      TransactionStatus = "open"
	TxnCommitted TransactionStatus = "committed"
	TxnAborted   TransactionStatus = "aborted"
)

// Transaction is a handle to one open transaction. Obtain one with
// Engine.BeginTransaction and close it with End or Rollback (or use
// Engine.Transaction for the common begin/commit-or-rollback pattern).
type Transaction struct {
	engine *Engine
	id     string
	status TransactionStatus
}

// ID returns the transaction's unique identifier, assigned at
// BeginTransaction time (spec §6.1-6.2 ambient identification).
func (t *Transaction) ID() string { return t.id }

// Status reports the transaction's current lifecycle state.
func (t *Transaction) Status() TransactionStatus { return t.status }

// End commits the transaction: its accumulated batch is flushed through
// every registered query graph. Calling End on an already-closed
// transaction returns a StateError.
func (t *Transaction) End() error {
	if t.status != TxnOpen {
		return &StateError{Op: "Transaction.End", Reason: "transaction is not open"}
	}
	t.status = TxnCommitted
	t.engine.mu.Lock()
	t.engine.inTxn = false
	t.engine.mu.Unlock()
	return t.engine.FlushAll()
}

// Rollback discards the transaction's accumulated batch without
// propagating it anywhere. Calling Rollback on an already-closed
// transaction returns a StateError.
func (t *Transaction) Rollback() error {
	if t.status != TxnOpen {
		return &StateError{Op: "Transaction.Rollback", Reason: "transaction is not open"}
	}
	t.status = TxnAborted
	t.engine.mu.Lock()
	t.engine.batch.discard()
	t.engine.inTxn = false
	t.engine.mu.Unlock()
	return nil
}
