package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles storage transactions.
// Structural mutations (folder create/move/delete cascades) run inside ExecTx:
// either every write in fn commits or none does. A call made with a context
// that already carries a transaction joins it instead of opening a new one.
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}
