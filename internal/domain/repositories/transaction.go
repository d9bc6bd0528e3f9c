package repositories

import "context"

// TxFn is a function that runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions. The archive/restore
// cascades run through it so a partial cascade never commits.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
