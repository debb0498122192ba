package port

import "context"

// TxRepositories share one transaction.
type TxRepositories struct {
	Orders  OrderRepository
	Returns ReturnRepository
}

type UnitOfWork interface {
	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
