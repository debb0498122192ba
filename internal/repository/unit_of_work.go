package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/port"
)

type unitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) port.UnitOfWork {
	return &unitOfWork{pool: pool}
}

func (u *unitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, repos port.TxRepositories) error) error {
	_, err := inTx(ctx, u.pool, func(tx pgx.Tx) (struct{}, error) {
		repos := port.TxRepositories{
			Orders:  NewOrderWithTx(tx),
			Returns: NewReturnWithTx(tx),
		}
		return struct{}{}, fn(ctx, repos)
	})
	return err
}
