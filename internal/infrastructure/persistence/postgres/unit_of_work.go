package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// txKey carries the active transaction through the context so that every
// repository call inside a UnitOfWork scope runs on the same transaction.
type txKey struct{}

// UnitOfWork implements specialization.UnitOfWork on top of pgx transactions.
type UnitOfWork struct {
	conn *Connection
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// WithinTx executes fn inside one transaction. Repositories that receive the
// derived context join the transaction; a returned error rolls everything back.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		// Already inside a transaction scope, join it.
		return fn(ctx)
	}
	return u.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// querier returns the transaction bound to the context, or the pool.
func (r *Connection) querier(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.Pool()
}
