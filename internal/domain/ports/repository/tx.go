package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an infra-defined transaction handle (pgx.Tx for Postgres).
type Tx interface{}

// NoTX selects the non-transactional path in repository calls.
var NoTX Tx

// TransactionManager executes fn within a single store transaction, passing the
// handle through tx. Repositories accept the handle and must also accept NoTX.
//
// USAGE
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx Tx) error {
//		if err := orders.Create(ctx, tx, o); err != nil {
//			return err
//		}
//		return orders.CreateLineItem(ctx, tx, li)
//	})
//
// If fn returns an error, every write made through tx is discarded.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
