// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the statement surface shared by [*pgxpool.Pool] and [pgx.Tx].
//
// Repositories depend on Querier so the same SQL runs on the pool or inside
// an open transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults
}

// Transactor runs a unit of work atomically.
//
// Services depend on this interface rather than on the pool so tests can swap
// in a pass-through implementation.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// TxManager is the pgx-backed [Transactor].
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a [TxManager] over the shared pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

/*
InTx executes fn inside a database transaction.

Description: The transaction is stored in the context handed to fn, so every
repository call made with that context joins it (see [Conn]). A nested InTx
call reuses the outer transaction. The transaction commits when fn returns nil
and rolls back on error or panic.

Parameters:
  - ctx: context.Context
  - fn: func(ctx context.Context) error (The unit of work)

Returns:
  - error: fn's error, or begin/commit failures
*/
func (manager *TxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {

	// Join an already open transaction
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	transaction, err := manager.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}

	// Rollback is a no-op once Commit succeeded; it also runs while a panic unwinds.
	defer func() {
		if err != nil {
			_ = transaction.Rollback(context.WithoutCancel(ctx))
		}
	}()
	defer func() {
		if recovered := recover(); recovered != nil {
			_ = transaction.Rollback(context.WithoutCancel(ctx))
			panic(recovered)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, transaction)); err != nil {
		return err
	}

	if err = transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit transaction: %w", err)
	}

	return nil
}

// Conn returns the transaction carried by ctx, or the pool when none is open.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if transaction, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return transaction
	}
	return pool
}
