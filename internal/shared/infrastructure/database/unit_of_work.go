package database

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoTransaction is returned when committing or rolling back without a transaction.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// txState is the transaction a context carries and whether the unit of
// work that began it owns it.
type txState struct {
	tx    Transaction
	owned bool
}

func withTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, txState{tx: tx, owned: owned})
}

func txFrom(ctx context.Context) (txState, bool) {
	state, ok := ctx.Value(txKey{}).(txState)
	return state, ok && state.tx != nil
}

// ExecutorFromContext returns the transaction in ctx, or conn when there is none.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if state, ok := txFrom(ctx); ok {
		return state.tx
	}
	return conn
}

// UnitOfWork scopes a group of repository writes to one transaction
// carried in the context.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// Begin starts a transaction and stores it in the context. A transaction
// already in the context is joined instead; the outer owner commits it.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if state, ok := txFrom(ctx); ok {
		return withTx(ctx, state.tx, false), nil
	}

	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return withTx(ctx, tx, true), nil
}

// Commit commits the transaction if this unit owns it.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	state, ok := txFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !state.owned {
		return nil
	}
	return state.tx.Commit(ctx)
}

// Rollback rolls back the transaction if this unit owns it.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	state, ok := txFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !state.owned {
		return nil
	}
	return state.tx.Rollback(ctx)
}

// Run executes fn inside a transaction, committing on success and rolling
// back when fn fails.
func (u *UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, err := u.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		if rbErr := u.Rollback(txCtx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	return u.Commit(txCtx)
}
