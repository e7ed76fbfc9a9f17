package database

import (
	"context"
	"errors"
	"sync"
)

// ErrNoTransaction is returned by Commit and Rollback outside of Begin.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

type txInfo struct {
	tx    Transaction
	owner bool
	hooks *commitHooks
}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

func (h *commitHooks) add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *commitHooks) run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// ExecutorFromContext returns the transaction bound to ctx, or conn when there is none.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if info, ok := ctx.Value(txKey{}).(txInfo); ok && info.tx != nil {
		return info.tx
	}
	return conn
}

// AfterCommit runs fn once the transaction bound to ctx commits, or right away
// when ctx carries no transaction. fn is dropped on rollback.
func AfterCommit(ctx context.Context, fn func()) {
	if info, ok := ctx.Value(txKey{}).(txInfo); ok && info.tx != nil {
		info.hooks.add(fn)
		return
	}
	fn()
}

// UnitOfWork binds a transaction to a context. Nested Begin calls join the outer transaction.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork returns a UnitOfWork on conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if info, ok := ctx.Value(txKey{}).(txInfo); ok && info.tx != nil {
		return context.WithValue(ctx, txKey{}, txInfo{tx: info.tx, hooks: info.hooks}), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, txInfo{tx: tx, owner: true, hooks: &commitHooks{}}), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	info, ok := ctx.Value(txKey{}).(txInfo)
	if !ok {
		return ErrNoTransaction
	}
	if !info.owner {
		return nil
	}
	if err := info.tx.Commit(ctx); err != nil {
		return err
	}
	info.hooks.run()
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	info, ok := ctx.Value(txKey{}).(txInfo)
	if !ok {
		return ErrNoTransaction
	}
	if !info.owner {
		return nil
	}
	return info.tx.Rollback(ctx)
}
