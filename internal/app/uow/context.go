package uow

import (
	"context"

	"eventmarket/internal/domain/shared/failure"
)

var ErrUnitOfWorkMissing = failure.New(failure.KindServer, "uow: unit of work missing from context")

type ctxKey struct{}

// ContextWithUnitOfWork stores the provided unit of work in context.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

// FromContext retrieves a unit of work from context if present.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	val := ctx.Value(ctxKey{})
	if val == nil {
		return nil, false
	}
	unit, ok := val.(UnitOfWork)
	return unit, ok
}

// Attach makes unit visible to repositories running under the returned context.
func Attach(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return ContextWithUnitOfWork(ctx, unit)
}

// Finish ends a unit obtained from Join. Calling it with commit=false after a
// successful commit is a no-op, so it can be deferred.
type Finish func(commit bool) error

// Join reuses the unit already carried by ctx or begins a new one from
// factory. Only a unit begun here is committed or rolled back by Finish.
func Join(ctx context.Context, factory Factory, opts TxOptions) (UnitOfWork, context.Context, Finish, error) {
	if unit, ok := FromContext(ctx); ok {
		return unit, ctx, func(bool) error { return nil }, nil
	}
	if factory == nil {
		return nil, ctx, nil, ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := Attach(ctx, unit)
	done := false
	finish := func(commit bool) error {
		if done {
			return nil
		}
		done = true
		if commit {
			return unit.Commit(execCtx)
		}
		return unit.Rollback(execCtx)
	}
	return unit, execCtx, finish, nil
}
