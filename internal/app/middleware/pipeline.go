package middleware

import (
	"context"
	"log/slog"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/outbox"
	"eventmarket/internal/app/queries"
	"eventmarket/internal/app/uow"
)

// CommandMiddleware wraps a command bus with additional behavior (logging, tx, etc.).
type CommandMiddleware func(next commands.Bus) commands.Bus

// QueryMiddleware wraps a query bus with extra behavior.
type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands builds a command bus wrapped with the provided middleware (outermost first).
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

// ChainQueries builds a query bus with middleware applied.
func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

// Deps are the collaborators of the standard pipelines.
type Deps struct {
	Logger      *slog.Logger
	Validator   Validator
	Idempotency IdempotencyStore
	UoW         uow.Factory
	Outbox      outbox.Outbox
}

// StandardCommands wraps base with logging, authorization, validation,
// idempotency, transaction and outbox flush, outermost first. The idempotency
// record is written only after the transaction committed.
func StandardCommands(base commands.Bus, d Deps) commands.Bus {
	mws := []CommandMiddleware{
		Logging(d.Logger),
		Authorization(ActorRequired{}),
	}
	if d.Validator != nil {
		mws = append(mws, Validation(d.Validator))
	}
	if d.Idempotency != nil {
		mws = append(mws, Idempotency(d.Idempotency, nil, d.Logger))
	}
	mws = append(mws, Transaction(d.UoW, nil))
	if d.Outbox != nil {
		mws = append(mws, OutboxFlush(d.Outbox))
	}
	return ChainCommands(base, mws...)
}

// StandardQueries wraps base with logging, authorization and validation.
func StandardQueries(base queries.Bus, d Deps) queries.Bus {
	mws := []QueryMiddleware{
		QueryLogging(d.Logger),
		QueryAuthorization(ActorRequired{}),
	}
	if d.Validator != nil {
		mws = append(mws, QueryValidation(d.Validator))
	}
	return ChainQueries(base, mws...)
}

// commandFunc allows lightweight middleware composition without new structs per wrapper.
type commandFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f commandFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

func wrapCommand(next commands.Bus) commandFunc {
	return func(ctx context.Context, cmd commands.Command) (any, error) {
		return next.Dispatch(ctx, cmd)
	}
}

type queryFunc func(ctx context.Context, query queries.Query) (any, error)

func (f queryFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

func wrapQuery(next queries.Bus) queryFunc {
	return func(ctx context.Context, q queries.Query) (any, error) {
		return next.Ask(ctx, q)
	}
}
