package middleware

import (
	"context"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/queries"
	"eventmarket/internal/domain/shared/failure"
)

var ErrActorRequired = failure.New(failure.KindUnauthorized, "middleware: acting user required")

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// ActorRequired rejects messages that name no acting user. Messages that do
// not expose an actor pass through.
type ActorRequired struct{}

func (ActorRequired) Authorize(_ context.Context, message any) error {
	actor, ok := message.(interface{ ActorID() string })
	if !ok {
		return nil
	}
	if actor.ActorID() == "" {
		return ErrActorRequired
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
