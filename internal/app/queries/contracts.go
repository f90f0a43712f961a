package queries

import (
	"context"
	"fmt"

	"eventmarket/internal/domain/shared/failure"
)

// Query is a read such as listing a supplier's bookings or quoting a
// refund. Queries never write.
type Query interface {
	Key() string
}

// Handler answers one query type.
type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// HandlerFunc lets a plain function serve as a Handler.
type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

// Handle executes f(ctx, query).
func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

// Bus routes a query to its handler; middleware wraps a Bus.
type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = failure.New(failure.KindServer, "queries: handler not found")
	ErrInvalidQuery    = failure.New(failure.KindServer, "queries: invalid query for handler")
	ErrResultType      = failure.New(failure.KindServer, "queries: result type mismatch")
	ErrNilBus          = failure.New(failure.KindServer, "queries: nil bus")
)

// Ask sends query through bus and asserts the result type.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrResultType, res, zero)
	}
	return value, nil
}
