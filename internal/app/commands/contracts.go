package commands

import (
	"context"
	"fmt"

	"eventmarket/internal/domain/shared/failure"
)

// Command is a state change such as accepting an offer or recording a
// payment. Key names the handler registered for it and prefixes its
// idempotency records.
type Command interface {
	Key() string
}

// Handler applies one command type and returns its result.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc lets a plain function serve as a Handler.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

// Handle calls f(ctx, cmd).
func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Bus routes a command to its handler; middleware wraps a Bus.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = failure.New(failure.KindServer, "commands: handler not found")
	ErrInvalidCommand  = failure.New(failure.KindServer, "commands: invalid command for handler")
	ErrResultType      = failure.New(failure.KindServer, "commands: result type mismatch")
	ErrNilBus          = failure.New(failure.KindServer, "commands: nil bus")
)

// Dispatch sends cmd through bus and asserts the result type. A nil result
// yields the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
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
