package uow

import (
	"context"

	"eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/offer"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Offers() offer.Repository
	Bookings() booking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that carry driver state (a Mongo
// session, a pgx transaction) which repositories pick up from the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}
