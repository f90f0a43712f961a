package memory

import (
	"context"

	"eventmarket/internal/app/uow"
	domainbooking "eventmarket/internal/domain/booking"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/failure"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	OffersRepo   domainoffer.Repository
	BookingsRepo domainbooking.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = failure.New(failure.KindServer, "memory: unit of work factory misconfigured")

func NewFactory() Factory {
	return Factory{OffersRepo: NewOfferRepository(), BookingsRepo: NewBookingRepository()}
}

// Begin starts a lightweight transaction boundary. No isolation is provided;
// the conditional writes of the repositories carry the concurrency guarantees.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.OffersRepo == nil || f.BookingsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{offers: f.OffersRepo, bookings: f.BookingsRepo}, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	offers   domainoffer.Repository
	bookings domainbooking.Repository
}

func (u *Unit) Offers() domainoffer.Repository {
	return u.offers
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.Factory = Factory{}
