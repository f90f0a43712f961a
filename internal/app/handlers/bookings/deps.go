// Package bookings holds the commands and queries that move a booking through
// its payment and status lifecycle.
package bookings

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/outbox"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/uow"
	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/settlement"
)

// Deps are the collaborators shared by the booking handlers.
type Deps struct {
	UoW        uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Settlement *settlement.Service
	Commission policies.CommissionPort
	Clock      policies.Clock
	NewID      func() string
	Logger     *slog.Logger

	DefaultCurrency string
	// AutoConfirm confirms a pending booking as soon as a payment reaches
	// the auto-confirm threshold of the settlement policy.
	AutoConfirm bool
}

func (d Deps) now() time.Time {
	return policies.NowOr(d.Clock)
}

func (d Deps) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

func (d Deps) encoder() outbox.EventEncoder {
	if d.Encoder != nil {
		return d.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Deps) rate(ctx context.Context, supplierID string) (decimal.Decimal, error) {
	if d.Commission == nil {
		return decimal.Zero, nil
	}
	return d.Commission.RateFor(ctx, supplierID)
}

// mutate loads a booking, applies change and saves the result with the
// version check of the repository.
func (d Deps) mutate(ctx context.Context, id domainbooking.ID, change func(domainbooking.Booking) (domainbooking.Booking, error)) (domainbooking.Booking, error) {
	unit, ctx, finish, err := uow.Join(ctx, d.UoW, uow.TxOptions{})
	if err != nil {
		return domainbooking.Booking{}, err
	}
	defer finish(false)

	current, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	next, err := change(current)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	saved, err := unit.Bookings().Save(ctx, next)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	if err := outbox.Drain(ctx, d.Outbox, d.encoder(), &next); err != nil {
		return domainbooking.Booking{}, err
	}
	if err := finish(true); err != nil {
		return domainbooking.Booking{}, err
	}
	if current.Status != saved.Status {
		d.logger().InfoContext(ctx, "booking status changed", "booking_id", id, "from", current.Status, "to", saved.Status)
	}
	return saved, nil
}

func bookingResult(b domainbooking.Booking) *dto.Booking {
	out := dto.BookingFrom(b)
	return &out
}
