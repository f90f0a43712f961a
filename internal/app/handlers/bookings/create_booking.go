package bookings

import (
	"context"
	"time"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/middleware"
	"eventmarket/internal/app/outbox"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/uow"
	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/money"
)

const createBookingKey = "bookings.create"

// CreateBookingCommand books a supplier directly, without a negotiated offer.
// The acting user becomes the client.
type CreateBookingCommand struct {
	Actor         policies.Actor
	SupplierID    string    `validate:"required"`
	PackageID     string
	EventName     string    `validate:"required,max=200"`
	EventDate     time.Time `validate:"required"`
	EventTime     string
	EventLocation string
	Notes         string `validate:"max=2000"`
	TotalAmount   int64  `validate:"gt=0"`
	Currency      string `validate:"omitempty,len=3"`
	RequestID     string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) ActorID() string { return c.Actor.ID }

func (c CreateBookingCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return c.Actor.ID + ":" + c.RequestID
}

func (c CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type CreateBookingHandler struct {
	Deps
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	currency := cmd.Currency
	if currency == "" {
		currency = h.DefaultCurrency
	}
	total, err := money.New(cmd.TotalAmount, currency)
	if err != nil {
		return nil, err
	}
	now := h.now()
	date, err := domainbooking.NewBookingDate(cmd.EventDate, cmd.EventTime)
	if err != nil {
		return nil, err
	}
	if err := date.ValidateForBooking(now, h.Settlement.Policy().MinimumAdvanceDays); err != nil {
		return nil, err
	}
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:            domainbooking.ID(h.newID()),
		ClientID:      cmd.Actor.ID,
		SupplierID:    cmd.SupplierID,
		PackageID:     cmd.PackageID,
		EventName:     cmd.EventName,
		EventDate:     date,
		EventLocation: cmd.EventLocation,
		Notes:         cmd.Notes,
		Total:         total,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	unit, ctx, finish, err := uow.Join(ctx, h.UoW, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer finish(false)

	available, err := unit.Bookings().CheckAvailability(ctx, b.SupplierID, date.EventDate, "")
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domainbooking.ErrSupplierUnavailable
	}
	created, err := unit.Bookings().Create(ctx, b)
	if err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.encoder(), &b); err != nil {
		return nil, err
	}
	if err := finish(true); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "booking created", "booking_id", created.ID, "supplier_id", created.SupplierID, "total", total.Format())
	return bookingResult(created), nil
}

var _ commands.Handler[CreateBookingCommand, *dto.Booking] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
