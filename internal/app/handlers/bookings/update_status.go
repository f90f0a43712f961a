package bookings

import (
	"context"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/policies"
	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/failure"
)

const updateStatusKey = "bookings.update_status"

var ErrUnsupportedStatus = failure.New(failure.KindValidation, "booking: status cannot be set directly")

// UpdateBookingStatusCommand drives the supplier side of the lifecycle:
// CONFIRMED, IN_PROGRESS and COMPLETED. Cancellation and refunds have their
// own commands.
type UpdateBookingStatusCommand struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
	Status    string `validate:"required"`
}

func (c UpdateBookingStatusCommand) Key() string { return updateStatusKey }

func (c UpdateBookingStatusCommand) ActorID() string { return c.Actor.ID }

type UpdateBookingStatusHandler struct {
	Deps
}

func (h *UpdateBookingStatusHandler) Handle(ctx context.Context, cmd UpdateBookingStatusCommand) (*dto.Booking, error) {
	target, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	now := h.now()
	saved, err := h.mutate(ctx, domainbooking.ID(cmd.BookingID), func(b domainbooking.Booking) (domainbooking.Booking, error) {
		if b.SupplierID != cmd.Actor.ID && !cmd.Actor.IsAdmin() {
			return domainbooking.Booking{}, domainbooking.ErrUnauthorized
		}
		switch target {
		case domainbooking.StatusConfirmed:
			if err := h.Settlement.ValidateConfirmation(b); err != nil {
				return domainbooking.Booking{}, err
			}
			return b.Confirm(now)
		case domainbooking.StatusInProgress:
			return b.Start(now)
		case domainbooking.StatusCompleted:
			return b.Complete(now)
		default:
			return domainbooking.Booking{}, ErrUnsupportedStatus
		}
	})
	if err != nil {
		return nil, err
	}
	return bookingResult(saved), nil
}

var _ commands.Handler[UpdateBookingStatusCommand, *dto.Booking] = (*UpdateBookingStatusHandler)(nil)
