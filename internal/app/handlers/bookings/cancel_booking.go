package bookings

import (
	"context"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/policies"
	domainbooking "eventmarket/internal/domain/booking"
)

const (
	cancelBookingKey = "bookings.cancel"
	markRefundedKey  = "bookings.mark_refunded"
)

type CancelBookingCommand struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
	Reason    string `validate:"max=500"`
	// Override skips the cancellation window and is reserved for admins.
	Override bool
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) ActorID() string { return c.Actor.ID }

type CancelBookingHandler struct {
	Deps
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	if cmd.Override && !cmd.Actor.IsAdmin() {
		return nil, domainbooking.ErrUnauthorized
	}
	now := h.now()
	policy := h.Settlement.Policy()
	saved, err := h.mutate(ctx, domainbooking.ID(cmd.BookingID), func(b domainbooking.Booking) (domainbooking.Booking, error) {
		if !b.IsParticipant(cmd.Actor.ID) && !cmd.Actor.IsAdmin() {
			return domainbooking.Booking{}, domainbooking.ErrUnauthorized
		}
		refund, err := h.Settlement.CalculateRefundAmount(b, now)
		if err != nil {
			return domainbooking.Booking{}, err
		}
		return b.Cancel(domainbooking.CancelParams{
			By:                cmd.Actor.ID,
			Reason:            cmd.Reason,
			RefundDue:         refund,
			MinimumNoticeDays: policy.CancellationMinimumDays,
			Override:          cmd.Override,
			Now:               now,
		})
	})
	if err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "booking cancelled", "booking_id", saved.ID, "by", cmd.Actor.ID, "refund_due", saved.RefundDue.Format(), "override", cmd.Override)
	return bookingResult(saved), nil
}

// MarkRefundedCommand records that the refund computed at cancellation has
// been paid back to the client.
type MarkRefundedCommand struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
}

func (c MarkRefundedCommand) Key() string { return markRefundedKey }

func (c MarkRefundedCommand) ActorID() string { return c.Actor.ID }

type MarkRefundedHandler struct {
	Deps
}

func (h *MarkRefundedHandler) Handle(ctx context.Context, cmd MarkRefundedCommand) (*dto.Booking, error) {
	if !cmd.Actor.IsPrivileged() {
		return nil, domainbooking.ErrUnauthorized
	}
	now := h.now()
	saved, err := h.mutate(ctx, domainbooking.ID(cmd.BookingID), func(b domainbooking.Booking) (domainbooking.Booking, error) {
		return b.MarkRefunded(now)
	})
	if err != nil {
		return nil, err
	}
	return bookingResult(saved), nil
}

var _ commands.Handler[CancelBookingCommand, *dto.Booking] = (*CancelBookingHandler)(nil)
var _ commands.Handler[MarkRefundedCommand, *dto.Booking] = (*MarkRefundedHandler)(nil)
