package bookings

import (
	"context"
	"time"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/middleware"
	"eventmarket/internal/app/policies"
	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/money"
)

const recordPaymentKey = "bookings.record_payment"

// RecordPaymentCommand appends a payment to the booking ledger. PaymentID is
// chosen by the payer side so that redelivered confirmations are idempotent.
type RecordPaymentCommand struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
	PaymentID string
	Amount    int64  `validate:"gt=0"`
	Currency  string `validate:"omitempty,len=3"`
	Method    string
	Reference string `validate:"max=200"`
	PaidAt    time.Time
	Notes     string `validate:"max=2000"`
}

func (c RecordPaymentCommand) Key() string { return recordPaymentKey }

func (c RecordPaymentCommand) ActorID() string { return c.Actor.ID }

func (c RecordPaymentCommand) IdempotencyKey() string {
	if c.PaymentID == "" {
		return ""
	}
	return c.BookingID + ":" + c.PaymentID
}

func (c RecordPaymentCommand) ResultPrototype() any { return &dto.Booking{} }

type RecordPaymentHandler struct {
	Deps
}

func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*dto.Booking, error) {
	method, err := domainbooking.ParsePaymentMethod(cmd.Method)
	if err != nil {
		return nil, err
	}
	paymentID := cmd.PaymentID
	if paymentID == "" {
		paymentID = h.newID()
	}
	now := h.now()
	paidAt := cmd.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	saved, err := h.mutate(ctx, domainbooking.ID(cmd.BookingID), func(b domainbooking.Booking) (domainbooking.Booking, error) {
		if !b.IsParticipant(cmd.Actor.ID) && !cmd.Actor.IsPrivileged() {
			return domainbooking.Booking{}, domainbooking.ErrUnauthorized
		}
		currency := cmd.Currency
		if currency == "" {
			currency = b.PaymentStatus.Total.Currency
		}
		amount, err := money.New(cmd.Amount, currency)
		if err != nil {
			return domainbooking.Booking{}, err
		}
		next, err := b.RecordPayment(domainbooking.Payment{
			ID:        domainbooking.PaymentID(paymentID),
			Amount:    amount,
			Method:    method,
			Reference: cmd.Reference,
			PaidAt:    paidAt,
			Notes:     cmd.Notes,
		}, now)
		if err != nil {
			return domainbooking.Booking{}, err
		}
		if h.AutoConfirm && h.Settlement.ShouldAutoConfirm(next) {
			return next.Confirm(now)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "payment recorded", "booking_id", saved.ID, "payment_id", paymentID, "paid", saved.PaymentStatus.Paid.Format())
	return bookingResult(saved), nil
}

var _ commands.Handler[RecordPaymentCommand, *dto.Booking] = (*RecordPaymentHandler)(nil)
var _ middleware.IdempotentCommand = RecordPaymentCommand{}
