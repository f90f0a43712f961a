// Package payments applies payment confirmations published by the payment
// provider to bookings.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	BookingApp "eventmarket/internal/app/handlers/bookings"
	"eventmarket/internal/app/policies"
	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
	"eventmarket/internal/infra/inbox"
)

const systemActorID = "payments-consumer"

var ErrMalformedMessage = failure.New(failure.KindValidation, "payments: malformed payment message")

// Received is the payload of a payments.received message. Amount is in
// major units, e.g. "75000.00".
type Received struct {
	PaymentID string    `json:"payment_id"`
	BookingID string    `json:"booking_id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Method    string    `json:"method"`
	Reference string    `json:"reference"`
	PaidAt    time.Time `json:"paid_at"`
}

// Handler records each payment once. A payment id is recorded in the inbox
// only after its command reached a final outcome, so a crash or a server
// failure leaves the message to be redelivered. Redelivered payments that
// were already applied are rejected by the booking ledger.
type Handler struct {
	Commands commands.Bus
	Inbox    inbox.Deduplicator
	Logger   *slog.Logger
}

func (h Handler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var in Received
	if err := json.Unmarshal(msg.Value, &in); err != nil {
		h.logger().WarnContext(ctx, "dropping undecodable payment message", "offset", msg.Offset, "error", err)
		return nil
	}
	return h.Apply(ctx, in)
}

// Apply records one payment confirmation.
func (h Handler) Apply(ctx context.Context, in Received) error {
	cmd, err := h.command(in)
	if err != nil {
		h.logger().WarnContext(ctx, "dropping invalid payment message", "payment_id", in.PaymentID, "error", err)
		return nil
	}
	done, err := h.Inbox.Processed(ctx, in.PaymentID)
	if err != nil {
		return err
	}
	if done {
		h.logger().DebugContext(ctx, "payment already processed", "payment_id", in.PaymentID)
		return nil
	}

	_, err = commands.Dispatch[BookingApp.RecordPaymentCommand, *dto.Booking](ctx, h.Commands, cmd)
	switch {
	case err == nil:
		h.logger().InfoContext(ctx, "payment recorded", "payment_id", in.PaymentID, "booking_id", in.BookingID)
	case errors.Is(err, domainbooking.ErrDuplicatePayment):
		h.logger().DebugContext(ctx, "payment already on ledger", "payment_id", in.PaymentID)
	case failure.KindOf(err) == failure.KindServer:
		return err
	default:
		h.logger().WarnContext(ctx, "payment rejected", "payment_id", in.PaymentID, "booking_id", in.BookingID, "error", err)
	}
	_, err = h.Inbox.Seen(ctx, in.PaymentID)
	return err
}

func (h Handler) command(in Received) (BookingApp.RecordPaymentCommand, error) {
	if strings.TrimSpace(in.PaymentID) == "" || strings.TrimSpace(in.BookingID) == "" {
		return BookingApp.RecordPaymentCommand{}, ErrMalformedMessage
	}
	amount, err := money.Parse(in.Amount, in.Currency)
	if err != nil {
		return BookingApp.RecordPaymentCommand{}, err
	}
	return BookingApp.RecordPaymentCommand{
		Actor:     policies.SystemActor(systemActorID),
		BookingID: in.BookingID,
		PaymentID: in.PaymentID,
		Amount:    amount.Amount,
		Currency:  amount.Currency,
		Method:    in.Method,
		Reference: in.Reference,
		PaidAt:    in.PaidAt,
	}, nil
}

func (h Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
