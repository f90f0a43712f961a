package booking

import (
	"fmt"
	"strings"
	"time"

	"eventmarket/internal/domain/shared/events"
	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
)

var (
	ErrNotFound                 = failure.New(failure.KindNotFound, "booking: not found")
	ErrConcurrentUpdate         = failure.New(failure.KindServer, "booking: concurrent update detected")
	ErrIDRequired               = failure.New(failure.KindValidation, "booking: id is required")
	ErrInvalidParties           = failure.New(failure.KindValidation, "booking: client and supplier must be distinct and present")
	ErrEventNameRequired        = failure.New(failure.KindValidation, "booking: event name is required")
	ErrInvalidTotal             = failure.New(failure.KindValidation, "booking: total must be positive")
	ErrPaymentsClosed           = failure.New(failure.KindValidation, "booking: payments are not accepted in the current status")
	ErrOutstandingBalance       = failure.New(failure.KindValidation, "booking: booking is not fully paid")
	ErrCancellationWindowClosed = failure.New(failure.KindValidation, "booking: cancellation window has closed")
	ErrInvalidRefund            = failure.New(failure.KindValidation, "booking: invalid refund amount")
	ErrRefundNotComputed        = failure.New(failure.KindValidation, "booking: refund amount has not been computed")
	ErrLedgerMismatch           = failure.New(failure.KindServer, "booking: payments do not match paid amount")
	ErrSupplierUnavailable      = failure.New(failure.KindValidation, "booking: supplier already booked on this date")
	ErrUnauthorized             = failure.New(failure.KindUnauthorized, "booking: actor may not perform this operation")
)

type ID string

// Booking is the confirmed reservation and the source of truth for payment
// state once created. Methods never mutate the receiver; they return the next
// value.
type Booking struct {
	ID                 ID
	ClientID           string
	SupplierID         string
	PackageID          string
	EventName          string
	EventDate          BookingDate
	EventLocation      string
	Notes              string
	Status             Status
	Payments           []Payment
	PaymentStatus      PaymentStatus
	OriginOfferID      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CancelledAt        time.Time
	CancelledBy        string
	CancellationReason string
	RefundDue          money.Money
	RefundedAt         time.Time
	Version            int64
	events.EventRecorder
}

type CreateParams struct {
	ID            ID
	ClientID      string
	SupplierID    string
	PackageID     string
	EventName     string
	EventDate     BookingDate
	EventLocation string
	Notes         string
	Total         money.Money
	OriginOfferID string
	CreatedAt     time.Time
}

func NewBooking(params CreateParams) (Booking, error) {
	clientID := strings.TrimSpace(params.ClientID)
	supplierID := strings.TrimSpace(params.SupplierID)
	if clientID == "" || supplierID == "" || clientID == supplierID {
		return Booking{}, ErrInvalidParties
	}
	if strings.TrimSpace(string(params.ID)) == "" {
		return Booking{}, ErrIDRequired
	}
	eventName := strings.TrimSpace(params.EventName)
	if eventName == "" {
		return Booking{}, ErrEventNameRequired
	}
	if params.EventDate.EventDate.IsZero() {
		return Booking{}, ErrEventDateRequired
	}
	if !params.Total.IsPositive() {
		return Booking{}, ErrInvalidTotal
	}
	status, err := NewPaymentStatus(params.Total)
	if err != nil {
		return Booking{}, err
	}
	now := params.CreatedAt.UTC()
	b := Booking{
		ID:            params.ID,
		ClientID:      clientID,
		SupplierID:    supplierID,
		PackageID:     strings.TrimSpace(params.PackageID),
		EventName:     eventName,
		EventDate:     params.EventDate,
		EventLocation: strings.TrimSpace(params.EventLocation),
		Notes:         strings.TrimSpace(params.Notes),
		Status:        StatusPending,
		PaymentStatus: status,
		OriginOfferID: params.OriginOfferID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingCreated{
		BookingID:     b.ID,
		ClientID:      b.ClientID,
		SupplierID:    b.SupplierID,
		EventDate:     b.EventDate.EventDate,
		Total:         params.Total,
		OriginOfferID: b.OriginOfferID,
		At:            now,
	})
	return b, nil
}

func (b Booking) IsParticipant(userID string) bool {
	return userID != "" && (userID == b.ClientID || userID == b.SupplierID)
}

func (b Booking) Total() money.Money {
	return b.PaymentStatus.Total
}

// RecordPayment appends a payment to the ledger.
func (b Booking) RecordPayment(p Payment, now time.Time) (Booking, error) {
	if !CanAcceptPayments(b.Status) {
		return Booking{}, ErrPaymentsClosed
	}
	if err := p.validate(); err != nil {
		return Booking{}, err
	}
	for _, existing := range b.Payments {
		if existing.ID == p.ID {
			return Booking{}, ErrDuplicatePayment
		}
	}
	status, err := b.PaymentStatus.RecordPayment(p.Amount)
	if err != nil {
		return Booking{}, err
	}
	p.PaidAt = p.PaidAt.UTC()
	next := b.clone()
	next.Payments = append(next.Payments, p)
	next.PaymentStatus = status
	next.UpdatedAt = now.UTC()
	if err := next.Validate(); err != nil {
		return Booking{}, err
	}
	next.Record(BookingPaymentRecorded{
		BookingID: b.ID,
		PaymentID: p.ID,
		Amount:    p.Amount,
		Paid:      status.Paid,
		Remaining: status.Remaining(),
		At:        next.UpdatedAt,
	})
	return next, nil
}

// Confirm moves PENDING -> CONFIRMED. The deposit threshold is checked by the
// settlement service before calling it.
func (b Booking) Confirm(now time.Time) (Booking, error) {
	next, err := b.transition(StatusConfirmed, now)
	if err != nil {
		return Booking{}, err
	}
	next.Record(BookingConfirmed{BookingID: b.ID, SupplierID: b.SupplierID, At: next.UpdatedAt})
	return next, nil
}

func (b Booking) Start(now time.Time) (Booking, error) {
	next, err := b.transition(StatusInProgress, now)
	if err != nil {
		return Booking{}, err
	}
	next.Record(BookingStarted{BookingID: b.ID, At: next.UpdatedAt})
	return next, nil
}

func (b Booking) Complete(now time.Time) (Booking, error) {
	next, err := b.transition(StatusCompleted, now)
	if err != nil {
		return Booking{}, err
	}
	if !b.PaymentStatus.IsFullyPaid() {
		return Booking{}, fmt.Errorf("%w: %s outstanding", ErrOutstandingBalance, b.PaymentStatus.Remaining().Format())
	}
	next.Record(BookingCompleted{BookingID: b.ID, Total: b.Total(), At: next.UpdatedAt})
	return next, nil
}

type CancelParams struct {
	By                string
	Reason            string
	RefundDue         money.Money
	MinimumNoticeDays int
	// Override skips the cancellation window check for administrative cancellations.
	Override bool
	Now      time.Time
}

func (b Booking) Cancel(p CancelParams) (Booking, error) {
	next, err := b.transition(StatusCancelled, p.Now)
	if err != nil {
		return Booking{}, err
	}
	if !p.Override && !b.EventDate.IsWithinCancellationPeriod(p.Now, p.MinimumNoticeDays) {
		return Booking{}, ErrCancellationWindowClosed
	}
	if p.RefundDue.Currency != b.PaymentStatus.Paid.Currency || p.RefundDue.IsNegative() || p.RefundDue.Amount > b.PaymentStatus.Paid.Amount {
		return Booking{}, ErrInvalidRefund
	}
	penalty, err := b.PaymentStatus.Paid.Sub(p.RefundDue)
	if err != nil {
		return Booking{}, err
	}
	next.CancelledAt = next.UpdatedAt
	next.CancelledBy = strings.TrimSpace(p.By)
	next.CancellationReason = strings.TrimSpace(p.Reason)
	next.RefundDue = p.RefundDue
	next.Record(BookingCancelled{
		BookingID: b.ID,
		By:        next.CancelledBy,
		Reason:    next.CancellationReason,
		Refund:    p.RefundDue,
		Penalty:   penalty,
		Override:  p.Override,
		At:        next.UpdatedAt,
	})
	return next, nil
}

// MarkRefunded records that the refund computed at cancellation was paid out.
func (b Booking) MarkRefunded(now time.Time) (Booking, error) {
	next, err := b.transition(StatusRefunded, now)
	if err != nil {
		return Booking{}, err
	}
	if b.RefundDue.Currency == "" {
		return Booking{}, ErrRefundNotComputed
	}
	next.RefundedAt = next.UpdatedAt
	next.Record(BookingRefunded{BookingID: b.ID, Amount: b.RefundDue, At: next.UpdatedAt})
	return next, nil
}

// Validate checks invariants that are never trusted from storage.
func (b Booking) Validate() error {
	if _, err := ParseStatus(string(b.Status)); err != nil {
		return err
	}
	if _, err := RestorePaymentStatus(b.PaymentStatus.Total, b.PaymentStatus.Paid); err != nil {
		return fmt.Errorf("%w: %w", ErrLedgerMismatch, err)
	}
	var sum int64
	for _, p := range b.Payments {
		if p.Amount.Currency != b.PaymentStatus.Total.Currency {
			return fmt.Errorf("%w: payment %s in %s", ErrLedgerMismatch, p.ID, p.Amount.Currency)
		}
		sum += p.Amount.Amount
	}
	if sum != b.PaymentStatus.Paid.Amount {
		return fmt.Errorf("%w: payments sum %d, paid %d", ErrLedgerMismatch, sum, b.PaymentStatus.Paid.Amount)
	}
	return nil
}

func (b Booking) transition(to Status, now time.Time) (Booking, error) {
	if !CanTransition(b.Status, to) {
		return Booking{}, &StatusTransitionError{From: b.Status, To: to}
	}
	next := b.clone()
	next.Status = to
	next.UpdatedAt = now.UTC()
	return next, nil
}

func (b Booking) clone() Booking {
	next := b
	next.Payments = append([]Payment(nil), b.Payments...)
	return next
}
