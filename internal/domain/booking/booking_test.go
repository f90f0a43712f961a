package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
)

var testNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

func newTestBooking(t *testing.T, total int64, daysOut int) Booking {
	t.Helper()
	date, err := NewBookingDate(testNow.AddDate(0, 0, daysOut), "18:00")
	require.NoError(t, err)
	b, err := NewBooking(CreateParams{
		ID:         "bk-1",
		ClientID:   "client-1",
		SupplierID: "supplier-1",
		EventName:  "Casamento X",
		EventDate:  date,
		Total:      money.Must(total, "AOA"),
		CreatedAt:  testNow,
	})
	require.NoError(t, err)
	return b
}

func payment(id string, amount int64) Payment {
	return Payment{ID: PaymentID(id), Amount: money.Must(amount, "AOA"), Method: MethodBankTransfer, PaidAt: testNow}
}

func TestNewBookingDefaults(t *testing.T) {
	b := newTestBooking(t, 250_000, 60)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, int64(250_000), b.PaymentStatus.Total.Amount)
	assert.True(t, b.PaymentStatus.Paid.IsZero())
	assert.Equal(t, "AOA", b.PaymentStatus.Paid.Currency)
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "booking.created", b.PendingEvents()[0].EventName())
}

func TestNewBookingValidation(t *testing.T) {
	date, _ := NewBookingDate(testNow.AddDate(0, 0, 10), "")
	base := CreateParams{ID: "bk", ClientID: "c", SupplierID: "s", EventName: "Party", EventDate: date, Total: money.Must(100, "AOA")}

	p := base
	p.SupplierID = "c"
	_, err := NewBooking(p)
	assert.ErrorIs(t, err, ErrInvalidParties)

	p = base
	p.EventName = "  "
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, ErrEventNameRequired)

	p = base
	p.Total = money.Must(0, "AOA")
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, ErrInvalidTotal)

	p = base
	p.ID = ""
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, ErrIDRequired)

	p = base
	p.EventDate = BookingDate{}
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, ErrEventDateRequired)
}

func TestRecordPaymentKeepsLedgerInSync(t *testing.T) {
	b := newTestBooking(t, 250_000, 60)

	next, err := b.RecordPayment(payment("p-1", 75_000), testNow)
	require.NoError(t, err)
	next, err = next.RecordPayment(payment("p-2", 25_000), testNow)
	require.NoError(t, err)

	assert.Empty(t, b.Payments, "receiver must stay untouched")
	require.Len(t, next.Payments, 2)
	assert.Equal(t, PaymentID("p-1"), next.Payments[0].ID)
	assert.Equal(t, int64(100_000), next.PaymentStatus.Paid.Amount)
	assert.NoError(t, next.Validate())
	assert.InDelta(t, 40.0, next.PaymentStatus.CompletionPercentage(), 0.0001)
}

func TestRecordPaymentRejections(t *testing.T) {
	b := newTestBooking(t, 100_000, 60)
	b, err := b.RecordPayment(payment("p-1", 10_000), testNow)
	require.NoError(t, err)

	_, err = b.RecordPayment(payment("p-1", 10_000), testNow)
	assert.ErrorIs(t, err, ErrDuplicatePayment)

	_, err = b.RecordPayment(payment("p-2", 90_001), testNow)
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = b.RecordPayment(Payment{ID: "p-3", Amount: money.Must(10, "USD"), PaidAt: testNow}, testNow)
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = b.RecordPayment(Payment{ID: "p-4", Amount: money.Must(10, "AOA")}, testNow)
	assert.ErrorIs(t, err, ErrInvalidPayment)

	cancelled, err := b.Cancel(CancelParams{RefundDue: money.Must(0, "AOA"), Now: testNow})
	require.NoError(t, err)
	_, err = cancelled.RecordPayment(payment("p-5", 10), testNow)
	assert.ErrorIs(t, err, ErrPaymentsClosed)
}

func TestHappyPathLifecycle(t *testing.T) {
	b := newTestBooking(t, 100_000, 30)

	b, err := b.Confirm(testNow)
	require.NoError(t, err)
	b, err = b.Start(testNow)
	require.NoError(t, err)

	_, err = b.Complete(testNow)
	assert.ErrorIs(t, err, ErrOutstandingBalance)

	b, err = b.RecordPayment(payment("p-1", 100_000), testNow)
	require.NoError(t, err)
	b, err = b.Complete(testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status)

	_, err = b.Cancel(CancelParams{RefundDue: money.Must(0, "AOA"), Now: testNow})
	var transitionErr *StatusTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, StatusCompleted, transitionErr.From)
	assert.Equal(t, StatusCancelled, transitionErr.To)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, failure.KindValidation, failure.KindOf(err))
}

func TestCancelRespectsWindowUnlessOverridden(t *testing.T) {
	b := newTestBooking(t, 100_000, 2)
	params := CancelParams{By: "client-1", Reason: "changed plans", RefundDue: money.Must(0, "AOA"), MinimumNoticeDays: 3, Now: testNow}

	_, err := b.Cancel(params)
	assert.ErrorIs(t, err, ErrCancellationWindowClosed)

	params.Override = true
	cancelled, err := b.Cancel(params)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, "client-1", cancelled.CancelledBy)
	assert.Equal(t, testNow, cancelled.CancelledAt)
	assert.Equal(t, StatusPending, b.Status)
}

func TestCancelRejectsRefundAbovePaid(t *testing.T) {
	b := newTestBooking(t, 100_000, 30)
	b, err := b.RecordPayment(payment("p-1", 30_000), testNow)
	require.NoError(t, err)

	_, err = b.Cancel(CancelParams{RefundDue: money.Must(30_001, "AOA"), Now: testNow})
	assert.ErrorIs(t, err, ErrInvalidRefund)

	_, err = b.Cancel(CancelParams{RefundDue: money.Money{}, Now: testNow})
	assert.ErrorIs(t, err, ErrInvalidRefund)
}

func TestMarkRefunded(t *testing.T) {
	b := newTestBooking(t, 100_000, 30)
	b, err := b.RecordPayment(payment("p-1", 40_000), testNow)
	require.NoError(t, err)

	_, err = b.MarkRefunded(testNow)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	b, err = b.Cancel(CancelParams{RefundDue: money.Must(40_000, "AOA"), Now: testNow})
	require.NoError(t, err)
	b, err = b.MarkRefunded(testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, b.Status)
	assert.Equal(t, testNow.Add(time.Hour), b.RefundedAt)

	forged := b
	forged.Status = StatusCancelled
	forged.RefundDue = money.Money{}
	_, err = forged.MarkRefunded(testNow)
	assert.ErrorIs(t, err, ErrRefundNotComputed)
}

func TestValidateDetectsLedgerTampering(t *testing.T) {
	b := newTestBooking(t, 100_000, 30)
	b, err := b.RecordPayment(payment("p-1", 40_000), testNow)
	require.NoError(t, err)

	tampered := b
	tampered.PaymentStatus.Paid = money.Must(50_000, "AOA")
	assert.ErrorIs(t, tampered.Validate(), ErrLedgerMismatch)

	tampered = b
	tampered.Status = "ARCHIVED"
	assert.Error(t, tampered.Validate())
}

func TestIsParticipant(t *testing.T) {
	b := newTestBooking(t, 100, 30)
	assert.True(t, b.IsParticipant("client-1"))
	assert.True(t, b.IsParticipant("supplier-1"))
	assert.False(t, b.IsParticipant("someone"))
	assert.False(t, b.IsParticipant(""))
}
