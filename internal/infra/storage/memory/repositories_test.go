package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "eventmarket/internal/domain/booking"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/money"
)

var testNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

func newOffer(t *testing.T, id string, validFor time.Duration) domainoffer.Offer {
	t.Helper()
	o, err := domainoffer.NewOffer(domainoffer.CreateParams{
		ID:          domainoffer.ID(id),
		SellerID:    "seller",
		BuyerID:     "buyer",
		CustomPrice: money.Must(1000, "AOA"),
		Description: "DJ set",
		ValidUntil:  testNow.Add(validFor),
		InitiatedBy: domainoffer.PartySeller,
		CreatedAt:   testNow,
	})
	require.NoError(t, err)
	return o
}

func newBooking(t *testing.T, id, supplier string, daysOut int) domainbooking.Booking {
	t.Helper()
	date, err := domainbooking.NewBookingDate(testNow.AddDate(0, 0, daysOut), "")
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.ID(id),
		ClientID:   "client",
		SupplierID: supplier,
		EventName:  "Festa",
		EventDate:  date,
		Total:      money.Must(10_000, "AOA"),
		CreatedAt:  testNow,
	})
	require.NoError(t, err)
	return b
}

func TestOfferTransitionIfIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := NewOfferRepository()
	o := newOffer(t, "of-1", time.Hour)
	require.NoError(t, repo.Create(ctx, o))
	assert.ErrorIs(t, repo.Create(ctx, o), ErrDuplicateID)

	accepted, err := o.Accept("buyer", "bk-1", testNow)
	require.NoError(t, err)
	stored, err := repo.TransitionIf(ctx, o.ID, domainoffer.StatusPending, domainoffer.PatchOf(accepted))
	require.NoError(t, err)
	assert.Equal(t, domainoffer.StatusAccepted, stored.Status)
	assert.Equal(t, "bk-1", stored.BookingID)
	assert.Empty(t, stored.PendingEvents())

	_, err = repo.TransitionIf(ctx, o.ID, domainoffer.StatusPending, domainoffer.PatchOf(accepted))
	assert.ErrorIs(t, err, domainoffer.ErrConcurrentTransition)
	assert.ErrorIs(t, err, domainoffer.ErrInvalidTransition)

	_, err = repo.TransitionIf(ctx, "missing", domainoffer.StatusPending, domainoffer.Patch{})
	assert.ErrorIs(t, err, domainoffer.ErrNotFound)
}

func TestOfferListExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewOfferRepository()
	require.NoError(t, repo.Create(ctx, newOffer(t, "of-late", 3*time.Hour)))
	require.NoError(t, repo.Create(ctx, newOffer(t, "of-early", time.Hour)))
	require.NoError(t, repo.Create(ctx, newOffer(t, "of-fresh", 48*time.Hour)))

	due, err := repo.ListExpired(ctx, testNow.Add(4*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, domainoffer.ID("of-early"), due[0].ID)

	due, err = repo.ListExpired(ctx, testNow.Add(4*time.Hour), 1)
	require.NoError(t, err)
	assert.Len(t, due, 1)

	mine, err := repo.ListByParticipant(ctx, "buyer", domainoffer.StatusPending)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestBookingSaveChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	created, err := repo.Create(ctx, newBooking(t, "bk-1", "supplier", 30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	confirmed, err := created.Confirm(testNow)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, confirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	_, err = repo.Save(ctx, confirmed)
	assert.ErrorIs(t, err, domainbooking.ErrConcurrentUpdate)
}

func TestBookingLoadRejectsTamperedLedger(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	b := newBooking(t, "bk-1", "supplier", 30)
	_, err := repo.Create(ctx, b)
	require.NoError(t, err)

	repo.mu.Lock()
	tampered := repo.items["bk-1"]
	tampered.PaymentStatus.Paid = money.Must(500, "AOA")
	repo.items["bk-1"] = tampered
	repo.mu.Unlock()

	_, err = repo.ByID(ctx, "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrLedgerMismatch)
}

func TestCheckAvailabilityIgnoresCancelledAndExcluded(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	created, err := repo.Create(ctx, newBooking(t, "bk-1", "supplier", 30))
	require.NoError(t, err)
	day := created.EventDate.EventDate

	free, err := repo.CheckAvailability(ctx, "supplier", day, "")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = repo.CheckAvailability(ctx, "supplier", day, created.ID)
	require.NoError(t, err)
	assert.True(t, free)

	free, err = repo.CheckAvailability(ctx, "other", day, "")
	require.NoError(t, err)
	assert.True(t, free)

	cancelled, err := created.Cancel(domainbooking.CancelParams{RefundDue: money.Must(0, "AOA"), Now: testNow})
	require.NoError(t, err)
	_, err = repo.Save(ctx, cancelled)
	require.NoError(t, err)
	free, err = repo.CheckAvailability(ctx, "supplier", day, "")
	require.NoError(t, err)
	assert.True(t, free)
}

func TestCreateRejectsOccupiedSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	first, err := repo.Create(ctx, newBooking(t, "bk-1", "supplier", 30))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newBooking(t, "bk-2", "supplier", 30))
	assert.ErrorIs(t, err, domainbooking.ErrSupplierUnavailable)

	_, err = repo.Create(ctx, newBooking(t, "bk-3", "other", 30))
	require.NoError(t, err)

	cancelled, err := first.Cancel(domainbooking.CancelParams{RefundDue: money.Must(0, "AOA"), Now: testNow})
	require.NoError(t, err)
	_, err = repo.Save(ctx, cancelled)
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking(t, "bk-2", "supplier", 30))
	assert.NoError(t, err)
}

func TestOutboxServesRelay(t *testing.T) {
	ctx := context.Background()
	box := NewOutbox()
	msg, err := box.Claim(ctx, "w")
	require.NoError(t, err)
	assert.Nil(t, msg)

	inbox := NewInbox()
	done, err := inbox.Processed(ctx, "pay-1")
	require.NoError(t, err)
	assert.False(t, done)
	seen, err := inbox.Seen(ctx, "pay-1")
	require.NoError(t, err)
	assert.False(t, seen)
	seen, err = inbox.Seen(ctx, "pay-1")
	require.NoError(t, err)
	assert.True(t, seen)
	done, err = inbox.Processed(ctx, "pay-1")
	require.NoError(t, err)
	assert.True(t, done)
}
