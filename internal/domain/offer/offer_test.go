package offer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
)

var testNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

func newTestOffer(t *testing.T, initiator Party) Offer {
	t.Helper()
	o, err := NewOffer(CreateParams{
		ID:          "of-1",
		SellerID:    "seller-1",
		BuyerID:     "buyer-1",
		SellerName:  "DJ Kizomba",
		BuyerName:   "Ana",
		CustomPrice: money.Must(250_000, "AOA"),
		Description: "Som e luz para casamento",
		ValidUntil:  testNow.AddDate(0, 0, 7),
		InitiatedBy: initiator,
		CreatedAt:   testNow,
	})
	require.NoError(t, err)
	return o
}

func TestNewOfferValidation(t *testing.T) {
	base := CreateParams{
		ID:          "of",
		SellerID:    "s",
		BuyerID:     "b",
		CustomPrice: money.Must(100, "AOA"),
		Description: "desc",
		InitiatedBy: PartySeller,
		CreatedAt:   testNow,
	}

	o, err := NewOffer(base)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.ValidUntil.IsZero())
	require.Len(t, o.PendingEvents(), 1)
	assert.Equal(t, "offer.created", o.PendingEvents()[0].EventName())

	p := base
	p.BuyerID = "s"
	_, err = NewOffer(p)
	assert.ErrorIs(t, err, ErrInvalidParties)

	p = base
	p.CustomPrice = money.Must(0, "AOA")
	_, err = NewOffer(p)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	p = base
	p.Description = " "
	_, err = NewOffer(p)
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	p = base
	p.ValidUntil = testNow.Add(-time.Minute)
	_, err = NewOffer(p)
	assert.ErrorIs(t, err, ErrInvalidValidity)

	p = base
	p.InitiatedBy = "BROKER"
	_, err = NewOffer(p)
	assert.ErrorIs(t, err, ErrInvalidInitiator)
}

func TestInitiatorFlipsResponder(t *testing.T) {
	sellerOffer := newTestOffer(t, PartySeller)
	assert.Equal(t, "seller-1", sellerOffer.Initiator())
	assert.Equal(t, "buyer-1", sellerOffer.Responder())

	proposal := newTestOffer(t, PartyBuyer)
	assert.Equal(t, "buyer-1", proposal.Initiator())
	assert.Equal(t, "seller-1", proposal.Responder())
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name      string
		initiator Party
		run       func(Offer) (Offer, error)
		want      Status
		wantErr   error
	}{
		{"buyer accepts seller offer", PartySeller, func(o Offer) (Offer, error) { return o.Accept("buyer-1", "bk-1", testNow) }, StatusAccepted, nil},
		{"seller cannot accept own offer", PartySeller, func(o Offer) (Offer, error) { return o.Accept("seller-1", "bk-1", testNow) }, "", ErrUnauthorized},
		{"seller accepts buyer proposal", PartyBuyer, func(o Offer) (Offer, error) { return o.Accept("seller-1", "bk-1", testNow) }, StatusAccepted, nil},
		{"stranger cannot reject", PartySeller, func(o Offer) (Offer, error) { return o.Reject("someone", "", testNow) }, "", ErrUnauthorized},
		{"buyer rejects seller offer", PartySeller, func(o Offer) (Offer, error) { return o.Reject("buyer-1", "too expensive", testNow) }, StatusRejected, nil},
		{"seller rejects buyer proposal", PartyBuyer, func(o Offer) (Offer, error) { return o.Reject("seller-1", "", testNow) }, StatusRejected, nil},
		{"seller cancels own offer", PartySeller, func(o Offer) (Offer, error) { return o.Cancel("seller-1", testNow) }, StatusCancelled, nil},
		{"buyer cannot cancel seller offer", PartySeller, func(o Offer) (Offer, error) { return o.Cancel("buyer-1", testNow) }, "", ErrUnauthorized},
		{"buyer cancels own proposal", PartyBuyer, func(o Offer) (Offer, error) { return o.Cancel("buyer-1", testNow) }, StatusCancelled, nil},
		{"expire before validity ends", PartySeller, func(o Offer) (Offer, error) { return o.Expire(testNow) }, "", ErrInvalidTransition},
		{"expire after validity ends", PartySeller, func(o Offer) (Offer, error) { return o.Expire(testNow.AddDate(0, 0, 8)) }, StatusExpired, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := newTestOffer(t, tc.initiator)
			got, err := tc.run(o)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Status)
			assert.Equal(t, StatusPending, o.Status, "receiver must stay untouched")
		})
	}
}

func TestTerminalStatesRejectEveryAction(t *testing.T) {
	o := newTestOffer(t, PartySeller)
	accepted, err := o.Accept("buyer-1", "bk-1", testNow)
	require.NoError(t, err)
	assert.Equal(t, "bk-1", accepted.BookingID)

	_, err = accepted.Accept("buyer-1", "bk-2", testNow)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = accepted.Reject("buyer-1", "", testNow)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = accepted.Cancel("seller-1", testNow)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = accepted.Expire(testNow.AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, failure.KindValidation, failure.KindOf(err))
}

func TestAcceptPastValidityFailsEvenWhenStoredPending(t *testing.T) {
	o := newTestOffer(t, PartySeller)
	later := testNow.AddDate(0, 0, 7).Add(time.Second)

	assert.True(t, o.IsExpired(later))
	assert.Equal(t, StatusPending, o.Status)
	_, err := o.Accept("buyer-1", "bk-1", later)
	assert.ErrorIs(t, err, ErrOfferExpired)

	_, err = o.Accept("seller-1", "bk-1", later)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, failure.KindUnauthorized, failure.KindOf(err))
}

func TestRejectStoresReasonAndEvent(t *testing.T) {
	o := newTestOffer(t, PartySeller)
	o.ClearEvents()
	rejected, err := o.Reject("buyer-1", "  out of budget ", testNow)
	require.NoError(t, err)
	assert.Equal(t, "out of budget", rejected.RejectionReason)
	require.Len(t, rejected.PendingEvents(), 1)
	assert.Equal(t, "offer.rejected", rejected.PendingEvents()[0].EventName())
	assert.Empty(t, o.PendingEvents())
}

func TestPatchRoundTrip(t *testing.T) {
	o := newTestOffer(t, PartySeller)
	accepted, err := o.Accept("buyer-1", "bk-1", testNow.Add(time.Hour))
	require.NoError(t, err)

	stored := o.Apply(PatchOf(accepted))
	assert.Equal(t, StatusAccepted, stored.Status)
	assert.Equal(t, "bk-1", stored.BookingID)
	assert.Equal(t, testNow.Add(time.Hour), stored.UpdatedAt)
	assert.Empty(t, stored.PendingEvents())

	reverted := stored.Apply(Patch{Status: StatusPending, UpdatedAt: o.UpdatedAt})
	assert.Equal(t, StatusPending, reverted.Status)
	assert.Empty(t, reverted.BookingID)
}

func TestConcurrentTransitionIsInvalidTransition(t *testing.T) {
	assert.ErrorIs(t, ErrConcurrentTransition, ErrInvalidTransition)
	assert.Equal(t, failure.KindValidation, failure.KindOf(ErrConcurrentTransition))
}
