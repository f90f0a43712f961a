package offer

import (
	"time"

	"eventmarket/internal/domain/shared/money"
)

type OfferCreated struct {
	OfferID     ID
	SellerID    string
	BuyerID     string
	Price       money.Money
	InitiatedBy Party
	ValidUntil  time.Time
	At          time.Time
}

func (e OfferCreated) EventName() string     { return "offer.created" }
func (e OfferCreated) AggregateID() string   { return string(e.OfferID) }
func (e OfferCreated) OccurredAt() time.Time { return e.At }

type OfferAccepted struct {
	OfferID    ID
	AcceptedBy string
	BookingID  string
	Price      money.Money
	At         time.Time
}

func (e OfferAccepted) EventName() string     { return "offer.accepted" }
func (e OfferAccepted) AggregateID() string   { return string(e.OfferID) }
func (e OfferAccepted) OccurredAt() time.Time { return e.At }

type OfferRejected struct {
	OfferID    ID
	RejectedBy string
	Reason     string
	At         time.Time
}

func (e OfferRejected) EventName() string     { return "offer.rejected" }
func (e OfferRejected) AggregateID() string   { return string(e.OfferID) }
func (e OfferRejected) OccurredAt() time.Time { return e.At }

type OfferCancelled struct {
	OfferID     ID
	CancelledBy string
	At          time.Time
}

func (e OfferCancelled) EventName() string     { return "offer.cancelled" }
func (e OfferCancelled) AggregateID() string   { return string(e.OfferID) }
func (e OfferCancelled) OccurredAt() time.Time { return e.At }

type OfferExpired struct {
	OfferID ID
	At      time.Time
}

func (e OfferExpired) EventName() string     { return "offer.expired" }
func (e OfferExpired) AggregateID() string   { return string(e.OfferID) }
func (e OfferExpired) OccurredAt() time.Time { return e.At }
