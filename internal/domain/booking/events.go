package booking

import (
	"time"

	"eventmarket/internal/domain/shared/money"
)

type BookingCreated struct {
	BookingID     ID
	ClientID      string
	SupplierID    string
	EventDate     time.Time
	Total         money.Money
	OriginOfferID string
	At            time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingPaymentRecorded struct {
	BookingID ID
	PaymentID PaymentID
	Amount    money.Money
	Paid      money.Money
	Remaining money.Money
	At        time.Time
}

func (e BookingPaymentRecorded) EventName() string     { return "booking.payment_recorded" }
func (e BookingPaymentRecorded) AggregateID() string   { return string(e.BookingID) }
func (e BookingPaymentRecorded) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  ID
	SupplierID string
	At         time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingStarted struct {
	BookingID ID
	At        time.Time
}

func (e BookingStarted) EventName() string     { return "booking.started" }
func (e BookingStarted) AggregateID() string   { return string(e.BookingID) }
func (e BookingStarted) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID ID
	Total     money.Money
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID ID
	By        string
	Reason    string
	Refund    money.Money
	Penalty   money.Money
	Override  bool
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingRefunded struct {
	BookingID ID
	Amount    money.Money
	At        time.Time
}

func (e BookingRefunded) EventName() string     { return "booking.refunded" }
func (e BookingRefunded) AggregateID() string   { return string(e.BookingID) }
func (e BookingRefunded) OccurredAt() time.Time { return e.At }
