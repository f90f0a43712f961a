package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	domainbooking "eventmarket/internal/domain/booking"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/money"
)

const (
	offersCollection   = "agg_offer"
	bookingsCollection = "agg_booking"
)

func bsonKeys(fields ...string) bson.D {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return keys
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type offerDocument struct {
	ID              string        `bson:"_id"`
	SellerID        string        `bson:"seller_id"`
	BuyerID         string        `bson:"buyer_id"`
	SellerName      string        `bson:"seller_name,omitempty"`
	BuyerName       string        `bson:"buyer_name,omitempty"`
	CustomPrice     moneyDocument `bson:"custom_price"`
	Description     string        `bson:"description"`
	BasePackageID   string        `bson:"base_package_id,omitempty"`
	BasePackageName string        `bson:"base_package_name,omitempty"`
	DeliveryTime    string        `bson:"delivery_time,omitempty"`
	ValidUntil      time.Time     `bson:"valid_until"`
	EventDate       *time.Time    `bson:"event_date,omitempty"`
	ConversationID  string        `bson:"conversation_id,omitempty"`
	Status          string        `bson:"status"`
	InitiatedBy     string        `bson:"initiated_by"`
	BookingID       string        `bson:"booking_id,omitempty"`
	RejectionReason string        `bson:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
}

func newOfferDocument(o domainoffer.Offer) offerDocument {
	doc := offerDocument{
		ID:              string(o.ID),
		SellerID:        o.SellerID,
		BuyerID:         o.BuyerID,
		SellerName:      o.SellerName,
		BuyerName:       o.BuyerName,
		CustomPrice:     newMoneyDocument(o.CustomPrice),
		Description:     o.Description,
		BasePackageID:   o.BasePackageID,
		BasePackageName: o.BasePackageName,
		DeliveryTime:    o.DeliveryTime,
		ValidUntil:      o.ValidUntil.UTC(),
		ConversationID:  o.ConversationID,
		Status:          string(o.Status),
		InitiatedBy:     string(o.InitiatedBy),
		BookingID:       o.BookingID,
		RejectionReason: o.RejectionReason,
		CreatedAt:       o.CreatedAt.UTC(),
		UpdatedAt:       o.UpdatedAt.UTC(),
	}
	if !o.EventDate.IsZero() {
		d := o.EventDate.UTC()
		doc.EventDate = &d
	}
	return doc
}

func (d offerDocument) toAggregate() domainoffer.Offer {
	o := domainoffer.Offer{
		ID:              domainoffer.ID(d.ID),
		SellerID:        d.SellerID,
		BuyerID:         d.BuyerID,
		SellerName:      d.SellerName,
		BuyerName:       d.BuyerName,
		CustomPrice:     d.CustomPrice.toMoney(),
		Description:     d.Description,
		BasePackageID:   d.BasePackageID,
		BasePackageName: d.BasePackageName,
		DeliveryTime:    d.DeliveryTime,
		ValidUntil:      d.ValidUntil.UTC(),
		ConversationID:  d.ConversationID,
		Status:          domainoffer.Status(d.Status),
		InitiatedBy:     domainoffer.Party(d.InitiatedBy),
		BookingID:       d.BookingID,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
	if d.EventDate != nil {
		o.EventDate = d.EventDate.UTC()
	}
	return o
}

type paymentDocument struct {
	ID        string        `bson:"id"`
	Amount    moneyDocument `bson:"amount"`
	Method    string        `bson:"method"`
	Reference string        `bson:"reference,omitempty"`
	PaidAt    time.Time     `bson:"paid_at"`
	Notes     string        `bson:"notes,omitempty"`
}

type bookingDocument struct {
	ID                 string            `bson:"_id"`
	ClientID           string            `bson:"client_id"`
	SupplierID         string            `bson:"supplier_id"`
	PackageID          string            `bson:"package_id,omitempty"`
	EventName          string            `bson:"event_name"`
	EventDate          time.Time         `bson:"event_date"`
	EventTime          string            `bson:"event_time,omitempty"`
	EventLocation      string            `bson:"event_location,omitempty"`
	Notes              string            `bson:"notes,omitempty"`
	Status             string            `bson:"status"`
	SlotHeld           bool              `bson:"slot_held"`
	Payments           []paymentDocument `bson:"payments"`
	Total              moneyDocument     `bson:"total"`
	Paid               moneyDocument     `bson:"paid"`
	OriginOfferID      string            `bson:"origin_offer_id,omitempty"`
	CreatedAt          time.Time         `bson:"created_at"`
	UpdatedAt          time.Time         `bson:"updated_at"`
	CancelledAt        *time.Time        `bson:"cancelled_at,omitempty"`
	CancelledBy        string            `bson:"cancelled_by,omitempty"`
	CancellationReason string            `bson:"cancellation_reason,omitempty"`
	RefundDue          *moneyDocument    `bson:"refund_due,omitempty"`
	RefundedAt         *time.Time        `bson:"refunded_at,omitempty"`
	Version            int64             `bson:"version"`
}

func newBookingDocument(b domainbooking.Booking) bookingDocument {
	payments := make([]paymentDocument, 0, len(b.Payments))
	for _, p := range b.Payments {
		payments = append(payments, paymentDocument{
			ID:        string(p.ID),
			Amount:    newMoneyDocument(p.Amount),
			Method:    string(p.Method),
			Reference: p.Reference,
			PaidAt:    p.PaidAt.UTC(),
			Notes:     p.Notes,
		})
	}
	doc := bookingDocument{
		ID:                 string(b.ID),
		ClientID:           b.ClientID,
		SupplierID:         b.SupplierID,
		PackageID:          b.PackageID,
		EventName:          b.EventName,
		EventDate:          b.EventDate.EventDate.UTC(),
		EventTime:          b.EventDate.EventTime,
		EventLocation:      b.EventLocation,
		Notes:              b.Notes,
		Status:             string(b.Status),
		SlotHeld:           domainbooking.BlocksAvailability(b.Status),
		Payments:           payments,
		Total:              newMoneyDocument(b.PaymentStatus.Total),
		Paid:               newMoneyDocument(b.PaymentStatus.Paid),
		OriginOfferID:      b.OriginOfferID,
		CreatedAt:          b.CreatedAt.UTC(),
		UpdatedAt:          b.UpdatedAt.UTC(),
		CancelledBy:        b.CancelledBy,
		CancellationReason: b.CancellationReason,
		Version:            b.Version,
	}
	doc.CancelledAt = optionalTime(b.CancelledAt)
	doc.RefundedAt = optionalTime(b.RefundedAt)
	if b.RefundDue.Currency != "" {
		refund := newMoneyDocument(b.RefundDue)
		doc.RefundDue = &refund
	}
	return doc
}

func (d bookingDocument) toAggregate() (domainbooking.Booking, error) {
	payments := make([]domainbooking.Payment, 0, len(d.Payments))
	for _, p := range d.Payments {
		payments = append(payments, domainbooking.Payment{
			ID:        domainbooking.PaymentID(p.ID),
			Amount:    p.Amount.toMoney(),
			Method:    domainbooking.PaymentMethod(p.Method),
			Reference: p.Reference,
			PaidAt:    p.PaidAt.UTC(),
			Notes:     p.Notes,
		})
	}
	b := domainbooking.Booking{
		ID:                 domainbooking.ID(d.ID),
		ClientID:           d.ClientID,
		SupplierID:         d.SupplierID,
		PackageID:          d.PackageID,
		EventName:          d.EventName,
		EventDate:          domainbooking.BookingDate{EventDate: d.EventDate.UTC(), EventTime: d.EventTime},
		EventLocation:      d.EventLocation,
		Notes:              d.Notes,
		Status:             domainbooking.Status(d.Status),
		Payments:           payments,
		PaymentStatus:      domainbooking.PaymentStatus{Total: d.Total.toMoney(), Paid: d.Paid.toMoney()},
		OriginOfferID:      d.OriginOfferID,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
		CancelledBy:        d.CancelledBy,
		CancellationReason: d.CancellationReason,
		Version:            d.Version,
	}
	if d.CancelledAt != nil {
		b.CancelledAt = d.CancelledAt.UTC()
	}
	if d.RefundedAt != nil {
		b.RefundedAt = d.RefundedAt.UTC()
	}
	if d.RefundDue != nil {
		b.RefundDue = d.RefundDue.toMoney()
	}
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	return b, nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
