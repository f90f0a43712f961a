package dto

import (
	"time"

	domainoffer "eventmarket/internal/domain/offer"
)

type Offer struct {
	ID              string     `json:"id"`
	SellerID        string     `json:"seller_id"`
	BuyerID         string     `json:"buyer_id"`
	SellerName      string     `json:"seller_name,omitempty"`
	BuyerName       string     `json:"buyer_name,omitempty"`
	CustomPrice     MoneyDTO   `json:"custom_price"`
	Description     string     `json:"description"`
	BasePackageID   string     `json:"base_package_id,omitempty"`
	BasePackageName string     `json:"base_package_name,omitempty"`
	DeliveryTime    string     `json:"delivery_time,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	EventDate       *time.Time `json:"event_date,omitempty"`
	ConversationID  string     `json:"conversation_id,omitempty"`
	Status          string     `json:"status"`
	Expired         bool       `json:"expired"`
	InitiatedBy     string     `json:"initiated_by"`
	BookingID       string     `json:"booking_id,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OfferFrom maps an offer; Expired is evaluated at now so pending offers
// past their validity are flagged before the sweeper persists it.
func OfferFrom(o domainoffer.Offer, now time.Time) Offer {
	return Offer{
		ID:              string(o.ID),
		SellerID:        o.SellerID,
		BuyerID:         o.BuyerID,
		SellerName:      o.SellerName,
		BuyerName:       o.BuyerName,
		CustomPrice:     MoneyFrom(o.CustomPrice),
		Description:     o.Description,
		BasePackageID:   o.BasePackageID,
		BasePackageName: o.BasePackageName,
		DeliveryTime:    o.DeliveryTime,
		ValidUntil:      optionalTime(o.ValidUntil),
		EventDate:       optionalTime(o.EventDate),
		ConversationID:  o.ConversationID,
		Status:          string(o.Status),
		Expired:         o.Status == domainoffer.StatusExpired || (o.Status == domainoffer.StatusPending && o.IsExpired(now)),
		InitiatedBy:     string(o.InitiatedBy),
		BookingID:       o.BookingID,
		RejectionReason: o.RejectionReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
