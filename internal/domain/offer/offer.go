package offer

import (
	"strings"
	"time"

	"eventmarket/internal/domain/shared/events"
	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
)

var (
	ErrNotFound            = failure.New(failure.KindNotFound, "offer: not found")
	ErrIDRequired          = failure.New(failure.KindValidation, "offer: id is required")
	ErrInvalidParties      = failure.New(failure.KindValidation, "offer: seller and buyer must be distinct and present")
	ErrInvalidPrice        = failure.New(failure.KindValidation, "offer: custom price must be positive")
	ErrDescriptionRequired = failure.New(failure.KindValidation, "offer: description is required")
	ErrInvalidValidity     = failure.New(failure.KindValidation, "offer: valid until must be in the future")
	ErrInvalidInitiator    = failure.New(failure.KindValidation, "offer: initiated by must be SELLER or BUYER")
)

type ID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// Party identifies which side of the negotiation created the offer.
type Party string

const (
	PartySeller Party = "SELLER"
	PartyBuyer  Party = "BUYER"
)

func ParseParty(raw string) (Party, error) {
	switch p := Party(strings.ToUpper(strings.TrimSpace(raw))); p {
	case PartySeller, PartyBuyer:
		return p, nil
	default:
		return "", ErrInvalidInitiator
	}
}

func ParseStatus(raw string) (Status, bool) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusExpired:
		return s, true
	default:
		return "", false
	}
}

// Offer is a negotiable price proposal. Seller-initiated offers are answered
// by the buyer and buyer-initiated proposals by the seller.
type Offer struct {
	ID              ID
	SellerID        string
	BuyerID         string
	SellerName      string
	BuyerName       string
	CustomPrice     money.Money
	Description     string
	BasePackageID   string
	BasePackageName string
	DeliveryTime    string
	ValidUntil      time.Time
	EventDate       time.Time
	ConversationID  string
	Status          Status
	InitiatedBy     Party
	BookingID       string
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	events.EventRecorder
}

type CreateParams struct {
	ID              ID
	SellerID        string
	BuyerID         string
	SellerName      string
	BuyerName       string
	CustomPrice     money.Money
	Description     string
	BasePackageID   string
	BasePackageName string
	DeliveryTime    string
	ValidUntil      time.Time
	EventDate       time.Time
	ConversationID  string
	InitiatedBy     Party
	CreatedAt       time.Time
}

func NewOffer(params CreateParams) (Offer, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return Offer{}, ErrIDRequired
	}
	sellerID := strings.TrimSpace(params.SellerID)
	buyerID := strings.TrimSpace(params.BuyerID)
	if sellerID == "" || buyerID == "" || sellerID == buyerID {
		return Offer{}, ErrInvalidParties
	}
	if params.CustomPrice.Currency == "" || !params.CustomPrice.IsPositive() {
		return Offer{}, ErrInvalidPrice
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return Offer{}, ErrDescriptionRequired
	}
	initiator, err := ParseParty(string(params.InitiatedBy))
	if err != nil {
		return Offer{}, err
	}
	now := params.CreatedAt.UTC()
	if !params.ValidUntil.IsZero() && !params.ValidUntil.After(now) {
		return Offer{}, ErrInvalidValidity
	}
	o := Offer{
		ID:              params.ID,
		SellerID:        sellerID,
		BuyerID:         buyerID,
		SellerName:      strings.TrimSpace(params.SellerName),
		BuyerName:       strings.TrimSpace(params.BuyerName),
		CustomPrice:     params.CustomPrice,
		Description:     description,
		BasePackageID:   strings.TrimSpace(params.BasePackageID),
		BasePackageName: strings.TrimSpace(params.BasePackageName),
		DeliveryTime:    strings.TrimSpace(params.DeliveryTime),
		ValidUntil:      params.ValidUntil.UTC(),
		EventDate:       params.EventDate.UTC(),
		ConversationID:  params.ConversationID,
		Status:          StatusPending,
		InitiatedBy:     initiator,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if params.ValidUntil.IsZero() {
		o.ValidUntil = time.Time{}
	}
	if params.EventDate.IsZero() {
		o.EventDate = time.Time{}
	}
	o.Record(OfferCreated{
		OfferID:     o.ID,
		SellerID:    o.SellerID,
		BuyerID:     o.BuyerID,
		Price:       o.CustomPrice,
		InitiatedBy: o.InitiatedBy,
		ValidUntil:  o.ValidUntil,
		At:          now,
	})
	return o, nil
}

// Initiator returns the user id of the party that created the offer.
func (o Offer) Initiator() string {
	if o.InitiatedBy == PartyBuyer {
		return o.BuyerID
	}
	return o.SellerID
}

// Responder returns the user id of the party expected to accept or reject.
func (o Offer) Responder() string {
	if o.InitiatedBy == PartyBuyer {
		return o.SellerID
	}
	return o.BuyerID
}

func (o Offer) IsParticipant(userID string) bool {
	return userID != "" && (userID == o.SellerID || userID == o.BuyerID)
}

// IsExpired is derived from ValidUntil regardless of the stored status.
func (o Offer) IsExpired(now time.Time) bool {
	return !o.ValidUntil.IsZero() && now.After(o.ValidUntil)
}

func (o Offer) IsTerminal() bool {
	return o.Status != StatusPending
}
