package offers

import (
	"context"
	"time"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/middleware"
	"eventmarket/internal/app/outbox"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/uow"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/money"
)

const createOfferKey = "offers.create"

type CreateOfferCommand struct {
	Actor           policies.Actor
	SellerID        string `validate:"required"`
	BuyerID         string `validate:"required,nefield=SellerID"`
	SellerName      string
	BuyerName       string
	PriceAmount     int64  `validate:"gt=0"`
	Currency        string `validate:"omitempty,len=3"`
	Description     string `validate:"required,max=2000"`
	BasePackageID   string
	BasePackageName string
	DeliveryTime    string
	ValidUntil      time.Time
	EventDate       time.Time
	ConversationID  string
	InitiatedBy     string `validate:"required"`
	RequestID       string
}

func (c CreateOfferCommand) Key() string { return createOfferKey }

func (c CreateOfferCommand) ActorID() string { return c.Actor.ID }

func (c CreateOfferCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return idempotencyKey(c.Actor.ID, c.RequestID)
}

func (c CreateOfferCommand) ResultPrototype() any { return &dto.Offer{} }

type CreateOfferHandler struct {
	Deps
}

func (h *CreateOfferHandler) Handle(ctx context.Context, cmd CreateOfferCommand) (*dto.Offer, error) {
	initiator, err := domainoffer.ParseParty(cmd.InitiatedBy)
	if err != nil {
		return nil, err
	}
	initiatorID := cmd.SellerID
	if initiator == domainoffer.PartyBuyer {
		initiatorID = cmd.BuyerID
	}
	if cmd.Actor.ID != initiatorID && !cmd.Actor.IsPrivileged() {
		return nil, domainoffer.ErrUnauthorized
	}

	currency := cmd.Currency
	if currency == "" {
		currency = h.DefaultCurrency
	}
	price, err := money.New(cmd.PriceAmount, currency)
	if err != nil {
		return nil, err
	}
	now := h.now()
	validUntil := cmd.ValidUntil
	if validUntil.IsZero() && h.DefaultValidity > 0 {
		validUntil = now.Add(h.DefaultValidity)
	}

	unit, ctx, finish, err := uow.Join(ctx, h.UoW, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer finish(false)

	o, err := domainoffer.NewOffer(domainoffer.CreateParams{
		ID:              domainoffer.ID(h.newID()),
		SellerID:        cmd.SellerID,
		BuyerID:         cmd.BuyerID,
		SellerName:      cmd.SellerName,
		BuyerName:       cmd.BuyerName,
		CustomPrice:     price,
		Description:     cmd.Description,
		BasePackageID:   cmd.BasePackageID,
		BasePackageName: cmd.BasePackageName,
		DeliveryTime:    cmd.DeliveryTime,
		ValidUntil:      validUntil,
		EventDate:       cmd.EventDate,
		ConversationID:  cmd.ConversationID,
		InitiatedBy:     initiator,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Offers().Create(ctx, o); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.encoder(), &o); err != nil {
		return nil, err
	}
	if err := finish(true); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "offer created", "offer_id", o.ID, "initiated_by", o.InitiatedBy, "price", o.CustomPrice.Format())
	out := dto.OfferFrom(o, now)
	return &out, nil
}

var _ commands.Handler[CreateOfferCommand, *dto.Offer] = (*CreateOfferHandler)(nil)
var _ middleware.IdempotentCommand = CreateOfferCommand{}
