package offers

import (
	"context"
	"strings"

	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/queries"
	"eventmarket/internal/app/uow"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/failure"
)

const (
	getOfferKey   = "offers.get"
	listOffersKey = "offers.list"
)

var ErrInvalidStatusFilter = failure.New(failure.KindValidation, "offer: unknown status filter")

type GetOfferQuery struct {
	Actor   policies.Actor
	OfferID string `validate:"required"`
}

func (q GetOfferQuery) Key() string { return getOfferKey }

func (q GetOfferQuery) ActorID() string { return q.Actor.ID }

type ListOffersQuery struct {
	Actor  policies.Actor
	Status string
}

func (q ListOffersQuery) Key() string { return listOffersKey }

func (q ListOffersQuery) ActorID() string { return q.Actor.ID }

type GetOfferHandler struct {
	Deps
}

func (h *GetOfferHandler) Handle(ctx context.Context, q GetOfferQuery) (*dto.Offer, error) {
	unit, ctx, finish, err := uow.Join(ctx, h.UoW, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer finish(false)

	o, err := unit.Offers().ByID(ctx, domainoffer.ID(q.OfferID))
	if err != nil {
		return nil, err
	}
	if !o.IsParticipant(q.Actor.ID) && !q.Actor.IsPrivileged() {
		return nil, domainoffer.ErrUnauthorized
	}
	out := dto.OfferFrom(o, h.now())
	return &out, nil
}

type ListOffersHandler struct {
	Deps
}

func (h *ListOffersHandler) Handle(ctx context.Context, q ListOffersQuery) ([]dto.Offer, error) {
	var status domainoffer.Status
	if raw := strings.TrimSpace(q.Status); raw != "" {
		parsed, ok := domainoffer.ParseStatus(raw)
		if !ok {
			return nil, ErrInvalidStatusFilter
		}
		status = parsed
	}
	unit, ctx, finish, err := uow.Join(ctx, h.UoW, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer finish(false)

	items, err := unit.Offers().ListByParticipant(ctx, q.Actor.ID, status)
	if err != nil {
		return nil, err
	}
	now := h.now()
	out := make([]dto.Offer, 0, len(items))
	for _, o := range items {
		out = append(out, dto.OfferFrom(o, now))
	}
	return out, nil
}

var _ queries.Handler[GetOfferQuery, *dto.Offer] = (*GetOfferHandler)(nil)
var _ queries.Handler[ListOffersQuery, []dto.Offer] = (*ListOffersHandler)(nil)
