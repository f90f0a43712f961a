package offers

import (
	"context"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/outbox"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/uow"
	domainoffer "eventmarket/internal/domain/offer"
)

const (
	rejectOfferKey = "offers.reject"
	cancelOfferKey = "offers.cancel"
)

type RejectOfferCommand struct {
	Actor   policies.Actor
	OfferID string `validate:"required"`
	Reason  string `validate:"max=500"`
}

func (c RejectOfferCommand) Key() string { return rejectOfferKey }

func (c RejectOfferCommand) ActorID() string { return c.Actor.ID }

type CancelOfferCommand struct {
	Actor   policies.Actor
	OfferID string `validate:"required"`
}

func (c CancelOfferCommand) Key() string { return cancelOfferKey }

func (c CancelOfferCommand) ActorID() string { return c.Actor.ID }

type RejectOfferHandler struct {
	Deps
}

func (h *RejectOfferHandler) Handle(ctx context.Context, cmd RejectOfferCommand) (*dto.Offer, error) {
	return h.transition(ctx, domainoffer.ID(cmd.OfferID), func(o domainoffer.Offer) (domainoffer.Offer, error) {
		return o.Reject(cmd.Actor.ID, cmd.Reason, h.now())
	})
}

type CancelOfferHandler struct {
	Deps
}

func (h *CancelOfferHandler) Handle(ctx context.Context, cmd CancelOfferCommand) (*dto.Offer, error) {
	return h.transition(ctx, domainoffer.ID(cmd.OfferID), func(o domainoffer.Offer) (domainoffer.Offer, error) {
		return o.Cancel(cmd.Actor.ID, h.now())
	})
}

// transition applies a PENDING-only transition with the conditional write.
func (d Deps) transition(ctx context.Context, id domainoffer.ID, apply func(domainoffer.Offer) (domainoffer.Offer, error)) (*dto.Offer, error) {
	unit, ctx, finish, err := uow.Join(ctx, d.UoW, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer finish(false)

	current, err := unit.Offers().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := apply(current)
	if err != nil {
		return nil, err
	}
	stored, err := unit.Offers().TransitionIf(ctx, id, current.Status, domainoffer.PatchOf(next))
	if err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, d.Outbox, d.encoder(), &next); err != nil {
		return nil, err
	}
	if err := finish(true); err != nil {
		return nil, err
	}
	d.logger().InfoContext(ctx, "offer status changed", "offer_id", id, "from", current.Status, "to", stored.Status)
	out := dto.OfferFrom(stored, d.now())
	return &out, nil
}

var _ commands.Handler[RejectOfferCommand, *dto.Offer] = (*RejectOfferHandler)(nil)
var _ commands.Handler[CancelOfferCommand, *dto.Offer] = (*CancelOfferHandler)(nil)
