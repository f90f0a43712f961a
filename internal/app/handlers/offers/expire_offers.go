package offers

import (
	"context"
	"errors"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/outbox"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/uow"
	domainoffer "eventmarket/internal/domain/offer"
)

const (
	expireOffersKey    = "offers.expire"
	defaultExpiryBatch = 100
)

// ExpireOffersCommand persists the expiry of pending offers whose validity
// has passed. Acceptance already treats them as expired; this only makes the
// stored status catch up.
type ExpireOffersCommand struct {
	Actor policies.Actor
	Limit int `validate:"gte=0,lte=1000"`
}

func (c ExpireOffersCommand) Key() string { return expireOffersKey }

func (c ExpireOffersCommand) ActorID() string { return c.Actor.ID }

type ExpireOffersResult struct {
	Expired []string `json:"expired"`
}

type ExpireOffersHandler struct {
	Deps
}

func (h *ExpireOffersHandler) Handle(ctx context.Context, cmd ExpireOffersCommand) (*ExpireOffersResult, error) {
	unit, ctx, finish, err := uow.Join(ctx, h.UoW, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer finish(false)

	limit := cmd.Limit
	if limit == 0 {
		limit = defaultExpiryBatch
	}
	now := h.now()
	due, err := unit.Offers().ListExpired(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	result := &ExpireOffersResult{Expired: make([]string, 0, len(due))}
	for _, o := range due {
		next, err := o.Expire(now)
		if err != nil {
			continue
		}
		if _, err := unit.Offers().TransitionIf(ctx, o.ID, domainoffer.StatusPending, domainoffer.PatchOf(next)); err != nil {
			if errors.Is(err, domainoffer.ErrConcurrentTransition) {
				continue
			}
			return nil, err
		}
		if err := outbox.Drain(ctx, h.Outbox, h.encoder(), &next); err != nil {
			return nil, err
		}
		result.Expired = append(result.Expired, string(o.ID))
	}
	if err := finish(true); err != nil {
		return nil, err
	}
	if len(result.Expired) > 0 {
		h.logger().InfoContext(ctx, "offers expired", "count", len(result.Expired))
	}
	return result, nil
}

var _ commands.Handler[ExpireOffersCommand, *ExpireOffersResult] = (*ExpireOffersHandler)(nil)
