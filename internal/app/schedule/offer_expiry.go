package schedule

import (
	"context"
	"time"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/handlers/offers"
	"eventmarket/internal/app/policies"
)

const expirySweeperID = "offer-expiry-sweeper"

// OfferExpiry builds the job that moves lapsed PENDING offers to EXPIRED.
// The expire handler logs what it changed.
func OfferExpiry(bus commands.Bus, interval time.Duration, batch int) Job {
	return Job{
		Name:     "offer-expiry",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := commands.Dispatch[offers.ExpireOffersCommand, *offers.ExpireOffersResult](ctx, bus, offers.ExpireOffersCommand{
				Actor: policies.SystemActor(expirySweeperID),
				Limit: batch,
			})
			return err
		},
	}
}
