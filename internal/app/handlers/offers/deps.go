// Package offers holds the commands and queries of the offer negotiation,
// including the conversion of an accepted offer into a booking.
package offers

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventmarket/internal/app/outbox"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/uow"
	"eventmarket/internal/domain/settlement"
)

// Deps are the collaborators shared by the offer handlers.
type Deps struct {
	UoW        uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Settlement *settlement.Service
	Clock      policies.Clock
	NewID      func() string
	Logger     *slog.Logger

	// DefaultValidity applies to offers created without a validity.
	DefaultValidity time.Duration
	DefaultCurrency string
}

func (d Deps) now() time.Time {
	return policies.NowOr(d.Clock)
}

func (d Deps) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

func (d Deps) encoder() outbox.EventEncoder {
	if d.Encoder != nil {
		return d.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Deps) policy() settlement.Policy {
	if d.Settlement == nil {
		return settlement.DefaultPolicy()
	}
	return d.Settlement.Policy()
}

func idempotencyKey(parts ...string) string {
	key := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if key != "" {
			key += ":"
		}
		key += p
	}
	return key
}
