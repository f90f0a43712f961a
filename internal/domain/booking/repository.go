package booking

import (
	"context"
	"time"
)

// Repository persists bookings. Implementations must re-run Validate on every
// load and reject Save when b.Version no longer matches storage.
type Repository interface {
	Create(ctx context.Context, b Booking) (Booking, error)
	ByID(ctx context.Context, id ID) (Booking, error)
	Save(ctx context.Context, b Booking) (Booking, error)
	CheckAvailability(ctx context.Context, supplierID string, date time.Time, excludeID ID) (bool, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]Booking, error)
	ListByClient(ctx context.Context, clientID string) ([]Booking, error)
}
