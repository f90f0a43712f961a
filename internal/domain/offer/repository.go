package offer

import (
	"context"
	"time"
)

// Patch is the set of fields a conditional transition writes.
type Patch struct {
	Status          Status
	BookingID       string
	RejectionReason string
	UpdatedAt       time.Time
}

// PatchOf extracts the transition fields of next.
func PatchOf(next Offer) Patch {
	return Patch{
		Status:          next.Status,
		BookingID:       next.BookingID,
		RejectionReason: next.RejectionReason,
		UpdatedAt:       next.UpdatedAt,
	}
}

// Apply returns o with the patch written over it.
func (o Offer) Apply(p Patch) Offer {
	next := o
	next.Status = p.Status
	next.BookingID = p.BookingID
	next.RejectionReason = p.RejectionReason
	next.UpdatedAt = p.UpdatedAt
	next.ClearEvents()
	return next
}

// Repository persists offers. TransitionIf is the atomic compare-and-set on
// status: it writes patch only if the stored status equals expected and
// returns ErrConcurrentTransition otherwise.
type Repository interface {
	Create(ctx context.Context, o Offer) error
	ByID(ctx context.Context, id ID) (Offer, error)
	TransitionIf(ctx context.Context, id ID, expected Status, patch Patch) (Offer, error)
	ListByParticipant(ctx context.Context, userID string, status Status) ([]Offer, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]Offer, error)
}
