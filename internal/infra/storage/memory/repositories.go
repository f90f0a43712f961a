package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	domainbooking "eventmarket/internal/domain/booking"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/failure"
)

// ErrDuplicateID is returned when Create receives an id that is already stored.
var ErrDuplicateID = failure.New(failure.KindServer, "memory: duplicate id")

// OfferRepository stores offers in memory. TransitionIf runs its status
// check and write under one lock.
type OfferRepository struct {
	mu    sync.RWMutex
	items map[domainoffer.ID]domainoffer.Offer
}

func NewOfferRepository() *OfferRepository {
	return &OfferRepository{items: make(map[domainoffer.ID]domainoffer.Offer)}
}

func (r *OfferRepository) Create(ctx context.Context, o domainoffer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[o.ID]; ok {
		return ErrDuplicateID
	}
	o.ClearEvents()
	r.items[o.ID] = o
	return nil
}

func (r *OfferRepository) ByID(ctx context.Context, id domainoffer.ID) (domainoffer.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return domainoffer.Offer{}, domainoffer.ErrNotFound
	}
	return o, nil
}

func (r *OfferRepository) TransitionIf(ctx context.Context, id domainoffer.ID, expected domainoffer.Status, patch domainoffer.Patch) (domainoffer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return domainoffer.Offer{}, domainoffer.ErrNotFound
	}
	if o.Status != expected {
		return domainoffer.Offer{}, domainoffer.ErrConcurrentTransition
	}
	next := o.Apply(patch)
	r.items[id] = next
	return next, nil
}

func (r *OfferRepository) ListByParticipant(ctx context.Context, userID string, status domainoffer.Status) ([]domainoffer.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainoffer.Offer, 0)
	for _, o := range r.items {
		if !o.IsParticipant(userID) || (status != "" && o.Status != status) {
			continue
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b domainoffer.Offer) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out, nil
}

// ListExpired returns pending offers whose validity ended before now, oldest first.
func (r *OfferRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]domainoffer.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainoffer.Offer, 0)
	for _, o := range r.items {
		if o.Status == domainoffer.StatusPending && o.IsExpired(now) {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domainoffer.Offer) int {
		return a.ValidUntil.Compare(b.ValidUntil)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// BookingRepository stores bookings in memory with the same version check
// and one-booking-per-slot rule a database adapter enforces.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]domainbooking.Booking)}
}

func (r *BookingRepository) Create(ctx context.Context, b domainbooking.Booking) (domainbooking.Booking, error) {
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[b.ID]; ok {
		return domainbooking.Booking{}, ErrDuplicateID
	}
	if domainbooking.BlocksAvailability(b.Status) && !r.slotFree(b.SupplierID, b.EventDate.EventDate, b.ID) {
		return domainbooking.Booking{}, domainbooking.ErrSupplierUnavailable
	}
	stored := snapshot(b)
	stored.Version = 1
	r.items[b.ID] = stored
	return snapshot(stored), nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return domainbooking.Booking{}, domainbooking.ErrNotFound
	}
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	return snapshot(b), nil
}

// Save writes b when its Version still matches the stored one and returns
// the stored value with the incremented version.
func (r *BookingRepository) Save(ctx context.Context, b domainbooking.Booking) (domainbooking.Booking, error) {
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[b.ID]
	if !ok {
		return domainbooking.Booking{}, domainbooking.ErrNotFound
	}
	if current.Version != b.Version {
		return domainbooking.Booking{}, domainbooking.ErrConcurrentUpdate
	}
	stored := snapshot(b)
	stored.Version++
	r.items[b.ID] = stored
	return snapshot(stored), nil
}

func (r *BookingRepository) CheckAvailability(ctx context.Context, supplierID string, date time.Time, excludeID domainbooking.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slotFree(supplierID, date, excludeID), nil
}

// slotFree reports whether no blocking booking holds the supplier's day.
// Callers hold r.mu.
func (r *BookingRepository) slotFree(supplierID string, date time.Time, excludeID domainbooking.ID) bool {
	day := date.UTC().Truncate(24 * time.Hour)
	for _, b := range r.items {
		if b.SupplierID != supplierID || b.ID == excludeID || !domainbooking.BlocksAvailability(b.Status) {
			continue
		}
		if b.EventDate.EventDate.Equal(day) {
			return false
		}
	}
	return true
}

func (r *BookingRepository) ListBySupplier(ctx context.Context, supplierID string) ([]domainbooking.Booking, error) {
	return r.list(func(b domainbooking.Booking) bool { return b.SupplierID == supplierID })
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientID string) ([]domainbooking.Booking, error) {
	return r.list(func(b domainbooking.Booking) bool { return b.ClientID == clientID })
}

func (r *BookingRepository) list(match func(domainbooking.Booking) bool) ([]domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainbooking.Booking, 0)
	for _, b := range r.items {
		if !match(b) {
			continue
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		out = append(out, snapshot(b))
	}
	slices.SortFunc(out, func(a, b domainbooking.Booking) int {
		return a.EventDate.EventDate.Compare(b.EventDate.EventDate)
	})
	return out, nil
}

// snapshot detaches b from caller-owned slices and pending events.
func snapshot(b domainbooking.Booking) domainbooking.Booking {
	b.Payments = slices.Clone(b.Payments)
	b.ClearEvents()
	return b
}

var (
	_ domainoffer.Repository   = (*OfferRepository)(nil)
	_ domainbooking.Repository = (*BookingRepository)(nil)
)
