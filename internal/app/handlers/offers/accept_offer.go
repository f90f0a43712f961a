package offers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/middleware"
	"eventmarket/internal/app/outbox"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/saga"
	"eventmarket/internal/app/uow"
	domainbooking "eventmarket/internal/domain/booking"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/failure"
)

const (
	acceptOfferKey = "offers.accept"

	stepClaimOffer    = "claim-offer"
	stepCreateBooking = "create-booking"
)

var ErrConversionFailed = failure.New(failure.KindConversionFailed, "offer: conversion to booking failed")

type AcceptOfferCommand struct {
	Actor         policies.Actor
	OfferID       string    `validate:"required"`
	EventName     string    `validate:"required,max=200"`
	EventDate     time.Time `validate:"required"`
	EventTime     string
	EventLocation string
	Notes         string
	RequestID     string
}

func (c AcceptOfferCommand) Key() string { return acceptOfferKey }

func (c AcceptOfferCommand) ActorID() string { return c.Actor.ID }

// IdempotencyKey is derived from the offer and the accepting party so that a
// retried accept returns the booking created by the first one.
func (c AcceptOfferCommand) IdempotencyKey() string {
	return idempotencyKey(c.OfferID, c.Actor.ID, c.RequestID)
}

func (c AcceptOfferCommand) ResultPrototype() any { return &AcceptOfferResult{} }

type AcceptOfferResult struct {
	Offer   dto.Offer   `json:"offer"`
	Booking dto.Booking `json:"booking"`
}

// AcceptOfferHandler converts a pending offer into exactly one booking. The
// offer is claimed with a conditional PENDING -> ACCEPTED transition before
// the booking is written; when the booking cannot be written the claim is
// reverted and ErrConversionFailed is returned.
type AcceptOfferHandler struct {
	Deps
}

func (h *AcceptOfferHandler) Handle(ctx context.Context, cmd AcceptOfferCommand) (*AcceptOfferResult, error) {
	unit, ctx, finish, err := uow.Join(ctx, h.UoW, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer finish(false)

	now := h.now()
	current, err := unit.Offers().ByID(ctx, domainoffer.ID(cmd.OfferID))
	if err != nil {
		return nil, err
	}
	bookingID := h.newID()
	accepted, err := current.Accept(cmd.Actor.ID, bookingID, now)
	if err != nil {
		return nil, err
	}
	date, err := domainbooking.NewBookingDate(cmd.EventDate, cmd.EventTime)
	if err != nil {
		return nil, err
	}
	if err := date.ValidateForBooking(now, h.policy().MinimumAdvanceDays); err != nil {
		return nil, err
	}
	pending, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:            domainbooking.ID(bookingID),
		ClientID:      current.BuyerID,
		SupplierID:    current.SellerID,
		PackageID:     current.BasePackageID,
		EventName:     cmd.EventName,
		EventDate:     date,
		EventLocation: cmd.EventLocation,
		Notes:         cmd.Notes,
		Total:         current.CustomPrice,
		OriginOfferID: string(current.ID),
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	var stored domainoffer.Offer
	var created domainbooking.Booking
	err = saga.Run(ctx,
		saga.Step{
			Name: stepClaimOffer,
			Execute: func(ctx context.Context) error {
				var err error
				stored, err = unit.Offers().TransitionIf(ctx, current.ID, domainoffer.StatusPending, domainoffer.PatchOf(accepted))
				return err
			},
			Compensate: func(ctx context.Context) error {
				patch := domainoffer.Patch{Status: domainoffer.StatusPending, UpdatedAt: current.UpdatedAt}
				_, err := unit.Offers().TransitionIf(ctx, current.ID, domainoffer.StatusAccepted, patch)
				return err
			},
		},
		saga.Step{
			Name: stepCreateBooking,
			Execute: func(ctx context.Context) error {
				var err error
				created, err = h.createBooking(ctx, unit, pending)
				return err
			},
		},
	)
	if err != nil {
		return nil, h.conversionError(ctx, current.ID, err)
	}

	if err := outbox.Drain(ctx, h.Outbox, h.encoder(), &accepted, &pending); err != nil {
		return nil, err
	}
	if err := finish(true); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	h.logger().InfoContext(ctx, "offer accepted", "offer_id", current.ID, "booking_id", created.ID, "actor_id", cmd.Actor.ID)
	return &AcceptOfferResult{
		Offer:   dto.OfferFrom(stored, now),
		Booking: dto.BookingFrom(created),
	}, nil
}

func (h *AcceptOfferHandler) createBooking(ctx context.Context, unit uow.UnitOfWork, b domainbooking.Booking) (domainbooking.Booking, error) {
	available, err := unit.Bookings().CheckAvailability(ctx, b.SupplierID, b.EventDate.EventDate, "")
	if err != nil {
		return domainbooking.Booking{}, err
	}
	if !available {
		return domainbooking.Booking{}, domainbooking.ErrSupplierUnavailable
	}
	return unit.Bookings().Create(ctx, b)
}

// conversionError logs the outcome of a failed conversion and maps it to the
// error returned to the caller.
func (h *AcceptOfferHandler) conversionError(ctx context.Context, offerID domainoffer.ID, err error) error {
	var f *saga.Failure
	if !errors.As(err, &f) {
		return err
	}
	if f.Step == stepClaimOffer {
		// Only a storage fault on the claim is a conversion failure.
		if failure.KindOf(f.Err) != failure.KindServer {
			return f.Err
		}
		return fmt.Errorf("%w: %w", ErrConversionFailed, f.Err)
	}
	if f.Compensation != nil {
		h.logger().ErrorContext(ctx, "offer revert failed", "offer_id", offerID, "cause", f.Err, "error", f.Compensation)
	} else {
		h.logger().WarnContext(ctx, "offer conversion reverted", "offer_id", offerID, "cause", f.Err)
	}
	if errors.Is(f.Err, domainbooking.ErrSupplierUnavailable) {
		return f.Err
	}
	return fmt.Errorf("%w: %w", ErrConversionFailed, f.Err)
}

var _ commands.Handler[AcceptOfferCommand, *AcceptOfferResult] = (*AcceptOfferHandler)(nil)
var _ middleware.IdempotentCommand = AcceptOfferCommand{}
