package offer

import (
	"fmt"
	"strings"
	"time"

	"eventmarket/internal/domain/shared/failure"
)

var (
	ErrInvalidTransition = failure.New(failure.KindValidation, "offer: invalid transition")
	ErrUnauthorized      = failure.New(failure.KindUnauthorized, "offer: actor may not perform this transition")
	ErrOfferExpired      = failure.New(failure.KindValidation, "offer: offer has expired")
	// ErrConcurrentTransition is returned by repositories when a conditional
	// transition loses the race; callers observe it as ErrInvalidTransition.
	ErrConcurrentTransition = failure.Wrap(failure.KindValidation, "offer: status changed concurrently", ErrInvalidTransition)
)

type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionCancel Action = "cancel"
	ActionExpire Action = "expire"
)

type actor int

const (
	actorResponder actor = iota
	actorInitiator
	actorSystem
)

type rule struct {
	from  Status
	to    Status
	actor actor
}

// transitions is the offer state machine.
var transitions = map[Action]rule{
	ActionAccept: {from: StatusPending, to: StatusAccepted, actor: actorResponder},
	ActionReject: {from: StatusPending, to: StatusRejected, actor: actorResponder},
	ActionCancel: {from: StatusPending, to: StatusCancelled, actor: actorInitiator},
	ActionExpire: {from: StatusPending, to: StatusExpired, actor: actorSystem},
}

// CanPerform reports whether actorID may run action on o right now, ignoring expiry.
func (o Offer) CanPerform(action Action, actorID string) error {
	r, ok := transitions[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	if o.Status != r.from {
		return fmt.Errorf("%w: cannot %s an offer in status %s", ErrInvalidTransition, action, o.Status)
	}
	switch r.actor {
	case actorResponder:
		if actorID == "" || actorID != o.Responder() {
			return ErrUnauthorized
		}
	case actorInitiator:
		if actorID == "" || actorID != o.Initiator() {
			return ErrUnauthorized
		}
	}
	return nil
}

// Accept answers the offer positively and links the booking it produced.
func (o Offer) Accept(actorID, bookingID string, now time.Time) (Offer, error) {
	if err := o.CanPerform(ActionAccept, actorID); err != nil {
		return Offer{}, err
	}
	if o.IsExpired(now) {
		return Offer{}, ErrOfferExpired
	}
	if strings.TrimSpace(bookingID) == "" {
		return Offer{}, fmt.Errorf("%w: booking id required", ErrInvalidTransition)
	}
	next := o.moveTo(StatusAccepted, now)
	next.BookingID = bookingID
	next.Record(OfferAccepted{OfferID: o.ID, AcceptedBy: actorID, BookingID: bookingID, Price: o.CustomPrice, At: next.UpdatedAt})
	return next, nil
}

func (o Offer) Reject(actorID, reason string, now time.Time) (Offer, error) {
	if err := o.CanPerform(ActionReject, actorID); err != nil {
		return Offer{}, err
	}
	next := o.moveTo(StatusRejected, now)
	next.RejectionReason = strings.TrimSpace(reason)
	next.Record(OfferRejected{OfferID: o.ID, RejectedBy: actorID, Reason: next.RejectionReason, At: next.UpdatedAt})
	return next, nil
}

func (o Offer) Cancel(actorID string, now time.Time) (Offer, error) {
	if err := o.CanPerform(ActionCancel, actorID); err != nil {
		return Offer{}, err
	}
	next := o.moveTo(StatusCancelled, now)
	next.Record(OfferCancelled{OfferID: o.ID, CancelledBy: actorID, At: next.UpdatedAt})
	return next, nil
}

// Expire persists the derived expiry; it fails while ValidUntil has not passed.
func (o Offer) Expire(now time.Time) (Offer, error) {
	if err := o.CanPerform(ActionExpire, ""); err != nil {
		return Offer{}, err
	}
	if !o.IsExpired(now) {
		return Offer{}, fmt.Errorf("%w: offer valid until %s", ErrInvalidTransition, o.ValidUntil.Format(time.RFC3339))
	}
	next := o.moveTo(StatusExpired, now)
	next.Record(OfferExpired{OfferID: o.ID, At: next.UpdatedAt})
	return next, nil
}

func (o Offer) moveTo(status Status, now time.Time) Offer {
	next := o
	next.Status = status
	next.UpdatedAt = now.UTC()
	return next
}
