package booking

import (
	"fmt"

	"eventmarket/internal/domain/shared/failure"
)

var ErrInvalidStatusTransition = failure.New(failure.KindValidation, "booking: invalid status transition")

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// statusTransitions is the only place allowed moves between statuses are declared.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCancelled:  {StatusRefunded},
}

// AllStatuses lists every known status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusRefunded}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	for _, known := range AllStatuses() {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, raw)
}

// CanTransition reports whether from -> to is an allowed move. It is never
// true for from == to.
func CanTransition(from, to Status) bool {
	for _, candidate := range statusTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsFinal reports whether no business transition may leave the status.
// CANCELLED is final for the lifecycle; only the refund bookkeeping step follows it.
func IsFinal(s Status) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

func CanBeCancelled(s Status) bool {
	return CanTransition(s, StatusCancelled)
}

func CanAcceptPayments(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

// BlocksAvailability reports whether a booking in status s occupies the supplier's date.
func BlocksAvailability(s Status) bool {
	switch s {
	case StatusCancelled, StatusRefunded:
		return false
	default:
		return true
	}
}

// StatusTransitionError carries the attempted move; it unwraps to ErrInvalidStatusTransition.
type StatusTransitionError struct {
	From Status
	To   Status
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("booking: invalid status transition from %s to %s", e.From, e.To)
}

func (e *StatusTransitionError) Unwrap() error {
	return ErrInvalidStatusTransition
}
