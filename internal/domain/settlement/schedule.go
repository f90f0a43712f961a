package settlement

import (
	"fmt"
	"time"

	"eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
)

var ErrInvalidInstallments = failure.New(failure.KindValidation, "settlement: installments out of range")

type Installment struct {
	DueBy  time.Time
	Amount money.Money
}

// GeneratePaymentSchedule splits the remaining balance into installments
// that sum exactly to it. Due dates are spread evenly from today up to the
// final payment deadline before the event. A booking with nothing left to
// pay, or that no longer accepts payments, yields an empty schedule.
func (s *Service) GeneratePaymentSchedule(b booking.Booking, now time.Time, installments int) ([]Installment, error) {
	if installments < 1 || installments > s.policy.MaxInstallments {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidInstallments, installments, s.policy.MaxInstallments)
	}
	if err := checkBooking(b); err != nil {
		return nil, err
	}
	remaining := b.PaymentStatus.Remaining()
	if !remaining.IsPositive() || !booking.CanAcceptPayments(b.Status) {
		return []Installment{}, nil
	}
	n := installments
	if int64(n) > remaining.Amount {
		n = int(remaining.Amount)
	}
	parts, err := remaining.Allocate(n)
	if err != nil {
		return nil, err
	}

	start := day(now)
	deadline := b.EventDate.EventDate.AddDate(0, 0, -s.policy.FinalPaymentLeadDays)
	if deadline.Before(start) {
		deadline = start
	}
	span := int(deadline.Sub(start).Hours() / 24)

	out := make([]Installment, n)
	for i, amount := range parts {
		out[i] = Installment{
			DueBy:  start.AddDate(0, 0, span*(i+1)/n),
			Amount: amount,
		}
	}
	return out, nil
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
