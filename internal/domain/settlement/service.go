// Package settlement computes refunds, commissions, deposits, payment
// schedules and prioritisation over bookings. It performs no I/O.
package settlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
)

var (
	ErrMalformedBooking = failure.New(failure.KindValidation, "settlement: malformed booking")
	ErrInvalidRate      = failure.New(failure.KindValidation, "settlement: commission rate must be between 0 and 1")
	ErrDepositNotMet    = failure.New(failure.KindValidation, "settlement: minimum deposit not reached")
)

// Service is stateless and safe for concurrent use.
type Service struct {
	policy Policy
}

func NewService(policy Policy) (*Service, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	tiers := make([]RefundTier, len(policy.RefundTiers))
	copy(tiers, policy.RefundTiers)
	policy.RefundTiers = tiers
	return &Service{policy: policy}, nil
}

func (s *Service) Policy() Policy {
	return s.policy
}

// CalculateRefundAmount applies the refund tier to the paid amount. Days are
// counted from the cancellation timestamp when present, otherwise from at.
func (s *Service) CalculateRefundAmount(b booking.Booking, at time.Time) (money.Money, error) {
	if err := checkBooking(b); err != nil {
		return money.Money{}, err
	}
	ref := at
	if !b.CancelledAt.IsZero() {
		ref = b.CancelledAt
	}
	pct := s.policy.RefundPercent(b.EventDate.DaysUntilEvent(ref))
	return b.PaymentStatus.Paid.Percent(int64(pct)), nil
}

func (s *Service) CalculateCancellationPenalty(b booking.Booking, at time.Time) (money.Money, error) {
	refund, err := s.CalculateRefundAmount(b, at)
	if err != nil {
		return money.Money{}, err
	}
	return b.PaymentStatus.Paid.Sub(refund)
}

// CalculateSuggestedDeposit returns how much more must be paid to reach the
// deposit percentage of the total.
func (s *Service) CalculateSuggestedDeposit(b booking.Booking) (money.Money, error) {
	if err := checkBooking(b); err != nil {
		return money.Money{}, err
	}
	return b.PaymentStatus.MinimumPaymentForPercentage(s.policy.DepositPercent), nil
}

func (s *Service) CalculateFinalPayment(b booking.Booking) (money.Money, error) {
	if err := checkBooking(b); err != nil {
		return money.Money{}, err
	}
	return b.PaymentStatus.Remaining(), nil
}

func (s *Service) CalculatePlatformCommission(b booking.Booking, rate decimal.Decimal) (money.Money, error) {
	if err := checkBooking(b); err != nil {
		return money.Money{}, err
	}
	if err := checkRate(rate); err != nil {
		return money.Money{}, err
	}
	return b.PaymentStatus.Total.Scale(rate), nil
}

func (s *Service) CalculateSupplierEarnings(b booking.Booking, rate decimal.Decimal) (money.Money, error) {
	commission, err := s.CalculatePlatformCommission(b, rate)
	if err != nil {
		return money.Money{}, err
	}
	return b.PaymentStatus.Total.Sub(commission)
}

// ShouldAutoConfirm reports whether a pending booking has been paid enough
// to be confirmed without supplier action.
func (s *Service) ShouldAutoConfirm(b booking.Booking) bool {
	if checkBooking(b) != nil || b.Status != booking.StatusPending || !b.PaymentStatus.Total.IsPositive() {
		return false
	}
	return b.PaymentStatus.MinimumPaymentForPercentage(s.policy.AutoConfirmPercent).IsZero()
}

// ValidateConfirmation guards PENDING -> CONFIRMED with the deposit threshold.
func (s *Service) ValidateConfirmation(b booking.Booking) error {
	if err := checkBooking(b); err != nil {
		return err
	}
	if !booking.CanTransition(b.Status, booking.StatusConfirmed) {
		return &booking.StatusTransitionError{From: b.Status, To: booking.StatusConfirmed}
	}
	missing := b.PaymentStatus.MinimumPaymentForPercentage(s.policy.DepositPercent)
	if missing.IsPositive() {
		return fmt.Errorf("%w: %s still due", ErrDepositNotMet, missing.Format())
	}
	return nil
}

// CalculateUrgencyLevel scores a booking from 0 (no urgency) to 4.
func (s *Service) CalculateUrgencyLevel(b booking.Booking, now time.Time) int {
	if booking.IsFinal(b.Status) {
		return 0
	}
	days := b.EventDate.DaysUntilEvent(now)
	var level int
	switch {
	case days <= 3:
		level = 4
	case days <= 7:
		level = 3
	case days <= 14:
		level = 2
	case days <= 30:
		level = 1
	}
	if b.PaymentStatus.IsFullyPaid() && level > 0 {
		level--
	}
	return level
}

func (s *Service) IsAtRiskOfCancellation(b booking.Booking, now time.Time) bool {
	if booking.IsFinal(b.Status) {
		return false
	}
	return b.EventDate.DaysUntilEvent(now) < s.policy.AtRiskDays &&
		b.PaymentStatus.CompletionPercentage() < s.policy.AtRiskCompletion
}

func (s *Service) IsValidStatusTransition(current, target booking.Status) bool {
	return booking.CanTransition(current, target)
}

func checkBooking(b booking.Booking) error {
	total := b.PaymentStatus.Total
	paid := b.PaymentStatus.Paid
	switch {
	case total.Currency == "" || paid.Currency == "":
		return fmt.Errorf("%w: currency missing", ErrMalformedBooking)
	case total.Currency != paid.Currency:
		return money.ErrCurrencyMismatch
	case total.IsNegative() || paid.IsNegative():
		return fmt.Errorf("%w: negative amount", ErrMalformedBooking)
	case b.EventDate.EventDate.IsZero():
		return fmt.Errorf("%w: event date missing", ErrMalformedBooking)
	}
	return nil
}

func checkRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}
	return nil
}
