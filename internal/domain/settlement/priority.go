package settlement

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/money"
)

// CompareByPriority orders by urgency descending, then event date, creation
// time and id ascending. It returns a negative number when a comes first.
func (s *Service) CompareByPriority(a, b booking.Booking, now time.Time) int {
	if ua, ub := s.CalculateUrgencyLevel(a, now), s.CalculateUrgencyLevel(b, now); ua != ub {
		return ub - ua
	}
	if c := a.EventDate.EventDate.Compare(b.EventDate.EventDate); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(string(a.ID), string(b.ID))
}

// SortByPriority returns a sorted copy of items.
func (s *Service) SortByPriority(items []booking.Booking, now time.Time) []booking.Booking {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b booking.Booking) int {
		return s.CompareByPriority(a, b, now)
	})
	return out
}

// Summary is the settlement view of a booking at a point in time.
type Summary struct {
	Total                money.Money
	Paid                 money.Money
	Remaining            money.Money
	CompletionPercentage float64
	SuggestedDeposit     money.Money
	Commission           money.Money
	SupplierEarnings     money.Money
	RefundIfCancelled    money.Money
	PenaltyIfCancelled   money.Money
	DaysUntilEvent       int
	UrgencyLevel         int
	AtRisk               bool
	AutoConfirm          bool
	CanCancel            bool
}

func (s *Service) Summarize(b booking.Booking, rate decimal.Decimal, now time.Time) (Summary, error) {
	deposit, err := s.CalculateSuggestedDeposit(b)
	if err != nil {
		return Summary{}, err
	}
	commission, err := s.CalculatePlatformCommission(b, rate)
	if err != nil {
		return Summary{}, err
	}
	earnings, err := b.PaymentStatus.Total.Sub(commission)
	if err != nil {
		return Summary{}, err
	}
	refund, err := s.CalculateRefundAmount(b, now)
	if err != nil {
		return Summary{}, err
	}
	penalty, err := b.PaymentStatus.Paid.Sub(refund)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Total:                b.PaymentStatus.Total,
		Paid:                 b.PaymentStatus.Paid,
		Remaining:            b.PaymentStatus.Remaining(),
		CompletionPercentage: b.PaymentStatus.CompletionPercentage(),
		SuggestedDeposit:     deposit,
		Commission:           commission,
		SupplierEarnings:     earnings,
		RefundIfCancelled:    refund,
		PenaltyIfCancelled:   penalty,
		DaysUntilEvent:       b.EventDate.DaysUntilEvent(now),
		UrgencyLevel:         s.CalculateUrgencyLevel(b, now),
		AtRisk:               s.IsAtRiskOfCancellation(b, now),
		AutoConfirm:          s.ShouldAutoConfirm(b),
		CanCancel: booking.CanBeCancelled(b.Status) &&
			b.EventDate.IsWithinCancellationPeriod(now, s.policy.CancellationMinimumDays),
	}, nil
}
