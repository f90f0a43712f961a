package settlement

import (
	"fmt"

	"eventmarket/internal/domain/shared/failure"
)

var ErrInvalidPolicy = failure.New(failure.KindValidation, "settlement: invalid policy")

// RefundTier grants Percent of the paid amount when cancelling at least
// MinDays before the event.
type RefundTier struct {
	MinDays int
	Percent int
}

// Policy holds the tunable business thresholds of the settlement rules.
type Policy struct {
	// RefundTiers must be ordered by MinDays descending.
	RefundTiers           []RefundTier
	FallbackRefundPercent int

	DepositPercent     int
	AutoConfirmPercent int

	AtRiskDays       int
	AtRiskCompletion float64

	MinimumAdvanceDays      int
	CancellationMinimumDays int
	FinalPaymentLeadDays    int
	MaxInstallments         int
}

func DefaultPolicy() Policy {
	return Policy{
		RefundTiers: []RefundTier{
			{MinDays: 30, Percent: 100},
			{MinDays: 15, Percent: 75},
			{MinDays: 7, Percent: 50},
		},
		FallbackRefundPercent:   25,
		DepositPercent:          30,
		AutoConfirmPercent:      30,
		AtRiskDays:              7,
		AtRiskCompletion:        50,
		MinimumAdvanceDays:      1,
		CancellationMinimumDays: 1,
		FinalPaymentLeadDays:    7,
		MaxInstallments:         10,
	}
}

func (p Policy) Validate() error {
	for i, tier := range p.RefundTiers {
		if !validPercent(tier.Percent) {
			return fmt.Errorf("%w: refund tier %d percent %d", ErrInvalidPolicy, i, tier.Percent)
		}
		if i > 0 && tier.MinDays >= p.RefundTiers[i-1].MinDays {
			return fmt.Errorf("%w: refund tiers must be ordered by days descending", ErrInvalidPolicy)
		}
	}
	switch {
	case !validPercent(p.FallbackRefundPercent):
		return fmt.Errorf("%w: fallback refund percent %d", ErrInvalidPolicy, p.FallbackRefundPercent)
	case !validPercent(p.DepositPercent):
		return fmt.Errorf("%w: deposit percent %d", ErrInvalidPolicy, p.DepositPercent)
	case !validPercent(p.AutoConfirmPercent):
		return fmt.Errorf("%w: auto confirm percent %d", ErrInvalidPolicy, p.AutoConfirmPercent)
	case p.AtRiskCompletion < 0 || p.AtRiskCompletion > 100:
		return fmt.Errorf("%w: at risk completion %.2f", ErrInvalidPolicy, p.AtRiskCompletion)
	case p.MinimumAdvanceDays < 0 || p.CancellationMinimumDays < 0 || p.FinalPaymentLeadDays < 0 || p.AtRiskDays < 0:
		return fmt.Errorf("%w: day thresholds must not be negative", ErrInvalidPolicy)
	case p.MaxInstallments < 1:
		return fmt.Errorf("%w: max installments must be at least 1", ErrInvalidPolicy)
	}
	return nil
}

// RefundPercent returns the refundable share for a cancellation daysBefore
// the event. Negative values mean the event already happened.
func (p Policy) RefundPercent(daysBefore int) int {
	for _, tier := range p.RefundTiers {
		if daysBefore >= tier.MinDays {
			return clampPercent(tier.Percent)
		}
	}
	return clampPercent(p.FallbackRefundPercent)
}

func validPercent(p int) bool {
	return p >= 0 && p <= 100
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
