package policies

import (
	"context"

	"github.com/shopspring/decimal"

	"eventmarket/internal/domain/shared/failure"
)

var ErrInvalidCommissionRate = failure.New(failure.KindValidation, "policies: commission rate must be between 0 and 1")

// CommissionPort resolves the platform commission rate charged to a
// supplier. Supplier tiers live outside this service.
type CommissionPort interface {
	RateFor(ctx context.Context, supplierID string) (decimal.Decimal, error)
}

// FlatCommission charges every supplier the same rate.
type FlatCommission struct {
	Rate decimal.Decimal
}

func NewFlatCommission(rate decimal.Decimal) (FlatCommission, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return FlatCommission{}, ErrInvalidCommissionRate
	}
	return FlatCommission{Rate: rate}, nil
}

func (f FlatCommission) RateFor(context.Context, string) (decimal.Decimal, error) {
	return f.Rate, nil
}

var _ CommissionPort = FlatCommission{}
