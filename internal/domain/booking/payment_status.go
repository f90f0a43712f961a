package booking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
)

var (
	ErrInvalidPayment       = failure.New(failure.KindValidation, "booking: invalid payment")
	ErrInvalidPaymentStatus = failure.New(failure.KindValidation, "booking: invalid payment status")
)

var hundred = decimal.NewFromInt(100)

// PaymentStatus tracks how much of the total has been paid. The paid <= total
// invariant is enforced by RecordPayment.
type PaymentStatus struct {
	Total money.Money
	Paid  money.Money
}

// NewPaymentStatus returns an unpaid status for total.
func NewPaymentStatus(total money.Money) (PaymentStatus, error) {
	if total.Currency == "" || total.IsNegative() {
		return PaymentStatus{}, ErrInvalidPaymentStatus
	}
	return PaymentStatus{Total: total, Paid: money.Money{Amount: 0, Currency: total.Currency}}, nil
}

// RestorePaymentStatus rebuilds a status from stored values.
func RestorePaymentStatus(total, paid money.Money) (PaymentStatus, error) {
	status, err := NewPaymentStatus(total)
	if err != nil {
		return PaymentStatus{}, err
	}
	over, err := paid.GreaterThan(total)
	if err != nil {
		return PaymentStatus{}, fmt.Errorf("%w: %w", ErrInvalidPaymentStatus, err)
	}
	if over || paid.IsNegative() {
		return PaymentStatus{}, ErrInvalidPaymentStatus
	}
	status.Paid = paid
	return status, nil
}

func (s PaymentStatus) Remaining() money.Money {
	return money.Money{Amount: s.Total.Amount - s.Paid.Amount, Currency: s.Total.Currency}
}

// CompletionPercentage is paid/total*100, zero for a zero total and capped at 100.
func (s PaymentStatus) CompletionPercentage() float64 {
	if s.Total.Amount <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(s.Paid.Amount).Mul(hundred).Div(decimal.NewFromInt(s.Total.Amount))
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.InexactFloat64()
}

func (s PaymentStatus) IsFullyPaid() bool {
	return s.Remaining().Amount <= 0
}

// RecordPayment returns a new status with amount added to paid. Overpayment is
// rejected rather than clamped; the receiver is never modified.
func (s PaymentStatus) RecordPayment(amount money.Money) (PaymentStatus, error) {
	if !amount.IsPositive() {
		return PaymentStatus{}, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if amount.Currency != s.Total.Currency {
		return PaymentStatus{}, fmt.Errorf("%w: currency %s does not match %s", ErrInvalidPayment, amount.Currency, s.Total.Currency)
	}
	paid, err := s.Paid.Add(amount)
	if err != nil {
		return PaymentStatus{}, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
	}
	if paid.Amount > s.Total.Amount {
		return PaymentStatus{}, fmt.Errorf("%w: %s exceeds remaining %s", ErrInvalidPayment, amount.Format(), s.Remaining().Format())
	}
	return PaymentStatus{Total: s.Total, Paid: paid}, nil
}

// MinimumPaymentForPercentage returns the additional amount required so that
// paid reaches at least pct percent of total, rounded up to the minor unit.
func (s PaymentStatus) MinimumPaymentForPercentage(pct int) money.Money {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	required := decimal.NewFromInt(s.Total.Amount).Mul(decimal.NewFromInt(int64(pct))).Div(hundred).Ceil().IntPart()
	needed := required - s.Paid.Amount
	if needed < 0 {
		needed = 0
	}
	return money.Money{Amount: needed, Currency: s.Total.Currency}
}
