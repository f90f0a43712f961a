package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"eventmarket/internal/domain/shared/failure"
)

var (
	ErrInvalidCurrency  = failure.New(failure.KindValidation, "money: invalid currency code")
	ErrInvalidAmount    = failure.New(failure.KindValidation, "money: invalid amount")
	ErrCurrencyMismatch = failure.New(failure.KindCurrencyMismatch, "money: currency mismatch")
	ErrInvalidOperation = failure.New(failure.KindInvalidOperation, "money: invalid operation")
)

// minorUnitExponent is the number of decimal places kept in Amount.
const minorUnitExponent = 2

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// Money keeps amounts in integer minor units to avoid floating point issues.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func Zero(currency string) (Money, error) {
	return New(0, currency)
}

// FromDecimal converts an amount expressed in major units, rounding to the
// nearest minor unit.
func FromDecimal(major decimal.Decimal, currency string) (Money, error) {
	minor := major.Shift(minorUnitExponent).Round(0)
	if !minor.Equal(decimal.NewFromInt(minor.IntPart())) {
		return Money{}, ErrInvalidAmount
	}
	return New(minor.IntPart(), currency)
}

// Parse reads a decimal string such as "2500.50" in major units.
func Parse(raw, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return FromDecimal(d, currency)
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Neg returns the negated amount preserving currency.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// Scale multiplies by a fractional factor and rounds to the nearest minor unit.
func (m Money) Scale(factor decimal.Decimal) Money {
	scaled := decimal.NewFromInt(m.Amount).Mul(factor).Round(0)
	return Money{Amount: scaled.IntPart(), Currency: m.Currency}
}

// Divide splits the amount by divisor rounding to the nearest minor unit.
func (m Money) Divide(divisor int64) (Money, error) {
	if divisor == 0 {
		return Money{}, ErrInvalidOperation
	}
	q := decimal.NewFromInt(m.Amount).Div(decimal.NewFromInt(divisor)).Round(0)
	return Money{Amount: q.IntPart(), Currency: m.Currency}, nil
}

// Allocate splits the amount into parts that sum exactly to the receiver.
// The remainder is spread one minor unit at a time over the leading parts.
func (m Money) Allocate(parts int) ([]Money, error) {
	if parts <= 0 {
		return nil, ErrInvalidOperation
	}
	n := int64(parts)
	base := m.Amount / n
	rem := m.Amount % n
	step := int64(1)
	if rem < 0 {
		step = -1
		rem = -rem
	}
	out := make([]Money, parts)
	for i := range out {
		amount := base
		if int64(i) < rem {
			amount += step
		}
		out[i] = Money{Amount: amount, Currency: m.Currency}
	}
	return out, nil
}

// Percent returns pct percent of the amount, truncated toward zero.
func (m Money) Percent(pct int64) Money {
	const percentBase = int64(100)
	return Money{Amount: m.Amount * pct / percentBase, Currency: m.Currency}
}

// Cmp returns -1, 0 or 1 comparing the receiver with other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return 0, err
	}
	switch {
	case m.Amount < other.Amount:
		return -1, nil
	case m.Amount > other.Amount:
		return 1, nil
	default:
		return 0, nil
	}
}

func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c > 0, err
}

func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c < 0, err
}

func (m Money) GreaterOrEqual(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return err == nil && c >= 0, err
}

func (m Money) LessOrEqual(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return err == nil && c <= 0, err
}

func (m Money) Equal(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return err == nil && c == 0, err
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) IsPositive() bool {
	return m.Amount > 0
}

func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -minorUnitExponent)
}

// Format renders the amount with two decimals and the currency suffix, e.g. "2500.00 AOA".
func (m Money) Format() string {
	return withCurrency(m.Decimal().StringFixed(minorUnitExponent), m.Currency)
}

// FormatCompact abbreviates large amounts, e.g. "250K AOA" or "2.5M AOA".
func (m Money) FormatCompact() string {
	major := m.Decimal()
	switch abs := major.Abs(); {
	case abs.GreaterThanOrEqual(million):
		return withCurrency(major.Div(million).Round(1).String()+"M", m.Currency)
	case abs.GreaterThanOrEqual(thousand):
		return withCurrency(major.Div(thousand).Round(1).String()+"K", m.Currency)
	default:
		return m.Format()
	}
}

func (m Money) String() string {
	return m.Format()
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

func withCurrency(amount, currency string) string {
	if currency == "" {
		return amount
	}
	return amount + " " + currency
}
