package booking

import (
	"fmt"
	"strings"
	"time"

	"eventmarket/internal/domain/shared/failure"
	"eventmarket/internal/domain/shared/money"
)

var ErrDuplicatePayment = failure.New(failure.KindValidation, "booking: payment already recorded")

type PaymentID string

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCard         PaymentMethod = "CARD"
	MethodMulticaixa   PaymentMethod = "MULTICAIXA"
	MethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	MethodOther        PaymentMethod = "OTHER"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch m {
	case MethodCash, MethodBankTransfer, MethodCard, MethodMulticaixa, MethodMobileMoney, MethodOther:
		return m, nil
	case "":
		return MethodOther, nil
	default:
		return "", fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, raw)
	}
}

// Payment is an append-only ledger line of a booking.
type Payment struct {
	ID        PaymentID
	Amount    money.Money
	Method    PaymentMethod
	Reference string
	PaidAt    time.Time
	Notes     string
}

func (p Payment) validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return fmt.Errorf("%w: payment id is required", ErrInvalidPayment)
	}
	if p.PaidAt.IsZero() {
		return fmt.Errorf("%w: paid at is required", ErrInvalidPayment)
	}
	if _, err := ParsePaymentMethod(string(p.Method)); err != nil {
		return err
	}
	return nil
}
