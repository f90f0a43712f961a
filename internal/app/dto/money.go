package dto

import (
	"time"

	"eventmarket/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

func MoneyFrom(m money.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount, Currency: m.Currency, Formatted: m.Format()}
}

func optionalMoney(m money.Money) *MoneyDTO {
	if m.Currency == "" {
		return nil
	}
	out := MoneyFrom(m)
	return &out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
