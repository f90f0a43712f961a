package dto

import (
	"time"

	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/settlement"
)

type Payment struct {
	ID        string    `json:"id"`
	Amount    MoneyDTO  `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
	Notes     string    `json:"notes,omitempty"`
}

type PaymentStatus struct {
	Total                MoneyDTO `json:"total"`
	Paid                 MoneyDTO `json:"paid"`
	Remaining            MoneyDTO `json:"remaining"`
	CompletionPercentage float64  `json:"completion_percentage"`
	FullyPaid            bool     `json:"fully_paid"`
}

type Booking struct {
	ID                 string        `json:"id"`
	ClientID           string        `json:"client_id"`
	SupplierID         string        `json:"supplier_id"`
	PackageID          string        `json:"package_id,omitempty"`
	EventName          string        `json:"event_name"`
	EventDate          time.Time     `json:"event_date"`
	EventTime          string        `json:"event_time,omitempty"`
	EventLocation      string        `json:"event_location,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	Status             string        `json:"status"`
	Payments           []Payment     `json:"payments"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	OriginOfferID      string        `json:"origin_offer_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancelledBy        string        `json:"cancelled_by,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	RefundDue          *MoneyDTO     `json:"refund_due,omitempty"`
	RefundedAt         *time.Time    `json:"refunded_at,omitempty"`
	Version            int64         `json:"version"`
}

func BookingFrom(b domainbooking.Booking) Booking {
	payments := make([]Payment, 0, len(b.Payments))
	for _, p := range b.Payments {
		payments = append(payments, Payment{
			ID:        string(p.ID),
			Amount:    MoneyFrom(p.Amount),
			Method:    string(p.Method),
			Reference: p.Reference,
			PaidAt:    p.PaidAt,
			Notes:     p.Notes,
		})
	}
	return Booking{
		ID:            string(b.ID),
		ClientID:      b.ClientID,
		SupplierID:    b.SupplierID,
		PackageID:     b.PackageID,
		EventName:     b.EventName,
		EventDate:     b.EventDate.EventDate,
		EventTime:     b.EventDate.EventTime,
		EventLocation: b.EventLocation,
		Notes:         b.Notes,
		Status:        string(b.Status),
		Payments:      payments,
		PaymentStatus: PaymentStatus{
			Total:                MoneyFrom(b.PaymentStatus.Total),
			Paid:                 MoneyFrom(b.PaymentStatus.Paid),
			Remaining:            MoneyFrom(b.PaymentStatus.Remaining()),
			CompletionPercentage: b.PaymentStatus.CompletionPercentage(),
			FullyPaid:            b.PaymentStatus.IsFullyPaid(),
		},
		OriginOfferID:      b.OriginOfferID,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		CancelledAt:        optionalTime(b.CancelledAt),
		CancelledBy:        b.CancelledBy,
		CancellationReason: b.CancellationReason,
		RefundDue:          optionalMoney(b.RefundDue),
		RefundedAt:         optionalTime(b.RefundedAt),
		Version:            b.Version,
	}
}

type Settlement struct {
	SuggestedDeposit     MoneyDTO `json:"suggested_deposit"`
	FinalPayment         MoneyDTO `json:"final_payment"`
	Commission           MoneyDTO `json:"platform_commission"`
	SupplierEarnings     MoneyDTO `json:"supplier_earnings"`
	RefundIfCancelled    MoneyDTO `json:"refund_if_cancelled"`
	PenaltyIfCancelled   MoneyDTO `json:"penalty_if_cancelled"`
	CompletionPercentage float64  `json:"completion_percentage"`
	DaysUntilEvent       int      `json:"days_until_event"`
	RelativeDate         string   `json:"relative_date"`
	UrgencyLevel         int      `json:"urgency_level"`
	AtRisk               bool     `json:"at_risk"`
	AutoConfirmEligible  bool     `json:"auto_confirm_eligible"`
	CanCancel            bool     `json:"can_cancel"`
}

func SettlementFrom(s settlement.Summary, relative string) Settlement {
	return Settlement{
		SuggestedDeposit:     MoneyFrom(s.SuggestedDeposit),
		FinalPayment:         MoneyFrom(s.Remaining),
		Commission:           MoneyFrom(s.Commission),
		SupplierEarnings:     MoneyFrom(s.SupplierEarnings),
		RefundIfCancelled:    MoneyFrom(s.RefundIfCancelled),
		PenaltyIfCancelled:   MoneyFrom(s.PenaltyIfCancelled),
		CompletionPercentage: s.CompletionPercentage,
		DaysUntilEvent:       s.DaysUntilEvent,
		RelativeDate:         relative,
		UrgencyLevel:         s.UrgencyLevel,
		AtRisk:               s.AtRisk,
		AutoConfirmEligible:  s.AutoConfirm,
		CanCancel:            s.CanCancel,
	}
}

type BookingDetail struct {
	Booking    Booking    `json:"booking"`
	Settlement Settlement `json:"settlement"`
}

type Installment struct {
	Number int       `json:"number"`
	DueBy  time.Time `json:"due_by"`
	Amount MoneyDTO  `json:"amount"`
}

type PaymentSchedule struct {
	BookingID    string        `json:"booking_id"`
	Remaining    MoneyDTO      `json:"remaining"`
	Installments []Installment `json:"installments"`
}

func ScheduleFrom(b domainbooking.Booking, items []settlement.Installment) PaymentSchedule {
	out := PaymentSchedule{
		BookingID:    string(b.ID),
		Remaining:    MoneyFrom(b.PaymentStatus.Remaining()),
		Installments: make([]Installment, 0, len(items)),
	}
	for i, item := range items {
		out.Installments = append(out.Installments, Installment{Number: i + 1, DueBy: item.DueBy, Amount: MoneyFrom(item.Amount)})
	}
	return out
}

type RefundQuote struct {
	BookingID      string   `json:"booking_id"`
	DaysUntilEvent int      `json:"days_until_event"`
	RefundPercent  int      `json:"refund_percent"`
	Paid           MoneyDTO `json:"paid"`
	Refund         MoneyDTO `json:"refund"`
	Penalty        MoneyDTO `json:"penalty"`
	CanCancel      bool     `json:"can_cancel"`
}

// BookingListItem is a booking in a priority-ordered listing.
type BookingListItem struct {
	Booking
	DaysUntilEvent int    `json:"days_until_event"`
	RelativeDate   string `json:"relative_date"`
	UrgencyLevel   int    `json:"urgency_level"`
	AtRisk         bool   `json:"at_risk"`
}
