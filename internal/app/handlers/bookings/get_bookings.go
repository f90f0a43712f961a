package bookings

import (
	"context"
	"strings"

	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/queries"
	"eventmarket/internal/app/uow"
	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/failure"
)

const (
	getBookingKey      = "bookings.get"
	listBookingsKey    = "bookings.list"
	paymentScheduleKey = "bookings.payment_schedule"
	refundQuoteKey     = "bookings.refund_quote"

	RoleClient   = "client"
	RoleSupplier = "supplier"
)

var ErrInvalidRole = failure.New(failure.KindValidation, "booking: role must be client or supplier")

type GetBookingQuery struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
}

func (q GetBookingQuery) Key() string { return getBookingKey }

func (q GetBookingQuery) ActorID() string { return q.Actor.ID }

type ListBookingsQuery struct {
	Actor policies.Actor
	Role  string `validate:"omitempty,oneof=client supplier"`
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

func (q ListBookingsQuery) ActorID() string { return q.Actor.ID }

type PaymentScheduleQuery struct {
	Actor        policies.Actor
	BookingID    string `validate:"required"`
	Installments int    `validate:"gte=0"`
}

func (q PaymentScheduleQuery) Key() string { return paymentScheduleKey }

func (q PaymentScheduleQuery) ActorID() string { return q.Actor.ID }

type RefundQuoteQuery struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
}

func (q RefundQuoteQuery) Key() string { return refundQuoteKey }

func (q RefundQuoteQuery) ActorID() string { return q.Actor.ID }

// load reads a booking the actor takes part in.
func (d Deps) load(ctx context.Context, actor policies.Actor, id string) (domainbooking.Booking, error) {
	unit, ctx, finish, err := uow.Join(ctx, d.UoW, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return domainbooking.Booking{}, err
	}
	defer finish(false)

	b, err := unit.Bookings().ByID(ctx, domainbooking.ID(id))
	if err != nil {
		return domainbooking.Booking{}, err
	}
	if !b.IsParticipant(actor.ID) && !actor.IsPrivileged() {
		return domainbooking.Booking{}, domainbooking.ErrUnauthorized
	}
	return b, nil
}

type GetBookingHandler struct {
	Deps
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*dto.BookingDetail, error) {
	b, err := h.load(ctx, q.Actor, q.BookingID)
	if err != nil {
		return nil, err
	}
	rate, err := h.rate(ctx, b.SupplierID)
	if err != nil {
		return nil, err
	}
	now := h.now()
	summary, err := h.Settlement.Summarize(b, rate, now)
	if err != nil {
		return nil, err
	}
	return &dto.BookingDetail{
		Booking:    dto.BookingFrom(b),
		Settlement: dto.SettlementFrom(summary, b.EventDate.RelativeDescription(now)),
	}, nil
}

type ListBookingsHandler struct {
	Deps
}

// Handle lists the actor's bookings, most urgent first. Without a role the
// client and supplier sides are merged.
func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) ([]dto.BookingListItem, error) {
	role := strings.ToLower(strings.TrimSpace(q.Role))
	if role != "" && role != RoleClient && role != RoleSupplier {
		return nil, ErrInvalidRole
	}
	unit, ctx, finish, err := uow.Join(ctx, h.UoW, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer finish(false)

	var items []domainbooking.Booking
	if role != RoleClient {
		asSupplier, err := unit.Bookings().ListBySupplier(ctx, q.Actor.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, asSupplier...)
	}
	if role != RoleSupplier {
		asClient, err := unit.Bookings().ListByClient(ctx, q.Actor.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, asClient...)
	}

	now := h.now()
	sorted := h.Settlement.SortByPriority(items, now)
	out := make([]dto.BookingListItem, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, dto.BookingListItem{
			Booking:        dto.BookingFrom(b),
			DaysUntilEvent: b.EventDate.DaysUntilEvent(now),
			RelativeDate:   b.EventDate.RelativeDescription(now),
			UrgencyLevel:   h.Settlement.CalculateUrgencyLevel(b, now),
			AtRisk:         h.Settlement.IsAtRiskOfCancellation(b, now),
		})
	}
	h.logger().DebugContext(ctx, "bookings listed", "actor_id", q.Actor.ID, "role", role, "count", len(out))
	return out, nil
}

type PaymentScheduleHandler struct {
	Deps
}

func (h *PaymentScheduleHandler) Handle(ctx context.Context, q PaymentScheduleQuery) (*dto.PaymentSchedule, error) {
	b, err := h.load(ctx, q.Actor, q.BookingID)
	if err != nil {
		return nil, err
	}
	n := q.Installments
	if n == 0 {
		n = 1
	}
	items, err := h.Settlement.GeneratePaymentSchedule(b, h.now(), n)
	if err != nil {
		return nil, err
	}
	out := dto.ScheduleFrom(b, items)
	return &out, nil
}

type RefundQuoteHandler struct {
	Deps
}

func (h *RefundQuoteHandler) Handle(ctx context.Context, q RefundQuoteQuery) (*dto.RefundQuote, error) {
	b, err := h.load(ctx, q.Actor, q.BookingID)
	if err != nil {
		return nil, err
	}
	now := h.now()
	refund, err := h.Settlement.CalculateRefundAmount(b, now)
	if err != nil {
		return nil, err
	}
	penalty, err := b.PaymentStatus.Paid.Sub(refund)
	if err != nil {
		return nil, err
	}
	ref := now
	if !b.CancelledAt.IsZero() {
		ref = b.CancelledAt
	}
	policy := h.Settlement.Policy()
	days := b.EventDate.DaysUntilEvent(ref)
	return &dto.RefundQuote{
		BookingID:      string(b.ID),
		DaysUntilEvent: days,
		RefundPercent:  policy.RefundPercent(days),
		Paid:           dto.MoneyFrom(b.PaymentStatus.Paid),
		Refund:         dto.MoneyFrom(refund),
		Penalty:        dto.MoneyFrom(penalty),
		CanCancel: domainbooking.CanBeCancelled(b.Status) &&
			b.EventDate.IsWithinCancellationPeriod(now, policy.CancellationMinimumDays),
	}, nil
}

var _ queries.Handler[GetBookingQuery, *dto.BookingDetail] = (*GetBookingHandler)(nil)
var _ queries.Handler[ListBookingsQuery, []dto.BookingListItem] = (*ListBookingsHandler)(nil)
var _ queries.Handler[PaymentScheduleQuery, *dto.PaymentSchedule] = (*PaymentScheduleHandler)(nil)
var _ queries.Handler[RefundQuoteQuery, *dto.RefundQuote] = (*RefundQuoteHandler)(nil)
