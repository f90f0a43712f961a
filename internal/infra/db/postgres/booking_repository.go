package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/shared/money"
)

const bookingColumns = `id, client_id, supplier_id, package_id, event_name, event_date, event_time,
	event_location, notes, status, payments, total_amount, paid_amount, currency, origin_offer_id,
	created_at, updated_at, cancelled_at, cancelled_by, cancellation_reason, refund_amount,
	refund_currency, refunded_at, version`

// supplierSlotIndex holds one blocking booking per supplier and day.
const supplierSlotIndex = "bookings_supplier_slot_idx"

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

type paymentRow struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
	Notes     string    `json:"notes,omitempty"`
}

func (r *BookingRepository) Create(ctx context.Context, b domainbooking.Booking) (domainbooking.Booking, error) {
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	b.Version = 1
	args, err := bookingArgs(b)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	err = savepoint(ctx, r.pool, func(q querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`,
			args...)
		return err
	})
	if violates(err, supplierSlotIndex) {
		return domainbooking.Booking{}, domainbooking.ErrSupplierUnavailable
	}
	if err != nil {
		return domainbooking.Booking{}, err
	}
	b.ClearEvents()
	return b, nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (domainbooking.Booking, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domainbooking.Booking{}, domainbooking.ErrNotFound
	}
	return b, err
}

// Save overwrites the row only while the stored version equals b.Version.
func (r *BookingRepository) Save(ctx context.Context, b domainbooking.Booking) (domainbooking.Booking, error) {
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	next := b
	next.Version = b.Version + 1
	args, err := bookingArgs(next)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	args = append(args, b.Version)
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE bookings SET
			client_id = $2, supplier_id = $3, package_id = $4, event_name = $5, event_date = $6,
			event_time = $7, event_location = $8, notes = $9, status = $10, payments = $11,
			total_amount = $12, paid_amount = $13, currency = $14, origin_offer_id = $15,
			created_at = $16, updated_at = $17, cancelled_at = $18, cancelled_by = $19,
			cancellation_reason = $20, refund_amount = $21, refund_currency = $22,
			refunded_at = $23, version = $24
		WHERE id = $1 AND version = $25`, args...)
	if err != nil {
		if hasCode(err, serializationFailure) {
			return domainbooking.Booking{}, domainbooking.ErrConcurrentUpdate
		}
		return domainbooking.Booking{}, err
	}
	if tag.RowsAffected() == 0 {
		if _, lookupErr := r.ByID(ctx, b.ID); lookupErr != nil {
			return domainbooking.Booking{}, lookupErr
		}
		return domainbooking.Booking{}, domainbooking.ErrConcurrentUpdate
	}
	next.ClearEvents()
	return next, nil
}

func (r *BookingRepository) CheckAvailability(ctx context.Context, supplierID string, date time.Time, excludeID domainbooking.ID) (bool, error) {
	var blocking []string
	for _, s := range domainbooking.AllStatuses() {
		if domainbooking.BlocksAvailability(s) {
			blocking = append(blocking, string(s))
		}
	}
	var taken bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE supplier_id = $1 AND event_date = $2 AND status = ANY($3) AND id <> $4
		)`, supplierID, date.UTC().Truncate(24*time.Hour), blocking, string(excludeID)).Scan(&taken)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (r *BookingRepository) ListBySupplier(ctx context.Context, supplierID string) ([]domainbooking.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE supplier_id = $1 ORDER BY event_date`, supplierID)
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientID string) ([]domainbooking.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE client_id = $1 ORDER BY event_date`, clientID)
}

func (r *BookingRepository) list(ctx context.Context, sql string, arg string) ([]domainbooking.Booking, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domainbooking.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func bookingArgs(b domainbooking.Booking) ([]any, error) {
	payments := make([]paymentRow, 0, len(b.Payments))
	for _, p := range b.Payments {
		payments = append(payments, paymentRow{
			ID:        string(p.ID),
			Amount:    p.Amount.Amount,
			Currency:  p.Amount.Currency,
			Method:    string(p.Method),
			Reference: p.Reference,
			PaidAt:    p.PaidAt.UTC(),
			Notes:     p.Notes,
		})
	}
	ledger, err := json.Marshal(payments)
	if err != nil {
		return nil, err
	}
	var refundAmount *int64
	var refundCurrency *string
	if b.RefundDue.Currency != "" {
		amount, currency := b.RefundDue.Amount, b.RefundDue.Currency
		refundAmount, refundCurrency = &amount, &currency
	}
	return []any{
		string(b.ID), b.ClientID, b.SupplierID, b.PackageID, b.EventName, b.EventDate.EventDate.UTC(),
		b.EventDate.EventTime, b.EventLocation, b.Notes, string(b.Status), ledger,
		b.PaymentStatus.Total.Amount, b.PaymentStatus.Paid.Amount, b.PaymentStatus.Total.Currency, b.OriginOfferID,
		b.CreatedAt.UTC(), b.UpdatedAt.UTC(), nullableTime(b.CancelledAt), b.CancelledBy, b.CancellationReason,
		refundAmount, refundCurrency, nullableTime(b.RefundedAt), b.Version,
	}, nil
}

func scanBooking(row pgx.Row) (domainbooking.Booking, error) {
	var (
		b                       domainbooking.Booking
		id, status, eventTime   string
		eventDate               time.Time
		ledger                  []byte
		total, paid             int64
		currency                string
		cancelledAt, refundedAt *time.Time
		refundAmount            *int64
		refundCurrency          *string
	)
	err := row.Scan(&id, &b.ClientID, &b.SupplierID, &b.PackageID, &b.EventName, &eventDate, &eventTime,
		&b.EventLocation, &b.Notes, &status, &ledger, &total, &paid, &currency, &b.OriginOfferID,
		&b.CreatedAt, &b.UpdatedAt, &cancelledAt, &b.CancelledBy, &b.CancellationReason, &refundAmount,
		&refundCurrency, &refundedAt, &b.Version)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	var payments []paymentRow
	if err := json.Unmarshal(ledger, &payments); err != nil {
		return domainbooking.Booking{}, err
	}
	b.ID = domainbooking.ID(id)
	b.Status = domainbooking.Status(status)
	b.EventDate = domainbooking.BookingDate{
		EventDate: time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC),
		EventTime: eventTime,
	}
	b.PaymentStatus = domainbooking.PaymentStatus{
		Total: money.Money{Amount: total, Currency: currency},
		Paid:  money.Money{Amount: paid, Currency: currency},
	}
	b.Payments = make([]domainbooking.Payment, 0, len(payments))
	for _, p := range payments {
		b.Payments = append(b.Payments, domainbooking.Payment{
			ID:        domainbooking.PaymentID(p.ID),
			Amount:    money.Money{Amount: p.Amount, Currency: p.Currency},
			Method:    domainbooking.PaymentMethod(p.Method),
			Reference: p.Reference,
			PaidAt:    p.PaidAt.UTC(),
			Notes:     p.Notes,
		})
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	if cancelledAt != nil {
		b.CancelledAt = cancelledAt.UTC()
	}
	if refundedAt != nil {
		b.RefundedAt = refundedAt.UTC()
	}
	if refundAmount != nil && refundCurrency != nil {
		b.RefundDue = money.Money{Amount: *refundAmount, Currency: *refundCurrency}
	}
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	return b, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
