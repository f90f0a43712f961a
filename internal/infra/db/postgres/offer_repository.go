package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/money"
)

const offerColumns = `id, seller_id, buyer_id, seller_name, buyer_name, price_amount, price_currency,
	description, base_package_id, base_package_name, delivery_time, valid_until, event_date,
	conversation_id, status, initiated_by, booking_id, rejection_reason, created_at, updated_at`

type OfferRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

func (r *OfferRepository) Create(ctx context.Context, o domainoffer.Offer) error {
	var eventDate *time.Time
	if !o.EventDate.IsZero() {
		d := o.EventDate.UTC()
		eventDate = &d
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO offers (`+offerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		string(o.ID), o.SellerID, o.BuyerID, o.SellerName, o.BuyerName,
		o.CustomPrice.Amount, o.CustomPrice.Currency, o.Description,
		o.BasePackageID, o.BasePackageName, o.DeliveryTime, o.ValidUntil.UTC(), eventDate,
		o.ConversationID, string(o.Status), string(o.InitiatedBy), o.BookingID, o.RejectionReason,
		o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	)
	return err
}

func (r *OfferRepository) ByID(ctx context.Context, id domainoffer.ID) (domainoffer.Offer, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, string(id))
	o, err := scanOffer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domainoffer.Offer{}, domainoffer.ErrNotFound
	}
	return o, err
}

// TransitionIf writes patch with a single conditional UPDATE so concurrent
// callers observe exactly one winner.
func (r *OfferRepository) TransitionIf(ctx context.Context, id domainoffer.ID, expected domainoffer.Status, patch domainoffer.Patch) (domainoffer.Offer, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE offers
		SET status = $3, booking_id = $4, rejection_reason = $5, updated_at = $6
		WHERE id = $1 AND status = $2
		RETURNING `+offerColumns,
		string(id), string(expected), string(patch.Status), patch.BookingID, patch.RejectionReason, patch.UpdatedAt.UTC(),
	)
	o, err := scanOffer(row)
	switch {
	case err == nil:
		return o, nil
	case errors.Is(err, pgx.ErrNoRows):
		if _, lookupErr := r.ByID(ctx, id); lookupErr != nil {
			return domainoffer.Offer{}, lookupErr
		}
		return domainoffer.Offer{}, domainoffer.ErrConcurrentTransition
	case hasCode(err, serializationFailure):
		return domainoffer.Offer{}, domainoffer.ErrConcurrentTransition
	default:
		return domainoffer.Offer{}, err
	}
}

func (r *OfferRepository) ListByParticipant(ctx context.Context, userID string, status domainoffer.Status) ([]domainoffer.Offer, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE (seller_id = $1 OR buyer_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`, userID, string(status))
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

func (r *OfferRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]domainoffer.Offer, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE status = $1 AND valid_until < $2
		ORDER BY valid_until
		LIMIT $3`, string(domainoffer.StatusPending), now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

func collectOffers(rows pgx.Rows) ([]domainoffer.Offer, error) {
	defer rows.Close()
	out := make([]domainoffer.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOffer(row pgx.Row) (domainoffer.Offer, error) {
	var (
		o              domainoffer.Offer
		id, status, by string
		amount         int64
		currency       string
		eventDate      *time.Time
	)
	err := row.Scan(&id, &o.SellerID, &o.BuyerID, &o.SellerName, &o.BuyerName, &amount, &currency,
		&o.Description, &o.BasePackageID, &o.BasePackageName, &o.DeliveryTime, &o.ValidUntil, &eventDate,
		&o.ConversationID, &status, &by, &o.BookingID, &o.RejectionReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domainoffer.Offer{}, err
	}
	o.ID = domainoffer.ID(id)
	o.Status = domainoffer.Status(status)
	o.InitiatedBy = domainoffer.Party(by)
	o.CustomPrice = money.Money{Amount: amount, Currency: currency}
	o.ValidUntil = o.ValidUntil.UTC()
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	if eventDate != nil {
		o.EventDate = eventDate.UTC()
	}
	return o, nil
}

var _ domainoffer.Repository = (*OfferRepository)(nil)
