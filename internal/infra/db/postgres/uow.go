package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventmarket/internal/app/uow"
	domainbooking "eventmarket/internal/domain/booking"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/failure"
)

var ErrUnitOfWorkNotConfigured = failure.New(failure.KindServer, "postgres: unit of work factory missing pool")

// Factory begins pgx transactions; repositories find the transaction in the
// context handed to them.
type Factory struct {
	Pool *pgxpool.Pool

	OffersRepo   domainoffer.Repository
	BookingsRepo domainbooking.Repository
}

func NewFactory(pool *pgxpool.Pool) Factory {
	return Factory{Pool: pool, OffersRepo: NewOfferRepository(pool), BookingsRepo: NewBookingRepository(pool)}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Pool == nil || f.OffersRepo == nil || f.BookingsRepo == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	tx, err := f.Pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, err
	}
	return &Unit{tx: tx, offers: f.OffersRepo, bookings: f.BookingsRepo}, nil
}

type Unit struct {
	tx pgx.Tx

	offers   domainoffer.Repository
	bookings domainbooking.Repository
}

func (u *Unit) Offers() domainoffer.Repository {
	return u.offers
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	return u.tx.Rollback(ctx)
}

func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return withTx(ctx, u.tx)
}

var (
	_ uow.Factory         = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
