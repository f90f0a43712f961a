package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"eventmarket/internal/app/uow"
	domainbooking "eventmarket/internal/domain/booking"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/failure"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	OffersRepo   domainoffer.Repository
	BookingsRepo domainbooking.Repository
}

var ErrUnitOfWorkNotConfigured = failure.New(failure.KindServer, "mongo: unit of work factory missing database")

func NewFactory(db *mongo.Database) Factory {
	return Factory{DB: db, OffersRepo: NewOfferRepository(db), BookingsRepo: NewBookingRepository(db)}
}

// Begin starts a MongoDB session and transaction. Read-only units use a
// snapshot read concern.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.OffersRepo == nil || f.BookingsRepo == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, offers: f.OffersRepo, bookings: f.BookingsRepo}, nil
}

type Unit struct {
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.Factory         = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
