package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "eventmarket/internal/app/outbox"
	"eventmarket/internal/app/uow"
	domainbooking "eventmarket/internal/domain/booking"
	domainoffer "eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/money"
)

// openTestPool connects to POSTGRES_TEST_DSN or skips the test.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func newOffer(t *testing.T, now time.Time) domainoffer.Offer {
	t.Helper()
	o, err := domainoffer.NewOffer(domainoffer.CreateParams{
		ID:          domainoffer.ID(uuid.NewString()),
		SellerID:    "seller-" + uuid.NewString(),
		BuyerID:     "buyer-" + uuid.NewString(),
		CustomPrice: money.Must(250_000, "AOA"),
		Description: "Som e iluminação",
		ValidUntil:  now.Add(72 * time.Hour),
		InitiatedBy: domainoffer.PartySeller,
		CreatedAt:   now,
	})
	require.NoError(t, err)
	return o
}

func TestOfferTransitionIfHasSingleWinner(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewOfferRepository(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)
	o := newOffer(t, now)
	require.NoError(t, repo.Create(ctx, o))

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.TransitionIf(ctx, o.ID, domainoffer.StatusPending, domainoffer.Patch{
				Status: domainoffer.StatusAccepted, BookingID: uuid.NewString(), UpdatedAt: now,
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domainoffer.ErrConcurrentTransition)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	_, err := repo.TransitionIf(ctx, "missing", domainoffer.StatusPending, domainoffer.Patch{Status: domainoffer.StatusRejected, UpdatedAt: now})
	assert.ErrorIs(t, err, domainoffer.ErrNotFound)
}

func TestBookingVersionCheckAndAvailability(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewBookingRepository(pool)
	now := time.Now().UTC()
	date, err := domainbooking.NewBookingDate(now.AddDate(0, 0, 40), "19:30")
	require.NoError(t, err)
	supplierID := "supplier-" + uuid.NewString()
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.ID(uuid.NewString()),
		ClientID:   "client-" + uuid.NewString(),
		SupplierID: supplierID,
		EventName:  "Casamento",
		EventDate:  date,
		Total:      money.Must(100_000, "AOA"),
		CreatedAt:  now,
	})
	require.NoError(t, err)

	stored, err := repo.Create(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)

	free, err := repo.CheckAvailability(ctx, supplierID, date.EventDate.Add(5*time.Hour), "")
	require.NoError(t, err)
	assert.False(t, free)
	free, err = repo.CheckAvailability(ctx, supplierID, date.EventDate, stored.ID)
	require.NoError(t, err)
	assert.True(t, free)

	paid, err := stored.RecordPayment(domainbooking.Payment{
		ID: "pay-1", Amount: money.Must(30_000, "AOA"), Method: domainbooking.MethodMulticaixa, PaidAt: now,
	}, now)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, paid)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	_, err = repo.Save(ctx, paid)
	assert.ErrorIs(t, err, domainbooking.ErrConcurrentUpdate)

	loaded, err := repo.ByID(ctx, stored.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Payments, 1)
	assert.Equal(t, int64(30_000), loaded.PaymentStatus.Paid.Amount)
	assert.Equal(t, "19:30", loaded.EventDate.EventTime)
	assert.True(t, loaded.EventDate.EventDate.Equal(date.EventDate))
}

func newSlotBooking(t *testing.T, supplierID string, date domainbooking.BookingDate, now time.Time) domainbooking.Booking {
	t.Helper()
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.ID(uuid.NewString()),
		ClientID:   "client-" + uuid.NewString(),
		SupplierID: supplierID,
		EventName:  "Festa",
		EventDate:  date,
		Total:      money.Must(50_000, "AOA"),
		CreatedAt:  now,
	})
	require.NoError(t, err)
	return b
}

func TestBookingSlotIsUniquePerSupplierAndDay(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	factory := NewFactory(pool)
	now := time.Now().UTC()
	date, err := domainbooking.NewBookingDate(now.AddDate(0, 0, 50), "")
	require.NoError(t, err)
	supplierID := "supplier-" + uuid.NewString()

	const racers = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unit, txCtx, finish, err := uow.Join(ctx, factory, uow.TxOptions{})
			if !assert.NoError(t, err) {
				return
			}
			if _, err := unit.Bookings().Create(txCtx, newSlotBooking(t, supplierID, date, now)); err != nil {
				assert.ErrorIs(t, err, domainbooking.ErrSupplierUnavailable)
				assert.NoError(t, finish(false))
				return
			}
			if assert.NoError(t, finish(true)) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	// The transaction stays usable after the rejected insert.
	unit, txCtx, finish, err := uow.Join(ctx, factory, uow.TxOptions{})
	require.NoError(t, err)
	_, err = unit.Bookings().Create(txCtx, newSlotBooking(t, supplierID, date, now))
	assert.ErrorIs(t, err, domainbooking.ErrSupplierUnavailable)
	o := newOffer(t, now.Truncate(time.Millisecond))
	require.NoError(t, unit.Offers().Create(txCtx, o))
	require.NoError(t, finish(true))
	_, err = NewOfferRepository(pool).ByID(ctx, o.ID)
	assert.NoError(t, err)
}

func TestUnitOfWorkRollsBackOutboxWithAggregate(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	factory := NewFactory(pool)
	box := NewOutboxStore(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)
	o := newOffer(t, now)

	unit, txCtx, finish, err := uow.Join(ctx, factory, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Offers().Create(txCtx, o))
	require.NoError(t, box.Add(txCtx, appoutbox.EventRecord{
		ID: uuid.NewString(), Name: "offer.created", AggregateType: "offer", Aggregate: string(o.ID),
		Payload: []byte(`{}`), OccurredAt: now, Headers: map[string]string{},
	}))
	require.NoError(t, finish(false))

	_, err = NewOfferRepository(pool).ByID(ctx, o.ID)
	assert.ErrorIs(t, err, domainoffer.ErrNotFound)
}

func TestInboxDeduplicates(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	in := NewInbox(pool, "payments-test")
	id := uuid.NewString()

	done, err := in.Processed(ctx, id)
	require.NoError(t, err)
	assert.False(t, done)
	seen, err := in.Seen(ctx, id)
	require.NoError(t, err)
	assert.False(t, seen)
	seen, err = in.Seen(ctx, id)
	require.NoError(t, err)
	assert.True(t, seen)
	done, err = in.Processed(ctx, id)
	require.NoError(t, err)
	assert.True(t, done)
}
