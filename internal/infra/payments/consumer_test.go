package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/handlers/bookings"
	"eventmarket/internal/app/middleware"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/queries"
	domainbooking "eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/settlement"
	"eventmarket/internal/infra/storage/memory"
)

var testNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	cmds    commands.Bus
	repo    *memory.BookingRepository
	inbox   *memory.Inbox
	booking string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc, err := settlement.NewService(settlement.DefaultPolicy())
	require.NoError(t, err)
	repo := memory.NewBookingRepository()
	factory := memory.Factory{OffersRepo: memory.NewOfferRepository(), BookingsRepo: repo}
	box := memory.NewOutbox()
	var seq atomic.Int64
	cmdBus := commands.NewInMemoryBus()
	bookings.Register(cmdBus, queries.NewInMemoryBus(), bookings.Deps{
		UoW: factory, Outbox: box, Settlement: svc, Clock: policies.FixedClock{At: testNow},
		NewID: func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }, DefaultCurrency: "AOA",
	})
	cmds := middleware.StandardCommands(cmdBus, middleware.Deps{
		Validator:   middleware.NewStructValidator(),
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		UoW:         factory,
		Outbox:      box,
	})
	created, err := commands.Dispatch[bookings.CreateBookingCommand, *dto.Booking](context.Background(), cmds, bookings.CreateBookingCommand{
		Actor:       policies.Actor{ID: "client-1"},
		SupplierID:  "supplier-1",
		EventName:   "Casamento",
		EventDate:   testNow.AddDate(0, 0, 60),
		TotalAmount: 250_000_00,
	})
	require.NoError(t, err)
	return &fixture{cmds: cmds, repo: repo, inbox: memory.NewInbox(), booking: created.ID}
}

func (f *fixture) paid(t *testing.T) int64 {
	t.Helper()
	b, err := f.repo.ByID(context.Background(), domainbooking.ID(f.booking))
	require.NoError(t, err)
	return b.PaymentStatus.Paid.Amount
}

func TestHandleRecordsPaymentOnce(t *testing.T) {
	f := newFixture(t)
	h := Handler{Commands: f.cmds, Inbox: f.inbox}
	raw, err := json.Marshal(Received{
		PaymentID: "mcx-1", BookingID: f.booking, Amount: "75000.00", Currency: "AOA",
		Method: "MULTICAIXA", PaidAt: testNow,
	})
	require.NoError(t, err)
	msg := &sarama.ConsumerMessage{Value: raw}

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, int64(75_000_00), f.paid(t))
}

func TestApplyDropsInvalidMessages(t *testing.T) {
	f := newFixture(t)
	h := Handler{Commands: f.cmds, Inbox: f.inbox}

	assert.NoError(t, h.Apply(context.Background(), Received{PaymentID: "", BookingID: f.booking, Amount: "1", Currency: "AOA"}))
	assert.NoError(t, h.Apply(context.Background(), Received{PaymentID: "p-1", BookingID: f.booking, Amount: "abc", Currency: "AOA"}))
	assert.NoError(t, h.Apply(context.Background(), Received{PaymentID: "p-2", BookingID: "missing", Amount: "10", Currency: "AOA"}))
	assert.NoError(t, h.Apply(context.Background(), Received{PaymentID: "p-3", BookingID: f.booking, Amount: "999999999", Currency: "AOA"}))
	assert.NoError(t, h.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")}))
	assert.Zero(t, f.paid(t))
}

type flakyBus struct {
	next  commands.Bus
	fails int
}

func (b *flakyBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	if b.fails > 0 {
		b.fails--
		return nil, errors.New("storage unavailable")
	}
	return b.next.Dispatch(ctx, cmd)
}

func TestServerFailureIsRetriedOnRedelivery(t *testing.T) {
	f := newFixture(t)
	h := Handler{Commands: &flakyBus{next: f.cmds, fails: 1}, Inbox: f.inbox}
	in := Received{PaymentID: "mcx-9", BookingID: f.booking, Amount: "1000", Currency: "AOA", Method: "CARD"}

	assert.Error(t, h.Apply(context.Background(), in))
	assert.Zero(t, f.paid(t))
	done, err := f.inbox.Processed(context.Background(), in.PaymentID)
	require.NoError(t, err)
	assert.False(t, done, "a failed payment must stay unrecorded")

	require.NoError(t, h.Apply(context.Background(), in))
	assert.Equal(t, int64(1000_00), f.paid(t))
	done, err = f.inbox.Processed(context.Background(), in.PaymentID)
	require.NoError(t, err)
	assert.True(t, done)
}

// unrecordableInbox fails to record ids, as when the process stops between
// applying a payment and writing the inbox entry.
type unrecordableInbox struct {
	*memory.Inbox
}

func (unrecordableInbox) Seen(context.Context, string) (bool, error) {
	return false, errors.New("inbox write failed")
}

func TestRedeliveryAfterUnrecordedPaymentKeepsLedgerIntact(t *testing.T) {
	f := newFixture(t)
	in := Received{PaymentID: "mcx-7", BookingID: f.booking, Amount: "5000", Currency: "AOA", Method: "CARD"}

	first := Handler{Commands: f.cmds, Inbox: unrecordableInbox{f.inbox}}
	assert.Error(t, first.Apply(context.Background(), in))
	assert.Equal(t, int64(5000_00), f.paid(t))

	redelivered := Handler{Commands: f.cmds, Inbox: f.inbox}
	require.NoError(t, redelivered.Apply(context.Background(), in))
	assert.Equal(t, int64(5000_00), f.paid(t))
	done, err := f.inbox.Processed(context.Background(), in.PaymentID)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestRejectedPaymentIsRecorded(t *testing.T) {
	f := newFixture(t)
	h := Handler{Commands: f.cmds, Inbox: f.inbox}
	in := Received{PaymentID: "mcx-8", BookingID: f.booking, Amount: "999999999", Currency: "AOA", Method: "CARD"}

	require.NoError(t, h.Apply(context.Background(), in))
	done, err := f.inbox.Processed(context.Background(), in.PaymentID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Zero(t, f.paid(t))
}
