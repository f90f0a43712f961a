package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/uow"
	"eventmarket/internal/domain/booking"
	"eventmarket/internal/domain/offer"
	"eventmarket/internal/domain/shared/failure"
)

type result struct {
	Value string `json:"value"`
}

type acceptCommand struct {
	OfferID string `validate:"required"`
	Actor   string `validate:"required"`
	IdemKey string
}

func (acceptCommand) Key() string              { return "test.accept" }
func (c acceptCommand) IdempotencyKey() string { return c.IdemKey }
func (acceptCommand) ResultPrototype() any     { return &result{} }
func (c acceptCommand) ActorID() string        { return c.Actor }

type countingBus struct {
	mu    sync.Mutex
	calls int
	fail  error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.fail != nil {
		return nil, b.fail
	}
	return &result{Value: "ok"}, nil
}

type mapStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func newMapStore() *mapStore { return &mapStore{items: map[string]IdempotencyRecord{}} }

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[key]
	return r, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	base := &countingBus{}
	store := newMapStore()
	bus := ChainCommands(base, Idempotency(store, nil, nil))
	cmd := acceptCommand{OfferID: "of-1", Actor: "u", IdemKey: "of-1:u"}

	first, err := commands.Dispatch[acceptCommand, *result](context.Background(), bus, cmd)
	require.NoError(t, err)
	second, err := commands.Dispatch[acceptCommand, *result](context.Background(), bus, cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, base.calls)
	assert.Equal(t, first.Value, second.Value)
	_, found, _ := store.Get(context.Background(), "test.accept:of-1:u")
	assert.True(t, found)
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	base := &countingBus{fail: failure.New(failure.KindConversionFailed, "conversion failed")}
	store := newMapStore()
	bus := ChainCommands(base, Idempotency(store, nil, nil))
	cmd := acceptCommand{OfferID: "of-1", Actor: "u", IdemKey: "k"}

	_, err := bus.Dispatch(context.Background(), cmd)
	assert.Equal(t, failure.KindConversionFailed, failure.KindOf(err))

	base.fail = nil
	res, err := commands.Dispatch[acceptCommand, *result](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, 2, base.calls)
}

type unsavableStore struct {
	*mapStore
}

func (unsavableStore) Save(context.Context, IdempotencyRecord) error {
	return errors.New("redis: connection refused")
}

func TestIdempotencySaveFailureKeepsCommittedResult(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(unsavableStore{newMapStore()}, nil, nil))
	cmd := acceptCommand{OfferID: "of-1", Actor: "u", IdemKey: "k"}

	res, err := commands.Dispatch[acceptCommand, *result](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, 1, base.calls)
}

type txUnit struct {
	commits, rollbacks int
}

func (u *txUnit) Offers() offer.Repository     { return nil }
func (u *txUnit) Bookings() booking.Repository { return nil }
func (u *txUnit) Commit(context.Context) error {
	u.commits++
	return nil
}
func (u *txUnit) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

type txFactory struct{ unit *txUnit }

func (f txFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

func TestTransactionCommitsOrRollsBack(t *testing.T) {
	unit := &txUnit{}
	var seen bool
	inner := commandFunc(func(ctx context.Context, _ commands.Command) (any, error) {
		_, seen = uow.FromContext(ctx)
		return nil, nil
	})
	bus := ChainCommands(inner, Transaction(txFactory{unit: unit}, nil))
	_, err := bus.Dispatch(context.Background(), acceptCommand{})
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, 1, unit.commits)

	failing := ChainCommands(&countingBus{fail: errors.New("boom")}, Transaction(txFactory{unit: unit}, nil))
	_, err = failing.Dispatch(context.Background(), acceptCommand{})
	assert.Error(t, err)
	assert.Equal(t, 1, unit.commits)
	assert.Equal(t, 1, unit.rollbacks)
}

func TestValidationAndAuthorization(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Authorization(ActorRequired{}), Validation(NewStructValidator()))

	_, err := bus.Dispatch(context.Background(), acceptCommand{OfferID: "of-1"})
	assert.ErrorIs(t, err, ErrActorRequired)
	assert.Equal(t, failure.KindUnauthorized, failure.KindOf(err))

	_, err = bus.Dispatch(context.Background(), acceptCommand{Actor: "u"})
	assert.Equal(t, failure.KindValidation, failure.KindOf(err))
	assert.Contains(t, err.Error(), "OfferID is required")

	_, err = bus.Dispatch(context.Background(), acceptCommand{OfferID: "of-1", Actor: "u"})
	require.NoError(t, err)
	assert.Equal(t, 1, base.calls)
}
